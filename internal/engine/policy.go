package engine

import "vendzone/internal/model"

// UnzonedVendorStatus is the status of a vendor whose location lies inside no
// zone: unregulated space is treated as non-compliant.
const UnzonedVendorStatus = model.VendorIllegal

// DeriveVendorStatus maps the status of the zone containing a vendor to the
// vendor's compliance status.
func DeriveVendorStatus(zs model.ZoneStatus) model.VendorZoneStatus {
	switch zs {
	case model.ZoneLegal:
		return model.VendorLegal
	case model.ZonePendingApproval:
		return model.VendorPending
	case model.ZoneRestricted:
		return model.VendorRelocateRequired
	case model.ZoneIllegal:
		return model.VendorIllegal
	default:
		return UnzonedVendorStatus
	}
}

// transitions lists the legal report status changes. Terminal states have no entry.
var transitions = map[model.ReportStatus][]model.ReportStatus{
	model.ReportOpen:          {model.ReportInvestigating, model.ReportResolved, model.ReportDismissed},
	model.ReportInvestigating: {model.ReportResolved, model.ReportDismissed},
}

// CanTransition reports whether a report may move from one status to another.
func CanTransition(from, to model.ReportStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// LowHygieneScore is the highest hygiene score flagged as a risk in vendor views.
const LowHygieneScore = 2
