package model

import "fmt"

// FoodType is the vendor food category.
type FoodType string

const (
	FoodChaat     FoodType = "chaat"
	FoodParatha   FoodType = "paratha"
	FoodTeaSnacks FoodType = "tea_snacks"
	FoodFruit     FoodType = "fruit"
	FoodIceCream  FoodType = "ice_cream"
	FoodJuice     FoodType = "juice"
	FoodBreakfast FoodType = "breakfast"
	FoodLunch     FoodType = "lunch"
	FoodSweets    FoodType = "sweets"
	FoodOther     FoodType = "other"
)

var foodTypes = []FoodType{FoodChaat, FoodParatha, FoodTeaSnacks, FoodFruit, FoodIceCream, FoodJuice, FoodBreakfast, FoodLunch, FoodSweets, FoodOther}

func (f FoodType) Valid() bool { return member(foodTypes, f) }

// VendorZoneStatus is the legal vending status derived for a vendor.
type VendorZoneStatus string

const (
	VendorLegal            VendorZoneStatus = "legal"
	VendorIllegal          VendorZoneStatus = "illegal"
	VendorPending          VendorZoneStatus = "pending"
	VendorRelocateRequired VendorZoneStatus = "relocate_required"
)

var vendorStatuses = []VendorZoneStatus{VendorLegal, VendorIllegal, VendorPending, VendorRelocateRequired}

func (s VendorZoneStatus) Valid() bool { return member(vendorStatuses, s) }

// VendorZoneStatuses lists every vendor status in display order.
func VendorZoneStatuses() []VendorZoneStatus { return append([]VendorZoneStatus(nil), vendorStatuses...) }

// ZoneStatus is the administrative designation of a zone.
type ZoneStatus string

const (
	ZoneLegal           ZoneStatus = "legal"
	ZoneIllegal         ZoneStatus = "illegal"
	ZonePendingApproval ZoneStatus = "pending_approval"
	ZoneRestricted      ZoneStatus = "restricted"
)

// zoneStatuses is ordered by match priority: the first containing zone in this
// order decides a vendor's status.
var zoneStatuses = []ZoneStatus{ZoneLegal, ZonePendingApproval, ZoneRestricted, ZoneIllegal}

func (s ZoneStatus) Valid() bool { return member(zoneStatuses, s) }

// Priority ranks zone statuses for matching; lower wins. Unknown statuses rank last.
func (s ZoneStatus) Priority() int {
	for i, v := range zoneStatuses {
		if v == s {
			return i
		}
	}
	return len(zoneStatuses)
}

// ZoneStatuses lists every zone status in match-priority order.
func ZoneStatuses() []ZoneStatus { return append([]ZoneStatus(nil), zoneStatuses...) }

type IssueType string

const (
	IssueGarbageDisposal    IssueType = "garbage_disposal"
	IssueWaterContamination IssueType = "water_contamination"
	IssueFoodSafety         IssueType = "food_safety"
	IssueCleanliness        IssueType = "cleanliness"
	IssueDrainage           IssueType = "drainage"
	IssueOther              IssueType = "other"
)

var issueTypes = []IssueType{IssueGarbageDisposal, IssueWaterContamination, IssueFoodSafety, IssueCleanliness, IssueDrainage, IssueOther}

func (t IssueType) Valid() bool { return member(issueTypes, t) }

// Severity of a hygiene report, ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) Valid() bool { return member(severities, s) }

// Rank returns 1 (low) through 4 (critical), or 0 for an unknown severity.
func (s Severity) Rank() int {
	for i, v := range severities {
		if v == s {
			return i + 1
		}
	}
	return 0
}

// Severities lists every severity from lowest to highest.
func Severities() []Severity { return append([]Severity(nil), severities...) }

type ReportStatus string

const (
	ReportOpen          ReportStatus = "open"
	ReportInvestigating ReportStatus = "investigating"
	ReportResolved      ReportStatus = "resolved"
	ReportDismissed     ReportStatus = "dismissed"
)

var reportStatuses = []ReportStatus{ReportOpen, ReportInvestigating, ReportResolved, ReportDismissed}

func (s ReportStatus) Valid() bool { return member(reportStatuses, s) }

// Terminal reports whether no further lifecycle transition is allowed.
func (s ReportStatus) Terminal() bool { return s == ReportResolved || s == ReportDismissed }

// ReportStatuses lists every report status in lifecycle order.
func ReportStatuses() []ReportStatus { return append([]ReportStatus(nil), reportStatuses...) }

func ParseFoodType(s string) (FoodType, error) { return parse[FoodType]("food_type", s, foodTypes) }
func ParseVendorZoneStatus(s string) (VendorZoneStatus, error) { return parse[VendorZoneStatus]("zone_status", s, vendorStatuses) }
func ParseZoneStatus(s string) (ZoneStatus, error) { return parse[ZoneStatus]("status", s, zoneStatuses) }
func ParseIssueType(s string) (IssueType, error) { return parse[IssueType]("issue_type", s, issueTypes) }
func ParseSeverity(s string) (Severity, error) { return parse[Severity]("severity", s, severities) }
func ParseReportStatus(s string) (ReportStatus, error) { return parse[ReportStatus]("status", s, reportStatuses) }

func member[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func parse[T ~string](field, s string, set []T) (T, error) {
	v := T(s)
	if !member(set, v) {
		return "", fmt.Errorf("invalid %s: %q", field, s)
	}
	return v, nil
}
