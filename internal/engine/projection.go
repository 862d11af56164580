package engine

import (
	"slices"
	"time"

	"vendzone/internal/geo"
	"vendzone/internal/model"
)

// Stats backs the admin dashboard counters.
type Stats struct {
	TotalVendors         int                            `json:"total_vendors"`
	VendorsByStatus      map[model.VendorZoneStatus]int `json:"vendors_by_status"`
	TotalZones           int                            `json:"total_zones"`
	ZonesByStatus        map[model.ZoneStatus]int       `json:"zones_by_status"`
	FullZones            int                            `json:"full_zones"`
	TotalReports         int                            `json:"total_reports"`
	ReportsByStatus      map[model.ReportStatus]int     `json:"reports_by_status"`
	OpenReports          int                            `json:"open_reports"`
	CriticalOpenReports  int                            `json:"critical_open_reports"`
	InvestigatingReports int                            `json:"investigating_reports"`
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats()
}

// stats counts under a lock the caller holds.
func (e *Engine) stats() Stats {
	s := Stats{
		VendorsByStatus: map[model.VendorZoneStatus]int{},
		ZonesByStatus:   map[model.ZoneStatus]int{},
		ReportsByStatus: map[model.ReportStatus]int{},
	}
	for _, st := range model.VendorZoneStatuses() {
		s.VendorsByStatus[st] = 0
	}
	for _, st := range model.ZoneStatuses() {
		s.ZonesByStatus[st] = 0
	}
	for _, st := range model.ReportStatuses() {
		s.ReportsByStatus[st] = 0
	}
	for _, v := range e.vendors.byID {
		s.TotalVendors++
		s.VendorsByStatus[v.ZoneStatus]++
	}
	for _, ze := range e.zones.byID {
		s.TotalZones++
		s.ZonesByStatus[ze.zone.Status]++
		if ze.zone.Full() {
			s.FullZones++
		}
	}
	for _, r := range e.reports.byID {
		s.TotalReports++
		s.ReportsByStatus[r.Status]++
		if r.Open() && r.Severity == model.SeverityCritical {
			s.CriticalOpenReports++
		}
	}
	s.OpenReports = s.ReportsByStatus[model.ReportOpen]
	s.InvestigatingReports = s.ReportsByStatus[model.ReportInvestigating]
	return s
}

// OpenReports lists reports in status open, newest first.
func (e *Engine) OpenReports() []model.HygieneReport {
	return e.FilterReports(ReportFilter{Status: model.ReportOpen})
}

// CriticalOpenReports lists open reports of critical severity, newest first.
func (e *Engine) CriticalOpenReports() []model.HygieneReport {
	return e.FilterReports(ReportFilter{Status: model.ReportOpen, Severity: model.SeverityCritical})
}

// ZoneFill describes how full a zone is. Ratio is nil for uncapped zones.
type ZoneFill struct {
	ZoneID     string           `json:"zone_id"`
	Name       string           `json:"name"`
	Status     model.ZoneStatus `json:"status"`
	Current    int              `json:"current_vendors"`
	Max        int              `json:"max_vendors"`
	Capped     bool             `json:"capped"`
	Full       bool             `json:"full"`
	Ratio      *float64         `json:"ratio,omitempty"`
	HygieneAvg *float64         `json:"hygiene_avg,omitempty"`
}

func fillOf(z model.Zone) ZoneFill {
	f := ZoneFill{
		ZoneID:     z.ID,
		Name:       z.Name,
		Status:     z.Status,
		Current:    z.CurrentVendors,
		Max:        z.MaxVendors,
		Capped:     z.Capped(),
		Full:       z.Full(),
		HygieneAvg: z.HygieneAvg,
	}
	if z.Capped() {
		r := float64(z.CurrentVendors) / float64(z.MaxVendors)
		f.Ratio = &r
	}
	return f
}

func (e *Engine) ZoneFill(id string) (ZoneFill, error) {
	z, err := e.GetZone(id)
	if err != nil {
		return ZoneFill{}, err
	}
	return fillOf(z), nil
}

// ZoneOccupancy returns the fill of every zone in creation order.
func (e *Engine) ZoneOccupancy() []ZoneFill {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.occupancy()
}

func (e *Engine) occupancy() []ZoneFill {
	out := make([]ZoneFill, 0, len(e.zones.order))
	for _, id := range e.zones.order {
		out = append(out, fillOf(e.zones.byID[id].zone))
	}
	return out
}

// Gauges is the input of the metrics gauges, read under one lock so the
// counters, occupancy and open queue agree with each other.
type Gauges struct {
	Stats     Stats
	Occupancy []ZoneFill
	Open      []model.HygieneReport
}

func (e *Engine) Gauges() Gauges {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Gauges{
		Stats:     e.stats(),
		Occupancy: e.occupancy(),
		Open:      e.reportsNewestFirst(model.HygieneReport.Open),
	}
}

// VendorRisk flags a vendor for the admin table.
type VendorRisk struct {
	VendorID        string                 `json:"vendor_id"`
	Name            string                 `json:"name"`
	Phone           string                 `json:"phone"`
	ZoneStatus      model.VendorZoneStatus `json:"zone_status"`
	HygieneScore    int                    `json:"hygiene_score"`
	TotalComplaints int                    `json:"total_complaints"`
	AtRisk          bool                   `json:"at_risk"`
	LowHygiene      bool                   `json:"low_hygiene"`
	Relocate        bool                   `json:"relocate"`
}

func riskOf(v model.Vendor) VendorRisk {
	return VendorRisk{
		VendorID:        v.ID,
		Name:            v.Name,
		Phone:           v.Phone,
		ZoneStatus:      v.ZoneStatus,
		HygieneScore:    v.HygieneScore,
		TotalComplaints: v.TotalComplaints,
		AtRisk:          v.ZoneStatus == model.VendorIllegal,
		LowHygiene:      v.HygieneScore <= LowHygieneScore,
		Relocate:        v.ZoneStatus == model.VendorRelocateRequired,
	}
}

// VendorRisk returns the risk flags of every vendor in registration order.
func (e *Engine) VendorRisk() []VendorRisk {
	vendors := e.ListVendors()
	out := make([]VendorRisk, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, riskOf(v))
	}
	return out
}

// AtRiskVendors returns the vendors whose derived status is illegal.
func (e *Engine) AtRiskVendors() []model.Vendor {
	return e.FilterVendors(VendorFilter{ZoneStatus: model.VendorIllegal})
}

// ZoneSeverity summarizes the open reports located in one zone. A report
// inside overlapping zones counts for each of them.
type ZoneSeverity struct {
	ZoneID      string                 `json:"zone_id"`
	Name        string                 `json:"name"`
	OpenReports int                    `json:"open_reports"`
	Counts      map[model.Severity]int `json:"counts"`
	Highest     model.Severity         `json:"highest,omitempty"`
}

func (e *Engine) ZoneSeverity() []ZoneSeverity {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]ZoneSeverity, 0, len(e.zones.order))
	for _, zid := range e.zones.order {
		ze := e.zones.byID[zid]
		zs := ZoneSeverity{ZoneID: zid, Name: ze.zone.Name, Counts: map[model.Severity]int{}}
		for _, rid := range e.reports.order {
			r := e.reports.byID[rid]
			if !r.Open() || !ze.contains(pointOf(r.Latitude, r.Longitude)) {
				continue
			}
			zs.OpenReports++
			zs.Counts[r.Severity]++
			if r.Severity.Rank() > zs.Highest.Rank() {
				zs.Highest = r.Severity
			}
		}
		out = append(out, zs)
	}
	return out
}

// NearbyZone is a legal zone with spare capacity, ranked by distance.
type NearbyZone struct {
	model.Zone
	DistanceMeters float64 `json:"distance_meters"`
}

// VendorProfile is the vendor portal view.
type VendorProfile struct {
	Vendor        model.Vendor          `json:"vendor"`
	Risk          VendorRisk            `json:"risk"`
	RecentReports []model.HygieneReport `json:"recent_reports"`
	NearbyZones   []NearbyZone          `json:"nearby_zones"`
}

const (
	profileRecentReports = 3
	profileNearbyZones   = 4
)

// VendorProfile looks a vendor up by phone and gathers its recent reports
// and the closest legal zones that can still take a vendor.
func (e *Engine) VendorProfile(phone string) (VendorProfile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	id, ok := e.vendors.byPhone[phone]
	if !ok {
		return VendorProfile{}, notFound("vendor with phone", phone)
	}
	v := copyVendor(*e.vendors.byID[id])
	p := VendorProfile{Vendor: v, Risk: riskOf(v), NearbyZones: []NearbyZone{}}

	p.RecentReports = e.reportsNewestFirst(func(r model.HygieneReport) bool { return r.VendorID == id })
	if len(p.RecentReports) > profileRecentReports {
		p.RecentReports = p.RecentReports[:profileRecentReports]
	}

	here := pointOf(v.Latitude, v.Longitude)
	for _, zid := range e.zones.order {
		z := e.zones.byID[zid]
		if z.zone.Status != model.ZoneLegal || z.zone.Full() {
			continue
		}
		p.NearbyZones = append(p.NearbyZones, NearbyZone{
			Zone:           copyZone(z.zone),
			DistanceMeters: geo.HaversineMeters(here, geo.Centroid(z.poly)),
		})
	}
	slices.SortStableFunc(p.NearbyZones, func(a, b NearbyZone) int {
		switch {
		case a.DistanceMeters < b.DistanceMeters:
			return -1
		case a.DistanceMeters > b.DistanceMeters:
			return 1
		}
		return 0
	})
	if len(p.NearbyZones) > profileNearbyZones {
		p.NearbyZones = p.NearbyZones[:profileNearbyZones]
	}
	return p, nil
}

// MapZone is a zone with its decoded polygon for map overlays.
type MapZone struct {
	model.Zone
	Polygon [][2]float64 `json:"polygon"`
}

// MapView is everything the live map draws.
type MapView struct {
	Zones   []MapZone             `json:"zones"`
	Vendors []model.Vendor        `json:"vendors"`
	Reports []model.HygieneReport `json:"reports"`
}

// MapView returns zones, vendor markers and open report markers from one
// consistent snapshot.
func (e *Engine) MapView() MapView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m := MapView{Zones: []MapZone{}, Vendors: []model.Vendor{}}
	for _, id := range e.zones.order {
		ze := e.zones.byID[id]
		m.Zones = append(m.Zones, MapZone{Zone: copyZone(ze.zone), Polygon: ze.poly.Pairs()})
	}
	for _, id := range e.vendors.order {
		m.Vendors = append(m.Vendors, copyVendor(*e.vendors.byID[id]))
	}
	m.Reports = e.reportsNewestFirst(model.HygieneReport.Open)
	return m
}

func sortByCreated[T any](in []T, created func(T) time.Time) []T {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b T) int { return created(a).Compare(created(b)) })
	return out
}
