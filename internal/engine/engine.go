// Package engine is the zone compliance and hygiene aggregation core.
//
// An Engine owns three in-memory registries (zones, vendors, hygiene reports)
// and keeps every derived field consistent with the primary data:
// zone current_vendors and hygiene_avg, vendor zone_status and zone_id, and
// vendor total_complaints. All mutations are serialized by one lock; reads
// return copies. The engine performs no I/O: each mutating call returns the
// set of records it changed so the caller can write them through to a store.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vendzone/internal/model"
)

type Engine struct {
	mu      sync.RWMutex
	zones   *zoneRegistry
	vendors *vendorRegistry
	reports *reportLog

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for load warnings and mutation traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		zones:   newZoneRegistry(),
		vendors: newVendorRegistry(),
		reports: newReportLog(),
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Changes lists the records touched by one engine call, as they are after it.
type Changes struct {
	Zones   []model.Zone          `json:"zones,omitempty"`
	Vendors []model.Vendor        `json:"vendors,omitempty"`
	Reports []model.HygieneReport `json:"reports,omitempty"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Zones) == 0 && len(c.Vendors) == 0 && len(c.Reports) == 0
}

// changeSet accumulates touched ids in first-touch order during a mutation.
type changeSet struct {
	zones, vendors, reports []string
	seen                    map[string]struct{}
}

func newChangeSet() *changeSet { return &changeSet{seen: map[string]struct{}{}} }

func (c *changeSet) mark(list *[]string, kind, id string) {
	k := kind + "/" + id
	if _, ok := c.seen[k]; ok {
		return
	}
	c.seen[k] = struct{}{}
	*list = append(*list, id)
}

func (c *changeSet) zone(id string)   { c.mark(&c.zones, "z", id) }
func (c *changeSet) vendor(id string) { c.mark(&c.vendors, "v", id) }
func (c *changeSet) report(id string) { c.mark(&c.reports, "r", id) }

// collect snapshots the touched records. Caller holds e.mu.
func (e *Engine) collect(cs *changeSet) Changes {
	var out Changes
	for _, id := range cs.zones {
		if z := e.zones.get(id); z != nil {
			out.Zones = append(out.Zones, copyZone(z.zone))
		}
	}
	for _, id := range cs.vendors {
		if v := e.vendors.get(id); v != nil {
			out.Vendors = append(out.Vendors, copyVendor(*v))
		}
	}
	for _, id := range cs.reports {
		if r := e.reports.get(id); r != nil {
			out.Reports = append(out.Reports, copyReport(*r))
		}
	}
	return out
}

// Load replaces the engine state with records read from a store, then
// recomputes every derived field. Zones with invalid geometry or fields are
// skipped with a warning; duplicate vendor phones keep the first record.
// The returned Changes hold the records whose derived fields were stale.
func (e *Engine) Load(zones []model.Zone, vendors []model.Vendor, reports []model.HygieneReport) Changes {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.zones = newZoneRegistry()
	e.vendors = newVendorRegistry()
	e.reports = newReportLog()

	before := map[string]model.Zone{}
	for _, z := range sortByCreated(zones, func(z model.Zone) time.Time { return z.CreatedDate }) {
		if z.ID == "" {
			e.logger.Warn("skipping zone without id on load", "name", z.Name)
			continue
		}
		if _, dup := before[z.ID]; dup {
			e.logger.Warn("skipping duplicate zone id on load", "zone_id", z.ID, "name", z.Name)
			continue
		}
		poly, err := validateZone(z)
		if err != nil {
			e.logger.Warn("skipping zone on load", "zone_id", z.ID, "name", z.Name, "err", err)
			continue
		}
		before[z.ID] = copyZone(z)
		e.zones.insert(copyZone(z), poly)
	}

	vbefore := map[string]model.Vendor{}
	for _, v := range sortByCreated(vendors, func(v model.Vendor) time.Time { return v.CreatedDate }) {
		if v.ID == "" {
			continue
		}
		if _, dup := vbefore[v.ID]; dup {
			e.logger.Warn("skipping duplicate vendor id on load", "vendor_id", v.ID)
			continue
		}
		if _, dup := e.vendors.byPhone[v.Phone]; dup {
			e.logger.Warn("skipping vendor with duplicate phone on load", "vendor_id", v.ID)
			continue
		}
		vbefore[v.ID] = copyVendor(v)
		e.vendors.insert(copyVendor(v))
	}

	for _, r := range sortByCreated(reports, func(r model.HygieneReport) time.Time { return r.CreatedDate }) {
		if r.ID == "" || e.reports.get(r.ID) != nil {
			continue
		}
		e.reports.insert(copyReport(r))
	}

	cs := newChangeSet()
	e.recomputeAll(cs)

	// Only report records whose derived values actually moved.
	var out Changes
	for _, c := range e.collect(cs).Zones {
		if !sameZoneAggregates(before[c.ID], c) {
			out.Zones = append(out.Zones, c)
		}
	}
	for _, c := range e.collect(cs).Vendors {
		b := vbefore[c.ID]
		if b.ZoneStatus != c.ZoneStatus || b.ZoneID != c.ZoneID {
			out.Vendors = append(out.Vendors, c)
		}
	}
	e.logger.Info("engine loaded",
		"zones", len(e.zones.order), "vendors", len(e.vendors.order), "reports", len(e.reports.order),
		"stale_zones", len(out.Zones), "stale_vendors", len(out.Vendors))
	return out
}

func sameZoneAggregates(a, b model.Zone) bool {
	if a.CurrentVendors != b.CurrentVendors {
		return false
	}
	if (a.HygieneAvg == nil) != (b.HygieneAvg == nil) {
		return false
	}
	return a.HygieneAvg == nil || *a.HygieneAvg == *b.HygieneAvg
}

// recomputeAll rebuilds membership and re-derives every vendor. Caller holds e.mu.
func (e *Engine) recomputeAll(cs *changeSet) {
	e.zones.recompute(e.vendors, cs)
	for _, id := range e.vendors.order {
		e.derive(e.vendors.byID[id], cs)
	}
}

// RecomputeMembership runs the full zones × vendors containment pass and
// re-derives every vendor's status. The incremental updates done by the other
// mutations make this a repair tool rather than a routine call.
func (e *Engine) RecomputeMembership() Changes {
	e.mu.Lock()
	defer e.mu.Unlock()
	cs := newChangeSet()
	e.recomputeAll(cs)
	return e.collect(cs)
}

// derive refreshes the matched zone and, unless locked, the zone status of v.
// Caller holds e.mu.
func (e *Engine) derive(v *model.Vendor, cs *changeSet) {
	status, zoneID := UnzonedVendorStatus, ""
	if z := e.zones.match(pointOf(v.Latitude, v.Longitude)); z != nil {
		status, zoneID = DeriveVendorStatus(z.zone.Status), z.zone.ID
	}
	changed := v.ZoneID != zoneID
	v.ZoneID = zoneID
	if !v.StatusLocked && v.ZoneStatus != status {
		v.ZoneStatus = status
		changed = true
	}
	if changed {
		v.UpdatedDate = e.now().UTC()
		cs.vendor(v.ID)
	}
}

func (e *Engine) today() time.Time {
	t := e.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func copyZone(z model.Zone) model.Zone {
	if z.HygieneAvg != nil {
		v := *z.HygieneAvg
		z.HygieneAvg = &v
	}
	if z.NotificationDate != nil {
		t := *z.NotificationDate
		z.NotificationDate = &t
	}
	return z
}

func copyVendor(v model.Vendor) model.Vendor {
	if v.LastInspection != nil {
		t := *v.LastInspection
		v.LastInspection = &t
	}
	return v
}

func copyReport(r model.HygieneReport) model.HygieneReport {
	if r.ResolvedDate != nil {
		t := *r.ResolvedDate
		r.ResolvedDate = &t
	}
	return r
}
