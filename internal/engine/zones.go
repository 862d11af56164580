package engine

import (
	"fmt"
	"strings"

	"vendzone/internal/geo"
	"vendzone/internal/model"
)

type zoneEntry struct {
	zone    model.Zone
	poly    geo.Polygon
	box     geo.Box
	members map[string]struct{}
}

// zoneRegistry holds zones in creation order together with the
// vendor→zones containment index used for incremental updates.
type zoneRegistry struct {
	byID  map[string]*zoneEntry
	order []string
	index map[string]map[string]struct{}
}

func newZoneRegistry() *zoneRegistry {
	return &zoneRegistry{
		byID:  map[string]*zoneEntry{},
		index: map[string]map[string]struct{}{},
	}
}

func pointOf(lat, lng float64) geo.Point { return geo.Point{Lat: lat, Lng: lng} }

func (r *zoneRegistry) get(id string) *zoneEntry { return r.byID[id] }

func (r *zoneRegistry) insert(z model.Zone, poly geo.Polygon) *zoneEntry {
	ze := &zoneEntry{zone: z, poly: poly, box: geo.Bounds(poly), members: map[string]struct{}{}}
	r.byID[z.ID] = ze
	r.order = append(r.order, z.ID)
	return ze
}

func (ze *zoneEntry) contains(pt geo.Point) bool {
	return ze.box.Contains(pt) && geo.Contains(ze.poly, pt)
}

// match returns the containing zone with the best status priority; ties go to
// the zone created first. Nil when no zone contains pt.
func (r *zoneRegistry) match(pt geo.Point) *zoneEntry {
	var best *zoneEntry
	for _, id := range r.order {
		ze := r.byID[id]
		if !ze.contains(pt) {
			continue
		}
		if best == nil || ze.zone.Status.Priority() < best.zone.Status.Priority() {
			best = ze
		}
	}
	return best
}

func (r *zoneRegistry) join(ze *zoneEntry, vendorID string) {
	ze.members[vendorID] = struct{}{}
	set := r.index[vendorID]
	if set == nil {
		set = map[string]struct{}{}
		r.index[vendorID] = set
	}
	set[ze.zone.ID] = struct{}{}
}

func (r *zoneRegistry) leave(ze *zoneEntry, vendorID string) {
	delete(ze.members, vendorID)
	if set := r.index[vendorID]; set != nil {
		delete(set, ze.zone.ID)
		if len(set) == 0 {
			delete(r.index, vendorID)
		}
	}
}

// place re-indexes one vendor at pt. Only zones that held the vendor or whose
// bounding box contains pt are examined. It returns every zone whose
// aggregates may have moved: the old and the new containing zones.
func (r *zoneRegistry) place(vendorID string, pt geo.Point) []string {
	var touched []string
	seen := map[string]struct{}{}
	for id := range r.index[vendorID] {
		seen[id] = struct{}{}
	}
	for _, id := range r.order {
		ze := r.byID[id]
		_, was := seen[id]
		in := ze.contains(pt)
		switch {
		case was && !in:
			r.leave(ze, vendorID)
		case !was && in:
			r.join(ze, vendorID)
		}
		if was || in {
			touched = append(touched, id)
		}
	}
	return touched
}

// rebuild recomputes one zone's members from scratch and returns the ids of
// vendors that were or now are inside it.
func (r *zoneRegistry) rebuild(ze *zoneEntry, vendors *vendorRegistry) []string {
	affected := map[string]struct{}{}
	for id := range ze.members {
		affected[id] = struct{}{}
		r.leave(ze, id)
	}
	for _, id := range vendors.order {
		v := vendors.byID[id]
		if ze.contains(pointOf(v.Latitude, v.Longitude)) {
			r.join(ze, id)
			affected[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(affected))
	for _, id := range vendors.order {
		if _, ok := affected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// recompute is the full zones × vendors pass.
func (r *zoneRegistry) recompute(vendors *vendorRegistry, cs *changeSet) {
	r.index = map[string]map[string]struct{}{}
	for _, id := range r.order {
		r.byID[id].members = map[string]struct{}{}
	}
	for _, vid := range vendors.order {
		v := vendors.byID[vid]
		pt := pointOf(v.Latitude, v.Longitude)
		for _, zid := range r.order {
			if ze := r.byID[zid]; ze.contains(pt) {
				r.join(ze, vid)
			}
		}
	}
	for _, id := range r.order {
		r.refresh(r.byID[id], vendors, cs)
	}
}

// refresh sets current_vendors and hygiene_avg from the member set and marks
// the zone changed when either moved.
func (r *zoneRegistry) refresh(ze *zoneEntry, vendors *vendorRegistry, cs *changeSet) {
	count, sum := 0, 0
	for id := range ze.members {
		if v := vendors.byID[id]; v != nil {
			count++
			sum += v.HygieneScore
		}
	}
	var avg *float64
	if count > 0 {
		a := float64(sum) / float64(count)
		avg = &a
	}
	next := ze.zone
	next.CurrentVendors = count
	next.HygieneAvg = avg
	if !sameZoneAggregates(ze.zone, next) {
		ze.zone = next
		cs.zone(ze.zone.ID)
	}
}

func validateZone(z model.Zone) (geo.Polygon, error) {
	if strings.TrimSpace(z.Name) == "" {
		return nil, validationf("zone name is required")
	}
	if !z.Status.Valid() {
		return nil, validationf("invalid zone status %q", z.Status)
	}
	if z.MaxVendors < 0 {
		return nil, validationf("max_vendors must not be negative, got %d", z.MaxVendors)
	}
	poly := geo.DecodePolygon(z.Coordinates)
	if len(poly) < 3 {
		return nil, fmt.Errorf("%w: zone %q needs at least 3 vertices, got %d", ErrInvalidGeometry, z.Name, len(poly))
	}
	return poly, nil
}

// UpsertZone creates a zone, or replaces the editable fields of an existing
// one when z.ID names it. Derived fields on z are ignored. Membership of the
// zone is recomputed and every vendor that was or is now inside it is
// re-derived.
func (e *Engine) UpsertZone(z model.Zone) (model.Zone, Changes, error) {
	poly, err := validateZone(z)
	if err != nil {
		return model.Zone{}, Changes{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	cs := newChangeSet()
	ze := e.zones.get(z.ID)
	if ze == nil {
		if z.ID == "" {
			z.ID = e.newID()
		}
		z.CurrentVendors, z.HygieneAvg = 0, nil
		z.CreatedDate, z.UpdatedDate = now, now
		ze = e.zones.insert(copyZone(z), poly)
		e.logger.Debug("zone created", "zone_id", z.ID, "status", z.Status)
	} else {
		cur := ze.zone
		cur.Name = z.Name
		cur.Area = z.Area
		cur.Status = z.Status
		cur.Coordinates = z.Coordinates
		cur.MaxVendors = z.MaxVendors
		cur.Restrictions = z.Restrictions
		cur.NotificationDate = z.NotificationDate
		cur.UpdatedDate = now
		ze.zone = copyZone(cur)
		ze.poly = poly
		ze.box = geo.Bounds(poly)
		e.logger.Debug("zone updated", "zone_id", z.ID, "status", z.Status)
	}
	cs.zone(ze.zone.ID)

	for _, vid := range e.zones.rebuild(ze, e.vendors) {
		e.derive(e.vendors.byID[vid], cs)
	}
	e.zones.refresh(ze, e.vendors, cs)
	return copyZone(ze.zone), e.collect(cs), nil
}

// HasCapacity reports whether a zone can take another vendor. A zone with
// max_vendors of 0 is uncapped.
func (e *Engine) HasCapacity(zoneID string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ze := e.zones.get(zoneID)
	if ze == nil {
		return false, notFound("zone", zoneID)
	}
	return !ze.zone.Full(), nil
}

// MatchZone returns the zone that decides the status of a vendor at pt, and
// false when pt lies in no zone.
func (e *Engine) MatchZone(pt geo.Point) (model.Zone, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ze := e.zones.match(pt)
	if ze == nil {
		return model.Zone{}, false
	}
	return copyZone(ze.zone), true
}

// ZonesAt lists every zone containing pt in creation order.
func (e *Engine) ZonesAt(pt geo.Point) []model.Zone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []model.Zone
	for _, id := range e.zones.order {
		if ze := e.zones.byID[id]; ze.contains(pt) {
			out = append(out, copyZone(ze.zone))
		}
	}
	return out
}

func (e *Engine) GetZone(id string) (model.Zone, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ze := e.zones.get(id)
	if ze == nil {
		return model.Zone{}, notFound("zone", id)
	}
	return copyZone(ze.zone), nil
}

// ListZones returns all zones in creation order.
func (e *Engine) ListZones() []model.Zone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Zone, 0, len(e.zones.order))
	for _, id := range e.zones.order {
		out = append(out, copyZone(e.zones.byID[id].zone))
	}
	return out
}

// ZoneFilter selects zones by exact field match; zero fields match anything.
type ZoneFilter struct {
	Status model.ZoneStatus
	Area   string
}

func (f ZoneFilter) match(z model.Zone) bool {
	return (f.Status == "" || z.Status == f.Status) && (f.Area == "" || z.Area == f.Area)
}

func (e *Engine) FilterZones(f ZoneFilter) []model.Zone {
	var out []model.Zone
	for _, z := range e.ListZones() {
		if f.match(z) {
			out = append(out, z)
		}
	}
	return out
}
