package engine

import (
	"strings"
	"time"

	"vendzone/internal/model"
)

type vendorRegistry struct {
	byID    map[string]*model.Vendor
	byPhone map[string]string
	order   []string
}

func newVendorRegistry() *vendorRegistry {
	return &vendorRegistry{byID: map[string]*model.Vendor{}, byPhone: map[string]string{}}
}

func (r *vendorRegistry) get(id string) *model.Vendor { return r.byID[id] }

func (r *vendorRegistry) insert(v model.Vendor) *model.Vendor {
	p := &v
	r.byID[v.ID] = p
	r.byPhone[v.Phone] = v.ID
	r.order = append(r.order, v.ID)
	return p
}

func validateVendor(v model.Vendor) error {
	if strings.TrimSpace(v.Name) == "" {
		return validationf("vendor name is required")
	}
	if strings.TrimSpace(v.Phone) == "" {
		return validationf("vendor phone is required")
	}
	if !v.FoodType.Valid() {
		return validationf("invalid food_type %q", v.FoodType)
	}
	if !pointOf(v.Latitude, v.Longitude).Valid() {
		return validationf("invalid location (%v, %v)", v.Latitude, v.Longitude)
	}
	if v.HygieneScore < 1 || v.HygieneScore > 5 {
		return validationf("hygiene_score must be between 1 and 5, got %d", v.HygieneScore)
	}
	return nil
}

// RegisterVendor adds a vendor, derives its zone status from the zone it
// stands in and updates the aggregates of that zone. A vendor registered with
// status_locked keeps the zone_status it was given.
func (e *Engine) RegisterVendor(v model.Vendor) (model.Vendor, Changes, error) {
	if err := validateVendor(v); err != nil {
		return model.Vendor{}, Changes{}, err
	}
	if v.StatusLocked && !v.ZoneStatus.Valid() {
		return model.Vendor{}, Changes{}, validationf("locked vendor needs a valid zone_status, got %q", v.ZoneStatus)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if id, dup := e.vendors.byPhone[v.Phone]; dup {
		return model.Vendor{}, Changes{}, validationf("phone %q already registered to vendor %s", v.Phone, id)
	}
	if v.ID == "" {
		v.ID = e.newID()
	} else if e.vendors.get(v.ID) != nil {
		return model.Vendor{}, Changes{}, validationf("vendor id %q already exists", v.ID)
	}

	now := e.now().UTC()
	v.TotalComplaints = 0
	v.ZoneID = ""
	if !v.StatusLocked {
		v.ZoneStatus = ""
	}
	v.CreatedDate, v.UpdatedDate = now, now

	cs := newChangeSet()
	p := e.vendors.insert(copyVendor(v))
	cs.vendor(p.ID)
	e.relocate(p, cs)
	e.logger.Debug("vendor registered", "vendor_id", p.ID, "zone_status", p.ZoneStatus, "zone_id", p.ZoneID)
	return copyVendor(*p), e.collect(cs), nil
}

// relocate runs the incremental membership update for one vendor and
// re-derives it. Caller holds e.mu.
func (e *Engine) relocate(v *model.Vendor, cs *changeSet) {
	for _, zid := range e.zones.place(v.ID, pointOf(v.Latitude, v.Longitude)) {
		e.zones.refresh(e.zones.byID[zid], e.vendors, cs)
	}
	e.derive(v, cs)
}

// LookupByPhone finds a vendor by exact phone match. Callers normalize.
func (e *Engine) LookupByPhone(phone string) (model.Vendor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.vendors.byPhone[phone]
	if !ok {
		return model.Vendor{}, notFound("vendor with phone", phone)
	}
	return copyVendor(*e.vendors.byID[id]), nil
}

// IncrementComplaintCount adds one complaint to the vendor. Counts never go down.
func (e *Engine) IncrementComplaintCount(vendorID string) (model.Vendor, Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.vendors.get(vendorID)
	if v == nil {
		return model.Vendor{}, Changes{}, notFound("vendor", vendorID)
	}
	cs := newChangeSet()
	e.bumpComplaints(v, cs)
	return copyVendor(*v), e.collect(cs), nil
}

func (e *Engine) bumpComplaints(v *model.Vendor, cs *changeSet) {
	v.TotalComplaints++
	v.UpdatedDate = e.now().UTC()
	cs.vendor(v.ID)
}

// UpdateVendor applies a partial update. Moving the vendor or changing its
// hygiene score updates the affected zone aggregates.
func (e *Engine) UpdateVendor(id string, p model.VendorPatch) (model.Vendor, Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.vendors.get(id)
	if cur == nil {
		return model.Vendor{}, Changes{}, notFound("vendor", id)
	}
	if p.Empty() {
		return copyVendor(*cur), Changes{}, nil
	}
	next := applyPatch(*cur, p)
	if err := validateVendor(next); err != nil {
		return model.Vendor{}, Changes{}, err
	}
	if next.Phone != cur.Phone {
		if other, dup := e.vendors.byPhone[next.Phone]; dup && other != id {
			return model.Vendor{}, Changes{}, validationf("phone %q already registered to vendor %s", next.Phone, other)
		}
	}

	cs := newChangeSet()
	moved := next.Latitude != cur.Latitude || next.Longitude != cur.Longitude
	rescored := next.HygieneScore != cur.HygieneScore
	if next.Phone != cur.Phone {
		delete(e.vendors.byPhone, cur.Phone)
		e.vendors.byPhone[next.Phone] = id
	}
	next.UpdatedDate = e.now().UTC()
	*cur = next
	cs.vendor(id)
	if moved || rescored {
		e.relocate(cur, cs)
	}
	return copyVendor(*cur), e.collect(cs), nil
}

func applyPatch(v model.Vendor, p model.VendorPatch) model.Vendor {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.BusinessName != nil {
		v.BusinessName = *p.BusinessName
	}
	if p.Phone != nil {
		v.Phone = *p.Phone
	}
	if p.FoodType != nil {
		v.FoodType = *p.FoodType
	}
	if p.Latitude != nil {
		v.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		v.Longitude = *p.Longitude
	}
	if p.HygieneScore != nil {
		v.HygieneScore = *p.HygieneScore
	}
	if p.LicenseNumber != nil {
		v.LicenseNumber = *p.LicenseNumber
	}
	if p.Address != nil {
		v.Address = *p.Address
	}
	if p.Area != nil {
		v.Area = *p.Area
	}
	if p.Verified != nil {
		v.Verified = *p.Verified
	}
	if p.LastInspection != nil {
		t := *p.LastInspection
		v.LastInspection = &t
	}
	return v
}

// OverrideVendorStatus sets a vendor's zone status by administrator decision
// and locks it against re-derivation.
func (e *Engine) OverrideVendorStatus(id string, status model.VendorZoneStatus) (model.Vendor, Changes, error) {
	if !status.Valid() {
		return model.Vendor{}, Changes{}, validationf("invalid zone_status %q", status)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.vendors.get(id)
	if v == nil {
		return model.Vendor{}, Changes{}, notFound("vendor", id)
	}
	v.ZoneStatus = status
	v.StatusLocked = true
	v.UpdatedDate = e.now().UTC()
	cs := newChangeSet()
	cs.vendor(id)
	e.logger.Info("vendor status overridden", "vendor_id", id, "zone_status", status)
	return copyVendor(*v), e.collect(cs), nil
}

// ClearVendorOverride unlocks a vendor's status and derives it again.
func (e *Engine) ClearVendorOverride(id string) (model.Vendor, Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.vendors.get(id)
	if v == nil {
		return model.Vendor{}, Changes{}, notFound("vendor", id)
	}
	cs := newChangeSet()
	if v.StatusLocked {
		v.StatusLocked = false
		v.UpdatedDate = e.now().UTC()
		cs.vendor(id)
		e.derive(v, cs)
	}
	return copyVendor(*v), e.collect(cs), nil
}

// RecordInspection stores an inspection outcome: its date and the new hygiene score.
func (e *Engine) RecordInspection(id string, at time.Time, score int) (model.Vendor, Changes, error) {
	if at.IsZero() {
		return model.Vendor{}, Changes{}, validationf("inspection date is required")
	}
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	return e.UpdateVendor(id, model.VendorPatch{HygieneScore: &score, LastInspection: &day})
}

func (e *Engine) GetVendor(id string) (model.Vendor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v := e.vendors.get(id)
	if v == nil {
		return model.Vendor{}, notFound("vendor", id)
	}
	return copyVendor(*v), nil
}

// ListVendors returns all vendors in registration order.
func (e *Engine) ListVendors() []model.Vendor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Vendor, 0, len(e.vendors.order))
	for _, id := range e.vendors.order {
		out = append(out, copyVendor(*e.vendors.byID[id]))
	}
	return out
}

// VendorFilter selects vendors by exact field match; zero fields match anything.
type VendorFilter struct {
	ZoneStatus model.VendorZoneStatus
	FoodType   model.FoodType
	Area       string
	ZoneID     string
	Phone      string
	Verified   *bool
}

func (f VendorFilter) match(v model.Vendor) bool {
	return (f.ZoneStatus == "" || v.ZoneStatus == f.ZoneStatus) &&
		(f.FoodType == "" || v.FoodType == f.FoodType) &&
		(f.Area == "" || v.Area == f.Area) &&
		(f.ZoneID == "" || v.ZoneID == f.ZoneID) &&
		(f.Phone == "" || v.Phone == f.Phone) &&
		(f.Verified == nil || v.Verified == *f.Verified)
}

func (e *Engine) FilterVendors(f VendorFilter) []model.Vendor {
	var out []model.Vendor
	for _, v := range e.ListVendors() {
		if f.match(v) {
			out = append(out, v)
		}
	}
	return out
}
