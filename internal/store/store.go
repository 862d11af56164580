package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vendzone/internal/model"
)

// Store is the record persistence interface used by the API server and zonectl.
//
// Every entity supports the same four operations: List, Filter (exact match
// on named JSON fields), Create (assigns an id when empty) and Update (merge a
// partial set of JSON fields). Save writes a whole record, inserting it when
// absent. Records are never deleted.
type Store interface {
	// Zones
	ListZones(ctx context.Context) ([]model.Zone, error)
	FilterZones(ctx context.Context, fields map[string]any) ([]model.Zone, error)
	CreateZone(ctx context.Context, z model.Zone) (model.Zone, error)
	UpdateZone(ctx context.Context, id string, fields map[string]any) (model.Zone, error)
	SaveZone(ctx context.Context, z model.Zone) error

	// Vendors
	ListVendors(ctx context.Context) ([]model.Vendor, error)
	FilterVendors(ctx context.Context, fields map[string]any) ([]model.Vendor, error)
	CreateVendor(ctx context.Context, v model.Vendor) (model.Vendor, error)
	UpdateVendor(ctx context.Context, id string, fields map[string]any) (model.Vendor, error)
	SaveVendor(ctx context.Context, v model.Vendor) error

	// Hygiene reports
	ListReports(ctx context.Context) ([]model.HygieneReport, error)
	FilterReports(ctx context.Context, fields map[string]any) ([]model.HygieneReport, error)
	CreateReport(ctx context.Context, r model.HygieneReport) (model.HygieneReport, error)
	UpdateReport(ctx context.Context, id string, fields map[string]any) (model.HygieneReport, error)
	SaveReport(ctx context.Context, r model.HygieneReport) error

	Ping(ctx context.Context) error
	Close() error
}

var ErrNotFound = errors.New("not found")

// entity describes how one record type maps onto a table of JSON documents.
type entity[T any] struct {
	table string
	id    func(*T) *string
}

var (
	zoneEntity   = entity[model.Zone]{table: "zones", id: func(z *model.Zone) *string { return &z.ID }}
	vendorEntity = entity[model.Vendor]{table: "vendors", id: func(v *model.Vendor) *string { return &v.ID }}
	reportEntity = entity[model.HygieneReport]{table: "hygiene_reports", id: func(r *model.HygieneReport) *string { return &r.ID }}
)

// toDoc renders a record as its JSON object.
func toDoc(rec any) (map[string]any, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc[T any](doc map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

// normalize pushes caller-supplied field values through JSON so that typed
// values (enums, ints, times) compare equal to decoded document values.
func normalize(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		var nv any
		if err := json.Unmarshal(b, &nv); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// patchOf normalizes an Update field set. The id field cannot be patched.
func patchOf(fields map[string]any) (map[string]any, error) {
	patch, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	delete(patch, "id")
	return patch, nil
}

// matches reports whether every filter field equals the document field.
// An absent document field only matches a nil filter value.
func matches(doc, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			if want != nil {
				return false
			}
			continue
		}
		gb, _ := json.Marshal(got)
		wb, _ := json.Marshal(want)
		if string(gb) != string(wb) {
			return false
		}
	}
	return true
}

// Fields converts a record into the field map Update accepts, keeping only
// the named JSON fields. Absent optional fields come back as nil so that
// Update clears them.
func Fields(rec any, names ...string) (map[string]any, error) {
	doc, err := toDoc(rec)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(names))
	for _, n := range names {
		out[n] = doc[n]
	}
	return out, nil
}
