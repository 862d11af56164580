package store

import (
	"testing"

	"vendzone/internal/model"
)

func TestPatchOfDropsID(t *testing.T) {
	got, err := patchOf(map[string]any{"id": "x", "status": model.ZoneLegal, "max_vendors": 3})
	if err != nil {
		t.Fatalf("patchOf: %v", err)
	}
	if _, ok := got["id"]; ok {
		t.Fatalf("id must not be patchable")
	}
	if got["status"] != "legal" {
		t.Fatalf("want status legal, got %v", got["status"])
	}
	if got["max_vendors"] != float64(3) {
		t.Fatalf("want max_vendors 3 as JSON number, got %#v", got["max_vendors"])
	}
}

func TestMatches(t *testing.T) {
	doc := map[string]any{"status": "open", "severity": "critical", "latitude": 28.6}
	cases := []struct {
		filter map[string]any
		want   bool
	}{
		{map[string]any{}, true},
		{map[string]any{"status": "open"}, true},
		{map[string]any{"status": "open", "severity": "low"}, false},
		{map[string]any{"latitude": 28.6}, true},
		{map[string]any{"vendor_id": "v1"}, false},
		{map[string]any{"vendor_id": nil}, true},
	}
	for i, c := range cases {
		if got := matches(doc, c.filter); got != c.want {
			t.Fatalf("case %d: matches(%v) = %v, want %v", i, c.filter, got, c.want)
		}
	}
}

func TestFieldsClearsAbsentOptionals(t *testing.T) {
	f, err := Fields(model.Zone{ID: "z", CurrentVendors: 0}, "current_vendors", "hygiene_avg")
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if v, ok := f["hygiene_avg"]; !ok || v != nil {
		t.Fatalf("hygiene_avg should be present and nil, got %#v", f)
	}
	if f["current_vendors"] != float64(0) {
		t.Fatalf("current_vendors = %#v", f["current_vendors"])
	}
}
