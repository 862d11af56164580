//go:build postgres_integration

package store

import (
	"os"
	"testing"

	"vendzone/internal/model"
)

func TestPostgresConnectivityAndMigrate(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer p.Close()
	if err := p.Ping(t.Context()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := p.MigrateDir("../../db/migrations"); err != nil {
		t.Fatalf("MigrateDir: %v", err)
	}

	z, err := p.CreateZone(t.Context(), model.Zone{Name: "it-zone", Status: model.ZoneLegal, Coordinates: `[[0,0],[0,1],[1,1]]`})
	if err != nil {
		t.Fatalf("CreateZone: %v", err)
	}
	z, err = p.UpdateZone(t.Context(), z.ID, map[string]any{"current_vendors": 2})
	if err != nil || z.CurrentVendors != 2 {
		t.Fatalf("UpdateZone: %v %+v", err, z)
	}
	got, err := p.FilterZones(t.Context(), map[string]any{"id": z.ID, "name": "it-zone"})
	if err != nil || len(got) == 0 {
		t.Fatalf("FilterZones: %v %d", err, len(got))
	}
}
