package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendzone/internal/model"
	"vendzone/internal/store"
)

const seedYAML = `zones:
  - name: Connaught Place
    area: Central Delhi
    status: legal
    max_vendors: 2
    polygon: [[28.6129, 77.2080], [28.6129, 77.2100], [28.6149, 77.2100], [28.6149, 77.2080]]
vendors:
  - name: Ramesh
    phone: "9810000001"
    food_type: chaat
    latitude: 28.6139
    longitude: 77.2090
    hygiene_score: 4
  - name: Sita
    phone: "9810000002"
    food_type: juice
    latitude: 28.6140
    longitude: 77.2091
    hygiene_score: 2
reports:
  - vendor_phone: "9810000001"
    issue_type: garbage_disposal
    description: Waste dumped behind the stall
    severity: high
    latitude: 28.6139
    longitude: 77.2090
`

func run(t *testing.T, st store.Store, args ...string) (string, error) {
	t.Helper()
	opts := &RootOptions{OpenStore: func(context.Context, *RootOptions) (store.Store, error) { return st, nil }}
	root := NewRootCommandWith(opts)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	_, err := run(t, st, "seed", "--file", writeFixture(t, "seed.yaml", seedYAML))
	require.NoError(t, err)
	return st
}

func TestSeedDerivesThroughEngine(t *testing.T) {
	st := store.NewMemory()
	out, err := run(t, st, "seed", "-f", writeFixture(t, "seed.yaml", seedYAML), "--format", "json")
	require.NoError(t, err)

	var res SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Zones)
	assert.Equal(t, 2, res.Vendors)
	assert.Equal(t, 1, res.Reports)
	assert.Equal(t, 4, res.Created)
	assert.Zero(t, res.Updated)

	ctx := context.Background()
	zones, _ := st.ListZones(ctx)
	require.Len(t, zones, 1)
	assert.Equal(t, 2, zones[0].CurrentVendors)
	require.NotNil(t, zones[0].HygieneAvg)
	assert.Equal(t, 3.0, *zones[0].HygieneAvg)

	vendors, _ := st.FilterVendors(ctx, map[string]any{"phone": "9810000001"})
	require.Len(t, vendors, 1)
	assert.Equal(t, model.VendorLegal, vendors[0].ZoneStatus)
	assert.Equal(t, zones[0].ID, vendors[0].ZoneID)
	assert.Equal(t, 1, vendors[0].TotalComplaints)

	reports, _ := st.ListReports(ctx)
	require.Len(t, reports, 1)
	assert.Equal(t, vendors[0].ID, reports[0].VendorID)
	assert.Equal(t, model.ReportOpen, reports[0].Status)
}

func TestSeedRejectsDuplicatePhoneWithoutWriting(t *testing.T) {
	st := seeded(t)
	extra := writeFixture(t, "dup.yaml", `zones:
  - name: Karol Bagh
    status: legal
    polygon: [[28.65, 77.18], [28.65, 77.19], [28.66, 77.19], [28.66, 77.18]]
vendors:
  - name: Ramesh again
    phone: "9810000001"
    food_type: chaat
    latitude: 28.655
    longitude: 77.185
    hygiene_score: 3
`)
	_, err := run(t, st, "seed", "--file", extra)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9810000001")

	zones, _ := st.ListZones(context.Background())
	assert.Len(t, zones, 1, "nothing from the failed batch is written")
}

func TestSeedDryRun(t *testing.T) {
	st := store.NewMemory()
	out, err := run(t, st, "seed", "--file", writeFixture(t, "seed.yaml", seedYAML), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	vendors, _ := st.ListVendors(context.Background())
	assert.Empty(t, vendors)
}

func TestSeedVendorCSV(t *testing.T) {
	st := seeded(t)
	csv := writeFixture(t, "roster.csv", "name,phone,food_type,latitude,longitude,hygiene_score\n"+
		"Mohan,9810000003,tea_snacks,28.6135,77.2085,5\n")
	out, err := run(t, st, "seed", "--file", csv, "--format", "json")
	require.NoError(t, err)

	var res SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Created, "the new vendor")
	assert.Equal(t, 1, res.Updated, "the zone whose counters moved")

	zones, _ := st.ListZones(context.Background())
	require.Len(t, zones, 1)
	assert.Equal(t, 3, zones[0].CurrentVendors)
}

func TestLocate(t *testing.T) {
	st := seeded(t)

	out, err := run(t, st, "locate", "--lat", "28.6139", "--lng", "77.2090", "--format", "json")
	require.NoError(t, err)
	var res LocateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Zone)
	assert.Equal(t, "Connaught Place", res.Zone.Name)
	assert.Equal(t, model.VendorLegal, res.ZoneStatus)
	assert.Len(t, res.Containing, 1)

	out, err = run(t, st, "locate", "--lat", "12.97", "--lng", "77.59", "--format", "json")
	require.NoError(t, err)
	res = LocateResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Nil(t, res.Zone)
	assert.Equal(t, model.VendorIllegal, res.ZoneStatus)
	assert.Empty(t, res.Containing)

	out, err = run(t, st, "locate", "--lat", "28.6139", "--lng", "77.2090")
	require.NoError(t, err)
	assert.Contains(t, out, "Connaught Place")
	assert.Contains(t, out, "2/2")

	_, err = run(t, st, "locate", "--lat", "95", "--lng", "0")
	assert.ErrorContains(t, err, "out of range")
	_, err = run(t, st, "locate", "--lat", "28.6")
	assert.Error(t, err, "--lng is required")
}

func TestStats(t *testing.T) {
	st := seeded(t)
	out, err := run(t, st, "stats", "--format", "json")
	require.NoError(t, err)

	var res StatsResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.TotalVendors)
	assert.Equal(t, 2, res.VendorsByStatus[model.VendorLegal])
	assert.Equal(t, 1, res.FullZones)
	assert.Equal(t, 1, res.OpenReports)
	require.Len(t, res.Occupancy, 1)
	assert.True(t, res.Occupancy[0].Full)

	out, err = run(t, st, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "2/2 FULL")
	assert.Contains(t, out, "3.0")
}

func TestAuditFindsAndFixesDrift(t *testing.T) {
	st := seeded(t)
	ctx := context.Background()

	out, err := run(t, st, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "no drift")

	vendors, _ := st.FilterVendors(ctx, map[string]any{"phone": "9810000002"})
	require.Len(t, vendors, 1)
	_, err = st.UpdateVendor(ctx, vendors[0].ID, map[string]any{"zone_status": model.VendorIllegal})
	require.NoError(t, err)
	zones, _ := st.ListZones(ctx)
	_, err = st.UpdateZone(ctx, zones[0].ID, map[string]any{"current_vendors": 7})
	require.NoError(t, err)

	out, err = run(t, st, "audit", "--format", "json")
	assert.ErrorIs(t, err, ErrDrift)
	var res AuditResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Fixed)
	assert.ElementsMatch(t, []Drift{
		{Kind: "zone", ID: zones[0].ID, Name: "Connaught Place", Field: "current_vendors", Stored: "7", Derived: "2"},
		{Kind: "vendor", ID: vendors[0].ID, Name: "Sita", Field: "zone_status", Stored: "illegal", Derived: "legal"},
	}, res.Drift)

	_, err = run(t, st, "audit", "--fix")
	require.NoError(t, err)

	fixed, _ := st.FilterVendors(ctx, map[string]any{"phone": "9810000002"})
	assert.Equal(t, model.VendorLegal, fixed[0].ZoneStatus)
	zones, _ = st.ListZones(ctx)
	assert.Equal(t, 2, zones[0].CurrentVendors)

	out, err = run(t, st, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "no drift")
}

func TestVersionAndFormat(t *testing.T) {
	st := store.NewMemory()
	out, err := run(t, st, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vendzone dev")

	_, err = run(t, st, "version", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}
