package engine

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vendzone/internal/geo"
	"vendzone/internal/model"
)

var testNow = time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	n := 0
	return New(
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%03d", n) }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// squareCoords serializes a square of side 2*half centred on (lat, lng).
func squareCoords(lat, lng, half float64) string {
	return geo.EncodePolygon(geo.Polygon{
		{Lat: lat - half, Lng: lng - half},
		{Lat: lat - half, Lng: lng + half},
		{Lat: lat + half, Lng: lng + half},
		{Lat: lat + half, Lng: lng - half},
	})
}

func vendorAt(phone string, lat, lng float64, score int) model.Vendor {
	return model.Vendor{
		Name:         "Vendor " + phone,
		Phone:        phone,
		FoodType:     model.FoodChaat,
		Latitude:     lat,
		Longitude:    lng,
		HygieneScore: score,
	}
}

const cpLat, cpLng = 28.6139, 77.2090

func connaughtPlace() model.Zone {
	return model.Zone{
		Name:        "Connaught Place",
		Area:        "Central Delhi",
		Status:      model.ZoneLegal,
		Coordinates: squareCoords(cpLat, cpLng, 0.001),
		MaxVendors:  2,
	}
}

// ScenarioSuite walks the end-to-end flows around one capped legal zone.
type ScenarioSuite struct {
	suite.Suite
	eng  *Engine
	zone model.Zone
}

func (s *ScenarioSuite) SetupTest() {
	s.eng = newTestEngine()
	z, _, err := s.eng.UpsertZone(connaughtPlace())
	s.Require().NoError(err)
	s.zone = z
}

func (s *ScenarioSuite) TestVendorInsideLegalZoneIsLegal() {
	v, ch, err := s.eng.RegisterVendor(vendorAt("9000000001", cpLat, cpLng, 4))
	s.Require().NoError(err)

	s.Equal(model.VendorLegal, v.ZoneStatus)
	s.Equal(s.zone.ID, v.ZoneID)

	z, err := s.eng.GetZone(s.zone.ID)
	s.Require().NoError(err)
	s.Equal(1, z.CurrentVendors)
	s.Require().NotNil(z.HygieneAvg)
	s.Equal(4.0, *z.HygieneAvg)

	s.Len(ch.Vendors, 1)
	s.Len(ch.Zones, 1)
}

func (s *ScenarioSuite) TestZoneAtCapacityHasNoCapacity() {
	ok, err := s.eng.HasCapacity(s.zone.ID)
	s.Require().NoError(err)
	s.True(ok)

	for _, phone := range []string{"9000000001", "9000000002"} {
		_, _, err := s.eng.RegisterVendor(vendorAt(phone, cpLat, cpLng, 3))
		s.Require().NoError(err)
	}
	z, _ := s.eng.GetZone(s.zone.ID)
	s.Equal(2, z.CurrentVendors)

	ok, err = s.eng.HasCapacity(s.zone.ID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ScenarioSuite) TestReportLifecycle() {
	v1, _, err := s.eng.RegisterVendor(vendorAt("9000000001", cpLat, cpLng, 3))
	s.Require().NoError(err)

	r, ch, err := s.eng.Submit(model.HygieneReport{
		VendorID:    v1.ID,
		IssueType:   model.IssueFoodSafety,
		Description: "Uncovered food near open drain",
		Severity:    model.SeverityCritical,
		Latitude:    cpLat,
		Longitude:   cpLng,
	})
	s.Require().NoError(err)
	s.Equal(model.ReportOpen, r.Status)
	s.Len(ch.Reports, 1)
	s.Len(ch.Vendors, 1)

	v1, _ = s.eng.GetVendor(v1.ID)
	s.Equal(1, v1.TotalComplaints)

	r, _, err = s.eng.Transition(r.ID, model.ReportInvestigating)
	s.Require().NoError(err)
	s.Nil(r.ResolvedDate)

	r, _, err = s.eng.Transition(r.ID, model.ReportResolved)
	s.Require().NoError(err)
	s.Require().NotNil(r.ResolvedDate)
	s.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *r.ResolvedDate)

	_, _, err = s.eng.Transition(r.ID, model.ReportDismissed)
	s.ErrorIs(err, ErrInvalidTransition)

	got, _ := s.eng.GetReport(r.ID)
	s.Equal(model.ReportResolved, got.Status)
	s.NotNil(got.ResolvedDate)

	v1, _ = s.eng.GetVendor(v1.ID)
	s.Equal(1, v1.TotalComplaints, "status changes never touch the complaint count")
}

func (s *ScenarioSuite) TestVendorOutsideEveryZoneIsIllegal() {
	_, _, err := s.eng.UpsertZone(model.Zone{
		Name:        "Chandni Chowk",
		Status:      model.ZonePendingApproval,
		Coordinates: squareCoords(28.6506, 77.2303, 0.002),
	})
	s.Require().NoError(err)

	v, _, err := s.eng.RegisterVendor(vendorAt("9000000009", 28.5, 77.0, 5))
	s.Require().NoError(err)
	s.Equal(model.VendorIllegal, v.ZoneStatus)
	s.Empty(v.ZoneID)

	for _, z := range s.eng.ListZones() {
		s.NotEqual(model.ZoneIllegal, z.Status)
	}
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}

func TestDeriveVendorStatus(t *testing.T) {
	cases := map[model.ZoneStatus]model.VendorZoneStatus{
		model.ZoneLegal:           model.VendorLegal,
		model.ZoneIllegal:         model.VendorIllegal,
		model.ZonePendingApproval: model.VendorPending,
		model.ZoneRestricted:      model.VendorRelocateRequired,
		"":                        UnzonedVendorStatus,
	}
	for in, want := range cases {
		assert.Equal(t, want, DeriveVendorStatus(in), "zone status %q", in)
	}
	assert.Equal(t, model.VendorIllegal, UnzonedVendorStatus)
}

func TestMovingVendorInAndOutOfLegalZone(t *testing.T) {
	eng := newTestEngine()
	z, _, err := eng.UpsertZone(connaughtPlace())
	require.NoError(t, err)

	v, _, err := eng.RegisterVendor(vendorAt("1", cpLat, cpLng, 2))
	require.NoError(t, err)
	require.Equal(t, model.VendorLegal, v.ZoneStatus)

	lat, lng := 28.70, 77.10
	v, ch, err := eng.UpdateVendor(v.ID, model.VendorPatch{Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, model.VendorIllegal, v.ZoneStatus)
	assert.Empty(t, v.ZoneID)

	zone, _ := eng.GetZone(z.ID)
	assert.Zero(t, zone.CurrentVendors)
	assert.Nil(t, zone.HygieneAvg, "an empty zone has no hygiene average")
	require.Len(t, ch.Zones, 1)
	assert.Equal(t, z.ID, ch.Zones[0].ID)

	lat, lng = cpLat, cpLng
	v, _, err = eng.UpdateVendor(v.ID, model.VendorPatch{Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, model.VendorLegal, v.ZoneStatus)
}

func TestZonePriorityAndCreationOrder(t *testing.T) {
	eng := newTestEngine()
	illegal, _, err := eng.UpsertZone(model.Zone{Name: "Footpath", Status: model.ZoneIllegal, Coordinates: squareCoords(0, 0, 1)})
	require.NoError(t, err)
	restricted, _, err := eng.UpsertZone(model.Zone{Name: "Market A", Status: model.ZoneRestricted, Coordinates: squareCoords(0, 0, 1)})
	require.NoError(t, err)
	_, _, err = eng.UpsertZone(model.Zone{Name: "Market B", Status: model.ZoneRestricted, Coordinates: squareCoords(0, 0, 1)})
	require.NoError(t, err)

	v, _, err := eng.RegisterVendor(vendorAt("1", 0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, model.VendorRelocateRequired, v.ZoneStatus)
	assert.Equal(t, restricted.ID, v.ZoneID, "ties go to the zone created first")

	m, ok := eng.MatchZone(geo.Point{Lat: 0, Lng: 0})
	require.True(t, ok)
	assert.Equal(t, restricted.ID, m.ID)
	assert.Len(t, eng.ZonesAt(geo.Point{Lat: 0, Lng: 0}), 3)

	// Turning the illegal zone legal outranks the restricted ones.
	illegal.Status = model.ZoneLegal
	_, ch, err := eng.UpsertZone(illegal)
	require.NoError(t, err)
	v, _ = eng.GetVendor(v.ID)
	assert.Equal(t, model.VendorLegal, v.ZoneStatus)
	assert.Equal(t, illegal.ID, v.ZoneID)
	require.Len(t, ch.Vendors, 1)
	assert.Equal(t, v.ID, ch.Vendors[0].ID)
}

func TestUpsertZoneValidation(t *testing.T) {
	eng := newTestEngine()
	ok := connaughtPlace()

	cases := []struct {
		name   string
		mutate func(*model.Zone)
		want   error
	}{
		{"empty name", func(z *model.Zone) { z.Name = "  " }, ErrValidation},
		{"bad status", func(z *model.Zone) { z.Status = "open" }, ErrValidation},
		{"negative cap", func(z *model.Zone) { z.MaxVendors = -1 }, ErrValidation},
		{"two vertices", func(z *model.Zone) { z.Coordinates = `[[0,0],[1,1]]` }, ErrInvalidGeometry},
		{"malformed", func(z *model.Zone) { z.Coordinates = `not a polygon` }, ErrInvalidGeometry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			z := ok
			tc.mutate(&z)
			_, ch, err := eng.UpsertZone(z)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, ch.Empty())
		})
	}
	assert.Empty(t, eng.ListZones(), "rejected zones are never stored")
}

func TestUpsertZoneIgnoresSuppliedAggregates(t *testing.T) {
	eng := newTestEngine()
	z := connaughtPlace()
	avg := 5.0
	z.CurrentVendors, z.HygieneAvg = 40, &avg

	got, _, err := eng.UpsertZone(z)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentVendors)
	assert.Nil(t, got.HygieneAvg)
}

func TestUncappedZoneAlwaysHasCapacity(t *testing.T) {
	eng := newTestEngine()
	z := connaughtPlace()
	z.MaxVendors = 0
	z, _, err := eng.UpsertZone(z)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _, err := eng.RegisterVendor(vendorAt(fmt.Sprint(i), cpLat, cpLng, 3))
		require.NoError(t, err)
	}
	ok, err := eng.HasCapacity(z.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = eng.HasCapacity("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHygieneAverageIsContainmentMean(t *testing.T) {
	eng := newTestEngine()
	z, _, err := eng.UpsertZone(connaughtPlace())
	require.NoError(t, err)

	scores := []int{1, 2, 2}
	for i, s := range scores {
		_, _, err := eng.RegisterVendor(vendorAt(fmt.Sprint(i), cpLat, cpLng+float64(i)*0.0001, s))
		require.NoError(t, err)
	}
	// An overridden vendor still counts: aggregation follows geometry only.
	v, _, err := eng.RegisterVendor(vendorAt("locked", cpLat, cpLng, 5))
	require.NoError(t, err)
	_, _, err = eng.OverrideVendorStatus(v.ID, model.VendorIllegal)
	require.NoError(t, err)

	got, _ := eng.GetZone(z.ID)
	assert.Equal(t, 4, got.CurrentVendors)
	require.NotNil(t, got.HygieneAvg)
	assert.InDelta(t, 10.0/4.0, *got.HygieneAvg, 1e-12)
}

func TestIncrementalMembershipMatchesFullRecompute(t *testing.T) {
	eng := newTestEngine()
	for i, st := range []model.ZoneStatus{model.ZoneLegal, model.ZoneRestricted, model.ZonePendingApproval} {
		_, _, err := eng.UpsertZone(model.Zone{
			Name:        fmt.Sprintf("zone-%d", i),
			Status:      st,
			Coordinates: squareCoords(float64(i)*0.5, 0, 0.4),
			MaxVendors:  3,
		})
		require.NoError(t, err)
	}
	var ids []string
	for i := 0; i < 12; i++ {
		v, _, err := eng.RegisterVendor(vendorAt(fmt.Sprint(i), float64(i%6)*0.2, float64(i%3)*0.1, i%5+1))
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	for i, id := range ids {
		lat, score := float64((i*7)%9)*0.15, (i*3)%5+1
		_, _, err := eng.UpdateVendor(id, model.VendorPatch{Latitude: &lat, HygieneScore: &score})
		require.NoError(t, err)
	}

	incrementalZones, incrementalVendors := eng.ListZones(), eng.ListVendors()
	ch := eng.RecomputeMembership()
	assert.True(t, ch.Empty(), "full recompute found drift: %+v", ch)
	assert.Equal(t, incrementalZones, eng.ListZones())
	assert.Equal(t, incrementalVendors, eng.ListVendors())

	// Cross-check against geometry directly.
	for _, z := range eng.ListZones() {
		poly := geo.DecodePolygon(z.Coordinates)
		count, sum := 0, 0
		for _, v := range eng.ListVendors() {
			if geo.PointInPolygon(geo.Point{Lat: v.Latitude, Lng: v.Longitude}, poly) {
				count++
				sum += v.HygieneScore
			}
		}
		assert.Equal(t, count, z.CurrentVendors, z.Name)
		if count == 0 {
			assert.Nil(t, z.HygieneAvg, z.Name)
		} else if assert.NotNil(t, z.HygieneAvg, z.Name) {
			assert.InDelta(t, float64(sum)/float64(count), *z.HygieneAvg, 1e-12, z.Name)
		}
	}
}

func TestRegisterVendorValidation(t *testing.T) {
	eng := newTestEngine()
	_, _, err := eng.RegisterVendor(vendorAt("1", 0, 0, 3))
	require.NoError(t, err)

	cases := map[string]model.Vendor{
		"no name":        func() model.Vendor { v := vendorAt("2", 0, 0, 3); v.Name = ""; return v }(),
		"no phone":       vendorAt("", 0, 0, 3),
		"bad food":       func() model.Vendor { v := vendorAt("2", 0, 0, 3); v.FoodType = "pizza"; return v }(),
		"lat range":      vendorAt("2", 91, 0, 3),
		"score zero":     vendorAt("2", 0, 0, 0),
		"score six":      vendorAt("2", 0, 0, 6),
		"duplicate":      vendorAt("1", 0, 0, 3),
		"locked no stat": func() model.Vendor { v := vendorAt("2", 0, 0, 3); v.StatusLocked = true; return v }(),
	}
	for name, v := range cases {
		_, ch, err := eng.RegisterVendor(v)
		assert.ErrorIs(t, err, ErrValidation, name)
		assert.True(t, ch.Empty(), name)
	}
	assert.Len(t, eng.ListVendors(), 1)
}

func TestRegisterLockedVendorKeepsStatus(t *testing.T) {
	eng := newTestEngine()
	_, _, err := eng.UpsertZone(connaughtPlace())
	require.NoError(t, err)

	v := vendorAt("1", cpLat, cpLng, 3)
	v.StatusLocked, v.ZoneStatus = true, model.VendorPending
	got, _, err := eng.RegisterVendor(v)
	require.NoError(t, err)
	assert.Equal(t, model.VendorPending, got.ZoneStatus)
	assert.NotEmpty(t, got.ZoneID)

	got, _, err = eng.ClearVendorOverride(got.ID)
	require.NoError(t, err)
	assert.False(t, got.StatusLocked)
	assert.Equal(t, model.VendorLegal, got.ZoneStatus)
}

func TestOverrideSurvivesZoneChanges(t *testing.T) {
	eng := newTestEngine()
	z, _, err := eng.UpsertZone(connaughtPlace())
	require.NoError(t, err)
	v, _, err := eng.RegisterVendor(vendorAt("1", cpLat, cpLng, 3))
	require.NoError(t, err)

	_, _, err = eng.OverrideVendorStatus(v.ID, model.VendorRelocateRequired)
	require.NoError(t, err)
	z.Status = model.ZonePendingApproval
	_, _, err = eng.UpsertZone(z)
	require.NoError(t, err)

	v, _ = eng.GetVendor(v.ID)
	assert.Equal(t, model.VendorRelocateRequired, v.ZoneStatus)
	assert.True(t, v.StatusLocked)

	_, _, err = eng.OverrideVendorStatus(v.ID, "banned")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLookupByPhoneIsExact(t *testing.T) {
	eng := newTestEngine()
	v, _, err := eng.RegisterVendor(vendorAt("+91 98100 00001", 0, 0, 3))
	require.NoError(t, err)

	got, err := eng.LookupByPhone("+91 98100 00001")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = eng.LookupByPhone("919810000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateVendorPhoneReindexes(t *testing.T) {
	eng := newTestEngine()
	a, _, _ := eng.RegisterVendor(vendorAt("1", 0, 0, 3))
	_, _, _ = eng.RegisterVendor(vendorAt("2", 0, 0, 3))

	taken := "2"
	_, _, err := eng.UpdateVendor(a.ID, model.VendorPatch{Phone: &taken})
	assert.ErrorIs(t, err, ErrValidation)

	fresh := "3"
	_, _, err = eng.UpdateVendor(a.ID, model.VendorPatch{Phone: &fresh})
	require.NoError(t, err)
	_, err = eng.LookupByPhone("1")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := eng.LookupByPhone("3")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, _, err = eng.UpdateVendor("missing", model.VendorPatch{Phone: &fresh})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementComplaintCountTwice(t *testing.T) {
	eng := newTestEngine()
	v, _, _ := eng.RegisterVendor(vendorAt("1", 0, 0, 3))

	_, _, err := eng.IncrementComplaintCount(v.ID)
	require.NoError(t, err)
	got, ch, err := eng.IncrementComplaintCount(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalComplaints)
	require.Len(t, ch.Vendors, 1)
	assert.Equal(t, 2, ch.Vendors[0].TotalComplaints)

	_, _, err = eng.IncrementComplaintCount("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordInspection(t *testing.T) {
	eng := newTestEngine()
	z, _, _ := eng.UpsertZone(connaughtPlace())
	v, _, _ := eng.RegisterVendor(vendorAt("1", cpLat, cpLng, 2))

	at := time.Date(2025, 2, 1, 15, 4, 0, 0, time.UTC)
	v, _, err := eng.RecordInspection(v.ID, at, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v.HygieneScore)
	require.NotNil(t, v.LastInspection)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), *v.LastInspection)

	z, _ = eng.GetZone(z.ID)
	require.NotNil(t, z.HygieneAvg)
	assert.Equal(t, 5.0, *z.HygieneAvg)

	_, _, err = eng.RecordInspection(v.ID, at, 9)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = eng.RecordInspection(v.ID, time.Time{}, 3)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFilterVendors(t *testing.T) {
	eng := newTestEngine()
	_, _, _ = eng.UpsertZone(connaughtPlace())
	a, _, _ := eng.RegisterVendor(vendorAt("1", cpLat, cpLng, 3))
	b := vendorAt("2", 10, 10, 3)
	b.FoodType, b.Verified = model.FoodJuice, true
	_, _, _ = eng.RegisterVendor(b)

	legal := eng.FilterVendors(VendorFilter{ZoneStatus: model.VendorLegal})
	require.Len(t, legal, 1)
	assert.Equal(t, a.ID, legal[0].ID)

	yes := true
	assert.Len(t, eng.FilterVendors(VendorFilter{Verified: &yes}), 1)
	assert.Len(t, eng.FilterVendors(VendorFilter{FoodType: model.FoodJuice}), 1)
	assert.Len(t, eng.FilterVendors(VendorFilter{}), 2)
	assert.Len(t, eng.AtRiskVendors(), 1)
}

func TestLoadRecomputesDerivedFields(t *testing.T) {
	eng := newTestEngine()
	stale := 1.0
	zone := connaughtPlace()
	zone.ID, zone.CurrentVendors, zone.HygieneAvg = "z1", 7, &stale
	bad := model.Zone{ID: "z2", Name: "Broken", Status: model.ZoneLegal, Coordinates: "[]"}

	v1 := vendorAt("1", cpLat, cpLng, 4)
	v1.ID, v1.ZoneStatus = "v1", model.VendorIllegal
	v2 := vendorAt("2", 50, 50, 2)
	v2.ID, v2.ZoneStatus = "v2", model.VendorIllegal
	dup := vendorAt("1", 0, 0, 3)
	dup.ID, dup.CreatedDate = "v3", testNow

	r := model.HygieneReport{ID: "r1", VendorID: "v1", IssueType: model.IssueOther, Description: "x",
		Severity: model.SeverityLow, Status: model.ReportInvestigating, Latitude: cpLat, Longitude: cpLng}

	ch := eng.Load([]model.Zone{zone, bad}, []model.Vendor{v1, v2, dup}, []model.HygieneReport{r})

	require.Len(t, ch.Zones, 1)
	assert.Equal(t, 1, ch.Zones[0].CurrentVendors)
	require.Len(t, ch.Vendors, 1, "only v1 was stale")
	assert.Equal(t, model.VendorLegal, ch.Vendors[0].ZoneStatus)
	assert.Empty(t, ch.Reports)

	assert.Len(t, eng.ListZones(), 1)
	assert.Len(t, eng.ListVendors(), 2)
	got, err := eng.GetReport("r1")
	require.NoError(t, err)
	assert.Equal(t, model.ReportInvestigating, got.Status)
}

func TestLoadSkipsMissingAndDuplicateIDs(t *testing.T) {
	var logs bytes.Buffer
	eng := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))), WithClock(func() time.Time { return testNow }))

	first := connaughtPlace()
	first.ID = "z1"
	again := connaughtPlace()
	again.ID, again.Name = "z1", "Connaught Place (copy)"
	noID := connaughtPlace()
	noID.Name = "Unsaved"

	v := vendorAt("1", cpLat, cpLng, 4)
	v.ID = "v1"
	vAgain := vendorAt("2", cpLat, cpLng, 2)
	vAgain.ID = "v1"

	r := model.HygieneReport{ID: "r1", IssueType: model.IssueOther, Description: "x",
		Severity: model.SeverityLow, Status: model.ReportOpen, Latitude: cpLat, Longitude: cpLng}

	eng.Load([]model.Zone{first, again, noID}, []model.Vendor{v, vAgain}, []model.HygieneReport{r, r})

	zones := eng.ListZones()
	require.Len(t, zones, 1)
	assert.Equal(t, "Connaught Place", zones[0].Name, "first occurrence wins")
	assert.Equal(t, 1, zones[0].CurrentVendors)
	assert.Len(t, eng.ListVendors(), 1)
	assert.Len(t, eng.ListReports(), 1)

	assert.Contains(t, logs.String(), "skipping zone without id")
	assert.Contains(t, logs.String(), "skipping duplicate zone id")
	assert.NotContains(t, logs.String(), "err=<nil>")
}
