package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"vendzone/internal/engine"
	"vendzone/internal/model"
)

func TestObserve(t *testing.T) {
	RegisterDefault()
	RegisterDefault()

	stats := engine.Stats{
		VendorsByStatus: map[model.VendorZoneStatus]int{model.VendorLegal: 3, model.VendorIllegal: 1},
		FullZones:       2,
	}
	occ := []engine.ZoneFill{{ZoneID: "z1", Name: "Connaught Place", Current: 3}}
	open := []model.HygieneReport{{Severity: model.SeverityCritical}, {Severity: model.SeverityCritical}, {Severity: model.SeverityLow}}

	Observe(engine.Gauges{Stats: stats, Occupancy: occ, Open: open})

	assert.Equal(t, 3.0, testutil.ToFloat64(VendorsByStatus.WithLabelValues("legal")))
	assert.Equal(t, 2.0, testutil.ToFloat64(ZonesFull))
	assert.Equal(t, 3.0, testutil.ToFloat64(ZoneOccupancy.WithLabelValues("z1", "Connaught Place")))
	assert.Equal(t, 2.0, testutil.ToFloat64(OpenReports.WithLabelValues("critical")))
	assert.Equal(t, 0.0, testutil.ToFloat64(OpenReports.WithLabelValues("high")))
}
