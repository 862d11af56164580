package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"vendzone/internal/engine"
	"vendzone/internal/model"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, route, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	VendorsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "vendzone_vendors", Help: "Registered vendors by derived zone status."},
		[]string{"zone_status"},
	)
	ZoneOccupancy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "vendzone_zone_vendors", Help: "Vendors currently inside each zone."},
		[]string{"zone_id", "zone"},
	)
	ZonesFull = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "vendzone_zones_full", Help: "Capped zones at or over their vendor cap."},
	)
	OpenReports = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "vendzone_open_reports", Help: "Open hygiene reports by severity."},
		[]string{"severity"},
	)

	// ReportSubmissions counts accepted citizen reports by severity
	ReportSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vendzone_report_submissions_total", Help: "Hygiene reports submitted."},
		[]string{"severity"},
	)
	// ReportTransitions counts lifecycle moves by target status
	ReportTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vendzone_report_transitions_total", Help: "Hygiene report status transitions."},
		[]string{"to"},
	)
	// Rejections counts engine errors by kind (validation, invalid_geometry, ...)
	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vendzone_rejections_total", Help: "Operations rejected by the engine."},
		[]string{"operation", "kind"},
	)
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests, HTTPDuration)
		Registry.MustRegister(VendorsByStatus, ZoneOccupancy, ZonesFull, OpenReports)
		Registry.MustRegister(ReportSubmissions, ReportTransitions, Rejections)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// Observe refreshes the domain gauges from one engine read (Engine.Gauges).
func Observe(g engine.Gauges) {
	for status, n := range g.Stats.VendorsByStatus {
		VendorsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
	ZonesFull.Set(float64(g.Stats.FullZones))

	ZoneOccupancy.Reset()
	for _, f := range g.Occupancy {
		ZoneOccupancy.WithLabelValues(f.ZoneID, f.Name).Set(float64(f.Current))
	}

	bySeverity := map[model.Severity]int{}
	for _, r := range g.Open {
		bySeverity[r.Severity]++
	}
	for _, s := range model.Severities() {
		OpenReports.WithLabelValues(string(s)).Set(float64(bySeverity[s]))
	}
}
