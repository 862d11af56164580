package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"vendzone/internal/config"
	"vendzone/internal/engine"
	"vendzone/internal/media"
	"vendzone/internal/store"
)

type Server struct {
	Engine   *engine.Engine
	Store    store.Store
	Broker   EventBroker
	Uploader media.Uploader

	cfg     config.Config
	log     *slog.Logger
	limiter *clientLimiter
	clock   func() time.Time

	// writeMu keeps the store in the same order as the engine: an engine call
	// and the persistence of its Changes happen as one unit.
	writeMu sync.Mutex
}

// NewServer builds the service from cfg. Without a DATABASE_URL the records
// live in memory; with a REDIS_URL events fan out across replicas.
func NewServer(ctx context.Context, cfg config.Config, log *slog.Logger) (*Server, error) {
	var st store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		st = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Migrate {
			if err := sp.MigrateDir(cfg.MigrateDir); err != nil {
				_ = sp.Close()
				return nil, err
			}
		}
		st = sp
	}

	var broker EventBroker = NewBroker()
	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.RedisURL)
		if err != nil {
			log.Warn("redis broker unavailable, using in-process events", "err", err)
		} else {
			broker = rb
		}
	}

	up, err := media.New(ctx, cfg.Media)
	if err != nil {
		return nil, err
	}

	s := newServer(engine.New(engine.WithLogger(log)), st, broker, up, cfg, log)
	if err := s.Hydrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return s, nil
}

func newServer(eng *engine.Engine, st store.Store, broker EventBroker, up media.Uploader, cfg config.Config, log *slog.Logger) *Server {
	return &Server{
		Engine:   eng,
		Store:    st,
		Broker:   broker,
		Uploader: up,
		cfg:      cfg,
		log:      log,
		limiter:  newClientLimiter(cfg.Rate),
	}
}

// Hydrate loads every stored record into the engine and writes back whatever
// the engine had to re-derive.
func (s *Server) Hydrate(ctx context.Context) error {
	zones, err := s.Store.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("load zones: %w", err)
	}
	vendors, err := s.Store.ListVendors(ctx)
	if err != nil {
		return fmt.Errorf("load vendors: %w", err)
	}
	reports, err := s.Store.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	stale := s.Engine.Load(zones, vendors, reports)
	s.log.Info("engine hydrated",
		"zones", len(zones), "vendors", len(vendors), "reports", len(reports),
		"rederived_zones", len(stale.Zones), "rederived_vendors", len(stale.Vendors))
	return s.persist(ctx, stale)
}

// Routes returns the service mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/zones", s.ZonesHandler)
	mux.HandleFunc("/v1/zones/", s.ZoneByIDHandler) // includes /capacity, /occupancy, /severity

	mux.HandleFunc("/v1/vendors", s.VendorsHandler)
	mux.HandleFunc("/v1/vendors/", s.VendorByIDHandler) // includes /lookup, /at-risk, /profile, /{id}/override, /{id}/inspections

	mux.HandleFunc("/v1/reports", s.ReportsHandler)
	mux.HandleFunc("/v1/reports/", s.ReportByIDHandler) // includes /open, /critical, /{id}/transition, /{id}/reopen

	mux.HandleFunc("/v1/stats", s.StatsHandler)
	mux.HandleFunc("/v1/map", s.MapHandler)
	mux.HandleFunc("/v1/media", s.MediaHandler)

	mux.HandleFunc("/v1/events/stream", s.EventStreamHandler)
	mux.HandleFunc("/v1/events/ws", s.FeedWSHandler)

	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.HandleFunc("/debug/info", s.DebugJSON)
	mux.Handle("/metrics", metricsHandler())

	return metricsMiddleware(mux)
}

func (s *Server) Close() error { return s.Store.Close() }
