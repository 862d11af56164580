package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vendzone/internal/media"
	"vendzone/internal/metrics"
)

// StatsHandler handles GET /v1/stats, the admin dashboard counters.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Stats())
}

// MapHandler handles GET /v1/map
func (s *Server) MapHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.MapView())
}

// MediaHandler handles POST /v1/media: a multipart "photo" part is handed to
// object storage and its URL returned for use as a report photo_url.
func (s *Server) MediaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if !s.Uploader.Enabled() {
		writeProblem(w, http.StatusServiceUnavailable, "Uploads disabled", media.ErrUploadsDisabled.Error(), r.URL.Path)
		return
	}
	if !s.limiter.allow(r) {
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "upload rate exceeded", r.URL.Path)
		return
	}
	limit := s.cfg.Media.MaxBytes
	if limit <= 0 {
		limit = 8 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	file, hdr, err := r.FormFile("photo")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Missing photo", err.Error(), r.URL.Path)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := s.Uploader.Upload(r.Context(), hdr.Filename, hdr.Header.Get("Content-Type"), file)
	switch {
	case errors.Is(err, media.ErrContentType):
		writeProblem(w, http.StatusUnsupportedMediaType, "Unsupported photo", err.Error(), r.URL.Path)
		return
	case errors.Is(err, media.ErrTooLarge):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Photo too large", err.Error(), r.URL.Path)
		return
	case err != nil:
		s.log.Error("photo upload failed", "err", err)
		writeProblem(w, http.StatusBadGateway, "Upload failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
		return
	}
	type pinger interface{ Ping(ctx context.Context) error }
	if pb, ok := s.Broker.(pinger); ok {
		if err := pb.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "broker: "+err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// observe refreshes the domain gauges after a mutation.
func (s *Server) observe() {
	metrics.Observe(s.Engine.Gauges())
}

func (s *Server) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}
