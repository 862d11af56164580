package api

import (
	"net/http"
	"time"

	"vendzone/internal/buildinfo"
)

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  s.now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"PORT":             s.cfg.Port,
			"LOG_LEVEL":        s.cfg.Log.Level,
			"LOG_FORMAT":       s.cfg.Log.Format,
			"RATE_RPS":         s.cfg.Rate.RPS,
			"RATE_BURST":       s.cfg.Rate.Burst,
			"DB_MIGRATE":       s.cfg.Migrate,
			"HAS_DATABASE_URL": s.cfg.DatabaseURL != "",
			"HAS_REDIS_URL":    s.cfg.RedisURL != "",
			"MEDIA_ENABLED":    s.Uploader.Enabled(),
		},
	}
	writeJSON(w, http.StatusOK, info)
}
