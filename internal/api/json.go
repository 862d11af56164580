package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"vendzone/internal/engine"
	"vendzone/internal/metrics"
	"vendzone/internal/store"
)

// Problem represents an RFC7807 problem details response body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// writeError maps an engine or store error onto a problem document and counts
// the rejection under op.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		status int
		title  string
		pe     errPersist
	)
	switch {
	case errors.As(err, &pe):
		status, title = http.StatusInternalServerError, "Persist failed"
	case errors.Is(err, engine.ErrValidation):
		status, title = http.StatusBadRequest, "Validation failed"
	case errors.Is(err, engine.ErrInvalidGeometry):
		status, title = http.StatusUnprocessableEntity, "Invalid geometry"
	case errors.Is(err, engine.ErrInvalidTransition):
		status, title = http.StatusConflict, "Invalid transition"
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status, title = http.StatusNotFound, "Not Found"
	default:
		status, title = http.StatusInternalServerError, "Internal error"
	}
	metrics.Rejections.WithLabelValues(op, engine.Kind(err)).Inc()
	if status >= 500 {
		s.log.Error(op+" failed", "err", err, "path", r.URL.Path)
	}
	writeProblem(w, status, title, err.Error(), r.URL.Path)
}

// items wraps a list response, never encoding a nil slice as null.
func items[T any](list []T) map[string]any {
	if list == nil {
		list = []T{}
	}
	return map[string]any{"items": list}
}

func methodNotAllowed(w http.ResponseWriter, allow ...string) {
	for _, m := range allow {
		w.Header().Add("Allow", m)
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}
