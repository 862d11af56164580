package api

import (
	"net/http"
	"strings"

	"vendzone/internal/engine"
	"vendzone/internal/metrics"
	"vendzone/internal/model"
)

// ReportsHandler handles GET/POST /v1/reports
func (s *Server) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f, err := reportFilterOf(r.URL.Query())
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, items(s.Engine.FilterReports(f)))
	case http.MethodPost:
		if !s.limiter.allow(r) {
			w.Header().Set("Retry-After", "1")
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "report submission rate exceeded", r.URL.Path)
			return
		}
		var req reportRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		submitted, err := req.report()
		if err != nil {
			s.writeError(w, r, "submit_report", err)
			return
		}
		rep, err := s.reportOp(r, func() (model.HygieneReport, engine.Changes, error) {
			return s.Engine.Submit(submitted)
		})
		if err != nil {
			s.writeError(w, r, "submit_report", err)
			return
		}
		metrics.ReportSubmissions.WithLabelValues(string(rep.Severity)).Inc()
		s.log.Info("report submitted", "report_id", rep.ID, "vendor_id", rep.VendorID, "severity", rep.Severity)
		writeJSON(w, http.StatusCreated, rep)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// ReportByIDHandler handles GET /v1/reports/{id}, POST /v1/reports/{id}/transition,
// POST /v1/reports/{id}/reopen and the /open and /critical queues.
func (s *Server) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.Trim(strings.TrimPrefix(path, "/v1/reports/"), "/")
	if rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 2 {
		writeProblem(w, http.StatusNotFound, "Not Found", "", path)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		switch parts[0] {
		case "open":
			writeJSON(w, http.StatusOK, items(s.Engine.OpenReports()))
		case "critical":
			writeJSON(w, http.StatusOK, items(s.Engine.CriticalOpenReports()))
		default:
			rep, err := s.Engine.GetReport(parts[0])
			if err != nil {
				s.writeError(w, r, "get_report", err)
				return
			}
			writeJSON(w, http.StatusOK, rep)
		}
		return
	}

	id := parts[0]
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	switch parts[1] {
	case "transition":
		var req transitionRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), path)
			return
		}
		rep, err := s.reportOp(r, func() (model.HygieneReport, engine.Changes, error) {
			return s.Engine.Transition(id, req.Status)
		})
		if err != nil {
			s.writeError(w, r, "transition_report", err)
			return
		}
		metrics.ReportTransitions.WithLabelValues(string(rep.Status)).Inc()
		s.log.Info("report transitioned", "report_id", id, "status", rep.Status)
		writeJSON(w, http.StatusOK, rep)
	case "reopen":
		rep, err := s.reportOp(r, func() (model.HygieneReport, engine.Changes, error) {
			return s.Engine.Reopen(id)
		})
		if err != nil {
			s.writeError(w, r, "reopen_report", err)
			return
		}
		metrics.ReportTransitions.WithLabelValues(string(rep.Status)).Inc()
		writeJSON(w, http.StatusOK, rep)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", path)
	}
}

func (s *Server) reportOp(r *http.Request, op func() (model.HygieneReport, engine.Changes, error)) (model.HygieneReport, error) {
	var rep model.HygieneReport
	err := s.apply(r.Context(), func() (engine.Changes, error) {
		var (
			ch  engine.Changes
			err error
		)
		rep, ch, err = op()
		return ch, err
	})
	return rep, err
}
