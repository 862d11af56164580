package api

import (
	"net/http"
	"strings"

	"vendzone/internal/engine"
	"vendzone/internal/model"
)

// ZonesHandler handles GET/POST /v1/zones
func (s *Server) ZonesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if q.Has("lat") || q.Has("lng") {
			pt, err := pointOf(q)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid location", err.Error(), r.URL.Path)
				return
			}
			writeJSON(w, http.StatusOK, items(s.Engine.ZonesAt(pt)))
			return
		}
		f, err := zoneFilterOf(q)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, items(s.Engine.FilterZones(f)))
	case http.MethodPost:
		var req zoneRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		var z model.Zone
		err := s.apply(r.Context(), func() (engine.Changes, error) {
			var (
				ch  engine.Changes
				err error
			)
			z, ch, err = s.Engine.UpsertZone(req.zone(""))
			return ch, err
		})
		if err != nil {
			s.writeError(w, r, "upsert_zone", err)
			return
		}
		s.log.Info("zone created", "zone_id", z.ID, "status", z.Status, "current_vendors", z.CurrentVendors)
		writeJSON(w, http.StatusCreated, z)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// ZoneByIDHandler handles GET/PUT /v1/zones/{id}, GET /v1/zones/{id}/capacity
// and the collection views /v1/zones/occupancy and /v1/zones/severity.
func (s *Server) ZoneByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.Trim(strings.TrimPrefix(path, "/v1/zones/"), "/")
	if rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] == "occupancy":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, items(s.Engine.ZoneOccupancy()))
		return
	case len(parts) == 1 && parts[0] == "severity":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, items(s.Engine.ZoneSeverity()))
		return
	case len(parts) == 2 && parts[1] == "capacity":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		ok, err := s.Engine.HasCapacity(parts[0])
		if err != nil {
			s.writeError(w, r, "zone_capacity", err)
			return
		}
		fill, _ := s.Engine.ZoneFill(parts[0])
		writeJSON(w, http.StatusOK, map[string]any{"has_capacity": ok, "fill": fill})
		return
	case len(parts) > 1:
		writeProblem(w, http.StatusNotFound, "Not Found", "", path)
		return
	}

	id := parts[0]
	switch r.Method {
	case http.MethodGet:
		z, err := s.Engine.GetZone(id)
		if err != nil {
			s.writeError(w, r, "get_zone", err)
			return
		}
		writeJSON(w, http.StatusOK, z)
	case http.MethodPut:
		var req zoneRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), path)
			return
		}
		var (
			z       model.Zone
			created bool
		)
		err := s.apply(r.Context(), func() (engine.Changes, error) {
			_, gerr := s.Engine.GetZone(id)
			created = gerr != nil
			var (
				ch  engine.Changes
				err error
			)
			z, ch, err = s.Engine.UpsertZone(req.zone(id))
			return ch, err
		})
		if err != nil {
			s.writeError(w, r, "upsert_zone", err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, z)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
