package api

import (
	"net/http"
	"strings"

	"vendzone/internal/engine"
	"vendzone/internal/model"
)

// VendorsHandler handles GET/POST /v1/vendors
func (s *Server) VendorsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f, err := vendorFilterOf(r.URL.Query())
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, items(s.Engine.FilterVendors(f)))
	case http.MethodPost:
		var req vendorRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		vendor, err := req.vendor()
		if err != nil {
			s.writeError(w, r, "register_vendor", err)
			return
		}
		v, err := s.vendorOp(r, func() (model.Vendor, engine.Changes, error) {
			return s.Engine.RegisterVendor(vendor)
		})
		if err != nil {
			s.writeError(w, r, "register_vendor", err)
			return
		}
		s.log.Info("vendor registered", "vendor_id", v.ID, "zone_id", v.ZoneID, "zone_status", v.ZoneStatus)
		writeJSON(w, http.StatusCreated, v)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// VendorByIDHandler handles /v1/vendors/{id} and its sub-resources, plus the
// portal and admin views /lookup, /profile, /at-risk and /risk.
func (s *Server) VendorByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.Trim(strings.TrimPrefix(path, "/v1/vendors/"), "/")
	if rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	if len(parts) == 1 {
		switch parts[0] {
		case "lookup", "profile", "at-risk", "risk":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			s.vendorView(w, r, parts[0])
			return
		}
	}
	if len(parts) > 2 {
		writeProblem(w, http.StatusNotFound, "Not Found", "", path)
		return
	}
	id := parts[0]

	if len(parts) == 2 {
		switch parts[1] {
		case "override":
			s.vendorOverride(w, r, id)
		case "inspections":
			s.vendorInspection(w, r, id)
		case "complaints":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			v, err := s.vendorOp(r, func() (model.Vendor, engine.Changes, error) {
				return s.Engine.IncrementComplaintCount(id)
			})
			if err != nil {
				s.writeError(w, r, "increment_complaints", err)
				return
			}
			writeJSON(w, http.StatusOK, v)
		default:
			writeProblem(w, http.StatusNotFound, "Not Found", "", path)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := s.Engine.GetVendor(id)
		if err != nil {
			s.writeError(w, r, "get_vendor", err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case http.MethodPatch:
		var req vendorPatchRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), path)
			return
		}
		v, err := s.vendorOp(r, func() (model.Vendor, engine.Changes, error) {
			return s.Engine.UpdateVendor(id, req.patch())
		})
		if err != nil {
			s.writeError(w, r, "update_vendor", err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPatch)
	}
}

func (s *Server) vendorView(w http.ResponseWriter, r *http.Request, view string) {
	switch view {
	case "lookup":
		phone := strings.TrimSpace(r.URL.Query().Get("phone"))
		if phone == "" {
			writeProblem(w, http.StatusBadRequest, "Missing phone", "", r.URL.Path)
			return
		}
		v, err := s.Engine.LookupByPhone(phone)
		if err != nil {
			s.writeError(w, r, "lookup_vendor", err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case "profile":
		phone := strings.TrimSpace(r.URL.Query().Get("phone"))
		if phone == "" {
			writeProblem(w, http.StatusBadRequest, "Missing phone", "", r.URL.Path)
			return
		}
		p, err := s.Engine.VendorProfile(phone)
		if err != nil {
			s.writeError(w, r, "vendor_profile", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case "at-risk":
		writeJSON(w, http.StatusOK, items(s.Engine.AtRiskVendors()))
	case "risk":
		writeJSON(w, http.StatusOK, items(s.Engine.VendorRisk()))
	}
}

// vendorOverride handles POST (set) and DELETE (clear) /v1/vendors/{id}/override
func (s *Server) vendorOverride(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		var req overrideRequest
		if err := decode(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		v, err := s.vendorOp(r, func() (model.Vendor, engine.Changes, error) {
			return s.Engine.OverrideVendorStatus(id, req.ZoneStatus)
		})
		if err != nil {
			s.writeError(w, r, "override_vendor", err)
			return
		}
		s.log.Info("vendor status overridden", "vendor_id", id, "zone_status", v.ZoneStatus)
		writeJSON(w, http.StatusOK, v)
	case http.MethodDelete:
		v, err := s.vendorOp(r, func() (model.Vendor, engine.Changes, error) {
			return s.Engine.ClearVendorOverride(id)
		})
		if err != nil {
			s.writeError(w, r, "clear_override", err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	default:
		methodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

// vendorInspection handles POST /v1/vendors/{id}/inspections
func (s *Server) vendorInspection(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req inspectionRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	at := s.now()
	if req.InspectedAt != nil {
		at = *req.InspectedAt
	}
	v, err := s.vendorOp(r, func() (model.Vendor, engine.Changes, error) {
		return s.Engine.RecordInspection(id, at, req.HygieneScore)
	})
	if err != nil {
		s.writeError(w, r, "record_inspection", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// vendorOp runs a vendor mutation through apply and hands back the vendor.
func (s *Server) vendorOp(r *http.Request, op func() (model.Vendor, engine.Changes, error)) (model.Vendor, error) {
	var v model.Vendor
	err := s.apply(r.Context(), func() (engine.Changes, error) {
		var (
			ch  engine.Changes
			err error
		)
		v, ch, err = op()
		return ch, err
	})
	return v, err
}
