package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vendzone/internal/engine"
	"vendzone/internal/geo"
	"vendzone/internal/model"
)

const maxBody = 1 << 20

// decode reads a JSON body of at most maxBody bytes. Unknown fields, derived
// ones included, are ignored.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
}

// flexFloat accepts a JSON number or a numeric string. The citizen report form
// posts coordinates as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// coordinates requires both values. JSON null and an absent key both decode to
// nil and are rejected rather than read as 0.
func coordinates(lat, lng *flexFloat) (float64, float64, error) {
	switch {
	case lat == nil && lng == nil:
		return 0, 0, fmt.Errorf("%w: latitude and longitude are required", engine.ErrValidation)
	case lat == nil:
		return 0, 0, fmt.Errorf("%w: latitude is required", engine.ErrValidation)
	case lng == nil:
		return 0, 0, fmt.Errorf("%w: longitude is required", engine.ErrValidation)
	}
	return float64(*lat), float64(*lng), nil
}

type zoneRequest struct {
	Name             string           `json:"name"`
	Area             string           `json:"area"`
	Status           model.ZoneStatus `json:"status"`
	Coordinates      string           `json:"coordinates"`
	Polygon          [][2]float64     `json:"polygon"`
	MaxVendors       int              `json:"max_vendors"`
	Restrictions     string           `json:"restrictions"`
	NotificationDate *time.Time       `json:"notification_date"`
}

func (q zoneRequest) zone(id string) model.Zone {
	coords := q.Coordinates
	if coords == "" && len(q.Polygon) > 0 {
		poly := make(geo.Polygon, len(q.Polygon))
		for i, p := range q.Polygon {
			poly[i] = geo.Point{Lat: p[0], Lng: p[1]}
		}
		coords = geo.EncodePolygon(poly)
	}
	return model.Zone{
		ID:               id,
		Name:             q.Name,
		Area:             q.Area,
		Status:           q.Status,
		Coordinates:      coords,
		MaxVendors:       q.MaxVendors,
		Restrictions:     q.Restrictions,
		NotificationDate: q.NotificationDate,
	}
}

type vendorRequest struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	BusinessName  string                 `json:"business_name"`
	Phone         string                 `json:"phone"`
	FoodType      model.FoodType         `json:"food_type"`
	Latitude      *flexFloat             `json:"latitude"`
	Longitude     *flexFloat             `json:"longitude"`
	HygieneScore  int                    `json:"hygiene_score"`
	LicenseNumber string                 `json:"license_number"`
	Address       string                 `json:"address"`
	Area          string                 `json:"area"`
	Verified      bool                   `json:"verified"`
	ZoneStatus    model.VendorZoneStatus `json:"zone_status"`
	StatusLocked  bool                   `json:"status_locked"`
}

func (q vendorRequest) vendor() (model.Vendor, error) {
	lat, lng, err := coordinates(q.Latitude, q.Longitude)
	if err != nil {
		return model.Vendor{}, err
	}
	v := model.Vendor{
		ID:            q.ID,
		Name:          q.Name,
		BusinessName:  q.BusinessName,
		Phone:         strings.TrimSpace(q.Phone),
		FoodType:      q.FoodType,
		Latitude:      lat,
		Longitude:     lng,
		HygieneScore:  q.HygieneScore,
		LicenseNumber: q.LicenseNumber,
		Address:       q.Address,
		Area:          q.Area,
		Verified:      q.Verified,
		StatusLocked:  q.StatusLocked,
	}
	if q.StatusLocked {
		v.ZoneStatus = q.ZoneStatus
	}
	return v, nil
}

type vendorPatchRequest struct {
	Name           *string         `json:"name"`
	BusinessName   *string         `json:"business_name"`
	Phone          *string         `json:"phone"`
	FoodType       *model.FoodType `json:"food_type"`
	Latitude       *flexFloat      `json:"latitude"`
	Longitude      *flexFloat      `json:"longitude"`
	HygieneScore   *int            `json:"hygiene_score"`
	LicenseNumber  *string         `json:"license_number"`
	Address        *string         `json:"address"`
	Area           *string         `json:"area"`
	Verified       *bool           `json:"verified"`
	LastInspection *time.Time      `json:"last_inspection"`
}

func (q vendorPatchRequest) patch() model.VendorPatch {
	return model.VendorPatch{
		Name:           q.Name,
		BusinessName:   q.BusinessName,
		Phone:          q.Phone,
		FoodType:       q.FoodType,
		Latitude:       q.Latitude.ptr(),
		Longitude:      q.Longitude.ptr(),
		HygieneScore:   q.HygieneScore,
		LicenseNumber:  q.LicenseNumber,
		Address:        q.Address,
		Area:           q.Area,
		Verified:       q.Verified,
		LastInspection: q.LastInspection,
	}
}

type reportRequest struct {
	VendorID      string          `json:"vendor_id"`
	ReporterName  string          `json:"reporter_name"`
	ReporterPhone string          `json:"reporter_phone"`
	IssueType     model.IssueType `json:"issue_type"`
	Description   string          `json:"description"`
	Severity      model.Severity  `json:"severity"`
	Latitude      *flexFloat      `json:"latitude"`
	Longitude     *flexFloat      `json:"longitude"`
	PhotoURL      string          `json:"photo_url"`
}

func (q reportRequest) report() (model.HygieneReport, error) {
	lat, lng, err := coordinates(q.Latitude, q.Longitude)
	if err != nil {
		return model.HygieneReport{}, err
	}
	return model.HygieneReport{
		VendorID:      strings.TrimSpace(q.VendorID),
		ReporterName:  q.ReporterName,
		ReporterPhone: q.ReporterPhone,
		IssueType:     q.IssueType,
		Description:   q.Description,
		Severity:      q.Severity,
		Latitude:      lat,
		Longitude:     lng,
		PhotoURL:      q.PhotoURL,
	}, nil
}

type transitionRequest struct {
	Status model.ReportStatus `json:"status"`
}

type overrideRequest struct {
	ZoneStatus model.VendorZoneStatus `json:"zone_status"`
}

type inspectionRequest struct {
	InspectedAt  *time.Time `json:"inspected_at"`
	HygieneScore int        `json:"hygiene_score"`
}

// Query filters. Unknown enum values are rejected rather than matching nothing.

func zoneFilterOf(q url.Values) (engine.ZoneFilter, error) {
	f := engine.ZoneFilter{Area: q.Get("area")}
	if v := q.Get("status"); v != "" {
		st, err := model.ParseZoneStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	return f, nil
}

func vendorFilterOf(q url.Values) (engine.VendorFilter, error) {
	f := engine.VendorFilter{Area: q.Get("area"), ZoneID: q.Get("zone_id"), Phone: q.Get("phone")}
	if v := q.Get("zone_status"); v != "" {
		st, err := model.ParseVendorZoneStatus(v)
		if err != nil {
			return f, err
		}
		f.ZoneStatus = st
	}
	if v := q.Get("food_type"); v != "" {
		ft, err := model.ParseFoodType(v)
		if err != nil {
			return f, err
		}
		f.FoodType = ft
	}
	if v := q.Get("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid verified: %q", v)
		}
		f.Verified = &b
	}
	return f, nil
}

func reportFilterOf(q url.Values) (engine.ReportFilter, error) {
	f := engine.ReportFilter{VendorID: q.Get("vendor_id")}
	if v := q.Get("status"); v != "" {
		st, err := model.ParseReportStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if v := q.Get("severity"); v != "" {
		sv, err := model.ParseSeverity(v)
		if err != nil {
			return f, err
		}
		f.Severity = sv
	}
	if v := q.Get("issue_type"); v != "" {
		it, err := model.ParseIssueType(v)
		if err != nil {
			return f, err
		}
		f.IssueType = it
	}
	return f, nil
}

// pointOf parses lat and lng query parameters.
func pointOf(q url.Values) (geo.Point, error) {
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid lat: %q", q.Get("lat"))
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid lng: %q", q.Get("lng"))
	}
	pt := geo.Point{Lat: lat, Lng: lng}
	if !pt.Valid() {
		return pt, fmt.Errorf("coordinates out of range")
	}
	return pt, nil
}
