package model

import "time"

// Core domain records. JSON field names follow the record contract the map and
// admin tables consume (snake_case, as stored).

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Vendor struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	BusinessName    string           `json:"business_name,omitempty"`
	Phone           string           `json:"phone"`
	FoodType        FoodType         `json:"food_type"`
	Latitude        float64          `json:"latitude"`
	Longitude       float64          `json:"longitude"`
	ZoneStatus      VendorZoneStatus `json:"zone_status"`
	StatusLocked    bool             `json:"status_locked,omitempty"` // administrator override; never re-derived
	ZoneID          string           `json:"zone_id,omitempty"`       // matched zone, derived
	HygieneScore    int              `json:"hygiene_score"`
	LicenseNumber   string           `json:"license_number,omitempty"`
	Address         string           `json:"address,omitempty"`
	Area            string           `json:"area,omitempty"`
	Verified        bool             `json:"verified"`
	TotalComplaints int              `json:"total_complaints"`
	LastInspection  *time.Time       `json:"last_inspection,omitempty"`
	CreatedDate     time.Time        `json:"created_date"`
	UpdatedDate     time.Time        `json:"updated_date"`
}

// Location returns the vendor position as a GeoPoint.
func (v Vendor) Location() GeoPoint { return GeoPoint{Lat: v.Latitude, Lng: v.Longitude} }

type Zone struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Area             string     `json:"area"`
	Status           ZoneStatus `json:"status"`
	Coordinates      string     `json:"coordinates"` // JSON [[lat,lng],...]
	MaxVendors       int        `json:"max_vendors"` // 0 means uncapped
	CurrentVendors   int        `json:"current_vendors"`
	Restrictions     string     `json:"restrictions,omitempty"`
	NotificationDate *time.Time `json:"notification_date,omitempty"`
	HygieneAvg       *float64   `json:"hygiene_avg,omitempty"` // absent when no vendor is inside
	CreatedDate      time.Time  `json:"created_date"`
	UpdatedDate      time.Time  `json:"updated_date"`
}

// Capped reports whether the zone enforces a vendor cap.
func (z Zone) Capped() bool { return z.MaxVendors > 0 }

// Full reports whether a capped zone has reached its cap.
func (z Zone) Full() bool { return z.Capped() && z.CurrentVendors >= z.MaxVendors }

type HygieneReport struct {
	ID            string       `json:"id"`
	VendorID      string       `json:"vendor_id,omitempty"`
	ReporterName  string       `json:"reporter_name,omitempty"`
	ReporterPhone string       `json:"reporter_phone,omitempty"`
	IssueType     IssueType    `json:"issue_type"`
	Description   string       `json:"description"`
	Severity      Severity     `json:"severity"`
	Latitude      float64      `json:"latitude"`
	Longitude     float64      `json:"longitude"`
	Status        ReportStatus `json:"status"`
	PhotoURL      string       `json:"photo_url,omitempty"`
	ResolvedDate  *time.Time   `json:"resolved_date,omitempty"`
	CreatedDate   time.Time    `json:"created_date"`
	UpdatedDate   time.Time    `json:"updated_date"`
}

// Location returns the report position as a GeoPoint.
func (r HygieneReport) Location() GeoPoint { return GeoPoint{Lat: r.Latitude, Lng: r.Longitude} }

// Open reports whether the report still counts towards open-report totals.
func (r HygieneReport) Open() bool { return r.Status == ReportOpen }

// VendorPatch carries a partial vendor update. Nil fields are left untouched.
type VendorPatch struct {
	Name           *string    `json:"name,omitempty"`
	BusinessName   *string    `json:"business_name,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	FoodType       *FoodType  `json:"food_type,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	HygieneScore   *int       `json:"hygiene_score,omitempty"`
	LicenseNumber  *string    `json:"license_number,omitempty"`
	Address        *string    `json:"address,omitempty"`
	Area           *string    `json:"area,omitempty"`
	Verified       *bool      `json:"verified,omitempty"`
	LastInspection *time.Time `json:"last_inspection,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p VendorPatch) Empty() bool { return p == VendorPatch{} }
