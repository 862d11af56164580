package fixture

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"vendzone/internal/model"
)

// YAML reads documents shaped like:
//
//	zones:
//	  - name: Connaught Place
//	    status: legal
//	    max_vendors: 40
//	    polygon: [[28.6129, 77.2080], [28.6129, 77.2100], [28.6149, 77.2100]]
//	vendors:
//	  - name: Ramesh
//	    phone: "9810000001"
//	    food_type: chaat
//	    latitude: 28.6139
//	    longitude: 77.2090
//	    hygiene_score: 4
//	reports:
//	  - vendor_phone: "9810000001"
//	    issue_type: garbage_disposal
//	    description: Waste dumped behind the stall
//	    severity: high
//	    latitude: 28.6139
//	    longitude: 77.2090
type YAML struct{}

func (YAML) Name() string { return "yaml" }

type yamlDoc struct {
	Zones []struct {
		Name         string       `yaml:"name"`
		Area         string       `yaml:"area"`
		Status       string       `yaml:"status"`
		Polygon      [][2]float64 `yaml:"polygon"`
		Coordinates  string       `yaml:"coordinates"`
		MaxVendors   int          `yaml:"max_vendors"`
		Restrictions string       `yaml:"restrictions"`
	} `yaml:"zones"`
	Vendors []struct {
		Name          string   `yaml:"name"`
		BusinessName  string   `yaml:"business_name"`
		Phone         string   `yaml:"phone"`
		FoodType      string   `yaml:"food_type"`
		Latitude      *float64 `yaml:"latitude"`
		Longitude     *float64 `yaml:"longitude"`
		HygieneScore  int      `yaml:"hygiene_score"`
		LicenseNumber string   `yaml:"license_number"`
		Address       string   `yaml:"address"`
		Area          string   `yaml:"area"`
		Verified      bool     `yaml:"verified"`
	} `yaml:"vendors"`
	Reports []struct {
		VendorPhone  string   `yaml:"vendor_phone"`
		ReporterName string   `yaml:"reporter_name"`
		IssueType    string   `yaml:"issue_type"`
		Description  string   `yaml:"description"`
		Severity     string   `yaml:"severity"`
		Latitude     *float64 `yaml:"latitude"`
		Longitude    *float64 `yaml:"longitude"`
	} `yaml:"reports"`
}

func (YAML) Read(r io.Reader) (Batch, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return Batch{}, err
	}

	var b Batch
	for i, z := range doc.Zones {
		coords := z.Coordinates
		if coords == "" {
			coords = polygonText(z.Polygon)
		}
		if z.Polygon != nil && z.Coordinates != "" {
			return Batch{}, fmt.Errorf("zone %d (%s): give polygon or coordinates, not both", i+1, z.Name)
		}
		b.Zones = append(b.Zones, model.Zone{
			Name:         z.Name,
			Area:         z.Area,
			Status:       model.ZoneStatus(z.Status),
			Coordinates:  coords,
			MaxVendors:   z.MaxVendors,
			Restrictions: z.Restrictions,
		})
	}
	for i, v := range doc.Vendors {
		lat, lng, err := coordinates(v.Latitude, v.Longitude)
		if err != nil {
			return Batch{}, fmt.Errorf("vendor %d (%s): %w", i+1, v.Phone, err)
		}
		b.Vendors = append(b.Vendors, model.Vendor{
			Name:          v.Name,
			BusinessName:  v.BusinessName,
			Phone:         v.Phone,
			FoodType:      model.FoodType(v.FoodType),
			Latitude:      lat,
			Longitude:     lng,
			HygieneScore:  v.HygieneScore,
			LicenseNumber: v.LicenseNumber,
			Address:       v.Address,
			Area:          v.Area,
			Verified:      v.Verified,
		})
	}
	for i, rp := range doc.Reports {
		lat, lng, err := coordinates(rp.Latitude, rp.Longitude)
		if err != nil {
			return Batch{}, fmt.Errorf("report %d: %w", i+1, err)
		}
		b.Reports = append(b.Reports, Report{
			VendorPhone: rp.VendorPhone,
			HygieneReport: model.HygieneReport{
				ReporterName: rp.ReporterName,
				IssueType:    model.IssueType(rp.IssueType),
				Description:  rp.Description,
				Severity:     model.Severity(rp.Severity),
				Latitude:     lat,
				Longitude:    lng,
			},
		})
	}
	return b, nil
}

// coordinates rejects a missing or null latitude or longitude instead of
// reading it as 0.
func coordinates(lat, lng *float64) (float64, float64, error) {
	switch {
	case lat == nil && lng == nil:
		return 0, 0, errors.New("latitude and longitude are required")
	case lat == nil:
		return 0, 0, errors.New("latitude is required")
	case lng == nil:
		return 0, 0, errors.New("longitude is required")
	}
	return *lat, *lng, nil
}
