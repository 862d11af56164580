package fixture

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vendzone/internal/model"
)

// VendorCSV reads a vendor roster with a header row. Required columns are
// name, phone, food_type, latitude, longitude and hygiene_score.
type VendorCSV struct{}

func (VendorCSV) Name() string { return "csv" }

var requiredColumns = []string{"name", "phone", "food_type", "latitude", "longitude", "hygiene_score"}

func (VendorCSV) Read(r io.Reader) (Batch, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return Batch{}, err
	}
	if len(records) < 2 {
		return Batch{}, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return Batch{}, fmt.Errorf("missing required column: %s", k)
		}
	}

	var b Batch
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		lat, err := strconv.ParseFloat(get("latitude"), 64)
		if err != nil {
			return Batch{}, fmt.Errorf("row %d: latitude: %w", rowIdx+1, err)
		}
		lng, err := strconv.ParseFloat(get("longitude"), 64)
		if err != nil {
			return Batch{}, fmt.Errorf("row %d: longitude: %w", rowIdx+1, err)
		}
		score, err := strconv.Atoi(get("hygiene_score"))
		if err != nil {
			return Batch{}, fmt.Errorf("row %d: hygiene_score: %w", rowIdx+1, err)
		}
		verified, _ := strconv.ParseBool(get("verified"))
		b.Vendors = append(b.Vendors, model.Vendor{
			Name:          get("name"),
			BusinessName:  get("business_name"),
			Phone:         get("phone"),
			FoodType:      model.FoodType(get("food_type")),
			Latitude:      lat,
			Longitude:     lng,
			HygieneScore:  score,
			LicenseNumber: get("license_number"),
			Address:       get("address"),
			Area:          get("area"),
			Verified:      verified,
		})
	}
	return b, nil
}
