// Package fixture reads seed data for zonectl: a YAML document with zones,
// vendors and reports, or a CSV vendor roster.
package fixture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vendzone/internal/geo"
	"vendzone/internal/model"
)

// Batch is one parsed fixture. Reports name their vendor by phone because ids
// are only assigned on registration.
type Batch struct {
	Zones   []model.Zone
	Vendors []model.Vendor
	Reports []Report
}

type Report struct {
	VendorPhone string
	model.HygieneReport
}

// Source parses one fixture format.
type Source interface {
	Name() string
	Read(r io.Reader) (Batch, error)
}

// ForPath picks a source by file extension.
func ForPath(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}, nil
	case ".csv":
		return VendorCSV{}, nil
	}
	return nil, fmt.Errorf("unsupported fixture %q: want .yaml, .yml or .csv", path)
}

// ReadFile parses the fixture at path.
func ReadFile(path string) (Batch, error) {
	src, err := ForPath(path)
	if err != nil {
		return Batch{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, err
	}
	defer f.Close()
	b, err := src.Read(f)
	if err != nil {
		return Batch{}, fmt.Errorf("%s fixture %s: %w", src.Name(), path, err)
	}
	return b, nil
}

func polygonText(pairs [][2]float64) string {
	poly := make(geo.Polygon, len(pairs))
	for i, p := range pairs {
		poly[i] = geo.Point{Lat: p[0], Lng: p[1]}
	}
	return geo.EncodePolygon(poly)
}
