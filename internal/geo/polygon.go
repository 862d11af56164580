// Package geo holds the point-in-polygon primitives zone membership is built on.
//
// Coordinates are plain WGS84 degrees treated as a flat plane, which is accurate
// enough for city-scale zones. Polygons are implicitly closed: the last vertex
// connects back to the first.
package geo

import (
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point has finite coordinates inside WGS84 bounds.
func (p Point) Valid() bool {
	return finite(p.Lat) && finite(p.Lng) && p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Polygon is an ordered vertex ring.
type Polygon []Point

// Degenerate reports whether the polygon cannot enclose any area: fewer than
// three vertices or any non-finite coordinate.
func (poly Polygon) Degenerate() bool {
	if len(poly) < 3 {
		return true
	}
	for _, v := range poly {
		if !finite(v.Lat) || !finite(v.Lng) {
			return true
		}
	}
	return false
}

// Contains reports whether pt lies inside poly.
//
// Rules:
//   - points on an edge or vertex are inside;
//   - degenerate polygons contain nothing;
//   - self-intersecting polygons use the even-odd rule, so regions the ring
//     winds over twice are outside.
func Contains(poly Polygon, pt Point) bool {
	if poly.Degenerate() || !finite(pt.Lat) || !finite(pt.Lng) {
		return false
	}
	return planar.RingContains(poly.Ring(), pt.orb())
}

// PointInPolygon is Contains with the argument order of the record contract.
func PointInPolygon(pt Point, poly Polygon) bool { return Contains(poly, pt) }

// orb points are (x, y), so longitude comes first.
func (p Point) orb() orb.Point { return orb.Point{p.Lng, p.Lat} }

func fromOrb(p orb.Point) Point { return Point{Lat: p.Lat(), Lng: p.Lon()} }

// Ring converts the polygon to an orb ring. The ring is left open; orb closes
// it implicitly.
func (poly Polygon) Ring() orb.Ring {
	r := make(orb.Ring, len(poly))
	for i, v := range poly {
		r[i] = v.orb()
	}
	return r
}

// DecodePolygon parses the serialized coordinate payload, a JSON array of
// [lat, lng] pairs. Malformed payloads yield an empty polygon, never an error.
func DecodePolygon(text string) Polygon {
	var raw [][]float64
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Polygon{}
	}
	out := make(Polygon, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 || !finite(pair[0]) || !finite(pair[1]) {
			return Polygon{}
		}
		out = append(out, Point{Lat: pair[0], Lng: pair[1]})
	}
	return out
}

// EncodePolygon serializes poly in the format DecodePolygon reads.
func EncodePolygon(poly Polygon) string {
	raw := make([][2]float64, len(poly))
	for i, v := range poly {
		raw[i] = [2]float64{v.Lat, v.Lng}
	}
	b, _ := json.Marshal(raw)
	return string(b)
}

// Pairs returns the polygon as [lat, lng] pairs for map consumers.
func (poly Polygon) Pairs() [][2]float64 {
	out := make([][2]float64, len(poly))
	for i, v := range poly {
		out[i] = [2]float64{v.Lat, v.Lng}
	}
	return out
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
