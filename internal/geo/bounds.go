package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Box is an axis-aligned bounding box. The zero Box contains nothing.
type Box struct {
	bound orb.Bound
	ok    bool
}

// Bounds returns the bounding box of poly, or the empty Box for a degenerate polygon.
func Bounds(poly Polygon) Box {
	if poly.Degenerate() {
		return Box{}
	}
	return Box{bound: poly.Ring().Bound(), ok: true}
}

// Contains reports whether pt falls inside the box, edges included.
func (b Box) Contains(pt Point) bool {
	return b.ok && b.bound.Contains(pt.orb())
}

// Centroid returns the area centroid of poly. Polygons without area fall back
// to the vertex mean.
func Centroid(poly Polygon) Point {
	if len(poly) == 0 {
		return Point{}
	}
	if !poly.Degenerate() {
		c, area := planar.CentroidArea(poly.Ring())
		if area != 0 && finite(c[0]) && finite(c[1]) {
			return fromOrb(c)
		}
	}
	mp := make(orb.MultiPoint, len(poly))
	for i, v := range poly {
		mp[i] = v.orb()
	}
	c, _ := planar.CentroidArea(mp)
	return fromOrb(c)
}

// HaversineMeters returns the great-circle distance between a and b on orb's
// WGS84 equatorial radius.
func HaversineMeters(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.orb(), b.orb())
}
