package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Bounds is the rectangular geographic extent of a grid, in degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf resolves the extent covered by the latitude and longitude axes of a grid.
// Both axes must be non-empty and span a strictly positive range.
func BoundsOf(lats, lons []float64) (Bounds, error) {
	if len(lats) == 0 || len(lons) == 0 {
		return Bounds{}, fmt.Errorf("%w: empty coordinate axis (lat=%d, lon=%d)", ErrDegenerateGrid, len(lats), len(lons))
	}

	b := Bounds{
		MinLat: floats.Min(lats),
		MaxLat: floats.Max(lats),
		MinLon: floats.Min(lons),
		MaxLon: floats.Max(lons),
	}

	// Negated comparisons also reject NaN coordinates.
	if !(b.MinLat < b.MaxLat) {
		return Bounds{}, fmt.Errorf("%w: latitude range [%v, %v]", ErrDegenerateGrid, b.MinLat, b.MaxLat)
	}
	if !(b.MinLon < b.MaxLon) {
		return Bounds{}, fmt.Errorf("%w: longitude range [%v, %v]", ErrDegenerateGrid, b.MinLon, b.MaxLon)
	}

	return b, nil
}

// Contains reports whether the point (lon, lat) lies inside b, edges included.
func (b Bounds) Contains(lon, lat float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Intersect returns the overlap of b and o. The boolean is false when the
// two extents share no area.
func (b Bounds) Intersect(o Bounds) (Bounds, bool) {
	r := Bounds{
		MinLat: max(b.MinLat, o.MinLat),
		MaxLat: min(b.MaxLat, o.MaxLat),
		MinLon: max(b.MinLon, o.MinLon),
		MaxLon: min(b.MaxLon, o.MaxLon),
	}
	if r.MinLat >= r.MaxLat || r.MinLon >= r.MaxLon {
		return Bounds{}, false
	}
	return r, true
}

// Validate checks that b spans a strictly positive range on each axis.
func (b Bounds) Validate() error {
	if !(b.MinLat < b.MaxLat) || !(b.MinLon < b.MaxLon) {
		return fmt.Errorf("%w: %s", ErrDegenerateGrid, b)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("lat [%.4f, %.4f] lon [%.4f, %.4f]", b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}
