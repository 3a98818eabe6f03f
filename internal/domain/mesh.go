package domain

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// MeshPolicy selects how display coordinates are derived from the native grid.
type MeshPolicy int

const (
	// MeshUniform spreads nLon x nLat evenly spaced points over the grid bounds and
	// pairs them positionally with the native values. Geometry is only exact when the
	// native spacing is itself uniform.
	MeshUniform MeshPolicy = iota
	// MeshNative uses the native coordinate axes as the display mesh.
	MeshNative
	// MeshResample uses the uniform mesh and bilinearly resamples native values onto it.
	MeshResample
)

// ParseMeshPolicy parses "uniform", "native" or "resample".
func ParseMeshPolicy(s string) (MeshPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return MeshUniform, nil
	case "native":
		return MeshNative, nil
	case "resample":
		return MeshResample, nil
	default:
		return MeshUniform, fmt.Errorf("unknown mesh policy %q (use uniform, native or resample)", s)
	}
}

func (p MeshPolicy) String() string {
	switch p {
	case MeshNative:
		return "native"
	case MeshResample:
		return "resample"
	default:
		return "uniform"
	}
}

// Mesh is a pair of equally shaped 2D coordinate arrays used for rendering.
// Lon[r][c] and Lat[r][c] are the display coordinates of cell (r, c); rows follow
// latitude and columns follow longitude.
type Mesh struct {
	Lon [][]float64
	Lat [][]float64
}

// Linspace returns n evenly spaced samples over [lo, hi], both ends included.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	s := floats.Span(make([]float64, n), lo, hi)
	s[n-1] = hi
	return s
}

// BuildMesh builds the uniform display mesh of shape (nLat, nLon) spanning b.
// nLon and nLat must equal the native axis lengths so that the mesh lines up
// positionally with the derived field.
func BuildMesh(b Bounds, nLon, nLat int) (Mesh, error) {
	if err := b.Validate(); err != nil {
		return Mesh{}, err
	}
	if nLon < 2 || nLat < 2 {
		return Mesh{}, fmt.Errorf("%w: mesh needs at least 2x2 points, got %dx%d", ErrDegenerateGrid, nLat, nLon)
	}
	return MeshFromAxes(Linspace(b.MinLon, b.MaxLon, nLon), Linspace(b.MinLat, b.MaxLat, nLat)), nil
}

// MeshFromAxes forms the Cartesian outer product of the given axes.
func MeshFromAxes(lons, lats []float64) Mesh {
	m := Mesh{
		Lon: make([][]float64, len(lats)),
		Lat: make([][]float64, len(lats)),
	}
	for r, lat := range lats {
		m.Lon[r] = make([]float64, len(lons))
		m.Lat[r] = make([]float64, len(lons))
		copy(m.Lon[r], lons)
		for c := range lons {
			m.Lat[r][c] = lat
		}
	}
	return m
}

// Dims returns the mesh shape as (rows, cols) = (nLat, nLon).
func (m Mesh) Dims() (rows, cols int) {
	if len(m.Lon) == 0 {
		return 0, 0
	}
	return len(m.Lon), len(m.Lon[0])
}

// Axes returns the 1D longitude and latitude samples of the mesh.
func (m Mesh) Axes() (lons, lats []float64) {
	rows, cols := m.Dims()
	if rows == 0 {
		return nil, nil
	}
	lons = make([]float64, cols)
	copy(lons, m.Lon[0])
	lats = make([]float64, rows)
	for r := range lats {
		lats[r] = m.Lat[r][0]
	}
	return lons, lats
}

// SpacingDeviation returns the largest relative deviation of the steps of coords
// from their mean step. It is 0 for an evenly spaced axis and grows as the axis
// becomes irregular; the uniform mesh misplaces values in proportion to it.
func SpacingDeviation(coords []float64) float64 {
	if len(coords) < 3 {
		return 0
	}
	mean := (coords[len(coords)-1] - coords[0]) / float64(len(coords)-1)
	if mean == 0 {
		return math.Inf(1)
	}
	var worst float64
	for i := 1; i < len(coords); i++ {
		d := math.Abs((coords[i]-coords[i-1])-mean) / math.Abs(mean)
		worst = math.Max(worst, d)
	}
	return worst
}
