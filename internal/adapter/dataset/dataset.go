// Package dataset opens gridded forecast files and exposes their coordinates,
// surface fields and global metadata.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the path does not resolve to a readable dataset.
	ErrNotFound = errors.New("dataset not found")

	// ErrInvalid is returned when a dataset breaks the grid invariants:
	// coordinate axes with fewer than 2 values or not strictly increasing,
	// or variables whose dimensions do not line up with the axes.
	ErrInvalid = errors.New("invalid dataset")
)

// Backend selects the NetCDF reader.
type Backend string

const (
	// BackendCGO reads through libnetcdf.
	BackendCGO Backend = "cgo"
	// BackendNative reads with a pure Go decoder.
	BackendNative Backend = "native"
)

// ParseBackend parses "cgo" or "native".
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendCGO, nil
	case BackendCGO, BackendNative:
		return b, nil
	default:
		return "", fmt.Errorf("unknown dataset backend %q (use cgo or native)", s)
	}
}

// Dataset is a read-only handle over one forecast file.
// Slices returned by the accessors must not be modified.
type Dataset interface {
	// Latitudes returns the latitude axis, strictly increasing.
	Latitudes() []float64
	// Longitudes returns the longitude axis, strictly increasing.
	Longitudes() []float64
	// Times returns the timestep reference times in UTC.
	Times() []time.Time
	// Attr returns a global attribute as a string.
	Attr(name string) (string, bool)
	// Surface returns variable at timestep t and the first depth level as a
	// (lat, lon) array. Fill values are NaN.
	Surface(variable string, t int) ([][]float64, error)
	// Close releases the underlying file.
	Close() error
}

// Names lists the coordinate names to look up and the variables a caller will read.
// Empty coordinate names fall back to the usual CF spellings.
type Names struct {
	Lat       string
	Lon       string
	Time      string
	Variables []string
}

func (n Names) latCandidates() []string  { return candidates(n.Lat, "lat", "latitude", "nav_lat") }
func (n Names) lonCandidates() []string  { return candidates(n.Lon, "lon", "longitude", "nav_lon") }
func (n Names) timeCandidates() []string { return candidates(n.Time, "time", "time_counter") }

func candidates(first string, fallback ...string) []string {
	if first == "" {
		return fallback
	}
	return append([]string{first}, fallback...)
}

// Open opens path with the given backend and checks the coordinate axes and
// every variable in names.Variables.
func Open(backend Backend, path string, names Names) (Dataset, error) {
	switch backend {
	case BackendCGO, "":
		return openCGO(path, names)
	case BackendNative:
		return openNative(path, names)
	default:
		return nil, fmt.Errorf("unknown dataset backend %q", backend)
	}
}

// axes holds the decoded coordinates shared by both backends.
type axes struct {
	lats  []float64
	lons  []float64
	times []time.Time

	latDim, lonDim, timeDim string
}

func (a *axes) Latitudes() []float64  { return a.lats }
func (a *axes) Longitudes() []float64 { return a.lons }
func (a *axes) Times() []time.Time    { return a.times }

func (a *axes) checkTimestep(t int) error {
	if t < 0 || t >= len(a.times) {
		return fmt.Errorf("timestep %d out of range [0, %d)", t, len(a.times))
	}
	return nil
}

func checkAxis(name string, values []float64) error {
	if len(values) < 2 {
		return fmt.Errorf("%w: %s axis has %d values, need at least 2", ErrInvalid, name, len(values))
	}
	for i := 1; i < len(values); i++ {
		if !(values[i] > values[i-1]) {
			return fmt.Errorf("%w: %s axis is not strictly increasing at index %d", ErrInvalid, name, i)
		}
	}
	return nil
}

// checkLayout verifies that a variable is (time, [depth,] lat, lon) with lengths matching the axes.
func (a *axes) checkLayout(variable string, dims []string, lens []int) error {
	if len(dims) != 3 && len(dims) != 4 {
		return fmt.Errorf("%w: variable %s has %d dimensions, expected (time, [depth,] lat, lon)", ErrInvalid, variable, len(dims))
	}
	n := len(dims)
	if dims[0] != a.timeDim || dims[n-2] != a.latDim || dims[n-1] != a.lonDim {
		return fmt.Errorf("%w: variable %s has dimensions %v, expected (%s, [depth,] %s, %s)",
			ErrInvalid, variable, dims, a.timeDim, a.latDim, a.lonDim)
	}
	if lens == nil {
		return nil
	}
	if lens[0] != len(a.times) || lens[n-2] != len(a.lats) || lens[n-1] != len(a.lons) {
		return fmt.Errorf("%w: variable %s has shape %v, axes are time=%d lat=%d lon=%d",
			ErrInvalid, variable, lens, len(a.times), len(a.lats), len(a.lons))
	}
	if n == 4 && lens[1] < 1 {
		return fmt.Errorf("%w: variable %s has no depth level", ErrInvalid, variable)
	}
	return nil
}

// packing describes the CF packing and fill attributes of a variable.
type packing struct {
	fill      []float64
	scale     float64
	offset    float64
	hasScale  bool
	hasOffset bool
}

func (p packing) unpack(raw float64) float64 {
	if math.IsNaN(raw) {
		return raw
	}
	for _, f := range p.fill {
		// float32 data against a double fill attribute differs in the low bits.
		if raw == f || (f >= 1e20 && raw >= f) {
			return math.NaN()
		}
	}
	v := raw
	if p.hasScale {
		v *= p.scale
	}
	if p.hasOffset {
		v += p.offset
	}
	return v
}

// reshape turns a flat (lat, lon) slice into rows, unpacking each value.
func reshape[T float32 | float64 | int16 | int32](flat []T, rows, cols int, p packing) ([][]float64, error) {
	if len(flat) != rows*cols {
		return nil, fmt.Errorf("%w: read %d values, expected %d x %d", ErrInvalid, len(flat), rows, cols)
	}
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			out[r][c] = p.unpack(float64(flat[r*cols+c]))
		}
	}
	return out, nil
}
