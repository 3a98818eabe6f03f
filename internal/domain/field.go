package domain

import (
	"fmt"
	"math"
)

// Field is a 2D array aligned with the native grid of one timestep and depth level.
// Field[i][j] is the value at latitude index i and longitude index j.
// Land or missing cells hold NaN.
type Field [][]float64

// NewField allocates a rows x cols field filled with v.
func NewField(rows, cols int, v float64) Field {
	f := make(Field, rows)
	for i := range f {
		f[i] = make([]float64, cols)
		for j := range f[i] {
			f[i][j] = v
		}
	}
	return f
}

// Dims returns the number of rows (latitudes) and columns (longitudes).
// A ragged field reports the width of its first row.
func (f Field) Dims() (rows, cols int) {
	if len(f) == 0 {
		return 0, 0
	}
	return len(f), len(f[0])
}

// At returns the value at latitude index r and longitude index c.
func (f Field) At(r, c int) float64 {
	return f[r][c]
}

// Validate checks that every row has the same length.
func (f Field) Validate() error {
	_, cols := f.Dims()
	for i, row := range f {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d values, expected %d", ErrShapeMismatch, i, len(row), cols)
		}
	}
	return nil
}

// Range returns the minimum and maximum finite values of the field.
// ok is false when the field holds no finite value.
func (f Field) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range f {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// SameShape reports whether f and o have identical row and column counts.
func (f Field) SameShape(o Field) bool {
	if len(f) != len(o) {
		return false
	}
	for i := range f {
		if len(f[i]) != len(o[i]) {
			return false
		}
	}
	return true
}

// Magnitude computes the per-cell Euclidean norm sqrt(u² + v²) of two vector components.
// The components must have exactly the same shape; no broadcasting is done.
func Magnitude(u, v Field) (Field, error) {
	if !u.SameShape(v) {
		ur, uc := u.Dims()
		vr, vc := v.Dims()
		return nil, fmt.Errorf("%w: u is [%d, %d], v is [%d, %d]", ErrShapeMismatch, ur, uc, vr, vc)
	}

	out := make(Field, len(u))
	for i := range u {
		out[i] = make([]float64, len(u[i]))
		for j := range u[i] {
			out[i][j] = math.Sqrt(u[i][j]*u[i][j] + v[i][j]*v[i][j])
		}
	}
	return out, nil
}
