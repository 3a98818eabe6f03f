package interp

import (
	"fmt"
	"math"
	"sort"
)

// Cell is one rectangle of a regular grid with the values at its four corners.
type Cell struct {
	X0, X1 float64 // Longitude edges.
	Y0, Y1 float64 // Latitude edges.

	// V00 at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1), V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// Bilinear interpolates inside cell:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// with t = (x - x0) / (x1 - x0) and u = (y - y0) / (y1 - y0).
// A NaN corner makes the result NaN, so land cells stay land.
func Bilinear(cell Cell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x %.6f is outside cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y %.6f is outside cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := math.Max(0, math.Min(1, (x-cell.X0)/(cell.X1-cell.X0)))
	u := math.Max(0, math.Min(1, (y-cell.Y0)/(cell.Y1-cell.Y0)))

	// Exact corners keep their value even when a neighbour is NaN.
	switch {
	case t == 0 && u == 0:
		return cell.V00, nil
	case t == 1 && u == 0:
		return cell.V10, nil
	case t == 0 && u == 1:
		return cell.V01, nil
	case t == 1 && u == 1:
		return cell.V11, nil
	}

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

// Grid is a rectilinear grid with possibly uneven spacing.
type Grid struct {
	X      []float64   // Longitudes, strictly increasing.
	Y      []float64   // Latitudes, strictly increasing.
	Values [][]float64 // Values[i][j] is the value at (X[j], Y[i]).
}

// Validate checks axis ordering and that Values is len(Y) x len(X).
func (g *Grid) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates")
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 Y coordinates")
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	for i := 1; i < len(g.X); i++ {
		if g.X[i] <= g.X[i-1] {
			return fmt.Errorf("X coordinates must be strictly increasing")
		}
	}
	for i := 1; i < len(g.Y); i++ {
		if g.Y[i] <= g.Y[i-1] {
			return fmt.Errorf("Y coordinates must be strictly increasing")
		}
	}
	return nil
}

// cellIndex returns i such that axis[i] <= v <= axis[i+1].
func cellIndex(axis []float64, v float64) (int, bool) {
	if v < axis[0] || v > axis[len(axis)-1] {
		return 0, false
	}
	i := sort.SearchFloat64s(axis, v)
	if i > 0 {
		i--
	}
	if i > len(axis)-2 {
		i = len(axis) - 2
	}
	return i, true
}

// At interpolates the grid at (x, y). The grid must be valid.
func (g *Grid) At(x, y float64) (float64, error) {
	j, ok := cellIndex(g.X, x)
	if !ok {
		return 0, fmt.Errorf("x %.6f is outside grid range [%.6f, %.6f]", x, g.X[0], g.X[len(g.X)-1])
	}
	i, ok := cellIndex(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("y %.6f is outside grid range [%.6f, %.6f]", y, g.Y[0], g.Y[len(g.Y)-1])
	}

	return Bilinear(Cell{
		X0:  g.X[j],
		X1:  g.X[j+1],
		Y0:  g.Y[i],
		Y1:  g.Y[i+1],
		V00: g.Values[i][j],
		V10: g.Values[i][j+1],
		V01: g.Values[i+1][j],
		V11: g.Values[i+1][j+1],
	}, x, y)
}

// Resample evaluates the grid at every (xs[c], ys[r]) and returns a len(ys) x len(xs)
// array. Targets outside the grid are NaN.
func (g *Grid) Resample(xs, ys []float64) ([][]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}

	out := make([][]float64, len(ys))
	for r, y := range ys {
		out[r] = make([]float64, len(xs))
		for c, x := range xs {
			v, err := g.At(x, y)
			if err != nil {
				v = math.NaN()
			}
			out[r][c] = v
		}
	}
	return out, nil
}
