package interp

import (
	"math"
	"testing"
)

// TestBilinear_CenterPoint tests interpolation at the center of a cell
func TestBilinear_CenterPoint(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	// t = u = 0.5, so the result is the corner mean (1+3+5+7)/4.
	result, err := Bilinear(cell, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-4.0) > 1e-9 {
		t.Errorf("Center point: expected 4.0, got %.10f", result)
	}
}

// TestBilinear_CornerPoints tests that corners return exact values
func TestBilinear_CornerPoints(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: math.NaN(),
	}

	tests := []struct {
		x, y     float64
		expected float64
		name     string
	}{
		{0.0, 0.0, 1.0, "bottom-left"},
		{10.0, 0.0, 2.0, "bottom-right"},
		{0.0, 10.0, 3.0, "top-left"},
	}

	for _, tt := range tests {
		result, err := Bilinear(cell, tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", tt.name, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("%s corner: expected %.10f, got %.10f", tt.name, tt.expected, result)
		}
	}

	// Interior points touching the land corner are land.
	if v, _ := Bilinear(cell, 5, 5); !math.IsNaN(v) {
		t.Errorf("expected NaN next to a land corner, got %v", v)
	}
}

func TestBilinear_OutsideCell(t *testing.T) {
	cell := Cell{X0: 0, X1: 1, Y0: 0, Y1: 1}
	if _, err := Bilinear(cell, 1.5, 0.5); err == nil {
		t.Fatal("expected error for x outside cell")
	}
	if _, err := Bilinear(Cell{X0: 1, X1: 1, Y0: 0, Y1: 1}, 1, 0.5); err == nil {
		t.Fatal("expected error for degenerate cell")
	}
}

// TestGrid_UnevenSpacing checks that a plane z = 2x + y is reproduced on an uneven grid.
func TestGrid_UnevenSpacing(t *testing.T) {
	g := &Grid{
		X: []float64{0, 1, 5, 6},
		Y: []float64{10, 10.5, 13},
	}
	g.Values = make([][]float64, len(g.Y))
	for i, y := range g.Y {
		g.Values[i] = make([]float64, len(g.X))
		for j, x := range g.X {
			g.Values[i][j] = 2*x + y
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for _, p := range [][2]float64{{0, 10}, {0.3, 10.2}, {3, 12}, {5, 13}, {6, 10}, {5.999, 12.999}} {
		got, err := g.At(p[0], p[1])
		if err != nil {
			t.Fatalf("At(%v): %v", p, err)
		}
		want := 2*p[0] + p[1]
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("At(%v): expected %.10f, got %.10f", p, want, got)
		}
	}

	if _, err := g.At(-0.1, 11); err == nil {
		t.Error("expected error outside grid")
	}
}

func TestGrid_Resample(t *testing.T) {
	g := &Grid{
		X:      []float64{17, 17.2, 18},
		Y:      []float64{39, 41},
		Values: [][]float64{{0, 0.2, 1}, {2, 2.2, 3}},
	}
	xs := []float64{17, 17.5, 18, 18.5}
	ys := []float64{39, 40, 41}

	out, err := g.Resample(xs, ys)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != len(ys) || len(out[0]) != len(xs) {
		t.Fatalf("expected %dx%d, got %dx%d", len(ys), len(xs), len(out), len(out[0]))
	}
	// Values are x - 17 + (y - 39) along both axes.
	for r, y := range ys {
		for c, x := range xs[:3] {
			want := (x - 17) + (y - 39)
			if math.Abs(out[r][c]-want) > 1e-9 {
				t.Errorf("(%v, %v): expected %.6f, got %.6f", x, y, want, out[r][c])
			}
		}
		if !math.IsNaN(out[r][3]) {
			t.Errorf("expected NaN outside grid, got %v", out[r][3])
		}
	}
}

func TestGrid_ValidateRejectsUnsorted(t *testing.T) {
	g := &Grid{
		X:      []float64{0, 2, 1},
		Y:      []float64{0, 1},
		Values: [][]float64{{0, 0, 0}, {0, 0, 0}},
	}
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for unsorted X")
	}
	if _, err := g.Resample([]float64{0}, []float64{0}); err == nil {
		t.Fatal("expected Resample to reject invalid grid")
	}
}
