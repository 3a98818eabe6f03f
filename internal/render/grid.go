package render

import (
	"math"

	"go.ngs.io/bulletin-maps/internal/domain"
)

// cellGrid adapts a rectilinear mesh and its field to plotter.GridXYZ.
type cellGrid struct {
	xs, ys []float64
	z      domain.Field
}

func (g cellGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g cellGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g cellGrid) X(c int) float64    { return g.xs[c] }
func (g cellGrid) Y(r int) float64    { return g.ys[r] }

// uniform reports whether both axes are evenly spaced, which the raster
// heat map drawing assumes.
func (g cellGrid) uniform() bool {
	const tol = 1e-6
	return domain.SpacingDeviation(g.xs) < tol && domain.SpacingDeviation(g.ys) < tol
}

// colorRange returns the finite range of the field, widened when it is
// constant and defaulted when there is no finite value.
func (g cellGrid) colorRange() (lo, hi float64) {
	lo, hi, ok := g.z.Range()
	if !ok {
		return 0, 1
	}
	if hi-lo < 1e-12 {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// span returns the index range [from, to) of axis values inside [lo, hi].
func span(axis []float64, lo, hi float64) (from, to int) {
	const eps = 1e-9
	from, to = len(axis), 0
	for i, v := range axis {
		if v >= lo-eps && v <= hi+eps {
			from = min(from, i)
			to = max(to, i+1)
		}
	}
	if from >= to {
		return 0, 0
	}
	return from, to
}

func sub(f domain.Field, r0, r1, c0, c1 int) domain.Field {
	if f == nil {
		return nil
	}
	out := make(domain.Field, r1-r0)
	for r := range out {
		out[r] = f[r0+r][c0:c1]
	}
	return out
}

// crop keeps the mesh cells whose centres fall inside window. A window
// holding fewer than 2x2 centres shows the whole mesh instead. Fields u
// and v may be nil.
func crop(mesh domain.Mesh, field, u, v domain.Field, window domain.Bounds) (cellGrid, domain.Field, domain.Field) {
	xs, ys := mesh.Axes()
	c0, c1 := span(xs, window.MinLon, window.MaxLon)
	r0, r1 := span(ys, window.MinLat, window.MaxLat)
	if c1-c0 < 2 || r1-r0 < 2 {
		c0, c1, r0, r1 = 0, len(xs), 0, len(ys)
	}
	g := cellGrid{xs: xs[c0:c1], ys: ys[r0:r1], z: sub(field, r0, r1, c0, c1)}
	return g, sub(u, r0, r1, c0, c1), sub(v, r0, r1, c0, c1)
}

// aspectFit returns the offsets that shrink a w x h box, less the given padding,
// to the width/height ratio aspect.
func aspectFit(w, h, padX, padY, aspect float64) (dx, dy float64) {
	aw, ah := w-padX, h-padY
	if aw <= 0 || ah <= 0 || aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) {
		return 0, 0
	}
	if aw/ah > aspect {
		return (aw - ah*aspect) / 2, 0
	}
	return 0, (ah - aw/aspect) / 2
}
