package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.ngs.io/bulletin-maps/internal/domain"
)

// background fills the whole data area.
type background struct {
	color color.Color
}

func (b background) Plot(c draw.Canvas, _ *plot.Plot) {
	c.FillPolygon(b.color, []vg.Point{
		c.Min,
		{X: c.Max.X, Y: c.Min.Y},
		c.Max,
		{X: c.Min.X, Y: c.Max.Y},
	})
}

// quiver draws one arrow per cell, tail at the cell centre. An arrow of
// magnitude scale spans the full plot width.
type quiver struct {
	xs, ys []float64
	u, v   domain.Field
	scale  float64
	stride int
	style  draw.LineStyle
}

func (q *quiver) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	width := float64(c.Max.X - c.Min.X)
	stride := max(q.stride, 1)

	for r := 0; r < len(q.ys); r += stride {
		for col := 0; col < len(q.xs); col += stride {
			u, v := q.u[r][col], q.v[r][col]
			mag := math.Hypot(u, v)
			if math.IsNaN(mag) || mag == 0 {
				continue
			}
			length := mag / q.scale * width
			ang := math.Atan2(v, u)

			tail := vg.Point{X: trX(q.xs[col]), Y: trY(q.ys[r])}
			tip := vg.Point{
				X: tail.X + vg.Length(length*math.Cos(ang)),
				Y: tail.Y + vg.Length(length*math.Sin(ang)),
			}
			head := 0.3 * length
			left := vg.Point{
				X: tip.X - vg.Length(head*math.Cos(ang-0.4)),
				Y: tip.Y - vg.Length(head*math.Sin(ang-0.4)),
			}
			right := vg.Point{
				X: tip.X - vg.Length(head*math.Cos(ang+0.4)),
				Y: tip.Y - vg.Length(head*math.Sin(ang+0.4)),
			}
			c.StrokeLines(q.style, c.ClipLinesXY([]vg.Point{tail, tip}, []vg.Point{left, tip, right})...)
		}
	}
}

// graticule places ticks every step degrees starting from origin.
type graticule struct {
	origin, step float64
	hemi         [2]string // suffixes for negative and positive values
}

func (g graticule) Ticks(lo, hi float64) []plot.Tick {
	if g.step <= 0 || hi < lo {
		return nil
	}
	var ticks []plot.Tick
	start := g.origin + math.Ceil((lo-g.origin)/g.step-1e-9)*g.step
	for v := start; v <= hi+1e-9; v += g.step {
		suffix := g.hemi[1]
		if v < 0 {
			suffix = g.hemi[0]
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%.1f°%s", math.Abs(v), suffix)})
	}
	return ticks
}
