// Package render draws bulletin frames: a map of one derived field with
// optional current arrows, points of interest, a title and a colour bar.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.ngs.io/bulletin-maps/internal/domain"
)

// ErrDraw is returned when the drawing backend fails.
var ErrDraw = errors.New("drawing failed")

// DefaultDPI matches the default resolution of matplotlib figures.
const DefaultDPI = 100

// Options holds the renderer settings shared by every frame.
type Options struct {
	DPI       int
	Coastline *Coastline // Optional shoreline overlay.

	Ocean color.Color
	Land  color.Color
	Lake  color.Color

	MarkerColor color.Color
	LabelColor  color.Color
}

// DefaultOptions returns the bulletin colours at DefaultDPI.
func DefaultOptions() Options {
	return Options{
		DPI:         DefaultDPI,
		Ocean:       color.NRGBA{R: 0x97, G: 0xb6, B: 0xe1, A: 0xff},
		Land:        color.NRGBA{R: 0xef, G: 0xef, B: 0xdb, A: 0xff},
		Lake:        color.NRGBA{R: 0x97, G: 0xb6, B: 0xe1, A: 0xff},
		MarkerColor: color.NRGBA{R: 0x21, G: 0x00, B: 0x1a, A: 0xff},
		LabelColor:  color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff},
	}
}

// Frame is everything drawn for one timestep.
type Frame struct {
	Product domain.Product
	Title   string
	Mesh    domain.Mesh
	Field   domain.Field
	// U and V are the vector components on the mesh, required when the
	// product draws arrows.
	U, V    domain.Field
	// Window zooms the map; nil, or a window holding fewer than 2x2 mesh
	// cells, shows the whole mesh.
	Window  *domain.Bounds
	Catalog domain.Catalog
}

// Renderer draws frames as PNG images.
type Renderer struct {
	opts Options
}

// New returns a renderer. Zero colours and DPI take their defaults.
func New(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	if opts.Ocean == nil {
		opts.Ocean = def.Ocean
	}
	if opts.Land == nil {
		opts.Land = def.Land
	}
	if opts.Lake == nil {
		opts.Lake = def.Lake
	}
	if opts.MarkerColor == nil {
		opts.MarkerColor = def.MarkerColor
	}
	if opts.LabelColor == nil {
		opts.LabelColor = def.LabelColor
	}
	return &Renderer{opts: opts}
}

func (f Frame) validate() error {
	rows, cols := f.Mesh.Dims()
	if rows < 2 || cols < 2 {
		return fmt.Errorf("%w: mesh is %dx%d", domain.ErrDegenerateGrid, rows, cols)
	}
	if err := f.Field.Validate(); err != nil {
		return err
	}
	if fr, fc := f.Field.Dims(); fr != rows || fc != cols {
		return fmt.Errorf("%w: field is [%d, %d], mesh is [%d, %d]", domain.ErrShapeMismatch, fr, fc, rows, cols)
	}
	if !f.Product.WantsVectorGlyphs() {
		return nil
	}
	if !f.U.SameShape(f.Field) || !f.V.SameShape(f.Field) {
		return fmt.Errorf("%w: vector components do not match the field", domain.ErrShapeMismatch)
	}
	return nil
}

// Render draws f and writes it to w as PNG.
func (r *Renderer) Render(w io.Writer, f Frame) (err error) {
	if err := f.validate(); err != nil {
		return err
	}

	// gonum/plot reports invalid drawing state by panicking.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrDraw, rec)
		}
	}()

	xs, ys := f.Mesh.Axes()
	window := domain.Bounds{MinLon: xs[0], MaxLon: xs[len(xs)-1], MinLat: ys[0], MaxLat: ys[len(ys)-1]}
	if f.Window != nil {
		window = *f.Window
	}
	grid, u, v := crop(f.Mesh, f.Field, f.U, f.V, window)

	lo, hi := grid.colorRange()
	cm, err := ColorMap(f.Product.ColorMap, lo, hi)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)

	heat := plotter.NewHeatMap(grid, cm.Palette(f.Product.ContourLevels))
	heat.Min, heat.Max = lo, hi
	heat.NaN = r.opts.Land
	heat.Rasterized = grid.uniform()
	xmin, xmax, ymin, ymax := heat.DataRange()
	shown := domain.Bounds{MinLon: xmin, MaxLon: xmax, MinLat: ymin, MaxLat: ymax}

	p.Add(background{color: r.opts.Ocean}, heat)

	if polys := r.opts.Coastline.Within(shown); len(polys) > 0 {
		p.Add(&coastLayer{
			polys:   polys,
			land:    r.opts.Land,
			lake:    r.opts.Lake,
			outline: draw.LineStyle{Color: color.Black, Width: vg.Points(0.6)},
		})
	}

	if f.Product.Graticule > 0 {
		p.X.Tick.Marker = graticule{origin: grid.xs[0], step: f.Product.Graticule, hemi: [2]string{"W", "E"}}
		p.Y.Tick.Marker = graticule{origin: grid.ys[0], step: f.Product.Graticule, hemi: [2]string{"S", "N"}}
		lines := plotter.NewGrid()
		lines.Vertical.Color = color.Gray{Y: 0x40}
		lines.Horizontal.Color = color.Gray{Y: 0x40}
		p.Add(lines)
	} else {
		p.HideAxes()
	}

	if f.Product.WantsVectorGlyphs() {
		p.Add(&quiver{
			xs: grid.xs, ys: grid.ys, u: u, v: v,
			scale:  f.Product.VectorScale,
			stride: f.Product.VectorStride,
			style:  draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)},
		})
	}

	if err := r.annotate(p, f.Catalog.Within(shown)); err != nil {
		return err
	}

	// Fix the window after Add, which widens the axes to every plotter's data range.
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax

	return r.draw(w, f.Product, p, cm, (xmax-xmin)/(ymax-ymin))
}

// annotate adds a marker and a label for every point.
func (r *Renderer) annotate(p *plot.Plot, c domain.Catalog) error {
	if c.Len() == 0 {
		return nil
	}
	pts := c.Points()
	xys := make(plotter.XYs, len(pts))
	names := make([]string, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.Lon, Y: pt.Lat}
		names[i] = pt.Name
	}

	markers, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("failed to build markers: %w", err)
	}
	markers.GlyphStyle = draw.GlyphStyle{Color: r.opts.MarkerColor, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return fmt.Errorf("failed to build labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = r.opts.LabelColor
		labels.TextStyle[i].Font.Size = vg.Points(8)
	}
	labels.Offset = vg.Point{X: vg.Points(3), Y: vg.Points(1)}

	p.Add(markers, labels)
	return nil
}

// draw lays out the map and its colour bar on a canvas of the product size.
func (r *Renderer) draw(w io.Writer, prod domain.Product, p *plot.Plot, cm palette.ColorMap, aspect float64) error {
	width := vg.Length(prod.WidthIn) * vg.Inch
	height := vg.Length(prod.HeightIn) * vg.Inch
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(r.opts.DPI))
	dc := draw.New(img)

	vertical := prod.Legend == domain.LegendRight
	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: vertical, Colors: prod.ContourLevels})

	var mapArea, barArea draw.Canvas
	if vertical {
		band := 1.3 * vg.Inch
		mapArea = draw.Crop(dc, 0, -band, 0, 0)
		barArea = draw.Crop(dc, width-band+0.2*vg.Inch, -0.2*vg.Inch, 0.12*height, -0.12*height)
		bar.HideX()
		bar.Y.Label.Text = prod.Units
	} else {
		band := 1.0 * vg.Inch
		mapArea = draw.Crop(dc, 0, 0, band, 0)
		barArea = draw.Crop(dc, 0.15*width, -0.15*width, 0.1*vg.Inch, -(height - band + 0.25*vg.Inch))
		bar.HideY()
		bar.X.Label.Text = prod.Units
	}

	// Keep degrees square, leaving room for the title and tick labels.
	dx, dy := aspectFit(
		float64(mapArea.Max.X-mapArea.Min.X), float64(mapArea.Max.Y-mapArea.Min.Y),
		float64(0.9*vg.Inch), float64(0.9*vg.Inch), aspect,
	)
	mapArea = draw.Crop(mapArea, vg.Length(dx), -vg.Length(dx), vg.Length(dy), -vg.Length(dy))

	p.Draw(mapArea)
	bar.Draw(barArea)

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
