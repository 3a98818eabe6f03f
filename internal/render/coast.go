package render

import (
	"fmt"
	"image/color"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.ngs.io/bulletin-maps/internal/domain"
)

// Coastline is a spatial index of land polygons in longitude/latitude degrees.
// The first ring of each polygon is land; the others are lakes.
type Coastline struct {
	tree *rtree.Rtree
	n    int
}

type coastShape struct {
	geom.Polygon
}

// NewCoastline indexes polygons.
func NewCoastline(polys []geom.Polygonal) *Coastline {
	c := &Coastline{tree: rtree.NewTree(25, 50)}
	for _, p := range polys {
		for _, poly := range p.Polygons() {
			if len(poly) == 0 || len(poly[0]) < 3 {
				continue
			}
			c.tree.Insert(coastShape{Polygon: poly})
			c.n++
		}
	}
	return c
}

// LoadCoastline reads the polygons of a shapefile in geographic coordinates.
// Non-polygon shapes are skipped.
func LoadCoastline(path string) (*Coastline, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coastline shapefile: %w", err)
	}
	defer dec.Close()

	var polys []geom.Polygonal
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		if p, ok := g.(geom.Polygonal); ok {
			polys = append(polys, p)
		}
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("failed to read coastline shapefile: %w", err)
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("coastline shapefile %s has no polygons", path)
	}
	return NewCoastline(polys), nil
}

// Len returns the number of indexed polygons.
func (c *Coastline) Len() int {
	if c == nil {
		return 0
	}
	return c.n
}

// Within returns the polygons whose bounding box intersects b.
func (c *Coastline) Within(b domain.Bounds) []geom.Polygon {
	if c == nil {
		return nil
	}
	found := c.tree.SearchIntersect(&geom.Bounds{
		Min: geom.Point{X: b.MinLon, Y: b.MinLat},
		Max: geom.Point{X: b.MaxLon, Y: b.MaxLat},
	})
	out := make([]geom.Polygon, 0, len(found))
	for _, s := range found {
		out = append(out, s.(coastShape).Polygon)
	}
	return out
}

// coastLayer fills land and lakes and strokes the shore.
type coastLayer struct {
	polys   []geom.Polygon
	land    color.Color
	lake    color.Color
	outline draw.LineStyle
}

func (l *coastLayer) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	ring := func(path geom.Path) []vg.Point {
		pts := make([]vg.Point, len(path))
		for i, p := range path {
			pts[i] = vg.Point{X: trX(p.X), Y: trY(p.Y)}
		}
		return pts
	}
	for _, poly := range l.polys {
		for i, path := range poly {
			pts := ring(path)
			fill := l.land
			if i > 0 {
				fill = l.lake
			}
			if clipped := c.ClipPolygonXY(pts); len(clipped) > 2 {
				c.FillPolygon(fill, clipped)
			}
			closed := append(pts, pts[0])
			c.StrokeLines(l.outline, c.ClipLinesXY(closed)...)
		}
	}
}
