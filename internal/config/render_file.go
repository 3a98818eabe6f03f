package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go.ngs.io/bulletin-maps/internal/domain"
)

// RenderFile is the YAML document named by RENDER_CONFIG.
//
//	annotations:
//	  - {name: Brindisi, lon: 17.95, lat: 40.65}
//	products:
//	  cur:
//	    levels: 500
//	    extent: {min_lon: 16.9, max_lon: 18.6, min_lat: 39.7, max_lat: 40.7}
type RenderFile struct {
	Annotations []domain.PointOfInterest
	Products    map[string]ProductOverride
}

// ProductOverride replaces the non-zero fields of a built-in product.
type ProductOverride struct {
	Title    string  `yaml:"title"`
	Levels   int     `yaml:"levels"`
	ColorMap string  `yaml:"colormap"`
	Scale    float64 `yaml:"scale"`
	Stride   int     `yaml:"stride"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Files    string  `yaml:"files"`
	Extent   *extent `yaml:"extent"`
}

type extent struct {
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
}

type point struct {
	Name string  `yaml:"name"`
	Lon  float64 `yaml:"lon"`
	Lat  float64 `yaml:"lat"`
}

type renderDoc struct {
	Annotations []point                    `yaml:"annotations"`
	Products    map[string]ProductOverride `yaml:"products"`
}

// LoadRenderFile parses a render file.
func LoadRenderFile(path string) (*RenderFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read render file: %w", err)
	}
	var doc renderDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse render file %s: %w", path, err)
	}
	rf := &RenderFile{Products: doc.Products}
	if doc.Annotations != nil {
		rf.Annotations, err = toPoints(doc.Annotations)
		if err != nil {
			return nil, fmt.Errorf("render file %s: %w", path, err)
		}
	}
	return rf, nil
}

// LoadAnnotations parses a YAML list of points of interest.
func LoadAnnotations(path string) ([]domain.PointOfInterest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	var pts []point
	if err := yaml.Unmarshal(data, &pts); err != nil {
		return nil, fmt.Errorf("failed to parse annotations %s: %w", path, err)
	}
	out, err := toPoints(pts)
	if err != nil {
		return nil, fmt.Errorf("annotations %s: %w", path, err)
	}
	return out, nil
}

func toPoints(in []point) ([]domain.PointOfInterest, error) {
	out := make([]domain.PointOfInterest, 0, len(in))
	for i, p := range in {
		if p.Name == "" {
			return nil, fmt.Errorf("point %d has no name", i)
		}
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 360 {
			return nil, fmt.Errorf("point %s is out of range (%g, %g)", p.Name, p.Lon, p.Lat)
		}
		out = append(out, domain.PointOfInterest{Name: p.Name, Lon: p.Lon, Lat: p.Lat})
	}
	return out, nil
}

func (o ProductOverride) apply(p domain.Product) (domain.Product, error) {
	if o.Title != "" {
		p.TitleTemplate = o.Title
	}
	if o.Levels != 0 {
		p.ContourLevels = o.Levels
	}
	if o.ColorMap != "" {
		p.ColorMap = o.ColorMap
	}
	if o.Scale != 0 {
		p.VectorScale = o.Scale
	}
	if o.Stride != 0 {
		p.VectorStride = o.Stride
	}
	if o.Width != 0 {
		p.WidthIn = o.Width
	}
	if o.Height != 0 {
		p.HeightIn = o.Height
	}
	if o.Files != "" {
		policy, err := domain.ParseFilePolicy(o.Files)
		if err != nil {
			return p, err
		}
		p.FilePolicy = policy
	}
	if o.Extent != nil {
		p.Extent = &domain.Bounds{
			MinLon: o.Extent.MinLon,
			MaxLon: o.Extent.MaxLon,
			MinLat: o.Extent.MinLat,
			MaxLat: o.Extent.MaxLat,
		}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
