package domain

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Kind distinguishes scalar products from products derived from vector components.
type Kind int

const (
	// KindScalar plots one variable as is.
	KindScalar Kind = iota
	// KindVector plots the magnitude of two components and draws direction glyphs.
	KindVector
)

// FilePolicy decides how many of the matched input files a run processes.
type FilePolicy int

const (
	// ProcessAll renders every matched file in name order.
	ProcessAll FilePolicy = iota
	// ProcessFirstOnly renders the first matched file and ignores the rest.
	ProcessFirstOnly
)

// ParseFilePolicy parses "all" or "first".
func ParseFilePolicy(s string) (FilePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return ProcessAll, nil
	case "first", "first-only":
		return ProcessFirstOnly, nil
	default:
		return ProcessAll, fmt.Errorf("unknown file policy %q (use all or first)", s)
	}
}

func (p FilePolicy) String() string {
	if p == ProcessFirstOnly {
		return "first"
	}
	return "all"
}

// LegendPosition places the colour bar next to the map.
type LegendPosition int

const (
	// LegendBottom draws a horizontal colour bar under the map.
	LegendBottom LegendPosition = iota
	// LegendRight draws a vertical colour bar to the right of the map.
	LegendRight
)

// TitleData is the data available to a product title template.
type TitleData struct {
	ProductionDate string // YYYY-MM-DD.
	BulletinDate   string // YYYYMMDD, as stored in the dataset.
	Date           string // YYYY-MM-DD of the timestep.
	DateSlash      string // YYYY/MM/DD of the timestep.
	Hour           string // HH of the timestep.
}

// Product describes one bulletin product and how to turn its variables into a frame.
type Product struct {
	Name           string   // Short name used on the command line, e.g. "sst".
	AppName        string   // Tag used in log lines.
	Description    string
	Kind           Kind
	Variables      []string // One scalar variable, or the u and v components.
	FileMatch      []string // Substrings that must all appear in an input filename.
	FilenamePrefix string
	TitleTemplate  string
	FilePolicy     FilePolicy
	WidthIn        float64 // Frame size in inches.
	HeightIn       float64
	Legend         LegendPosition
	Units          string
	ContourLevels  int     // Number of colour levels of the field.
	ColorMap       string  // Name of a sequential colour map, see render.ColorMapNames.
	VectorScale    float64 // Data units per plot width of a glyph, as matplotlib's quiver scale.
	VectorStride   int     // Draw a glyph every VectorStride cells.
	Graticule      float64 // Spacing of parallels and meridians in degrees; 0 hides them.
	Extent         *Bounds // Display window; nil, or one too small for the grid, uses the grid bounds.
}

// SSTProduct is the sea surface temperature bulletin.
func SSTProduct() Product {
	return Product{
		Name:           "sst",
		AppName:        "[MFS_SST_plot]",
		Description:    "Sea surface temperature -- MFS",
		Kind:           KindScalar,
		Variables:      []string{"thetao"},
		FileMatch:      []string{"MFSeas6", "TEMP"},
		FilenamePrefix: "mfs_sst",
		TitleTemplate:  "Sea surface temperature -- MFS \n Production Date: {{.ProductionDate}} -- Reference Date and time: {{.Date}}, {{.Hour}}:30",
		FilePolicy:     ProcessAll,
		WidthIn:        20,
		HeightIn:       7,
		Legend:         LegendBottom,
		Units:          "°C",
		ContourLevels:  256,
		ColorMap:       "jet",
		VectorScale:    25,
		VectorStride:   1,
		Graticule:      2,
	}
}

// CurrentsProduct is the surface current speed bulletin over the Salento coast.
func CurrentsProduct() Product {
	return Product{
		Name:           "cur",
		AppName:        "[MFS_CUR_plot]",
		Description:    "MFS Currents",
		Kind:           KindVector,
		Variables:      []string{"uo", "vo"},
		FileMatch:      []string{"MFSeas6", "RFVL"},
		FilenamePrefix: "mfs_cur",
		TitleTemplate:  "MFS Currents for date {{.DateSlash}} at {{.Hour}}:00 (PD={{.BulletinDate}})",
		FilePolicy:     ProcessFirstOnly,
		WidthIn:        15,
		HeightIn:       7,
		Legend:         LegendRight,
		Units:          "m/s",
		ContourLevels:  750,
		ColorMap:       "jet",
		VectorScale:    25,
		VectorStride:   1,
		Extent:         &Bounds{MinLat: 39.7, MaxLat: 40.7, MinLon: 16.9, MaxLon: 18.6},
	}
}

// Products returns the built-in products.
func Products() []Product {
	return []Product{SSTProduct(), CurrentsProduct()}
}

// LookupProduct finds a built-in product by name. "currents" is accepted for "cur".
func LookupProduct(name string) (Product, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "currents" {
		name = "cur"
	}
	for _, p := range Products() {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// Validate checks the product definition for internal consistency.
func (p Product) Validate() error {
	switch p.Kind {
	case KindScalar:
		if len(p.Variables) != 1 {
			return fmt.Errorf("product %s: scalar product needs 1 variable, got %d", p.Name, len(p.Variables))
		}
	case KindVector:
		if len(p.Variables) != 2 {
			return fmt.Errorf("product %s: vector product needs 2 variables, got %d", p.Name, len(p.Variables))
		}
	default:
		return fmt.Errorf("product %s: unknown kind %d", p.Name, p.Kind)
	}
	if p.FilenamePrefix == "" {
		return fmt.Errorf("product %s: empty filename prefix", p.Name)
	}
	if p.WidthIn <= 0 || p.HeightIn <= 0 {
		return fmt.Errorf("product %s: invalid frame size %vx%v", p.Name, p.WidthIn, p.HeightIn)
	}
	if p.ContourLevels < 2 {
		return fmt.Errorf("product %s: need at least 2 contour levels, got %d", p.Name, p.ContourLevels)
	}
	if p.Graticule < 0 {
		return fmt.Errorf("product %s: negative graticule spacing", p.Name)
	}
	if p.Kind == KindVector && p.VectorScale <= 0 {
		return fmt.Errorf("product %s: vector scale must be positive", p.Name)
	}
	if p.Extent != nil {
		if err := p.Extent.Validate(); err != nil {
			return fmt.Errorf("product %s: extent: %w", p.Name, err)
		}
	}
	if _, err := template.New(p.Name).Parse(p.TitleTemplate); err != nil {
		return fmt.Errorf("product %s: title template: %w", p.Name, err)
	}
	return nil
}

// WantsVectorGlyphs reports whether direction glyphs are drawn over the field.
func (p Product) WantsVectorGlyphs() bool {
	return p.Kind == KindVector
}

// Matches reports whether filename contains every FileMatch substring.
func (p Product) Matches(filename string) bool {
	if len(p.FileMatch) == 0 {
		return false
	}
	for _, s := range p.FileMatch {
		if !strings.Contains(filename, s) {
			return false
		}
	}
	return true
}

// Derive computes the plotted field from the product variables, in Variables order,
// all read at the same timestep and depth.
func (p Product) Derive(components []Field) (Field, error) {
	switch p.Kind {
	case KindScalar:
		if len(components) != 1 {
			return nil, fmt.Errorf("product %s: expected 1 component, got %d", p.Name, len(components))
		}
		if err := components[0].Validate(); err != nil {
			return nil, err
		}
		return components[0], nil
	case KindVector:
		if len(components) != 2 {
			return nil, fmt.Errorf("product %s: expected 2 components, got %d", p.Name, len(components))
		}
		return Magnitude(components[0], components[1])
	default:
		return nil, fmt.Errorf("product %s: unknown kind %d", p.Name, p.Kind)
	}
}

// Title renders the product title template.
func (p Product) Title(data TitleData) (string, error) {
	tmpl, err := template.New(p.Name).Option("missingkey=error").Parse(p.TitleTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse title template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render title: %w", err)
	}
	return buf.String(), nil
}

// NewTitleData assembles title data from the bulletin date attribute and the timestep.
func NewTitleData(bulletinDate, iso string) (TitleData, error) {
	prod, err := FormatBulletinDate(bulletinDate)
	if err != nil {
		return TitleData{}, err
	}
	date, hour, err := SplitTimestamp(iso)
	if err != nil {
		return TitleData{}, err
	}
	return TitleData{
		ProductionDate: prod,
		BulletinDate:   strings.TrimSpace(bulletinDate),
		Date:           date,
		DateSlash:      strings.ReplaceAll(date, "-", "/"),
		Hour:           hour,
	}, nil
}
