// Package config loads the pipeline and server settings from the environment
// and an optional YAML render file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"go.ngs.io/bulletin-maps/internal/adapter/dataset"
	"go.ngs.io/bulletin-maps/internal/domain"
)

// DefaultDataRoot is the operational root of the rolling MFS forecasts.
const DefaultDataRoot = "/data/inputs/metocean/rolling/ocean/CMCC/CMEMS/1.0forecast/1h/"

// ErrConfig is wrapped by every configuration error.
var ErrConfig = errors.New("invalid configuration")

// Config holds the environment-driven settings.
type Config struct {
	DataRoot           string
	OutputDir          string // Frames folder served by the HTTP server.
	Backend            dataset.Backend
	MeshPolicy         domain.MeshPolicy
	IrregularTolerance float64 // Spacing deviation above which the uniform mesh is reported.
	DPI                int
	CoastlinePath      string
	AnnotationsPath    string
	RenderConfigPath   string
	DatabaseURL        string
	LogLevel           zerolog.Level
	Port               int
	AllowedOrigins     []string // Empty allows every origin.

	render *RenderFile
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and loads the render and annotation
// files it names.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		DataRoot:           DefaultDataRoot,
		OutputDir:          "./frames",
		Backend:            dataset.BackendCGO,
		MeshPolicy:         domain.MeshUniform,
		IrregularTolerance: 0.01,
		DPI:                100,
		LogLevel:           zerolog.InfoLevel,
		Port:               8080,
	}

	if v := getenv("DATA_ROOT"); v != "" {
		cfg.DataRoot = v
	}
	if v := getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	backend, err := dataset.ParseBackend(getenv("DATASET_BACKEND"))
	if err != nil {
		return cfg, fmt.Errorf("%w: DATASET_BACKEND: %v", ErrConfig, err)
	}
	cfg.Backend = backend

	policy, err := domain.ParseMeshPolicy(getenv("MESH_POLICY"))
	if err != nil {
		return cfg, fmt.Errorf("%w: MESH_POLICY: %v", ErrConfig, err)
	}
	cfg.MeshPolicy = policy

	if v := getenv("IRREGULAR_TOLERANCE"); v != "" {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil || tol < 0 {
			return cfg, fmt.Errorf("%w: invalid IRREGULAR_TOLERANCE: %s", ErrConfig, v)
		}
		cfg.IrregularTolerance = tol
	}

	if v := getenv("IMAGE_DPI"); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil || dpi <= 0 || dpi > 600 {
			return cfg, fmt.Errorf("%w: invalid IMAGE_DPI: %s", ErrConfig, v)
		}
		cfg.DPI = dpi
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return cfg, fmt.Errorf("%w: invalid LOG_LEVEL: %s", ErrConfig, v)
		}
		cfg.LogLevel = lvl
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("%w: invalid PORT: %s", ErrConfig, v)
		}
		cfg.Port = port
	}

	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	cfg.CoastlinePath = getenv("COASTLINE_SHAPEFILE")
	cfg.AnnotationsPath = getenv("ANNOTATIONS_FILE")
	cfg.RenderConfigPath = getenv("RENDER_CONFIG")
	cfg.DatabaseURL = getenv("DATABASE_URL")

	if cfg.RenderConfigPath != "" {
		rf, err := LoadRenderFile(cfg.RenderConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		cfg.render = rf
	}
	if cfg.AnnotationsPath != "" {
		points, err := LoadAnnotations(cfg.AnnotationsPath)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		if cfg.render == nil {
			cfg.render = &RenderFile{}
		}
		cfg.render.Annotations = points
	}

	if _, err := cfg.Products(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Products returns the built-in products with the render file overrides applied.
func (c Config) Products() ([]domain.Product, error) {
	products := domain.Products()
	if c.render == nil {
		return products, nil
	}
	overrides := make(map[string]ProductOverride, len(c.render.Products))
	for name, o := range c.render.Products {
		p, ok := domain.LookupProduct(name)
		if !ok {
			return nil, fmt.Errorf("%w: render file names unknown product %q", ErrConfig, name)
		}
		overrides[p.Name] = o
	}
	for i := range products {
		o, ok := overrides[products[i].Name]
		if !ok {
			continue
		}
		p, err := o.apply(products[i])
		if err != nil {
			return nil, fmt.Errorf("%w: product %s: %v", ErrConfig, products[i].Name, err)
		}
		products[i] = p
	}
	return products, nil
}

// Product returns one configured product by name.
func (c Config) Product(name string) (domain.Product, error) {
	want, ok := domain.LookupProduct(name)
	if !ok {
		return domain.Product{}, fmt.Errorf("unknown product %q", name)
	}
	products, err := c.Products()
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.Name == want.Name {
			return p, nil
		}
	}
	return want, nil
}

// Catalog returns the points of interest drawn on the frames.
func (c Config) Catalog() domain.Catalog {
	if c.render != nil && c.render.Annotations != nil {
		return domain.NewCatalog(c.render.Annotations)
	}
	return domain.SalentoCatalog()
}
