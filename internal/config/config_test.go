package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/bulletin-maps/internal/adapter/dataset"
	"go.ngs.io/bulletin-maps/internal/domain"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultDataRoot, cfg.DataRoot)
	assert.Equal(t, dataset.BackendCGO, cfg.Backend)
	assert.Equal(t, domain.MeshUniform, cfg.MeshPolicy)
	assert.Equal(t, 100, cfg.DPI)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, 21, cfg.Catalog().Len())

	products, err := cfg.Products()
	require.NoError(t, err)
	assert.Equal(t, domain.Products(), products)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DATA_ROOT":            "/srv/mfs",
		"DATASET_BACKEND":      "native",
		"MESH_POLICY":          "resample",
		"IRREGULAR_TOLERANCE":  "0.05",
		"IMAGE_DPI":            "72",
		"LOG_LEVEL":            "DEBUG",
		"PORT":                 "9090",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"DATABASE_URL":         "postgres://localhost/frames",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/srv/mfs", cfg.DataRoot)
	assert.Equal(t, dataset.BackendNative, cfg.Backend)
	assert.Equal(t, domain.MeshResample, cfg.MeshPolicy)
	assert.InDelta(t, 0.05, cfg.IrregularTolerance, 1e-12)
	assert.Equal(t, 72, cfg.DPI)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.ListenAddr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://localhost/frames", cfg.DatabaseURL)
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"DATASET_BACKEND":     "hdf4",
		"MESH_POLICY":         "curvy",
		"IRREGULAR_TOLERANCE": "-1",
		"IMAGE_DPI":           "zero",
		"LOG_LEVEL":           "loud",
		"PORT":                "70000",
		"RENDER_CONFIG":       "/nonexistent/render.yaml",
		"ANNOTATIONS_FILE":    "/nonexistent/points.yaml",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(envOf(map[string]string{key: value}))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func TestRenderFile_Overrides(t *testing.T) {
	path := writeFile(t, "render.yaml", `
annotations:
  - {name: Bari, lon: 16.87, lat: 41.12}
products:
  cur:
    title: "Currents {{.Date}} {{.Hour}}"
    levels: 100
    colormap: kindlmann
    stride: 3
    files: all
    extent: {min_lon: 16.0, max_lon: 19.0, min_lat: 39.0, max_lat: 42.0}
`)
	cfg, err := FromEnv(envOf(map[string]string{"RENDER_CONFIG": path}))
	require.NoError(t, err)

	cur, err := cfg.Product("currents")
	require.NoError(t, err)
	assert.Equal(t, "Currents {{.Date}} {{.Hour}}", cur.TitleTemplate)
	assert.Equal(t, 100, cur.ContourLevels)
	assert.Equal(t, "kindlmann", cur.ColorMap)
	assert.Equal(t, 3, cur.VectorStride)
	assert.Equal(t, domain.ProcessAll, cur.FilePolicy)
	assert.Equal(t, &domain.Bounds{MinLon: 16, MaxLon: 19, MinLat: 39, MaxLat: 42}, cur.Extent)
	assert.Equal(t, 25.0, cur.VectorScale)

	sst, err := cfg.Product("sst")
	require.NoError(t, err)
	assert.Equal(t, domain.SSTProduct(), sst)

	pts := cfg.Catalog().Points()
	require.Len(t, pts, 1)
	assert.Equal(t, "Bari", pts[0].Name)
}

func TestRenderFile_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"unknown product": "products:\n  wind: {levels: 10}\n",
		"bad levels":      "products:\n  sst: {levels: 1}\n",
		"bad extent":      "products:\n  cur:\n    extent: {min_lon: 18, max_lon: 17, min_lat: 39, max_lat: 40}\n",
		"bad files":       "products:\n  sst: {files: some}\n",
		"unnamed point":   "annotations:\n  - {lon: 1, lat: 2}\n",
		"not yaml":        "products: [",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "render.yaml", body)
			_, err := FromEnv(envOf(map[string]string{"RENDER_CONFIG": path}))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestAnnotationsFileReplacesCatalog(t *testing.T) {
	path := writeFile(t, "points.yaml", "- {name: A, lon: 18.0, lat: 40.0}\n- {name: B, lon: 18.5, lat: 40.5}\n")
	cfg, err := FromEnv(envOf(map[string]string{"ANNOTATIONS_FILE": path}))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Catalog().Len())
}

func TestProduct_Unknown(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)
	_, err = cfg.Product("wind")
	assert.Error(t, err)
}
