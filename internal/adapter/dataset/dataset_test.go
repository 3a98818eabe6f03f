package dataset

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/bulletin-maps/internal/adapter/dataset/ncfixture"
)

var backends = []Backend{BackendCGO, BackendNative}

var t0 = time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)

func writeTemp(t *testing.T, b ncfixture.Bulletin) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ncfixture.FileName("TEMP", "20240101", "20240101"))
	if err := ncfixture.Write(path, b); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func landCorner(t, r, c int) float64 {
	if r == 0 && c == 0 {
		return math.NaN()
	}
	return 10 + float64(t) + 0.5*float64(r) + 0.25*float64(c)
}

func TestOpen_ReadsAxesAndSurface(t *testing.T) {
	lats := []float64{39, 40, 41}
	lons := []float64{17, 18}
	path := writeTemp(t, ncfixture.Temperature(lats, lons, ncfixture.Hourly(t0, 3), "20240101", landCorner))

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			ds, err := Open(backend, path, Names{Variables: []string{"thetao"}})
			require.NoError(t, err)
			defer func() { _ = ds.Close() }()

			assert.Equal(t, lats, ds.Latitudes())
			assert.Equal(t, lons, ds.Longitudes())
			require.Len(t, ds.Times(), 3)
			assert.Equal(t, t0, ds.Times()[0])
			assert.Equal(t, t0.Add(2*time.Hour), ds.Times()[2])

			bd, ok := ds.Attr("bulletin_date")
			require.True(t, ok)
			assert.Equal(t, "20240101", bd)
			_, ok = ds.Attr("no_such_attribute")
			assert.False(t, ok)

			for step := range 3 {
				f, err := ds.Surface("thetao", step)
				require.NoError(t, err)
				require.Len(t, f, len(lats))
				for r := range f {
					require.Len(t, f[r], len(lons))
					for c := range f[r] {
						want := landCorner(step, r, c)
						if math.IsNaN(want) {
							assert.True(t, math.IsNaN(f[r][c]), "land cell should be NaN")
							continue
						}
						assert.InDelta(t, want, f[r][c], 1e-5, "t=%d r=%d c=%d", step, r, c)
					}
				}
			}

			_, err = ds.Surface("thetao", 3)
			assert.Error(t, err)
			_, err = ds.Surface("so", 0)
			assert.Error(t, err)
		})
	}
}

func TestOpen_BackendsAgree(t *testing.T) {
	lats := []float64{30.5, 31, 31.5, 32}
	lons := []float64{10, 10.5, 11}
	u := func(t, r, c int) float64 { return 0.1*float64(r) - 0.05*float64(c) + 0.01*float64(t) }
	v := func(t, r, c int) float64 { return -0.2 * float64(r*c+t) }
	path := filepath.Join(t.TempDir(), ncfixture.FileName("RFVL", "20240101", "20240102"))
	require.NoError(t, ncfixture.Write(path, ncfixture.Currents(lats, lons, ncfixture.Hourly(t0, 2), "20240101", u, v)))

	names := Names{Variables: []string{"uo", "vo"}}
	a, err := Open(BackendCGO, path, names)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	b, err := Open(BackendNative, path, names)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.Equal(t, a.Latitudes(), b.Latitudes())
	assert.Equal(t, a.Longitudes(), b.Longitudes())
	assert.Equal(t, a.Times(), b.Times())
	for _, name := range names.Variables {
		for step := range 2 {
			fa, err := a.Surface(name, step)
			require.NoError(t, err)
			fb, err := b.Surface(name, step)
			require.NoError(t, err)
			assert.Equal(t, fa, fb, "%s[%d]", name, step)
		}
	}
}

func TestOpen_FlatVariable(t *testing.T) {
	b := ncfixture.Temperature([]float64{39, 40}, []float64{17, 18}, ncfixture.Hourly(t0, 1), "20240101", ncfixture.Constant(15))
	b.Flat = true
	path := writeTemp(t, b)

	for _, backend := range backends {
		ds, err := Open(backend, path, Names{Variables: []string{"thetao"}})
		require.NoError(t, err, backend)
		f, err := ds.Surface("thetao", 0)
		require.NoError(t, err, backend)
		assert.Equal(t, [][]float64{{15, 15}, {15, 15}}, f, backend)
		require.NoError(t, ds.Close())
	}
}

func TestOpen_NotFound(t *testing.T) {
	for _, backend := range backends {
		_, err := Open(backend, filepath.Join(t.TempDir(), "missing.nc"), Names{})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", backend, err)
		}
	}
}

func TestOpen_RejectsInvalidGrids(t *testing.T) {
	times := ncfixture.Hourly(t0, 1)
	cases := map[string]ncfixture.Bulletin{
		"descending lat": ncfixture.Temperature([]float64{41, 40, 39}, []float64{17, 18}, times, "20240101", ncfixture.Constant(1)),
		"single lon":     ncfixture.Temperature([]float64{39, 40}, []float64{17}, times, "20240101", ncfixture.Constant(1)),
	}
	for name, b := range cases {
		path := writeTemp(t, b)
		for _, backend := range backends {
			_, err := Open(backend, path, Names{Variables: []string{"thetao"}})
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("%s/%s: expected ErrInvalid, got %v", name, backend, err)
			}
		}
	}

	path := writeTemp(t, ncfixture.Temperature([]float64{39, 40}, []float64{17, 18}, times, "20240101", ncfixture.Constant(1)))
	for _, backend := range backends {
		_, err := Open(backend, path, Names{Variables: []string{"uo"}})
		assert.ErrorIs(t, err, ErrInvalid, "missing variable with %s", backend)
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendCGO, b)
	b, err = ParseBackend("Native")
	require.NoError(t, err)
	assert.Equal(t, BackendNative, b)
	_, err = ParseBackend("hdf")
	assert.Error(t, err)
}

func TestPacking(t *testing.T) {
	p := packing{fill: []float64{-32767}, scale: 0.001, offset: 15, hasScale: true, hasOffset: true}
	assert.True(t, math.IsNaN(p.unpack(-32767)))
	assert.InDelta(t, 15.5, p.unpack(500), 1e-12)

	p = packing{fill: []float64{1e20}}
	assert.True(t, math.IsNaN(p.unpack(float64(float32(1e20)))))
	assert.Equal(t, 3.0, p.unpack(3))
}
