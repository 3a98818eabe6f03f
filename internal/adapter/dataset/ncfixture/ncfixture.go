// Package ncfixture writes small NetCDF files laid out like the MFS
// Mediterranean bulletins: time, depth, lat and lon axes, float variables
// shaped (time, depth, lat, lon) and a bulletin_date global attribute.
package ncfixture

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

// FillValue marks land cells, as in the operational files.
const FillValue float32 = 1e20

// TimeUnits is the CF unit of the written time axis.
const TimeUnits = "seconds since 1970-01-01 00:00:00"

// Generator returns the value of a variable at timestep t, latitude index r and
// longitude index c. NaN is written as FillValue.
type Generator func(t, r, c int) float64

// Constant returns a generator that yields v everywhere.
func Constant(v float64) Generator {
	return func(int, int, int) float64 { return v }
}

// Bulletin describes one file to write.
type Bulletin struct {
	Lats         []float64
	Lons         []float64
	Times        []time.Time
	Depths       []float64 // Defaults to the first MFS level.
	BulletinDate string    // YYYYMMDD; omitted when empty.
	Vars         map[string]Generator
	Units        map[string]string
	// Flat writes variables as (time, lat, lon) without a depth axis.
	Flat bool
}

// Temperature returns a TEMP bulletin with thetao.
func Temperature(lats, lons []float64, times []time.Time, bulletinDate string, thetao Generator) Bulletin {
	return Bulletin{
		Lats: lats, Lons: lons, Times: times, BulletinDate: bulletinDate,
		Vars:  map[string]Generator{"thetao": thetao},
		Units: map[string]string{"thetao": "degrees_C"},
	}
}

// Currents returns an RFVL bulletin with uo and vo.
func Currents(lats, lons []float64, times []time.Time, bulletinDate string, uo, vo Generator) Bulletin {
	return Bulletin{
		Lats: lats, Lons: lons, Times: times, BulletinDate: bulletinDate,
		Vars:  map[string]Generator{"uo": uo, "vo": vo},
		Units: map[string]string{"uo": "m s-1", "vo": "m s-1"},
	}
}

// FileName returns the operational name of a bulletin file of the given kind
// ("TEMP" or "RFVL") for one forecast day.
func FileName(kind, bulletinDate, day string) string {
	return fmt.Sprintf("%s_h-INGV--%s-MFSeas6-MEDATL-b%s_fc-sv08.00.nc", day, kind, bulletinDate)
}

// Hourly returns n hourly timestamps starting at start.
func Hourly(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour).UTC()
	}
	return out
}

// Write creates path (and its directory) and writes b into it.
func Write(path string, b Bulletin) error {
	if len(b.Depths) == 0 {
		b.Depths = []float64{1.0182366}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	timeDim, err := f.AddDim("time", uint64(len(b.Times)))
	if err != nil {
		return fmt.Errorf("failed to add time dimension: %w", err)
	}
	depthDim, err := f.AddDim("depth", uint64(len(b.Depths)))
	if err != nil {
		return fmt.Errorf("failed to add depth dimension: %w", err)
	}
	latDim, err := f.AddDim("lat", uint64(len(b.Lats)))
	if err != nil {
		return fmt.Errorf("failed to add lat dimension: %w", err)
	}
	lonDim, err := f.AddDim("lon", uint64(len(b.Lons)))
	if err != nil {
		return fmt.Errorf("failed to add lon dimension: %w", err)
	}

	vtime, err := f.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return fmt.Errorf("failed to add time variable: %w", err)
	}
	if err := vtime.Attr("units").WriteBytes([]byte(TimeUnits)); err != nil {
		return fmt.Errorf("failed to write time units: %w", err)
	}
	vdepth, err := f.AddVar("depth", netcdf.FLOAT, []netcdf.Dim{depthDim})
	if err != nil {
		return fmt.Errorf("failed to add depth variable: %w", err)
	}
	vlat, err := f.AddVar("lat", netcdf.FLOAT, []netcdf.Dim{latDim})
	if err != nil {
		return fmt.Errorf("failed to add lat variable: %w", err)
	}
	vlon, err := f.AddVar("lon", netcdf.FLOAT, []netcdf.Dim{lonDim})
	if err != nil {
		return fmt.Errorf("failed to add lon variable: %w", err)
	}

	dims := []netcdf.Dim{timeDim, depthDim, latDim, lonDim}
	if b.Flat {
		dims = []netcdf.Dim{timeDim, latDim, lonDim}
	}
	names := make([]string, 0, len(b.Vars))
	for name := range b.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	vars := make([]netcdf.Var, len(names))
	for i, name := range names {
		v, err := f.AddVar(name, netcdf.FLOAT, dims)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", name, err)
		}
		if err := v.Attr("_FillValue").WriteFloat32s([]float32{FillValue}); err != nil {
			return fmt.Errorf("failed to write fill value of %s: %w", name, err)
		}
		if u := b.Units[name]; u != "" {
			if err := v.Attr("units").WriteBytes([]byte(u)); err != nil {
				return fmt.Errorf("failed to write units of %s: %w", name, err)
			}
		}
		vars[i] = v
	}

	if b.BulletinDate != "" {
		if err := f.Attr("bulletin_date").WriteBytes([]byte(b.BulletinDate)); err != nil {
			return fmt.Errorf("failed to write bulletin_date: %w", err)
		}
	}

	if err := f.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	secs := make([]float64, len(b.Times))
	for i, t := range b.Times {
		secs[i] = float64(t.Unix())
	}
	if err := vtime.WriteFloat64s(secs); err != nil {
		return fmt.Errorf("failed to write time: %w", err)
	}
	if err := vdepth.WriteFloat32s(narrow(b.Depths)); err != nil {
		return fmt.Errorf("failed to write depth: %w", err)
	}
	if err := vlat.WriteFloat32s(narrow(b.Lats)); err != nil {
		return fmt.Errorf("failed to write lat: %w", err)
	}
	if err := vlon.WriteFloat32s(narrow(b.Lons)); err != nil {
		return fmt.Errorf("failed to write lon: %w", err)
	}

	for i, name := range names {
		if err := vars[i].WriteFloat32s(b.values(b.Vars[name])); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// values flattens a generator in (time, depth, lat, lon) order. Every depth
// level repeats the surface values.
func (b Bulletin) values(gen Generator) []float32 {
	levels := len(b.Depths)
	if b.Flat {
		levels = 1
	}
	out := make([]float32, 0, len(b.Times)*levels*len(b.Lats)*len(b.Lons))
	for t := range b.Times {
		for range levels {
			for r := range b.Lats {
				for c := range b.Lons {
					v := gen(t, r, c)
					if math.IsNaN(v) {
						out = append(out, FillValue)
						continue
					}
					out = append(out, float32(v))
				}
			}
		}
	}
	return out
}

func narrow(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
