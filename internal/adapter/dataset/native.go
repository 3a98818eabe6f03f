package dataset

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

type nativeDataset struct {
	axes
	nc    api.Group
	attrs api.AttributeMap
	vars  map[string]nativeVar
}

type nativeVar struct {
	vg   api.VarGetter
	pack packing
}

func openNative(path string, names Names) (Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file %s: %v", ErrNotFound, path, err)
	}

	ds := &nativeDataset{nc: nc, attrs: nc.Attributes(), vars: make(map[string]nativeVar)}
	if err := ds.load(names); err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func (d *nativeDataset) load(names Names) error {
	lat, err := d.readAxis(names.latCandidates())
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	if err := checkAxis("latitude", lat.values); err != nil {
		return err
	}
	lon, err := d.readAxis(names.lonCandidates())
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	if err := checkAxis("longitude", lon.values); err != nil {
		return err
	}
	tm, err := d.readAxis(names.timeCandidates())
	if err != nil {
		return fmt.Errorf("time: %w", err)
	}
	units, ok := anyString(tm.vg.Attributes(), "units")
	if !ok {
		return fmt.Errorf("%w: time variable %s has no units", ErrInvalid, tm.name)
	}
	times, err := DecodeTimes(tm.values, units)
	if err != nil {
		return err
	}
	d.axes = axes{
		lats: lat.values, lons: lon.values, times: times,
		latDim: lat.dim, lonDim: lon.dim, timeDim: tm.dim,
	}

	for _, name := range names.Variables {
		vg, err := d.nc.GetVarGetter(name)
		if err != nil {
			return fmt.Errorf("%w: variable %s not found", ErrInvalid, name)
		}
		dims := vg.Dimensions()
		if err := d.checkLayout(name, dims, nil); err != nil {
			return err
		}
		if int(vg.Len()) != len(d.times) {
			return fmt.Errorf("%w: variable %s has %d timesteps, time axis has %d", ErrInvalid, name, vg.Len(), len(d.times))
		}
		d.vars[name] = nativeVar{vg: vg, pack: nativePacking(vg.Attributes())}
	}
	return nil
}

type nativeAxis struct {
	vg     api.VarGetter
	name   string
	dim    string
	values []float64
}

// readAxis reads the first 1D candidate variable found.
func (d *nativeDataset) readAxis(names []string) (nativeAxis, error) {
	for _, name := range names {
		vg, err := d.nc.GetVarGetter(name)
		if err != nil {
			continue
		}
		dims := vg.Dimensions()
		if len(dims) != 1 {
			return nativeAxis{}, fmt.Errorf("%w: %s is %dD, expected 1D", ErrInvalid, name, len(dims))
		}
		raw, err := vg.Values()
		if err != nil {
			return nativeAxis{}, fmt.Errorf("failed to read %s: %w", name, err)
		}
		values, ok := toFloat64s(raw)
		if !ok {
			return nativeAxis{}, fmt.Errorf("unsupported var type of %s: %T", name, raw)
		}
		return nativeAxis{vg: vg, name: name, dim: dims[0], values: values}, nil
	}
	return nativeAxis{}, fmt.Errorf("%w: variable not found (tried: %v)", ErrInvalid, names)
}

func (d *nativeDataset) Attr(name string) (string, bool) {
	return anyString(d.attrs, name)
}

func (d *nativeDataset) Surface(variable string, t int) ([][]float64, error) {
	nv, ok := d.vars[variable]
	if !ok {
		return nil, fmt.Errorf("variable %s was not opened", variable)
	}
	if err := d.checkTimestep(t); err != nil {
		return nil, err
	}

	raw, err := nv.vg.GetSlice(int64(t), int64(t)+1)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s[%d]: %w", variable, t, err)
	}

	rows, cols := len(d.lats), len(d.lons)
	switch v := raw.(type) {
	case [][][][]float32:
		return unpackRows(surfaceOf4(v), rows, cols, nv.pack)
	case [][][]float32:
		return unpackRows(surfaceOf3(v), rows, cols, nv.pack)
	case [][][][]float64:
		return unpackRows(surfaceOf4(v), rows, cols, nv.pack)
	case [][][]float64:
		return unpackRows(surfaceOf3(v), rows, cols, nv.pack)
	case [][][][]int16:
		return unpackRows(surfaceOf4(v), rows, cols, nv.pack)
	case [][][]int16:
		return unpackRows(surfaceOf3(v), rows, cols, nv.pack)
	case [][][][]int32:
		return unpackRows(surfaceOf4(v), rows, cols, nv.pack)
	case [][][]int32:
		return unpackRows(surfaceOf3(v), rows, cols, nv.pack)
	default:
		return nil, fmt.Errorf("unsupported data type of %s: %T", variable, raw)
	}
}

func (d *nativeDataset) Close() error {
	d.nc.Close()
	return nil
}

func surfaceOf4[T float32 | float64 | int16 | int32](v [][][][]T) [][]T {
	if len(v) == 0 || len(v[0]) == 0 {
		return nil
	}
	return v[0][0]
}

func surfaceOf3[T float32 | float64 | int16 | int32](v [][][]T) [][]T {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func unpackRows[T float32 | float64 | int16 | int32](rowsIn [][]T, rows, cols int, p packing) ([][]float64, error) {
	if len(rowsIn) != rows {
		return nil, fmt.Errorf("%w: read %d rows, expected %d", ErrInvalid, len(rowsIn), rows)
	}
	flat := make([]T, 0, rows*cols)
	for _, row := range rowsIn {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: read row of %d values, expected %d", ErrInvalid, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return reshape(flat, rows, cols, p)
}

func nativePacking(attrs api.AttributeMap) packing {
	var p packing
	for _, name := range []string{"_FillValue", "missing_value"} {
		if f, ok := anyFloat(attrs, name); ok {
			p.fill = append(p.fill, f)
		}
	}
	p.scale, p.hasScale = anyFloat(attrs, "scale_factor")
	p.offset, p.hasOffset = anyFloat(attrs, "add_offset")
	return p
}

func anyFloat(attrs api.AttributeMap, name string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	raw, ok := attrs.Get(name)
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int8:
		return float64(v), true
	}
	if vs, ok := toFloat64s(raw); ok && len(vs) > 0 {
		return vs[0], true
	}
	return 0, false
}

func anyString(attrs api.AttributeMap, name string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	raw, ok := attrs.Get(name)
	if !ok {
		return "", false
	}
	if s, ok := raw.(string); ok {
		return strings.TrimRight(s, "\x00 "), true
	}
	if f, ok := anyFloat(attrs, name); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return fmt.Sprint(raw), true
}

func toFloat64s(raw any) ([]float64, bool) {
	switch v := raw.(type) {
	case []float64:
		return v, true
	case []float32:
		return widenSlice(v), true
	case []int16:
		return widenSlice(v), true
	case []int32:
		return widenSlice(v), true
	case []int64:
		return widenSlice(v), true
	case []int8:
		return widenSlice(v), true
	default:
		return nil, false
	}
}

func widenSlice[T float32 | int8 | int16 | int32 | int64](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
