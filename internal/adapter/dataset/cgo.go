package dataset

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"
)

type cgoDataset struct {
	axes
	nc   netcdf.Dataset
	vars map[string]cgoVar
}

type cgoVar struct {
	v     netcdf.Var
	typ   netcdf.Type
	depth bool
	pack  packing
}

func openCGO(path string, names Names) (Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NetCDF file %s: %v", ErrNotFound, path, err)
	}

	ds := &cgoDataset{nc: nc, vars: make(map[string]cgoVar)}
	if err := ds.load(names); err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func (d *cgoDataset) load(names Names) error {
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
	units, ok := attrString(tm.v.Attr("units"))
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
		v, err := d.nc.Var(name)
		if err != nil {
			return fmt.Errorf("%w: variable %s not found", ErrInvalid, name)
		}
		dims, err := v.Dims()
		if err != nil {
			return fmt.Errorf("failed to get dimensions of %s: %w", name, err)
		}
		dimNames := make([]string, len(dims))
		lens := make([]int, len(dims))
		for i, dim := range dims {
			if dimNames[i], err = dim.Name(); err != nil {
				return fmt.Errorf("failed to get dimension name of %s: %w", name, err)
			}
			n, err := dim.Len()
			if err != nil {
				return fmt.Errorf("failed to get dimension length of %s: %w", name, err)
			}
			lens[i] = int(n)
		}
		if err := d.checkLayout(name, dimNames, lens); err != nil {
			return err
		}
		typ, err := v.Type()
		if err != nil {
			return fmt.Errorf("failed to get type of %s: %w", name, err)
		}
		d.vars[name] = cgoVar{v: v, typ: typ, depth: len(dims) == 4, pack: cgoPacking(v)}
	}
	return nil
}

type cgoAxis struct {
	v      netcdf.Var
	name   string
	dim    string
	values []float64
}

// readAxis reads the first 1D candidate variable found.
func (d *cgoDataset) readAxis(names []string) (cgoAxis, error) {
	for _, name := range names {
		v, err := d.nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil {
			return cgoAxis{}, fmt.Errorf("failed to get dimensions: %w", err)
		}
		if len(dims) != 1 {
			return cgoAxis{}, fmt.Errorf("%w: %s is %dD, expected 1D", ErrInvalid, name, len(dims))
		}
		dim, err := dims[0].Name()
		if err != nil {
			return cgoAxis{}, fmt.Errorf("failed to get dimension name: %w", err)
		}
		values, err := readFloat64Var(v)
		if err != nil {
			return cgoAxis{}, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return cgoAxis{v: v, name: name, dim: dim, values: values}, nil
	}
	return cgoAxis{}, fmt.Errorf("%w: variable not found (tried: %v)", ErrInvalid, names)
}

func (d *cgoDataset) Attr(name string) (string, bool) {
	return attrString(d.nc.Attr(name))
}

func (d *cgoDataset) Surface(variable string, t int) ([][]float64, error) {
	cv, ok := d.vars[variable]
	if !ok {
		return nil, fmt.Errorf("variable %s was not opened", variable)
	}
	if err := d.checkTimestep(t); err != nil {
		return nil, err
	}

	rows, cols := len(d.lats), len(d.lons)
	start := []uint64{uint64(t), 0, 0}
	count := []uint64{1, uint64(rows), uint64(cols)}
	if cv.depth {
		start = []uint64{uint64(t), 0, 0, 0}
		count = []uint64{1, 1, uint64(rows), uint64(cols)}
	}

	switch cv.typ {
	case netcdf.FLOAT:
		flat := make([]float32, rows*cols)
		if err := cv.v.ReadFloat32Slice(flat, start, count); err != nil {
			return nil, fmt.Errorf("failed to read %s[%d]: %w", variable, t, err)
		}
		return reshape(flat, rows, cols, cv.pack)
	case netcdf.DOUBLE:
		flat := make([]float64, rows*cols)
		if err := cv.v.ReadFloat64Slice(flat, start, count); err != nil {
			return nil, fmt.Errorf("failed to read %s[%d]: %w", variable, t, err)
		}
		return reshape(flat, rows, cols, cv.pack)
	case netcdf.SHORT:
		flat := make([]int16, rows*cols)
		if err := cv.v.ReadInt16Slice(flat, start, count); err != nil {
			return nil, fmt.Errorf("failed to read %s[%d]: %w", variable, t, err)
		}
		return reshape(flat, rows, cols, cv.pack)
	case netcdf.INT:
		flat := make([]int32, rows*cols)
		if err := cv.v.ReadInt32Slice(flat, start, count); err != nil {
			return nil, fmt.Errorf("failed to read %s[%d]: %w", variable, t, err)
		}
		return reshape(flat, rows, cols, cv.pack)
	default:
		return nil, fmt.Errorf("unsupported data type of %s: %v", variable, cv.typ)
	}
}

func (d *cgoDataset) Close() error {
	return d.nc.Close()
}

// cgoPacking reads _FillValue, missing_value, scale_factor and add_offset.
func cgoPacking(v netcdf.Var) packing {
	var p packing
	for _, name := range []string{"_FillValue", "missing_value"} {
		if f, ok := attrFloat(v.Attr(name)); ok {
			p.fill = append(p.fill, f)
		}
	}
	p.scale, p.hasScale = attrFloat(v.Attr("scale_factor"))
	p.offset, p.hasOffset = attrFloat(v.Attr("add_offset"))
	return p
}

// attrFloat returns the first value of a numeric attribute.
func attrFloat(a netcdf.Attr) (float64, bool) {
	if a == (netcdf.Attr{}) {
		return 0, false
	}
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := a.ReadFloat64s(buf); err == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := a.ReadFloat32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if err := a.ReadInt32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := a.ReadInt16s(buf); err == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

// attrString returns a text attribute, or a numeric one formatted as text.
func attrString(a netcdf.Attr) (string, bool) {
	if a == (netcdf.Attr{}) {
		return "", false
	}
	n, err := a.Len()
	if err != nil {
		return "", false
	}
	t, err := a.Type()
	if err != nil {
		return "", false
	}
	if t == netcdf.CHAR {
		buf := make([]byte, n)
		if err := a.ReadBytes(buf); err != nil {
			return "", false
		}
		return strings.TrimRight(string(buf), "\x00 "), true
	}
	f, ok := attrFloat(a)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// readFloat64Var reads a 1D numeric variable as float64.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		return widen[float32](length, v.ReadFloat32s)
	case netcdf.INT:
		return widen[int32](length, v.ReadInt32s)
	case netcdf.SHORT:
		return widen[int16](length, v.ReadInt16s)
	case netcdf.INT64:
		return widen[int64](length, v.ReadInt64s)
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

func widen[T float32 | int16 | int32 | int64](n uint64, read func([]T) error) ([]float64, error) {
	tmp := make([]T, n)
	if err := read(tmp); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, val := range tmp {
		out[i] = float64(val)
	}
	return out, nil
}
