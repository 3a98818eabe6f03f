package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

var colorMaps = map[string]func() palette.ColorMap{
	"jet":                NewJet,
	"kindlmann":          moreland.Kindlmann,
	"extended-kindlmann": moreland.ExtendedKindlmann,
	"blackbody":          moreland.BlackBody,
	"extended-blackbody": moreland.ExtendedBlackBody,
	"blue-red":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
}

// ColorMapNames lists the names accepted by ColorMap.
func ColorMapNames() []string {
	names := make([]string, 0, len(colorMaps))
	for name := range colorMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColorMap returns a fresh colour map by name, scaled to [lo, hi]. Its
// palettes never sample past hi.
func ColorMap(name string, lo, hi float64) (palette.ColorMap, error) {
	mk, ok := colorMaps[name]
	if !ok {
		return nil, fmt.Errorf("unknown colour map %q (available: %v)", name, ColorMapNames())
	}
	cm := mk()
	cm.SetMax(hi)
	cm.SetMin(lo)
	return clamped{cm}, nil
}

// clamped replaces the Palette of a colour map with samplePalette.
type clamped struct {
	palette.ColorMap
}

func (c clamped) Palette(n int) palette.Palette {
	return samplePalette(c.ColorMap, n)
}

// samplePalette takes n evenly spaced colours from cm, the last one at
// exactly cm.Max().
func samplePalette(cm palette.ColorMap, n int) palette.Palette {
	if n < 1 {
		n = 1
	}
	lo, hi := cm.Min(), cm.Max()
	cols := make(colors, n)
	for i := range cols {
		v := lo
		switch {
		case i == n-1 && n > 1:
			v = hi
		case i > 0:
			v = math.Min(hi, lo+(hi-lo)*float64(i)/float64(n-1))
		}
		c, err := cm.At(v)
		if err != nil {
			panic(err)
		}
		cols[i] = c
	}
	return cols
}

// jet is the classic blue-cyan-yellow-red rainbow map.
type jet struct {
	min, max float64
	alpha    float64
}

// NewJet returns the jet colour map over [0, 1].
func NewJet() palette.ColorMap {
	return &jet{min: 0, max: 1, alpha: 1}
}

func (j *jet) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < j.min:
		return nil, palette.ErrUnderflow
	case v > j.max:
		return nil, palette.ErrOverflow
	}
	x := 0.0
	if j.max > j.min {
		x = (v - j.min) / (j.max - j.min)
	}
	r := jetChannel(x - 0.25)
	g := jetChannel(x)
	b := jetChannel(x + 0.25)
	a := j.alpha
	return color.NRGBA{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: uint8(math.Round(a * 255)),
	}, nil
}

// jetChannel is the green ramp of jet; red and blue are the same ramp shifted by a quarter.
func jetChannel(x float64) float64 {
	return math.Max(0, math.Min(1, math.Min(4*x-0.5, -4*x+3.5)))
}

func (j *jet) Max() float64       { return j.max }
func (j *jet) SetMax(v float64)   { j.max = v }
func (j *jet) Min() float64       { return j.min }
func (j *jet) SetMin(v float64)   { j.min = v }
func (j *jet) Alpha() float64     { return j.alpha }
func (j *jet) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("render: alpha must be between 0 and 1")
	}
	j.alpha = a
}

func (j *jet) Palette(n int) palette.Palette { return samplePalette(j, n) }

type colors []color.Color

func (c colors) Colors() []color.Color { return c }
