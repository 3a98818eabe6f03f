package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var refLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// ParseTimeUnits parses a CF time unit such as "seconds since 1970-01-01 00:00:00".
func ParseTimeUnits(units string) (time.Duration, time.Time, error) {
	step, ref, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}

	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(step)) {
	case "seconds", "second", "secs", "sec", "s":
		unit = time.Second
	case "minutes", "minute", "mins", "min":
		unit = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		unit = time.Hour
	case "days", "day", "d":
		unit = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time step %q in %q", step, units)
	}

	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(ref, "UTC")
	ref = strings.TrimSuffix(ref, "Z")
	ref = strings.TrimSpace(ref)
	if i := strings.IndexByte(ref, '.'); i > 0 {
		ref = ref[:i]
	}
	for _, layout := range refLayouts {
		if t, err := time.ParseInLocation(layout, ref, time.UTC); err == nil {
			return unit, t, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported reference time %q in %q", ref, units)
}

// DecodeTimes converts raw time coordinate values to UTC times, rounded to the second.
func DecodeTimes(values []float64, units string) ([]time.Time, error) {
	unit, ref, err := ParseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: time value %d is not finite", ErrInvalid, i)
		}
		secs := math.Round(v * unit.Seconds())
		out[i] = ref.Add(time.Duration(secs) * time.Second).UTC()
	}
	return out, nil
}
