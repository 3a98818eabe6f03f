package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTimes(t *testing.T) {
	cases := []struct {
		units  string
		values []float64
		want   []time.Time
	}{
		{
			units:  "seconds since 1970-01-01 00:00:00",
			values: []float64{1704069000},
			want:   []time.Time{time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)},
		},
		{
			units:  "minutes since 1900-01-01 00:00:00",
			values: []float64{0, 90},
			want:   []time.Time{time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(1900, 1, 1, 1, 30, 0, 0, time.UTC)},
		},
		{
			units:  "hours since 2024-01-01T00:00:00Z",
			values: []float64{0.5, 23.5},
			want:   []time.Time{time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC), time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)},
		},
		{
			units:  "days since 2024-01-01",
			values: []float64{1.5},
			want:   []time.Time{time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)},
		},
	}
	for _, tc := range cases {
		got, err := DecodeTimes(tc.values, tc.units)
		require.NoError(t, err, tc.units)
		assert.Equal(t, tc.want, got, tc.units)
	}
}

func TestParseTimeUnits_Rejects(t *testing.T) {
	for _, units := range []string{"", "seconds", "fortnights since 2024-01-01", "hours since yesterday"} {
		_, _, err := ParseTimeUnits(units)
		assert.Error(t, err, units)
	}
}
