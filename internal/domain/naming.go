package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form used for timestep reference times.
const TimestampLayout = "2006-01-02T15:04:05"

// FrameExt is the extension of rendered frames.
const FrameExt = ".png"

// FormatTimestamp renders a timestep time as an ISO-8601 string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SplitTimestamp splits an ISO-8601 timestamp into its date part and its hour,
// the prefix of the time part before the minute separator.
//
//	"2024-01-01T00:30:00" -> ("2024-01-01", "00")
func SplitTimestamp(iso string) (date, hour string, err error) {
	date, clock, ok := strings.Cut(iso, "T")
	if !ok || date == "" {
		return "", "", fmt.Errorf("%w: %q has no date/time separator", ErrTimestamp, iso)
	}
	hour, _, ok = strings.Cut(clock, ":")
	if !ok || hour == "" {
		return "", "", fmt.Errorf("%w: %q has no hour", ErrTimestamp, iso)
	}
	return date, hour, nil
}

// FrameName returns the output filename of the frame valid at iso:
// "<prefix>_<date>_<hour>.png". It depends on nothing but its arguments.
func FrameName(prefix, iso string) (string, error) {
	date, hour, err := SplitTimestamp(iso)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s%s", prefix, date, hour, FrameExt), nil
}

// FrameInfo is the decoded form of a frame filename.
type FrameInfo struct {
	Prefix string
	Date   string
	Hour   string
}

// ParseFrameName reverses FrameName. The prefix may itself contain underscores.
func ParseFrameName(name string) (FrameInfo, error) {
	base, ok := strings.CutSuffix(name, FrameExt)
	if !ok {
		return FrameInfo{}, fmt.Errorf("not a frame name: %q", name)
	}
	i := strings.LastIndexByte(base, '_')
	if i <= 0 {
		return FrameInfo{}, fmt.Errorf("not a frame name: %q", name)
	}
	hour := base[i+1:]
	rest := base[:i]
	j := strings.LastIndexByte(rest, '_')
	if j <= 0 {
		return FrameInfo{}, fmt.Errorf("not a frame name: %q", name)
	}
	info := FrameInfo{Prefix: rest[:j], Date: rest[j+1:], Hour: hour}
	if _, err := time.Parse("2006-01-02", info.Date); err != nil {
		return FrameInfo{}, fmt.Errorf("not a frame name: %q: %w", name, err)
	}
	if len(info.Hour) != 2 {
		return FrameInfo{}, fmt.Errorf("not a frame name: %q", name)
	}
	return info, nil
}

// FormatBulletinDate reformats an 8-digit YYYYMMDD bulletin date as YYYY-MM-DD.
func FormatBulletinDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return "", fmt.Errorf("%w: %q is not 8 digits", ErrBulletinDate, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q is not 8 digits", ErrBulletinDate, s)
		}
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8], nil
}
