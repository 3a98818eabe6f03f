package main

import (
	"math"
	"testing"
	"time"
)

func TestAxis(t *testing.T) {
	got := axis(39, 40, 0.25)
	if len(got) != 5 {
		t.Fatalf("expected 5 points, got %d", len(got))
	}
	if got[4] != 40 {
		t.Errorf("last point = %v, want 40", got[4])
	}
}

func TestBulletin(t *testing.T) {
	lats := axis(39, 41, 0.5)
	lons := axis(17, 19, 0.5)
	times := []time.Time{time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)}
	island := Island{Lat: 40, Lon: 18, Radius: 0.1}

	temp, err := bulletin("TEMP", lats, lons, times, "20240101", island)
	if err != nil {
		t.Fatalf("TEMP: %v", err)
	}
	gen := temp.Vars["thetao"]
	if !math.IsNaN(gen(0, 2, 2)) {
		t.Errorf("island centre should be land")
	}
	if v := gen(0, 0, 0); math.IsNaN(v) || v < 10 || v > 20 {
		t.Errorf("unexpected sea temperature %v", v)
	}

	cur, err := bulletin("RFVL", lats, lons, times, "20240101", Island{})
	if err != nil {
		t.Fatalf("RFVL: %v", err)
	}
	if len(cur.Vars) != 2 {
		t.Fatalf("expected uo and vo, got %d variables", len(cur.Vars))
	}

	if _, err := bulletin("WIND", lats, lons, times, "20240101", island); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
