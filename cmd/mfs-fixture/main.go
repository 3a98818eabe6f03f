// Command mfs-fixture writes synthetic MFS bulletins (TEMP and RFVL files)
// laid out as the operational data root expects.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.ngs.io/bulletin-maps/internal/adapter/dataset/ncfixture"
)

// RegionalGrid defines the geographic bounds and resolution
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

// Island masks a disc of cells as land.
type Island struct {
	Lat, Lon, Radius float64
}

func (is Island) covers(lat, lon float64) bool {
	return is.Radius > 0 && math.Hypot(lat-is.Lat, lon-is.Lon) <= is.Radius
}

func main() {
	// Command line flags
	root := flag.String("root", "./data/mfs", "Data root; files go to <root>/<date>/")
	date := flag.String("date", time.Now().UTC().Format("20060102"), "Production date (YYYYMMDD)")
	days := flag.Int("days", 1, "Number of forecast days (one file per day and kind)")
	steps := flag.Int("steps", 24, "Hourly timesteps per file")
	kinds := flag.String("kinds", "TEMP,RFVL", "Comma-separated file kinds: TEMP, RFVL")
	region := flag.String("region", "salento", "Region: med, salento, or custom")
	latMin := flag.Float64("lat-min", 39.0, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 41.0, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", 16.5, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 19.0, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 1.0/24, "Grid resolution in degrees")
	islandRadius := flag.Float64("island", 0, "Radius in degrees of a land disc at the region centre (0 disables)")

	flag.Parse()

	// Define grid based on region
	var grid RegionalGrid
	switch *region {
	case "med":
		grid = RegionalGrid{LatMin: 30.1875, LatMax: 45.9792, LonMin: -5.5417, LonMax: 36.2917, Resolution: *resolution}
	case "salento":
		grid = RegionalGrid{LatMin: 39.5, LatMax: 41.0, LonMin: 16.5, LonMax: 19.0, Resolution: *resolution}
	case "custom":
		grid = RegionalGrid{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax, Resolution: *resolution}
	default:
		log.Fatalf("Unknown region: %s (use med, salento, or custom)", *region)
	}
	if grid.Resolution <= 0 || grid.LatMin >= grid.LatMax || grid.LonMin >= grid.LonMax {
		log.Fatalf("Invalid grid: %+v", grid)
	}

	start, err := time.Parse("20060102", *date)
	if err != nil {
		log.Fatalf("Invalid production date %q: %v", *date, err)
	}
	if *days < 1 || *steps < 1 {
		log.Fatalf("days and steps must be positive")
	}

	lats := axis(grid.LatMin, grid.LatMax, grid.Resolution)
	lons := axis(grid.LonMin, grid.LonMax, grid.Resolution)
	island := Island{
		Lat:    (grid.LatMin + grid.LatMax) / 2,
		Lon:    (grid.LonMin + grid.LonMax) / 2,
		Radius: *islandRadius,
	}

	log.Printf("Generating MFS bulletin %s for region: %s", *date, *region)
	log.Printf("Grid: %.2f°-%.2f°N, %.2f°-%.2f°E, resolution: %.4f° (%d × %d points)",
		grid.LatMin, grid.LatMax, grid.LonMin, grid.LonMax, grid.Resolution, len(lats), len(lons))

	dir := filepath.Join(*root, *date)
	written := 0
	for d := 0; d < *days; d++ {
		// MFS hourly means are centred on the half hour.
		dayStart := start.AddDate(0, 0, d).Add(30 * time.Minute)
		times := ncfixture.Hourly(dayStart, *steps)
		day := dayStart.Format("20060102")

		for _, kind := range strings.Split(*kinds, ",") {
			kind = strings.ToUpper(strings.TrimSpace(kind))
			b, err := bulletin(kind, lats, lons, times, *date, island)
			if err != nil {
				log.Fatalf("%v", err)
			}
			path := filepath.Join(dir, ncfixture.FileName(kind, *date, day))
			if err := ncfixture.Write(path, b); err != nil {
				log.Printf("Warning: Failed to generate %s: %v", filepath.Base(path), err)
				continue
			}
			written++
			log.Printf("✓ Generated %s", filepath.Base(path))
		}
	}

	// Print summary
	log.Printf("=== Generation Complete ===")
	log.Printf("Files created in: %s", dir)
	bytesPerStep := len(lats) * len(lons) * 4 // 4 bytes per float32
	totalMB := float64(bytesPerStep * *steps * written) / 1024 / 1024
	log.Printf("Total size: ~%.1f MB (%d files)", totalMB, written)
	if written == 0 {
		os.Exit(1)
	}
}

func axis(lo, hi, step float64) []float64 {
	n := int(math.Round((hi-lo)/step)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// bulletin builds a file of the given kind with smooth, plausible fields.
func bulletin(kind string, lats, lons []float64, times []time.Time, date string, island Island) (ncfixture.Bulletin, error) {
	land := func(r, c int) bool { return island.covers(lats[r], lons[c]) }

	switch kind {
	case "TEMP":
		// Warmer to the south-east with a diurnal cycle peaking mid-afternoon.
		thetao := func(t, r, c int) float64 {
			if land(r, c) {
				return math.NaN()
			}
			hour := float64(times[t].Hour())
			return 14 + 0.6*(lons[c]-lons[0]) - 0.8*(lats[r]-lats[0]) +
				0.4*math.Sin(2*math.Pi*(hour-9)/24)
		}
		return ncfixture.Temperature(lats, lons, times, date, thetao), nil
	case "RFVL":
		// A slowly rotating gyre around the region centre.
		cLat := (lats[0] + lats[len(lats)-1]) / 2
		cLon := (lons[0] + lons[len(lons)-1]) / 2
		uo := func(t, r, c int) float64 {
			if land(r, c) {
				return math.NaN()
			}
			return -0.3*(lats[r]-cLat) + 0.05*math.Cos(float64(t)/6)
		}
		vo := func(t, r, c int) float64 {
			if land(r, c) {
				return math.NaN()
			}
			return 0.3*(lons[c]-cLon) + 0.05*math.Sin(float64(t)/6)
		}
		return ncfixture.Currents(lats, lons, times, date, uo, vo), nil
	default:
		return ncfixture.Bulletin{}, fmt.Errorf("unknown file kind %q (use TEMP or RFVL)", kind)
	}
}
