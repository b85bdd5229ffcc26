package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
	"github.com/azybler/streetrunner/pkg/nominatim"
	"github.com/azybler/streetrunner/pkg/overpass"
	"github.com/azybler/streetrunner/pkg/planner"
	"github.com/azybler/streetrunner/pkg/runner"
	"github.com/azybler/streetrunner/pkg/serialize"
)

func main() {
	city := flag.String("city", "", "City or area name to plan a coverage route for")
	importFile := flag.String("import-file", "", "Plan from a local street file instead of a live city lookup: .json (an Overpass dump) or .csv (manual segments, name,lat,lon,lat,lon,...)")
	homeLat := flag.Float64("home-lat", 0, "Home/start latitude")
	homeLon := flag.Float64("home-lon", 0, "Home/start longitude")
	targetKm := flag.Float64("target-km", 0, "Target route distance in kilometers (0 = planner default)")
	out := flag.String("out", "route.gpx", "Output file path")
	format := flag.String("format", "gpx", "Output format: gpx or aml")
	userAgent := flag.String("user-agent", "streetrunner-planroute/1.0 (contact: ops@streetrunner.example)", "User-Agent sent to Nominatim, per its usage policy")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall deadline for city resolution, fetch, and planning")
	flag.Parse()

	if *city == "" && *importFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: planroute (--city <name> | --import-file <path>) --home-lat <lat> --home-lon <lon> [--target-km km] [--out route.gpx] [--format gpx|aml]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	routeID := uuid.NewString()
	home := geo.LatLng{Lat: *homeLat, Lon: *homeLon}

	var plan *planner.Plan
	var err error
	var label string

	if *importFile != "" {
		label = *importFile
		plan, err = planFromFile(*importFile, home, *targetKm, routeID)
	} else {
		label = *city
		log.Printf("[%s] Resolving %q and fetching its street network...", routeID, *city)
		plan, err = runner.PlanFromCity(ctx, runner.Services{
			Overpass:  overpass.NewClient(),
			Nominatim: nominatim.NewClient(*userAgent),
		}, runner.Request{City: *city, Home: home, TargetKm: *targetKm})
	}
	if err != nil {
		log.Fatalf("Failed to plan route: %v", err)
	}
	log.Printf("[%s] Planned %.2f km covering %d/%d streets (%d/%d intersections)",
		routeID, plan.TotalDistanceKm, plan.StreetsCovered, plan.StreetsTotal, plan.NodesCovered, plan.NodesTotal)

	var data []byte
	switch strings.ToLower(*format) {
	case "gpx":
		data = serialize.ToGPX(plan, label, time.Now())
	case "aml":
		data = serialize.ToAML(plan, label, time.Now())
	default:
		log.Fatalf("Unknown format %q (expected gpx or aml)", *format)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	log.Printf("[%s] Wrote %s (%d bytes) in %s", routeID, *out, len(data), time.Since(start).Round(time.Millisecond))
	fmt.Println(serialize.GoogleMapsURL(plan))
}

// planFromFile reads a local Overpass JSON dump or manual-segment CSV and
// plans directly from it, bypassing Nominatim/Overpass entirely.
func planFromFile(path string, home geo.LatLng, targetKm float64, routeID string) (*planner.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var segments []ingest.StreetSegment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		log.Printf("[%s] Parsing %s as an Overpass dump...", routeID, path)
		segments, err = ingest.ParseOverpass(raw)
	case ".csv":
		log.Printf("[%s] Parsing %s as manual street segments...", routeID, path)
		segments, err = ingest.ParseManualCSV(raw)
	default:
		return nil, fmt.Errorf("unrecognized import file extension %q (expected .json or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	segments = ingest.Dedupe(segments)

	return runner.PlanFromSegments(segments, home, targetKm)
}
