// Package runner orchestrates a full plan request: resolve the city,
// fetch its streets, build the coverage route, and hand back a Plan ready
// for serialization.
package runner

import (
	"context"
	"fmt"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
	"github.com/azybler/streetrunner/pkg/nominatim"
	"github.com/azybler/streetrunner/pkg/overpass"
	"github.com/azybler/streetrunner/pkg/planner"
)

// Request is a full end-to-end planning request driven by a free-text city
// query rather than a pre-fetched street list.
type Request struct {
	City     string
	Home     geo.LatLng
	TargetKm float64
}

// Services bundles the external clients the orchestration needs. Both are
// interfaces so tests can substitute fakes without touching the network.
type Services struct {
	Overpass  OverpassFetcher
	Nominatim CityResolver
}

// OverpassFetcher fetches a runnable street payload for a bounding box or
// city query.
type OverpassFetcher interface {
	FetchCity(ctx context.Context, query string) ([]byte, error)
}

// CityResolver resolves a free-text city name into ranked candidates.
type CityResolver interface {
	Search(ctx context.Context, query string) ([]nominatim.Candidate, error)
}

// PlanFromCity resolves req.City via Nominatim, fetches its street network
// from Overpass across the area/bbox/around template ladder, and plans a
// coverage route. Nominatim and Overpass failures are retried across their
// own fallback chains before surfacing as a tagged Error; planner failures
// are never retried since a plan failing once will fail identically again
// on the same input.
func PlanFromCity(ctx context.Context, svc Services, req Request) (*planner.Plan, error) {
	if req.City == "" {
		return nil, newError(BadCityQuery, "city query must not be empty", nil)
	}

	candidates, err := svc.Nominatim.Search(ctx, req.City)
	if err != nil {
		return nil, newError(NominatimUnresolved, "nominatim search failed", err)
	}
	if len(candidates) == 0 {
		return nil, newError(NominatimUnresolved, fmt.Sprintf("no place matched %q", req.City), nil)
	}
	best := candidates[0]

	var lastErr error
	var payload []byte
	for _, name := range overpass.CityNameVariants(req.City) {
		data, err := svc.Overpass.FetchCity(ctx, overpass.AreaQuery([]string{name}))
		if err == nil {
			payload = data
			break
		}
		lastErr = err
	}
	if payload == nil {
		// Area resolution failed for every name variant; fall back to the
		// bounding box Nominatim already gave us, then to a radius around
		// that box's center.
		data, err := svc.Overpass.FetchCity(ctx, overpass.BBoxQuery(best.Bounds))
		if err != nil {
			b := best.Bounds
			center := geo.LatLng{Lat: (b.South + b.North) / 2, Lon: (b.West + b.East) / 2}
			diagonalKm := geo.Haversine(geo.LatLng{Lat: b.South, Lon: b.West}, geo.LatLng{Lat: b.North, Lon: b.East})
			data, err = svc.Overpass.FetchCity(ctx, overpass.AroundQuery(center, diagonalKm))
		}
		if err != nil {
			return nil, newError(OverpassUnreachable, "overpass fetch failed for area, bbox and around queries", err)
		}
		payload = data
		lastErr = nil
	}
	if payload == nil {
		return nil, newError(OverpassUnreachable, "overpass fetch exhausted all strategies", lastErr)
	}

	segments, err := ingest.ParseOverpass(payload)
	if err != nil {
		return nil, newError(UnsupportedImport, "could not parse overpass payload", err)
	}
	if len(segments) == 0 {
		return nil, newError(EmptyImport, "overpass payload contained no runnable streets", nil)
	}

	segments = ingest.Dedupe(segments)
	segments = ingest.FilterBoundary(segments, best.Bounds, best.Boundary)
	if len(segments) == 0 {
		return nil, newError(NoStreetsInBoundary, fmt.Sprintf("no runnable streets within %q", best.DisplayName), nil)
	}

	home := req.Home
	if home == (geo.LatLng{}) {
		home = geo.LatLng{Lat: (best.Bounds.South + best.Bounds.North) / 2, Lon: (best.Bounds.West + best.Bounds.East) / 2}
	}

	plan := planner.Plan(planner.Request{
		Streets:  segments,
		Home:     home,
		TargetKm: req.TargetKm,
	})
	if len(plan.Steps) == 0 {
		return nil, newError(PlanInfeasible, "planner produced an empty route", nil)
	}
	return plan, nil
}

// PlanFromSegments plans directly from a caller-supplied street list (e.g.
// manually drawn or imported from a file), skipping city resolution
// entirely.
func PlanFromSegments(segments []ingest.StreetSegment, home geo.LatLng, targetKm float64) (*planner.Plan, error) {
	if len(segments) == 0 {
		return nil, newError(EmptyImport, "no streets supplied", nil)
	}
	plan := planner.Plan(planner.Request{Streets: segments, Home: home, TargetKm: targetKm})
	if len(plan.Steps) == 0 {
		return nil, newError(PlanInfeasible, "planner produced an empty route", nil)
	}
	return plan, nil
}

// BuildEulerianRoute is kept as a named entry point for a full Euler-trail
// route, but currently just delegates to the greedy coverage planner — see
// DESIGN.md for why a full Eulerian circuit is not wired in as the default
// route builder.
func BuildEulerianRoute(req planner.Request) *planner.Plan {
	return planner.Plan(req)
}
