// Package ingest turns a raw Overpass payload into a deduplicated,
// boundary-filtered list of runnable StreetSegments — the candidate pool the
// street graph and coverage planner are built from.
package ingest

import "github.com/azybler/streetrunner/pkg/geo"

// Source identifies where a StreetSegment came from.
type Source string

const (
	SourceOSM    Source = "osm"
	SourceManual Source = "manual"
)

// StreetSegment is one runnable piece of a street.
type StreetSegment struct {
	ID          string
	Name        string
	Path        []geo.LatLng
	StartNodeID string
	EndNodeID   string
	Completed   bool
	Source      Source
}

// CityBounds is an axis-aligned box used as the bbox-fallback containment
// test when no polygon CityBoundary is available.
type CityBounds = geo.BBox

// Ring is a closed polygon ring (outer boundary or a hole), given open —
// the last point connects back to the first.
type Ring []geo.LatLng

// Polygon is one polygon of a CityBoundary: an outer ring plus any holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// CityBoundary is an optional multi-polygon boundary that, when present,
// overrides bounding-box containment.
type CityBoundary struct {
	Polygons []Polygon
}
