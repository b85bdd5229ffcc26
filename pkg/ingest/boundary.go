package ingest

import (
	"github.com/azybler/streetrunner/pkg/geo"
)

const (
	polygonEndpointToleranceM = 40.0
	polygonPathToleranceM     = 22.0
	bboxPaddingM              = 40.0
	minPathInsideFraction     = 0.72
)

// FilterBoundary retains only segments contained by boundary if boundary has
// any polygons, otherwise by bounds. A polygon boundary, when present,
// overrides bbox containment entirely.
func FilterBoundary(segments []StreetSegment, bounds CityBounds, boundary *CityBoundary) []StreetSegment {
	if boundary != nil && len(boundary.Polygons) > 0 {
		out := make([]StreetSegment, 0, len(segments))
		for _, seg := range segments {
			if polygonContainsSegment(seg, boundary) {
				out = append(out, seg)
			}
		}
		return out
	}

	padded := bounds.Padded(bboxPaddingM)
	out := make([]StreetSegment, 0, len(segments))
	for _, seg := range segments {
		if bboxContainsSegment(seg, padded) {
			out = append(out, seg)
		}
	}
	return out
}

func bboxContainsSegment(seg StreetSegment, padded geo.BBox) bool {
	if len(seg.Path) < 2 {
		return false
	}
	if !padded.Contains(seg.Path[0]) || !padded.Contains(seg.Path[len(seg.Path)-1]) {
		return false
	}
	inside := 0
	for _, p := range seg.Path {
		if padded.Contains(p) {
			inside++
		}
	}
	return float64(inside)/float64(len(seg.Path)) >= minPathInsideFraction
}

func polygonContainsSegment(seg StreetSegment, boundary *CityBoundary) bool {
	if len(seg.Path) < 2 {
		return false
	}
	start, end := seg.Path[0], seg.Path[len(seg.Path)-1]
	if !nearBoundary(start, boundary, polygonEndpointToleranceM) ||
		!nearBoundary(end, boundary, polygonEndpointToleranceM) {
		return false
	}
	inside := 0
	for _, p := range seg.Path {
		if nearBoundary(p, boundary, polygonPathToleranceM) {
			inside++
		}
	}
	return float64(inside)/float64(len(seg.Path)) >= minPathInsideFraction
}

// nearBoundary reports whether p is inside any polygon of the boundary
// (and not inside a hole), or within toleranceM of an outer/hole ring.
func nearBoundary(p geo.LatLng, boundary *CityBoundary, toleranceM float64) bool {
	for _, poly := range boundary.Polygons {
		if pointNearPolygon(p, poly, toleranceM) {
			return true
		}
	}
	return false
}

func pointNearPolygon(p geo.LatLng, poly Polygon, toleranceM float64) bool {
	inside := geo.PointInPolygon(p, poly.Outer)
	if inside {
		for _, hole := range poly.Holes {
			if geo.PointInPolygon(p, hole) {
				inside = false
				break
			}
		}
	}
	if inside {
		return true
	}
	if ringDistanceMeters(p, poly.Outer) <= toleranceM {
		return true
	}
	for _, hole := range poly.Holes {
		if ringDistanceMeters(p, hole) <= toleranceM {
			return true
		}
	}
	return false
}

// ringDistanceMeters treats ring as closed (appends the first point to the
// end) and returns the minimum distance from p to any edge.
func ringDistanceMeters(p geo.LatLng, ring Ring) float64 {
	if len(ring) < 2 {
		return 1e18
	}
	closed := make([]geo.LatLng, len(ring)+1)
	copy(closed, ring)
	closed[len(ring)] = ring[0]
	return geo.PointToPathMeters(p, closed)
}
