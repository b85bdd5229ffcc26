package serialize

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/azybler/streetrunner/pkg/planner"
)

// maxMapsWaypoints is the practical cap most consumer map apps enforce on
// the number of waypoints accepted in a single directions URL.
const maxMapsWaypoints = 10

// sampleWaypoints downsamples points to at most maxMapsWaypoints, always
// keeping the first and last point, at a fixed stride.
func sampleWaypoints(points [][2]float64) [][2]float64 {
	if len(points) <= maxMapsWaypoints {
		return points
	}
	stride := int(math.Ceil(float64(len(points)) / float64(maxMapsWaypoints)))
	if stride < 1 {
		stride = 1
	}
	var out [][2]float64
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	last := points[len(points)-1]
	if out[len(out)-1] != last {
		if len(out) < maxMapsWaypoints {
			out = append(out, last)
		} else {
			out[len(out)-1] = last
		}
	}
	return out
}

func latLngPairs(p *planner.Plan) [][2]float64 {
	points := routePoints(p)
	out := make([][2]float64, len(points))
	for i, pt := range points {
		out[i] = [2]float64{pt.Lat, pt.Lon}
	}
	return out
}

// GoogleMapsURL builds a directions URL through up to maxMapsWaypoints of
// the plan's points.
func GoogleMapsURL(p *planner.Plan) string {
	points := sampleWaypoints(latLngPairs(p))
	if len(points) == 0 {
		return ""
	}
	parts := make([]string, len(points))
	for i, pt := range points {
		parts[i] = fmt.Sprintf("%.6f,%.6f", pt[0], pt[1])
	}
	u := url.URL{
		Scheme: "https",
		Host:   "www.google.com",
		Path:   "/maps/dir/",
	}
	q := u.Query()
	q.Set("api", "1")
	q.Set("travelmode", "walking")
	q.Set("waypoints", strings.Join(parts, "|"))
	u.RawQuery = q.Encode()
	return u.String()
}

// AppleMapsURL builds a simple origin/destination Apple Maps URL — Apple
// Maps' web scheme does not support arbitrary waypoint chains the way
// Google's does, so only the start and end are encoded.
func AppleMapsURL(p *planner.Plan) string {
	points := latLngPairs(p)
	if len(points) == 0 {
		return ""
	}
	start := points[0]
	end := points[len(points)-1]
	u := url.URL{Scheme: "https", Host: "maps.apple.com"}
	q := u.Query()
	q.Set("saddr", fmt.Sprintf("%.6f,%.6f", start[0], start[1]))
	q.Set("daddr", fmt.Sprintf("%.6f,%.6f", end[0], end[1]))
	q.Set("dirflg", "w")
	u.RawQuery = q.Encode()
	return u.String()
}

// GPXOpenURL builds a generic geo: URI anchored on the route's starting
// point, for apps that accept an arbitrary GPX import rather than turn-by-
// turn directions.
func GPXOpenURL(p *planner.Plan) string {
	points := latLngPairs(p)
	if len(points) == 0 {
		return ""
	}
	start := points[0]
	return fmt.Sprintf("geo:%.6f,%.6f?q=%.6f,%.6f", start[0], start[1], start[0], start[1])
}
