package ingest

import (
	"fmt"
	"math"

	"github.com/azybler/streetrunner/pkg/geo"
)

// NewManualSegment builds a StreetSegment from a hand-drawn path. Manual
// segments have no OSM node ids, so endpoints are derived by quantizing
// coordinates to 5 decimal places (~1.1 m precision) so two manual segments
// sharing an endpoint coordinate resolve to the same node id.
func NewManualSegment(id, name string, path []geo.LatLng) StreetSegment {
	var start, end string
	if len(path) > 0 {
		start = quantizeNodeID(path[0])
		end = quantizeNodeID(path[len(path)-1])
	}
	return StreetSegment{
		ID:          id,
		Name:        name,
		Path:        path,
		StartNodeID: start,
		EndNodeID:   end,
		Source:      SourceManual,
	}
}

func quantizeNodeID(p geo.LatLng) string {
	lat := math.Round(p.Lat*1e5) / 1e5
	lon := math.Round(p.Lon*1e5) / 1e5
	return fmt.Sprintf("q-%.5f-%.5f", lat, lon)
}
