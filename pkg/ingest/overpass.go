package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/osm"

	"github.com/azybler/streetrunner/pkg/geo"
)

// overpassElement is the tolerant wire shape of one Overpass `elements[]`
// entry. Every field is optional except type/id — a malformed or
// partially-populated entry is simply skipped rather than rejected.
type overpassElement struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  *float64          `json:"lat"`
	Lon  *float64          `json:"lon"`
	Nodes []int64          `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

// overpassPayload is the top-level Overpass JSON response shape.
type overpassPayload struct {
	Elements []overpassElement `json:"elements"`
}

// runnableHighways lists highway tag values that make a way a runnable city
// street.
var runnableHighways = map[string]bool{
	"residential":   true,
	"unclassified":  true,
	"tertiary":      true,
	"secondary":     true,
	"primary":       true,
	"living_street": true,
}

// wayInfo holds a parsed way's node chain during Pass 1.
type wayInfo struct {
	ID      int64
	NodeIDs []int64
	Name    string
}

// isRunnableStreet reports whether tags describe a street a runner can
// legally traverse on foot: a runnable highway tag, no private/no access or
// foot restriction, not an area, and a non-empty name.
func isRunnableStreet(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !runnableHighways[hw] {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "private" || access == "no" {
		return false
	}
	foot := tags.Find("foot")
	if foot == "private" || foot == "no" {
		return false
	}
	name := strings.TrimSpace(tags.Find("name"))
	if name == "" {
		return false
	}
	return true
}

// ParseOverpass parses a raw Overpass JSON payload into runnable
// StreetSegments: node collection, runnable-way filtering, way splitting at
// shared nodes, and id assignment. Dedup and boundary containment are
// separate passes (Dedupe, FilterBoundary) so callers can compose them.
func ParseOverpass(data []byte) ([]StreetSegment, error) {
	var payload overpassPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse overpass payload: %w", err)
	}

	// Step 1: collect node lat/lon.
	nodeLat := make(map[int64]float64)
	nodeLon := make(map[int64]float64)
	for _, el := range payload.Elements {
		if el.Type != "node" || el.Lat == nil || el.Lon == nil {
			continue
		}
		nodeLat[el.ID] = *el.Lat
		nodeLon[el.ID] = *el.Lon
	}

	// Step 2: filter ways to runnable city streets.
	var ways []wayInfo
	for _, el := range payload.Elements {
		if el.Type != "way" {
			continue
		}
		if len(el.Nodes) < 2 {
			continue
		}
		tags := tagsFromMap(el.Tags)
		if !isRunnableStreet(tags) {
			continue
		}
		ways = append(ways, wayInfo{
			ID:      el.ID,
			NodeIDs: el.Nodes,
			Name:    strings.TrimSpace(tags.Find("name")),
		})
	}

	if len(ways) == 0 {
		return nil, nil
	}

	// Step 3: way splitting. Count raw usage of each node across all
	// retained ways, then split every way at its endpoints and at any
	// interior node used elsewhere too.
	nodeUsage := make(map[int64]int)
	for _, w := range ways {
		for _, n := range w.NodeIDs {
			nodeUsage[n]++
		}
	}

	anySplit := false
	type splitWay struct {
		way        wayInfo
		splitIndex []int
	}
	splitWays := make([]splitWay, 0, len(ways))
	for _, w := range ways {
		idx := splitIndices(w.NodeIDs, nodeUsage)
		if len(idx) > 2 {
			anySplit = true
		}
		splitWays = append(splitWays, splitWay{way: w, splitIndex: idx})
	}

	var segments []StreetSegment
	for _, sw := range splitWays {
		w := sw.way
		idx := sw.splitIndex
		if !anySplit {
			// Fallback: no way in this payload needed splitting, so keep
			// one segment per way rather than fragmenting everything.
			path := buildPath(w.NodeIDs, nodeLat, nodeLon)
			if len(path) < 2 {
				continue
			}
			segments = append(segments, StreetSegment{
				ID:          fmt.Sprintf("osm-%d", w.ID),
				Name:        w.Name,
				Path:        path,
				StartNodeID: fmt.Sprintf("osm-node-%d", w.NodeIDs[0]),
				EndNodeID:   fmt.Sprintf("osm-node-%d", w.NodeIDs[len(w.NodeIDs)-1]),
				Source:      SourceOSM,
			})
			continue
		}
		for k := 0; k < len(idx)-1; k++ {
			startIdx := idx[k]
			endIdx := idx[k+1]
			nodeSlice := w.NodeIDs[startIdx : endIdx+1]
			path := buildPath(nodeSlice, nodeLat, nodeLon)
			if len(path) < 2 {
				continue
			}
			segments = append(segments, StreetSegment{
				ID: fmt.Sprintf("osm-%d-%d-%d-%d", w.ID,
					w.NodeIDs[startIdx], w.NodeIDs[endIdx], k),
				Name:        w.Name,
				Path:        path,
				StartNodeID: fmt.Sprintf("osm-node-%d", w.NodeIDs[startIdx]),
				EndNodeID:   fmt.Sprintf("osm-node-%d", w.NodeIDs[endIdx]),
				Source:      SourceOSM,
			})
		}
	}

	return segments, nil
}

// splitIndices returns the sorted, deduplicated list of split points for a
// way's node chain: index 0, the last index, and every interior index whose
// node is shared with at least one other way (usage >= 2).
func splitIndices(nodeIDs []int64, nodeUsage map[int64]int) []int {
	last := len(nodeIDs) - 1
	set := map[int]bool{0: true, last: true}
	for i := 1; i < last; i++ {
		if nodeUsage[nodeIDs[i]] >= 2 {
			set[i] = true
		}
	}
	idx := make([]int, 0, len(set))
	for i := range set {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func buildPath(nodeIDs []int64, nodeLat, nodeLon map[int64]float64) []geo.LatLng {
	path := make([]geo.LatLng, 0, len(nodeIDs))
	for _, n := range nodeIDs {
		lat, okLat := nodeLat[n]
		lon, okLon := nodeLon[n]
		if !okLat || !okLon {
			continue
		}
		path = append(path, geo.LatLng{Lat: lat, Lon: lon})
	}
	return path
}

// tagsFromMap converts an Overpass tags map into paulmach/osm's Tags type so
// the runnability predicate can reuse osm.Tags.Find.
func tagsFromMap(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	return tags
}
