package overpass

import (
	"encoding/json"

	"github.com/MeKo-Christian/go-overpass"
)

// wireElement mirrors the Overpass JSON element shape ingest.ParseOverpass
// expects, so the Result objects go-overpass hands back can be fed straight
// into the same parser used for hand-saved Overpass dumps.
type wireElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   *float64          `json:"lat,omitempty"`
	Lon   *float64          `json:"lon,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

type wirePayload struct {
	Elements []wireElement `json:"elements"`
}

// encodeResultAsElements flattens a parsed overpass.Result back into the raw
// {"elements": [...]} shape so ingest.ParseOverpass can consume either a
// live API response or a go-overpass Result uniformly.
func encodeResultAsElements(result *overpass.Result) ([]byte, error) {
	var payload wirePayload

	for id, node := range result.Nodes {
		lat, lon := node.Lat, node.Lon
		payload.Elements = append(payload.Elements, wireElement{
			Type: "node", ID: id, Lat: &lat, Lon: &lon,
		})
	}

	for id, way := range result.Ways {
		nodeIDs := make([]int64, 0, len(way.Nodes))
		for _, n := range way.Nodes {
			nodeIDs = append(nodeIDs, n.ID)
		}
		payload.Elements = append(payload.Elements, wireElement{
			Type: "way", ID: id, Nodes: nodeIDs, Tags: way.Tags,
		})
	}

	return json.Marshal(payload)
}
