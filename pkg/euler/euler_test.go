package euler

import (
	"testing"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
	"github.com/azybler/streetrunner/pkg/streetgraph"
)

// A square with a single odd pair: a-b-c-d-a plus a pendant edge a-e, so a
// and e are the two odd-degree vertices.
func squareWithPendant() *streetgraph.Graph {
	pt := func(x, y float64) geo.LatLng { return geo.LatLng{Lat: y, Lon: x} }
	segs := []ingest.StreetSegment{
		{ID: "ab", Name: "ab", StartNodeID: "a", EndNodeID: "b", Path: []geo.LatLng{pt(0, 0), pt(0, 1)}},
		{ID: "bc", Name: "bc", StartNodeID: "b", EndNodeID: "c", Path: []geo.LatLng{pt(0, 1), pt(1, 1)}},
		{ID: "cd", Name: "cd", StartNodeID: "c", EndNodeID: "d", Path: []geo.LatLng{pt(1, 1), pt(1, 0)}},
		{ID: "da", Name: "da", StartNodeID: "d", EndNodeID: "a", Path: []geo.LatLng{pt(1, 0), pt(0, 0)}},
		{ID: "ae", Name: "ae", StartNodeID: "a", EndNodeID: "e", Path: []geo.LatLng{pt(0, 0), pt(-1, 0)}},
	}
	return streetgraph.Build(segs)
}

func TestEulerizeMakesAllDegreesEven(t *testing.T) {
	g := squareWithPendant()
	edges := Eulerize(g)

	degree := make(map[string]int)
	for _, e := range edges {
		degree[e.from]++
		degree[e.to]++
	}
	for node, d := range degree {
		if d%2 != 0 {
			t.Fatalf("node %s has odd degree %d after Eulerize", node, d)
		}
	}
}

func TestEulerizeAddsAugmentingEdgesForOddPair(t *testing.T) {
	g := squareWithPendant()
	edges := Eulerize(g)
	hasSynthetic := false
	for _, e := range edges {
		if e.synthetic {
			hasSynthetic = true
		}
	}
	if !hasSynthetic {
		t.Fatalf("expected at least one synthetic augmenting edge for the odd a-e pair")
	}
}

func TestTrailCoversEveryEdge(t *testing.T) {
	g := squareWithPendant()
	edges := Eulerize(g)
	trail := Trail(edges, "a")

	if len(trail) != len(edges)+1 {
		t.Fatalf("expected a trail visiting len(edges)+1 nodes, got %d for %d edges", len(trail), len(edges))
	}
	if trail[0] != "a" {
		t.Fatalf("expected trail to start at a, got %s", trail[0])
	}
}

func TestTrailEmptyGraph(t *testing.T) {
	trail := Trail(nil, "solo")
	if len(trail) != 1 || trail[0] != "solo" {
		t.Fatalf("expected a single-node trail for no edges, got %v", trail)
	}
}
