package streetgraph

import (
	"testing"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
)

func sampleSegments() []ingest.StreetSegment {
	return []ingest.StreetSegment{
		{
			ID: "s1", Name: "Main St",
			StartNodeID: "a", EndNodeID: "b",
			Path: []geo.LatLng{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}},
		},
		{
			ID: "s2", Name: "Side St",
			StartNodeID: "b", EndNodeID: "c",
			Path: []geo.LatLng{{Lat: 0, Lon: 0.001}, {Lat: 0.001, Lon: 0.001}},
		},
		{
			// A second, curved b-c segment parallel to s2, to exercise
			// parallel-edge adjacency.
			ID: "s3", Name: "Loop Ct",
			StartNodeID: "b", EndNodeID: "c",
			Path: []geo.LatLng{{Lat: 0, Lon: 0.001}, {Lat: 0.0005, Lon: 0.0012}, {Lat: 0.001, Lon: 0.001}},
		},
	}
}

func TestBuildRegistersNodesAndEdges(t *testing.T) {
	g := Build(sampleSegments())
	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(g.Edges))
	}
	if g.Degree("b") != 3 {
		t.Fatalf("expected node b to have degree 3 (s1, s2, s3), got %d", g.Degree("b"))
	}
}

func TestBuildSkipsDegenerateSegments(t *testing.T) {
	segs := []ingest.StreetSegment{
		{ID: "bad", Name: "Too Short", StartNodeID: "x", EndNodeID: "y", Path: []geo.LatLng{{Lat: 0, Lon: 0}}},
	}
	g := Build(segs)
	if len(g.Edges) != 0 {
		t.Fatalf("expected degenerate segment to be skipped, got %d edges", len(g.Edges))
	}
}

func TestNearestNode(t *testing.T) {
	g := Build(sampleSegments())
	id, dist := g.NearestNode(geo.LatLng{Lat: 0.0001, Lon: 0.0009})
	if id != "b" {
		t.Fatalf("expected nearest node to be b, got %q", id)
	}
	if dist <= 0 {
		t.Fatalf("expected positive distance, got %f", dist)
	}
}

func TestNearestNodeEmptyGraph(t *testing.T) {
	g := Build(nil)
	id, dist := g.NearestNode(geo.LatLng{Lat: 0, Lon: 0})
	if id != "" {
		t.Fatalf("expected empty id on empty graph, got %q", id)
	}
	if dist < 1e17 {
		t.Fatalf("expected +Inf-like distance on empty graph, got %f", dist)
	}
}

func TestNodesWithin(t *testing.T) {
	g := Build(sampleSegments())
	near := g.NodesWithin(geo.LatLng{Lat: 0, Lon: 0}, 0.2)
	found := false
	for _, id := range near {
		if id == "a" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected node a within 0.2km of origin, got %v", near)
	}
}

func TestOtherEdges(t *testing.T) {
	g := Build(sampleSegments())
	others := g.OtherEdges("b", "s1")
	if len(others) != 2 {
		t.Fatalf("expected 2 other edges at b excluding s1, got %d", len(others))
	}
}
