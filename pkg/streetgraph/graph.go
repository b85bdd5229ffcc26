// Package streetgraph builds the undirected multigraph of intersections and
// street segments that the routing and planning packages operate on.
package streetgraph

import (
	"github.com/tidwall/rtree"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
)

// Node is an intersection or dead end.
type Node struct {
	ID      string
	Point   geo.LatLng
	EdgeIDs []string
}

// Edge is one undirected street segment between two nodes; From and To are
// the segment's start and end. The same segment only ever produces one
// Edge; both endpoints keep it in
// their adjacency so it is traversable in either direction.
type Edge struct {
	ID         string
	StreetID   string
	StreetName string
	From       string
	To         string
	Path       []geo.LatLng
	DistanceKm float64
	Completed  bool
}

// Neighbor is one hop reachable from a node.
type Neighbor struct {
	EdgeID string
	NodeID string
}

// Graph is the street network built from a candidate segment pool.
type Graph struct {
	Nodes     map[string]*Node
	Edges     map[string]*Edge
	Adjacency map[string][]Neighbor
	nodeIndex rtree.RTreeG[string]
}

// Build constructs a Graph from segments, registering both endpoints of
// every segment as nodes and one undirected Edge per segment. Segments with
// fewer than two path points are skipped. No street is filtered out here —
// completed streets stay in the graph so the planner can route across them
// even when it no longer scores new-coverage credit for them.
func Build(segments []ingest.StreetSegment) *Graph {
	g := &Graph{
		Nodes:     make(map[string]*Node),
		Edges:     make(map[string]*Edge),
		Adjacency: make(map[string][]Neighbor),
	}

	for _, seg := range segments {
		if len(seg.Path) < 2 || seg.StartNodeID == "" || seg.EndNodeID == "" {
			continue
		}
		from := g.ensureNode(seg.StartNodeID, seg.Path[0])
		to := g.ensureNode(seg.EndNodeID, seg.Path[len(seg.Path)-1])

		edge := &Edge{
			ID:         seg.ID,
			StreetID:   seg.ID,
			StreetName: seg.Name,
			From:       from.ID,
			To:         to.ID,
			Path:       seg.Path,
			DistanceKm: geo.PolylineDistanceKm(seg.Path),
			Completed:  seg.Completed,
		}
		g.Edges[edge.ID] = edge

		from.EdgeIDs = append(from.EdgeIDs, edge.ID)
		to.EdgeIDs = append(to.EdgeIDs, edge.ID)
		g.Adjacency[from.ID] = append(g.Adjacency[from.ID], Neighbor{EdgeID: edge.ID, NodeID: to.ID})
		g.Adjacency[to.ID] = append(g.Adjacency[to.ID], Neighbor{EdgeID: edge.ID, NodeID: from.ID})
	}

	for id, n := range g.Nodes {
		pt := [2]float64{n.Point.Lon, n.Point.Lat}
		g.nodeIndex.Insert(pt, pt, id)
	}

	return g
}

func (g *Graph) ensureNode(id string, pt geo.LatLng) *Node {
	if n, ok := g.Nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Point: pt}
	g.Nodes[id] = n
	return n
}

// Degree returns the number of edge endpoints incident to node, counting a
// self-loop twice.
func (g *Graph) Degree(nodeID string) int {
	return len(g.Adjacency[nodeID])
}

// OtherEdges returns the edge ids touching nodeID other than excludeEdgeID.
func (g *Graph) OtherEdges(nodeID, excludeEdgeID string) []string {
	n, ok := g.Nodes[nodeID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(n.EdgeIDs))
	for _, id := range n.EdgeIDs {
		if id != excludeEdgeID {
			out = append(out, id)
		}
	}
	return out
}

// Other returns the endpoint of edge that is not nodeID.
func (e *Edge) Other(nodeID string) string {
	if e.From == nodeID {
		return e.To
	}
	return e.From
}

// NearestNode returns the id of the node closest to p by straight-line
// distance, and its distance in kilometers. Returns ("", 1e18) on an empty
// graph. It queries the rtree with an expanding box so dense downtown grids
// and sparse rural ones both resolve in a handful of searches.
func (g *Graph) NearestNode(p geo.LatLng) (string, float64) {
	if len(g.Nodes) == 0 {
		return "", 1e18
	}

	best := ""
	bestDist := 1e18
	degRadius := 0.002 // ~220m at the equator
	for tries := 0; tries < 10; tries++ {
		pt := [2]float64{p.Lon, p.Lat}
		min := [2]float64{pt[0] - degRadius, pt[1] - degRadius}
		max := [2]float64{pt[0] + degRadius, pt[1] + degRadius}
		g.nodeIndex.Search(min, max, func(_, _ [2]float64, id string) bool {
			n := g.Nodes[id]
			d := geo.Haversine(p, n.Point)
			if d < bestDist {
				bestDist = d
				best = id
			}
			return true
		})
		if best != "" {
			return best, bestDist
		}
		degRadius *= 4
	}

	// Fallback linear scan for a pathologically sparse graph where the
	// expanding search above never found a candidate.
	for id, n := range g.Nodes {
		d := geo.Haversine(p, n.Point)
		if d < bestDist {
			bestDist = d
			best = id
		}
	}
	return best, bestDist
}

// NodesWithin returns node ids within radiusKm of center.
func (g *Graph) NodesWithin(center geo.LatLng, radiusKm float64) []string {
	// A degree of latitude is ~111km; pad the query box generously since the
	// rtree prefilter is a box, not a circle, and Haversine re-checks below.
	degPad := radiusKm/111.0 + 0.01
	min := [2]float64{center.Lon - degPad, center.Lat - degPad}
	max := [2]float64{center.Lon + degPad, center.Lat + degPad}

	var out []string
	g.nodeIndex.Search(min, max, func(_, _ [2]float64, id string) bool {
		n := g.Nodes[id]
		if geo.Haversine(center, n.Point) <= radiusKm {
			out = append(out, id)
		}
		return true
	})
	return out
}
