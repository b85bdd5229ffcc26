// Package euler provides an Eulerization helper: given a street graph, add
// shortest-path duplicate edges between greedily paired odd-degree nodes to
// make every node's degree even (so an
// Euler trail traversing every edge exactly once becomes possible), then
// extract that trail with Hierholzer's algorithm.
//
// The coverage planner does not currently call into this package — see
// DESIGN.md for why the greedy planner's output is used as the route
// instead of a full Eulerian circuit.
package euler

import (
	"strconv"

	"github.com/azybler/streetrunner/pkg/routing"
	"github.com/azybler/streetrunner/pkg/streetgraph"
)

// multiEdge is one traversal of an edge in the working multigraph used
// during Eulerization and Hierholzer's walk. Augmenting edges (added to pair
// up odd-degree vertices) are synthetic and carry no StreetID.
type multiEdge struct {
	id         string
	from, to   string
	distanceKm float64
	synthetic  bool
}

// workGraph is an adjacency list of multiEdges, mutable during Hierholzer's
// walk (edges are marked in used as they're traversed).
type workGraph struct {
	adj map[string][]int // node -> indices of every incident edge
	edges []multiEdge
	used  []bool
}

// Eulerize returns the edge-traversal list that makes g's degree sequence
// even: for every pair of odd-degree vertices it adds the shortest path
// between them as synthetic duplicate edges. Pairing is greedy — nearest
// unpaired odd vertex first — which is not always optimal but is the same
// simplification the rest of this planner makes elsewhere.
func Eulerize(g *streetgraph.Graph) []multiEdge {
	edges := baseEdges(g)

	degree := make(map[string]int)
	for _, e := range edges {
		degree[e.from]++
		degree[e.to]++
	}

	var odd []string
	for id := range g.Nodes {
		if degree[id]%2 == 1 {
			odd = append(odd, id)
		}
	}

	cache := routing.NewCache(g)
	paired := make(map[string]bool)
	for _, a := range odd {
		if paired[a] {
			continue
		}
		best := ""
		bestDist := -1.0
		for _, b := range odd {
			if b == a || paired[b] {
				continue
			}
			d := cache.DistanceKm(a, b)
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best = b
			}
		}
		if best == "" {
			continue
		}
		paired[a] = true
		paired[best] = true

		path := cache.ShortestPathEdges(a, best)
		steps := routing.OrientPathEdges(g, a, path.EdgeIDs)
		for i, s := range steps {
			edge := g.Edges[s.EdgeID]
			edges = append(edges, multiEdge{
				id:         "aug-" + a + "-" + best + "-" + strconv.Itoa(i),
				from:       s.From,
				to:         s.To,
				distanceKm: edge.DistanceKm,
				synthetic:  true,
			})
		}
	}

	return edges
}

func baseEdges(g *streetgraph.Graph) []multiEdge {
	edges := make([]multiEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, multiEdge{id: e.ID, from: e.From, to: e.To, distanceKm: e.DistanceKm})
	}
	return edges
}

// Trail returns an Euler trail over edges starting at startNodeID, using
// Hierholzer's algorithm with an explicit stack (no recursion, so it scales
// to graphs far larger than Go's default goroutine stack would comfortably
// recurse over).
func Trail(edges []multiEdge, startNodeID string) []string {
	wg := buildWorkGraph(edges)

	var stack []string
	var trail []string
	stack = append(stack, startNodeID)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		idx := wg.nextUnusedEdge(node)
		if idx < 0 {
			trail = append(trail, node)
			stack = stack[:len(stack)-1]
			continue
		}
		e := wg.edges[idx]
		wg.used[idx] = true
		next := e.to
		if e.from != node {
			next = e.from
		}
		stack = append(stack, next)
	}

	// trail was built by popping in reverse visitation order; Hierholzer's
	// result is the reverse of that pop order.
	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}
	return trail
}

func buildWorkGraph(edges []multiEdge) *workGraph {
	wg := &workGraph{
		adj:  make(map[string][]int),
		edges: edges,
		used:  make([]bool, len(edges)),
	}
	for i, e := range edges {
		wg.adj[e.from] = append(wg.adj[e.from], i)
		if e.from != e.to {
			wg.adj[e.to] = append(wg.adj[e.to], i)
		}
	}
	return wg
}

func (wg *workGraph) nextUnusedEdge(node string) int {
	for _, idx := range wg.adj[node] {
		if !wg.used[idx] {
			return idx
		}
	}
	return -1
}
