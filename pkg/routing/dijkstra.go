// Package routing provides shortest-path queries over a street graph, with a
// source-keyed cache so the coverage planner can reuse a single-source
// search across many candidate evaluations without resolving the full graph
// every time.
package routing

import (
	"math"

	"github.com/azybler/streetrunner/pkg/streetgraph"
)

// pqItem is a priority queue entry. Kept as a concrete struct rather than a
// heap.Interface implementation to avoid interface boxing on the hot path.
type pqItem struct {
	node string
	dist float64
}

// minHeap is a concrete-typed min-heap keyed on dist.
type minHeap struct {
	items []pqItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) push(node string, dist float64) {
	h.items = append(h.items, pqItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].dist >= h.items[parent].dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].dist < h.items[smallest].dist {
			smallest = left
		}
		if right < n && h.items[right].dist < h.items[smallest].dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// Result is one source's single-source shortest-path solution.
type Result struct {
	Dist map[string]float64
	Prev map[string]string // predecessor node id; absent for the source
}

// dijkstra runs a full single-source shortest-path search from source over
// g, using edge DistanceKm as weight.
func dijkstra(g *streetgraph.Graph, source string) Result {
	dist := make(map[string]float64, len(g.Nodes))
	prev := make(map[string]string, len(g.Nodes))
	visited := make(map[string]bool, len(g.Nodes))

	dist[source] = 0
	var pq minHeap
	pq.push(source, 0)

	for pq.Len() > 0 {
		cur := pq.pop()
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		for _, nb := range g.Adjacency[cur.node] {
			edge := g.Edges[nb.EdgeID]
			next := edge.DistanceKm + cur.dist
			best, ok := dist[nb.NodeID]
			if !ok || next < best {
				dist[nb.NodeID] = next
				prev[nb.NodeID] = cur.node
				pq.push(nb.NodeID, next)
			}
		}
	}

	return Result{Dist: dist, Prev: prev}
}

// Cache memoizes per-source Dijkstra results so repeated queries from the
// same source (the planner's common case: distance from the current
// position to every candidate) only pay for one search.
type Cache struct {
	graph   *streetgraph.Graph
	results map[string]Result
}

// NewCache returns a Cache bound to g.
func NewCache(g *streetgraph.Graph) *Cache {
	return &Cache{graph: g, results: make(map[string]Result)}
}

func (c *Cache) resultFrom(source string) Result {
	if r, ok := c.results[source]; ok {
		return r
	}
	r := dijkstra(c.graph, source)
	c.results[source] = r
	return r
}

// DistanceKm returns the shortest-path distance from -> to in kilometers, or
// +Inf if to is unreachable from from.
func (c *Cache) DistanceKm(from, to string) float64 {
	r := c.resultFrom(from)
	if d, ok := r.Dist[to]; ok {
		return d
	}
	return math.Inf(1)
}

// PathEdges is a reconstructed shortest path: its total distance and the
// edge ids to traverse, in order.
type PathEdges struct {
	DistanceKm float64
	EdgeIDs    []string
}

// ShortestPathEdges returns the edge ids of the shortest path from -> to, in
// traversal order, along with its distance. If to is unreachable, it returns
// a +Inf distance and a nil edge list.
func (c *Cache) ShortestPathEdges(from, to string) PathEdges {
	r := c.resultFrom(from)
	dist, ok := r.Dist[to]
	if !ok {
		return PathEdges{DistanceKm: math.Inf(1)}
	}
	if from == to {
		return PathEdges{DistanceKm: 0}
	}

	// Walk predecessors from `to` back to `from`, then reverse.
	var nodes []string
	cur := to
	for cur != from {
		nodes = append(nodes, cur)
		p, ok := r.Prev[cur]
		if !ok {
			// Broken predecessor chain; treat as unreachable rather than
			// returning a partial path.
			return PathEdges{DistanceKm: math.Inf(1)}
		}
		cur = p
	}
	nodes = append(nodes, from)
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	edgeIDs := make([]string, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		edgeIDs = append(edgeIDs, edgeBetween(c.graph, nodes[i], nodes[i+1]))
	}
	return PathEdges{DistanceKm: dist, EdgeIDs: edgeIDs}
}

// edgeBetween returns the cheapest edge id directly connecting a and b. Ties
// are broken by adjacency insertion order, matching the graph's
// deterministic build order.
func edgeBetween(g *streetgraph.Graph, a, b string) string {
	best := ""
	bestDist := math.Inf(1)
	for _, nb := range g.Adjacency[a] {
		if nb.NodeID != b {
			continue
		}
		edge := g.Edges[nb.EdgeID]
		if edge.DistanceKm < bestDist {
			bestDist = edge.DistanceKm
			best = edge.ID
		}
	}
	return best
}

// Step is one oriented traversal of an edge.
type Step struct {
	EdgeID string
	From   string
	To     string
}

// OrientPathEdges walks edgeIDs starting from startNodeID and produces the
// ordered traversal steps (which endpoint is "from" and which is "to" for
// each edge). It returns nil if any edge in the chain does not connect to
// the running position.
func OrientPathEdges(g *streetgraph.Graph, startNodeID string, edgeIDs []string) []Step {
	steps := make([]Step, 0, len(edgeIDs))
	cur := startNodeID
	for _, id := range edgeIDs {
		edge, ok := g.Edges[id]
		if !ok {
			return nil
		}
		var to string
		switch cur {
		case edge.From:
			to = edge.To
		case edge.To:
			to = edge.From
		default:
			return nil
		}
		steps = append(steps, Step{EdgeID: id, From: cur, To: to})
		cur = to
	}
	return steps
}
