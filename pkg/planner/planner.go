// Package planner builds a coverage-maximizing out-and-back route: starting
// and ending at a home point, it greedily chains street segments to cover as
// much of the street network as possible within a target distance budget.
// This is the heart of the system — every other package exists to feed it a
// graph or to serialize what it produces.
package planner

import (
	"math"
	"sort"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
	"github.com/azybler/streetrunner/pkg/routing"
	"github.com/azybler/streetrunner/pkg/streetgraph"
)

const (
	// minTargetKm is the floor targetKm is clamped to; below it, the budget
	// and candidate-selection formulas stop behaving sensibly.
	minTargetKm = 0.8

	deadEndSweepLimit    = 5
	forwardChainMaxSteps = 12
	branchSweepLimit     = 6
	branchSpurSweepLimit = 2

	// deadEndBudgetGateRatio is the fraction of targetKm the route must
	// already have covered before a dead-end spur gets cut off for exceeding
	// hardMaxKm.
	deadEndBudgetGateRatio = 0.48
	// globalMoveBudgetGateRatio is the same gate guarding the global move.
	globalMoveBudgetGateRatio = 0.45
	// overshootTerminationRatio is how far past targetKm the route must reach
	// (with at least one reward already earned) for the main loop to stop.
	overshootTerminationRatio = 1.03
)

// RouteStep is one traversal hop in the final plan.
type RouteStep struct {
	EdgeID      string
	StreetID    string
	StreetName  string
	From        string
	To          string
	Path        []geo.LatLng
	DistanceKm  float64
	IsConnector bool // a shortest-path hop inserted to reach the next target, not a street being "run" for credit
}

// Plan is the result of planning a coverage route.
type Plan struct {
	Steps           []RouteStep
	TotalDistanceKm float64
	StreetsTotal    int
	StreetsCovered  int
	NodesTotal      int
	NodesCovered    int
}

// Request describes a single planning call.
type Request struct {
	Streets      []ingest.StreetSegment
	Home         geo.LatLng
	TargetKm     float64
	CityBounds   *geo.BBox
	CityBoundary *ingest.CityBoundary
}

// Plan builds a coverage-maximizing route starting and ending near req.Home.
// It is deterministic given the same (streets, home, targetKm, cityBounds):
// candidate streets are ordered by ascending distance from home, edges at a
// node by length, and the global move scans edges by id, with ties always
// broken by id.
func Plan(req Request) *Plan {
	targetKm := math.Max(minTargetKm, req.TargetKm)
	hardMaxKm := math.Max(1.2, targetKm*1.1+0.35)
	maxIterations := int(math.Max(140, math.Round(targetKm*95)))

	streets := req.Streets
	if req.CityBoundary != nil || req.CityBounds != nil {
		bounds := geo.BBox{}
		if req.CityBounds != nil {
			bounds = *req.CityBounds
		}
		streets = ingest.FilterBoundary(streets, bounds, req.CityBoundary)
	}

	candidates := selectCandidates(streets, req.Home, targetKm)
	if len(candidates) == 0 {
		return &Plan{}
	}

	graph := streetgraph.Build(candidates)
	startNode, _ := graph.NearestNode(req.Home)
	if startNode == "" {
		return &Plan{}
	}

	totalStreets := make(map[string]bool, len(graph.Edges))
	completedStreets := make(map[string]bool, len(graph.Edges))
	for _, e := range graph.Edges {
		totalStreets[e.StreetID] = true
		if e.Completed {
			completedStreets[e.StreetID] = true
		}
	}
	if len(totalStreets) == 0 || len(completedStreets) >= len(totalStreets) {
		// Every candidate street is already completed: nothing left to run.
		return &Plan{StreetsTotal: len(totalStreets), NodesTotal: len(graph.Nodes)}
	}

	cache := routing.NewCache(graph)
	allNodePoints := make(map[string]geo.LatLng, len(graph.Nodes))
	for id, n := range graph.Nodes {
		allNodePoints[id] = n.Point
	}
	cov := newCoverage(allNodePoints, completedStreets)

	plan := &Plan{
		StreetsTotal: len(totalStreets),
		NodesTotal:   len(graph.Nodes),
	}

	cur := startNode
	distSoFar := 0.0

	appendStep := func(edge *streetgraph.Edge, from, to string, connector bool) {
		step := RouteStep{
			EdgeID: edge.ID, StreetID: edge.StreetID, StreetName: edge.StreetName,
			From: from, To: to, Path: orientedPath(edge, from), DistanceKm: edge.DistanceKm,
			IsConnector: connector,
		}
		plan.Steps = append(plan.Steps, step)
		distSoFar += edge.DistanceKm
		cov.appendPath(step.Path)
		cov.markTraversal(edge.ID)
		if !connector {
			cov.markStreet(edge.StreetID)
		}
	}

	takeShortestPath := func(to string) bool {
		if cur == to {
			return true
		}
		path := cache.ShortestPathEdges(cur, to)
		if math.IsInf(path.DistanceKm, 1) {
			return false
		}
		if distSoFar+path.DistanceKm > hardMaxKm {
			return false
		}
		steps := routing.OrientPathEdges(graph, cur, path.EdgeIDs)
		if steps == nil {
			return false
		}
		for _, s := range steps {
			edge := graph.Edges[s.EdgeID]
			appendStep(edge, s.From, s.To, true)
			cur = s.To
		}
		return true
	}

	iterations := 0
	for iterations < maxIterations {
		iterations++

		if distSoFar >= hardMaxKm {
			break
		}
		if distSoFar >= targetKm*overshootTerminationRatio && cov.anyRewardEarned() {
			break
		}

		if sweepDeadEnds(graph, cov, &cur, &distSoFar, targetKm, hardMaxKm, appendStep) {
			continue
		}
		if sweepImmediateBranches(graph, cov, &cur, &distSoFar, hardMaxKm, appendStep, takeShortestPath) {
			continue
		}

		moved := takeGlobalCoverageMove(graph, cov, cache, cur, distSoFar, targetKm, hardMaxKm,
			func(edge *streetgraph.Edge, from, to string) {
				appendStep(edge, from, to, false)
				cur = to
			}, takeShortestPath)
		if moved {
			continue
		}

		break
	}

	// Return to the start.
	takeShortestPath(startNode)

	plan.TotalDistanceKm = distSoFar
	plan.StreetsCovered = len(cov.coveredStreets)
	plan.NodesCovered = cov.coveredNodeCount()
	return plan
}

func orientedPath(edge *streetgraph.Edge, from string) []geo.LatLng {
	if from == edge.From {
		return edge.Path
	}
	reversed := make([]geo.LatLng, len(edge.Path))
	for i, p := range edge.Path {
		reversed[len(edge.Path)-1-i] = p
	}
	return reversed
}

// selectCandidates narrows streets to those worth considering for this plan.
// Each street's entry distance is the closer of its two endpoints' haversine
// distance to home; candidates within a radius proportional to targetKm are
// kept, sorted by entry distance and capped to a sane pool size. If too few
// streets survive the radius cut, it falls back to the closest N candidates
// overall regardless of radius.
func selectCandidates(streets []ingest.StreetSegment, home geo.LatLng, targetKm float64) []ingest.StreetSegment {
	radiusKm := geo.Clamp(targetKm*1.45+1.3, 2.2, 32)
	keepCap := int(geo.Clamp(math.Round(targetKm*168), 320, 4200))
	fallbackThreshold := int(math.Max(120, math.Round(targetKm*22)))
	fallbackCount := int(math.Max(320, math.Round(targetKm*72)))

	type scored struct {
		seg  ingest.StreetSegment
		dist float64
	}
	all := make([]scored, 0, len(streets))
	for _, s := range streets {
		if len(s.Path) == 0 {
			continue
		}
		d := math.Min(geo.Haversine(home, s.Path[0]), geo.Haversine(home, s.Path[len(s.Path)-1]))
		all = append(all, scored{seg: s, dist: d})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].seg.ID < all[j].seg.ID
	})

	var within []ingest.StreetSegment
	for _, s := range all {
		if s.dist <= radiusKm {
			within = append(within, s.seg)
		}
	}

	if len(within) >= fallbackThreshold || len(all) == 0 {
		if len(within) > keepCap {
			within = within[:keepCap]
		}
		return within
	}

	// Fallback: not enough streets within the radius, so take the closest N
	// overall regardless of the radius cutoff.
	n := fallbackCount
	if n > len(all) {
		n = len(all)
	}
	out := make([]ingest.StreetSegment, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].seg
	}
	return out
}
