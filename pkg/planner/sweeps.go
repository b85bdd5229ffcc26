package planner

import (
	"math"
	"sort"

	"github.com/azybler/streetrunner/pkg/routing"
	"github.com/azybler/streetrunner/pkg/streetgraph"
)

type appendStepFn func(edge *streetgraph.Edge, from, to string, connector bool)
type takeShortestPathFn func(to string) bool

// uncoveredEdgesAt returns the edges touching nodeID whose street is still
// available for reward, sorted by distance (shortest first).
func uncoveredEdgesAt(g *streetgraph.Graph, cov *coverage, nodeID string) []*streetgraph.Edge {
	var out []*streetgraph.Edge
	for _, nb := range g.Adjacency[nodeID] {
		edge := g.Edges[nb.EdgeID]
		if cov.isStreetAvailable(edge.StreetID) {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// isDeadEndFar reports whether the endpoint of edge opposite from is a dead
// end: it has no other available edges leading further out.
func isDeadEndFar(g *streetgraph.Graph, cov *coverage, edge *streetgraph.Edge, from string) bool {
	far := edge.Other(from)
	others := uncoveredEdgesAt(g, cov, far)
	for _, e := range others {
		if e.ID != edge.ID {
			return false
		}
	}
	return true
}

// pendingBranchesAt returns the available edges at nodeID that are branches
// rather than dead ends: candidates sweepImmediateBranches would still take.
func pendingBranchesAt(g *streetgraph.Graph, cov *coverage, nodeID string) []*streetgraph.Edge {
	var out []*streetgraph.Edge
	for _, e := range uncoveredEdgesAt(g, cov, nodeID) {
		if !isDeadEndFar(g, cov, e, nodeID) {
			out = append(out, e)
		}
	}
	return out
}

// otherEdgeAt returns the single other edge incident to nodeID besides
// excludeEdgeID, or nil if nodeID's degree (excluding excludeEdgeID) isn't
// exactly one — i.e. nodeID isn't a simple degree-2 pass-through.
func otherEdgeAt(g *streetgraph.Graph, nodeID, excludeEdgeID string) *streetgraph.Edge {
	ids := g.OtherEdges(nodeID, excludeEdgeID)
	if len(ids) != 1 {
		return nil
	}
	return g.Edges[ids[0]]
}

// forwardChain walks the degree-≤2 chain of edges starting with first at
// startNode, up to forwardChainMaxSteps hops, stopping early when the next
// edge in the chain is no longer available for reward. It is a valid
// cul-de-sac spur iff the walk ends at a degree-1 node (a true dead end);
// branching out to a degree-≥3 node, or exhausting the step budget without
// reaching one, makes it invalid.
func forwardChain(g *streetgraph.Graph, cov *coverage, startNode string, first *streetgraph.Edge) (edges []*streetgraph.Edge, oneWayKm, newStreetGain, newNodeGain float64, valid bool) {
	seenStreets := make(map[string]bool)
	cur := startNode
	edge := first
	for step := 0; step < forwardChainMaxSteps; step++ {
		far := edge.Other(cur)
		edges = append(edges, edge)
		oneWayKm += edge.DistanceKm
		if !seenStreets[edge.StreetID] {
			seenStreets[edge.StreetID] = true
			if cov.isStreetAvailable(edge.StreetID) {
				newStreetGain++
			}
		}
		if !cov.pointIsCovered(g.Nodes[far].Point) {
			newNodeGain++
		}

		switch g.Degree(far) {
		case 1:
			return edges, oneWayKm, newStreetGain, newNodeGain, true
		case 2:
			next := otherEdgeAt(g, far, edge.ID)
			if next == nil || !cov.isStreetAvailable(next.StreetID) {
				return edges, oneWayKm, newStreetGain, newNodeGain, false
			}
			cur = far
			edge = next
		default:
			return edges, oneWayKm, newStreetGain, newNodeGain, false
		}
	}
	return edges, oneWayKm, newStreetGain, newNodeGain, false
}

// scoreDeadEndSpur scores a candidate forward-chain spur by its coverage
// gain per round-trip distance, plus a bonus for how well the round trip
// fits the remaining budget.
func scoreDeadEndSpur(oneWayKm, newStreetGain, newNodeGain, distSoFar, targetKm float64) float64 {
	roundTrip := oneWayKm * 2
	projected := distSoFar + roundTrip
	budgetFit := 1 - math.Min(1.5, math.Abs(targetKm-projected)/math.Max(0.85, targetKm*0.55))
	gain := newStreetGain*4.6 + newNodeGain*2.5 + math.Min(1.4, oneWayKm*1.8)
	return gain/(roundTrip+0.07) + budgetFit*1.1
}

// sweepDeadEnds takes up to deadEndSweepLimit out-and-back trips down the
// best-scoring uncovered cul-de-sac spur reachable from *cur by a
// degree-≤2 forward chain, within budget. It returns true if it made any
// move.
func sweepDeadEnds(g *streetgraph.Graph, cov *coverage,
	cur *string, distSoFar *float64, targetKm, hardMaxKm float64,
	appendStep appendStepFn) bool {

	moved := false
	for i := 0; i < deadEndSweepLimit; i++ {
		candidates := uncoveredEdgesAt(g, cov, *cur)

		var bestEdges []*streetgraph.Edge
		var bestScore float64
		found := false
		for _, e := range candidates {
			edges, oneWayKm, newStreetGain, newNodeGain, valid := forwardChain(g, cov, *cur, e)
			if !valid {
				continue
			}
			roundTrip := oneWayKm * 2
			if *distSoFar >= targetKm*deadEndBudgetGateRatio && *distSoFar+roundTrip > hardMaxKm {
				continue
			}
			score := scoreDeadEndSpur(oneWayKm, newStreetGain, newNodeGain, *distSoFar, targetKm)
			if !found || score > bestScore {
				bestEdges, bestScore, found = edges, score, true
			}
		}
		if !found {
			break
		}

		origin := *cur
		nodes := make([]string, len(bestEdges)+1)
		nodes[0] = origin
		for i, e := range bestEdges {
			nodes[i+1] = e.Other(nodes[i])
		}
		for i, e := range bestEdges {
			appendStep(e, nodes[i], nodes[i+1], false)
		}
		for i := len(bestEdges) - 1; i >= 0; i-- {
			appendStep(bestEdges[i], nodes[i+1], nodes[i], true)
		}
		*cur = origin
		moved = true
	}
	return moved
}

// sweepImmediateBranches takes up to branchSweepLimit uncovered branches
// directly reachable from *cur (excluding dead ends, which sweepDeadEnds
// already handles), each followed by up to branchSpurSweepLimit single-edge
// out-and-back dead-end spurs at the far end, before returning to *cur.
func sweepImmediateBranches(g *streetgraph.Graph, cov *coverage,
	cur *string, distSoFar *float64, hardMaxKm float64,
	appendStep appendStepFn, takeShortestPath takeShortestPathFn) bool {

	moved := false
	taken := 0
	for taken < branchSweepLimit {
		edges := uncoveredEdgesAt(g, cov, *cur)
		var pick *streetgraph.Edge
		for _, e := range edges {
			if !isDeadEndFar(g, cov, e, *cur) {
				pick = e
				break
			}
		}
		if pick == nil {
			break
		}
		if *distSoFar+pick.DistanceKm*2 > hardMaxKm {
			break
		}
		origin := *cur
		far := pick.Other(origin)
		appendStep(pick, origin, far, false)
		*cur = far
		taken++
		moved = true

		for s := 0; s < branchSpurSweepLimit; s++ {
			spurs := uncoveredEdgesAt(g, cov, *cur)
			var spur *streetgraph.Edge
			for _, e := range spurs {
				if isDeadEndFar(g, cov, e, *cur) {
					spur = e
					break
				}
			}
			if spur == nil {
				break
			}
			if *distSoFar+spur.DistanceKm*2 > hardMaxKm {
				break
			}
			spurFar := spur.Other(*cur)
			appendStep(spur, *cur, spurFar, false)
			appendStep(spur, spurFar, *cur, true)
		}

		if !takeShortestPath(origin) {
			break
		}
	}
	return moved
}

// coverageMove is a scored candidate global move: travel (by shortest path)
// to edge's near endpoint, then traverse it.
type coverageMove struct {
	edge        *streetgraph.Edge
	near        string
	far         string
	score       float64
	connectorKm float64
}

// takeGlobalCoverageMove scans every available edge in edge-id order (so
// equal scores always resolve to the same move), scores the move to
// reach and traverse it, and commits to the best-scoring reachable option
// within budget. It returns false (and makes no move) when nothing fits the
// remaining budget.
func takeGlobalCoverageMove(g *streetgraph.Graph, cov *coverage, cache *routing.Cache,
	cur string, distSoFar, targetKm, hardMaxKm float64,
	apply func(edge *streetgraph.Edge, from, to string), takeShortestPath takeShortestPathFn) bool {

	edgeIDs := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)

	var best *coverageMove
	for _, id := range edgeIDs {
		edge := g.Edges[id]
		if !cov.isStreetAvailable(edge.StreetID) {
			continue
		}
		for _, near := range []string{edge.From, edge.To} {
			far := edge.Other(near)

			var connectorKm float64
			var connectorEdges []string
			if near != cur {
				path := cache.ShortestPathEdges(cur, near)
				if math.IsInf(path.DistanceKm, 1) {
					continue
				}
				connectorKm = path.DistanceKm
				connectorEdges = path.EdgeIDs
			}

			totalKm := connectorKm + edge.DistanceKm
			if distSoFar >= targetKm*globalMoveBudgetGateRatio && distSoFar+totalKm > hardMaxKm {
				continue
			}

			score := scoreMove(g, cov, edge, near, far, connectorKm, connectorEdges, cur, distSoFar, targetKm)
			if best == nil || score > best.score {
				best = &coverageMove{edge: edge, near: near, far: far, score: score, connectorKm: connectorKm}
			}
		}
	}

	if best == nil {
		return false
	}

	if !takeShortestPath(best.near) {
		return false
	}
	apply(best.edge, best.near, best.far)
	return true
}

// scoreMove implements the global coverage move's weighted, distance-per-km
// value formula: new-street and new-node gain dominate the numerator, with
// bonuses for reaching leaves, branch tails, proximity to the move's entry
// point, and useful distance — all divided by the additional distance the
// move costs — plus a budget-fit bonus and penalties for overshooting the
// target, retreading already-traveled connector ground, and passing up a
// pending local branch before the route is mostly done.
func scoreMove(g *streetgraph.Graph, cov *coverage, edge *streetgraph.Edge, near, far string,
	connectorKm float64, connectorEdges []string, cur string, distSoFar, targetKm float64) float64 {

	newStreetGain := 1.0 // this edge's street is, by construction, available
	newNodeGain := 0.0
	if !cov.pointIsCovered(g.Nodes[far].Point) {
		newNodeGain++
	}
	if !cov.pointIsCovered(g.Nodes[near].Point) {
		newNodeGain++
	}

	leafBonus := 0.0
	if g.Degree(near) == 1 || g.Degree(far) == 1 {
		leafBonus = 1.75
	}

	branchTailBonus := 0.0
	if g.Degree(near) <= 2 || g.Degree(far) <= 2 {
		branchTailBonus = 0.35
	}

	proximityBonus := math.Max(0, 1.35-connectorKm) * 0.7
	usefulDistanceBonus := math.Min(1.5, edge.DistanceKm*1.35)

	additional := connectorKm + edge.DistanceKm
	remaining := targetKm - distSoFar
	budgetFit := 1 - math.Min(1.4, math.Abs(remaining-additional)/math.Max(0.7, targetKm*0.5))

	projected := distSoFar + additional
	overshootPenalty := 0.0
	if threshold := targetKm * 1.08; projected > threshold {
		overshootPenalty = (projected - threshold) * 1.9
	}

	connectorRepeatPenalty := 0.0
	for _, edgeID := range connectorEdges {
		ce := g.Edges[edgeID]
		prior := cov.traversedEdgeCount[edgeID]
		connectorRepeatPenalty += ce.DistanceKm * math.Min(2.4, float64(prior))
	}

	firstEdgeID := edge.ID
	if len(connectorEdges) > 0 {
		firstEdgeID = connectorEdges[0]
	}
	skipNearbyBranchPenalty := 0.0
	if distSoFar < targetKm*0.95 {
		pending := pendingBranchesAt(g, cov, cur)
		isPendingBranch := false
		for _, pb := range pending {
			if pb.ID == firstEdgeID {
				isPendingBranch = true
				break
			}
		}
		if !isPendingBranch {
			skipNearbyBranchPenalty = math.Min(3.6, float64(len(pending))*1.18)
		}
	}

	gain := newStreetGain*3.8 + newNodeGain*2.0 + leafBonus + branchTailBonus + proximityBonus + usefulDistanceBonus

	return gain/(additional+0.08) +
		budgetFit*1.45 -
		overshootPenalty -
		connectorRepeatPenalty*2.1 -
		skipNearbyBranchPenalty
}
