package planner

import (
	"github.com/azybler/streetrunner/pkg/geo"
)

// coverageToleranceMeters is how close a traveled point has to pass to a
// street node for that node to count as covered, even if the route never
// actually stopped there. 6.096m (20ft) accounts for GPS jitter and the fact
// that running down the middle of a wide street still "covers" the
// sidewalk-adjacent intersection node.
const coverageToleranceMeters = 6.096

// seamlessJoinMeters is the maximum gap between the end of one traveled
// segment and the start of the next for them to be treated as a continuous
// path rather than requiring an explicit connector leg.
const seamlessJoinMeters = 18.0

// coverage tracks which streets and nodes a plan has visited so far, and how
// many times each edge has been walked.
//
// completedStreets is seeded once from the input data and never changes: it
// is the set of streets the runner has already run on a prior outing.
// coveredStreets is the set of streets walked for credit (connector steps do
// not add to it), seeded with completedStreets and grown as new streets are
// walked — it backs the
// StreetsCovered stat. rewardedStreets is the strict subset of coveredStreets
// that were NOT already completed: the only streets a move can still earn
// coverage credit for, and the set the scoring formulas consult to avoid
// paying out twice for the same street.
type coverage struct {
	completedStreets   map[string]bool
	coveredStreets     map[string]bool
	rewardedStreets    map[string]bool
	traversedEdgeCount map[string]int
	traveledPath       []geo.LatLng
	allNodes           map[string]geo.LatLng
}

func newCoverage(allNodes map[string]geo.LatLng, completedStreets map[string]bool) *coverage {
	covered := make(map[string]bool, len(completedStreets))
	for id := range completedStreets {
		covered[id] = true
	}
	return &coverage{
		completedStreets:   completedStreets,
		coveredStreets:     covered,
		rewardedStreets:    make(map[string]bool),
		traversedEdgeCount: make(map[string]int),
		allNodes:           allNodes,
	}
}

// markStreet records that streetID was just walked for credit (a non-connector
// step). Streets already completed before this plan never enter
// rewardedStreets, so they stop earning score but still count as covered.
func (c *coverage) markStreet(streetID string) {
	if !c.completedStreets[streetID] {
		c.rewardedStreets[streetID] = true
	}
	c.coveredStreets[streetID] = true
}

func (c *coverage) markTraversal(edgeID string) {
	c.traversedEdgeCount[edgeID]++
}

func (c *coverage) appendPath(path []geo.LatLng) {
	if len(path) == 0 {
		return
	}
	if len(c.traveledPath) > 0 {
		last := c.traveledPath[len(c.traveledPath)-1]
		gapM := geo.Haversine(last, path[0]) * 1000
		if gapM <= seamlessJoinMeters {
			path = path[1:]
		}
	}
	c.traveledPath = append(c.traveledPath, path...)
}

// isStreetAvailable reports whether streetID can still earn coverage reward:
// it was not already completed before this plan, and this plan hasn't
// rewarded it yet.
func (c *coverage) isStreetAvailable(streetID string) bool {
	return !c.completedStreets[streetID] && !c.rewardedStreets[streetID]
}

// anyRewardEarned reports whether this plan has rewarded at least one
// previously-uncompleted street.
func (c *coverage) anyRewardEarned() bool {
	return len(c.rewardedStreets) > 0
}

// pointIsCovered reports whether p lies within coverageToleranceMeters of
// any point already traveled.
func (c *coverage) pointIsCovered(p geo.LatLng) bool {
	if len(c.traveledPath) < 2 {
		if len(c.traveledPath) == 1 {
			return geo.Haversine(p, c.traveledPath[0])*1000 <= coverageToleranceMeters
		}
		return false
	}
	return geo.PointToPathMeters(p, c.traveledPath) <= coverageToleranceMeters
}

// availableNodes returns the node ids not yet covered by the traveled path.
func (c *coverage) availableNodes() []string {
	var out []string
	for id, pt := range c.allNodes {
		if !c.pointIsCovered(pt) {
			out = append(out, id)
		}
	}
	return out
}

// coveredNodeCount returns how many of allNodes are covered.
func (c *coverage) coveredNodeCount() int {
	n := 0
	for _, pt := range c.allNodes {
		if c.pointIsCovered(pt) {
			n++
		}
	}
	return n
}
