package nominatim

import "strings"

// idealPlaceRank is Nominatim's rank for a city/town-level place. Candidates
// closer to this rank score higher than counties, neighborhoods, or
// countries that happen to match the query text.
const idealPlaceRank = 16

// scoreCandidate ranks a Nominatim result against the user's free-text
// query: exact or prefix matches on display_name dominate, city-like
// addresstypes are rewarded and administrative/region types penalized, and
// the remainder is a falloff based on distance from the ideal place_rank.
func scoreCandidate(query string, c Candidate) float64 {
	score := 0.0
	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(c.DisplayName)

	switch {
	case name == q:
		score += 10
	case strings.HasPrefix(name, q):
		score += 6
	case strings.Contains(name, q):
		score += 3
	}

	switch c.AddressType {
	case "city", "town":
		score += 5
	case "village", "municipality":
		score += 3
	case "county", "state", "region":
		score -= 4
	case "country":
		score -= 8
	}

	switch c.Type {
	case "city", "administrative":
		score += 2
	}

	rankDelta := c.PlaceRank - idealPlaceRank
	if rankDelta < 0 {
		rankDelta = -rankDelta
	}
	score += 4.0 / float64(1+rankDelta)

	return score
}
