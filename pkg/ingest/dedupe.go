package ingest

import (
	"regexp"
	"strings"
)

var collapseWhitespace = regexp.MustCompile(`\s+`)

// NormalizeStreetName lowercases, trims, removes periods, and collapses
// whitespace — the canonical form used as the dedup key's name component.
// It is idempotent: normalizing an already-normalized name is a fixed point.
func NormalizeStreetName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, ".", "")
	s = collapseWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// dedupeKey returns normalizedName : min(endpoint) : max(endpoint), treating
// the endpoint pair as unordered.
func dedupeKey(seg StreetSegment) string {
	left, right := seg.StartNodeID, seg.EndNodeID
	if right < left {
		left, right = right, left
	}
	return NormalizeStreetName(seg.Name) + ":" + left + ":" + right
}

// Dedupe drops every segment after the first with a matching
// (normalizedName, unordered endpoint pair) key. It is idempotent:
// Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(segments []StreetSegment) []StreetSegment {
	seen := make(map[string]bool, len(segments))
	out := make([]StreetSegment, 0, len(segments))
	for _, seg := range segments {
		key := dedupeKey(seg)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, seg)
	}
	return out
}
