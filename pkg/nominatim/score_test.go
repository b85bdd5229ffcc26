package nominatim

import (
	"encoding/json"
	"testing"
)

func TestScoreCandidatePrefersExactMatch(t *testing.T) {
	exact := Candidate{DisplayName: "Springfield", AddressType: "city", Type: "city", PlaceRank: 16}
	prefix := Candidate{DisplayName: "Springfield Heights", AddressType: "city", Type: "city", PlaceRank: 16}
	contains := Candidate{DisplayName: "North Springfield County", AddressType: "county", Type: "administrative", PlaceRank: 12}

	exactScore := scoreCandidate("Springfield", exact)
	prefixScore := scoreCandidate("Springfield", prefix)
	containsScore := scoreCandidate("Springfield", contains)

	if !(exactScore > prefixScore && prefixScore > containsScore) {
		t.Fatalf("expected exact > prefix > contains, got %f, %f, %f", exactScore, prefixScore, containsScore)
	}
}

func TestScoreCandidatePenalizesCountry(t *testing.T) {
	country := Candidate{DisplayName: "Springfield", AddressType: "country", Type: "country", PlaceRank: 4}
	city := Candidate{DisplayName: "Springfield", AddressType: "city", Type: "city", PlaceRank: 16}
	if scoreCandidate("Springfield", country) >= scoreCandidate("Springfield", city) {
		t.Fatalf("expected country match to score lower than city match")
	}
}

func TestParseGeoJSONPolygon(t *testing.T) {
	raw := &rawGeoJSON{
		Type:        "Polygon",
		Coordinates: json.RawMessage(`[[[0,0],[0,1],[1,1],[1,0]]]`),
	}
	boundary := parseGeoJSON(raw)
	if boundary == nil || len(boundary.Polygons) != 1 {
		t.Fatalf("expected 1 polygon, got %v", boundary)
	}
	if len(boundary.Polygons[0].Outer) != 4 {
		t.Fatalf("expected 4 ring points, got %d", len(boundary.Polygons[0].Outer))
	}
	// GeoJSON is [lon, lat]; the first coordinate (0,0) should map to Lon=0,Lat=0.
	if boundary.Polygons[0].Outer[1].Lat != 1 {
		t.Fatalf("expected second ring point lat=1, got %+v", boundary.Polygons[0].Outer[1])
	}
}

func TestParseGeoJSONUnsupportedType(t *testing.T) {
	raw := &rawGeoJSON{Type: "Point", Coordinates: json.RawMessage(`[0,0]`)}
	if parseGeoJSON(raw) != nil {
		t.Fatalf("expected nil boundary for unsupported geometry type")
	}
}

func TestParseBoundingBox(t *testing.T) {
	box := parseBoundingBox([]string{"1.0", "2.0", "3.0", "4.0"})
	if box.South != 1.0 || box.North != 2.0 || box.West != 3.0 || box.East != 4.0 {
		t.Fatalf("unexpected bbox: %+v", box)
	}
}

func TestParseBoundingBoxMalformed(t *testing.T) {
	box := parseBoundingBox([]string{"only", "two"})
	if box.South != 0 || box.North != 0 || box.West != 0 || box.East != 0 {
		t.Fatalf("expected zero-value bbox for malformed input, got %+v", box)
	}
}
