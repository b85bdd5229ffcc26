package overpass

import (
	"strings"
	"testing"

	"github.com/azybler/streetrunner/pkg/geo"
)

func TestAreaQueryIncludesCityName(t *testing.T) {
	q := AreaQuery([]string{"Springfield"})
	if !strings.Contains(q, `"Springfield"`) {
		t.Fatalf("expected city name in query: %s", q)
	}
	if !strings.Contains(q, `["highway"]`) {
		t.Fatalf("expected highway filter in query: %s", q)
	}
}

func TestBBoxQueryFormatsBounds(t *testing.T) {
	bounds := geo.BBox{South: 1.1, North: 2.2, West: 3.3, East: 4.4}
	q := BBoxQuery(bounds)
	if !strings.Contains(q, "1.100000,3.300000,2.200000,4.400000") {
		t.Fatalf("expected formatted bbox in query: %s", q)
	}
}

func TestAroundQueryClampsRadius(t *testing.T) {
	q := AroundQuery(geo.LatLng{Lat: 1, Lon: 2}, 1000) // would compute to 320km unclamped
	if !strings.Contains(q, "around:24000") {
		t.Fatalf("expected radius clamped to 24km (24000m), got: %s", q)
	}

	q2 := AroundQuery(geo.LatLng{Lat: 1, Lon: 2}, 1) // would compute to 0.32km unclamped
	if !strings.Contains(q2, "around:5000") {
		t.Fatalf("expected radius clamped to 5km (5000m), got: %s", q2)
	}
}

func TestCityNameVariantsIncludesBareAndSuffixed(t *testing.T) {
	variants := CityNameVariants("Springfield")
	if len(variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(variants))
	}
	if variants[0] != "Springfield" {
		t.Fatalf("expected bare city name first, got %q", variants[0])
	}
}

func TestEscapeQLHandlesQuotes(t *testing.T) {
	q := AreaQuery([]string{`O"Brien City`})
	if !strings.Contains(q, `O\"Brien City`) {
		t.Fatalf("expected escaped quote in query: %s", q)
	}
}
