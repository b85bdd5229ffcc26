package overpass

import (
	"fmt"

	"github.com/azybler/streetrunner/pkg/geo"
)

// serverTimeoutSeconds is the [timeout:N] hint sent in the query itself. It
// stays a few seconds under queryTimeout so Overpass gives up and returns
// partial results before the client-side context cancels the connection
// outright.
const serverTimeoutSeconds = 50

// AreaQuery builds a query scoped to a named administrative area (a city),
// matched by any of the supplied name variants.
func AreaQuery(cityNames []string) string {
	var areaClauses string
	for _, name := range cityNames {
		areaClauses += fmt.Sprintf(`area["name"="%s"]["boundary"="administrative"];`, escapeQL(name))
	}
	return fmt.Sprintf(`[out:json][timeout:%d];
(%s)->.searchArea;
(
  way["highway"](area.searchArea);
);
out body;
>;
out skel qt;`, serverTimeoutSeconds, areaClauses)
}

// BBoxQuery builds a query scoped to an explicit bounding box, used when
// area resolution fails or the caller already has a box in hand.
func BBoxQuery(bounds geo.BBox) string {
	return fmt.Sprintf(`[out:json][timeout:%d];
(
  way["highway"](%.6f,%.6f,%.6f,%.6f);
);
out body;
>;
out skel qt;`, serverTimeoutSeconds, bounds.South, bounds.West, bounds.North, bounds.East)
}

// AroundQuery builds a query scoped to a radius around a single point,
// sized per the diagonal of a notional bounding box:
// clamp(5, 24, diagonalKm*0.32) kilometers.
func AroundQuery(center geo.LatLng, diagonalKm float64) string {
	radiusM := geo.Clamp(diagonalKm*0.32, 5, 24) * 1000
	return fmt.Sprintf(`[out:json][timeout:%d];
(
  way["highway"](around:%.0f,%.6f,%.6f);
);
out body;
>;
out skel qt;`, serverTimeoutSeconds, radiusM, center.Lat, center.Lon)
}

// CityNameVariants returns the name forms tried against the area query, from
// most to least specific.
func CityNameVariants(city string) []string {
	return []string{
		city,
		city + " City",
		"City of " + city,
		city + " Municipality",
	}
}

func escapeQL(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
