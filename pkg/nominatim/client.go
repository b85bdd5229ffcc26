// Package nominatim resolves a free-text city query into a scored list of
// candidate places, each carrying a bounding box and (when available) a
// boundary polygon.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/ingest"
)

const (
	requestTimeout = 20 * time.Second
	resultLimit    = 8
	searchEndpoint = "https://nominatim.openstreetmap.org/search"
)

// Candidate is one scored Nominatim search result.
type Candidate struct {
	DisplayName string
	AddressType string
	Type        string
	PlaceRank   int
	Bounds      geo.BBox
	Boundary    *ingest.CityBoundary
	Score       float64
}

// rawResult is the subset of Nominatim's jsonv2 response this client reads.
type rawResult struct {
	DisplayName string          `json:"display_name"`
	AddressType string          `json:"addresstype"`
	Type        string          `json:"type"`
	PlaceRank   int             `json:"place_rank"`
	BoundingBox []string        `json:"boundingbox"`
	GeoJSON     *rawGeoJSON     `json:"geojson"`
}

type rawGeoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Client queries Nominatim with retry-with-backoff on transient failures.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient returns a Client. userAgent should identify this application per
// Nominatim's usage policy.
func NewClient(userAgent string) *Client {
	return &Client{http: &http.Client{Timeout: requestTimeout}, userAgent: userAgent}
}

// Search resolves query into scored candidates, ranked best-first.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var raw []rawResult
	op := func() error {
		var err error
		raw, err = c.fetch(ctx, query)
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("nominatim search %q: %w", query, err)
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, r := range raw {
		cand := Candidate{
			DisplayName: r.DisplayName,
			AddressType: r.AddressType,
			Type:        r.Type,
			PlaceRank:   r.PlaceRank,
			Bounds:      parseBoundingBox(r.BoundingBox),
			Boundary:    parseGeoJSON(r.GeoJSON),
		}
		cand.Score = scoreCandidate(query, cand)
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]rawResult, error) {
	u, err := url.Parse(searchEndpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("format", "jsonv2")
	q.Set("limit", strconv.Itoa(resultLimit))
	q.Set("polygon_geojson", "1")
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("nominatim returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("nominatim returned %s", resp.Status))
	}

	var results []rawResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode nominatim response: %w", err))
	}
	return results, nil
}

func parseBoundingBox(box []string) geo.BBox {
	if len(box) != 4 {
		return geo.BBox{}
	}
	south, _ := strconv.ParseFloat(box[0], 64)
	north, _ := strconv.ParseFloat(box[1], 64)
	west, _ := strconv.ParseFloat(box[2], 64)
	east, _ := strconv.ParseFloat(box[3], 64)
	return geo.BBox{South: south, North: north, West: west, East: east}
}

// parseGeoJSON converts a Nominatim geojson polygon/multipolygon into a
// CityBoundary. Unsupported geometry types (point, linestring) yield nil,
// falling back to bbox containment upstream.
func parseGeoJSON(g *rawGeoJSON) *ingest.CityBoundary {
	if g == nil {
		return nil
	}
	switch g.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 {
			return nil
		}
		return &ingest.CityBoundary{Polygons: []ingest.Polygon{polygonFromRings(rings)}}
	case "MultiPolygon":
		var polys [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil
		}
		boundary := &ingest.CityBoundary{}
		for _, rings := range polys {
			if len(rings) == 0 {
				continue
			}
			boundary.Polygons = append(boundary.Polygons, polygonFromRings(rings))
		}
		if len(boundary.Polygons) == 0 {
			return nil
		}
		return boundary
	default:
		return nil
	}
}

func polygonFromRings(rings [][][2]float64) ingest.Polygon {
	poly := ingest.Polygon{Outer: ringFromCoords(rings[0])}
	for _, hole := range rings[1:] {
		poly.Holes = append(poly.Holes, ringFromCoords(hole))
	}
	return poly
}

func ringFromCoords(coords [][2]float64) ingest.Ring {
	ring := make(ingest.Ring, len(coords))
	for i, c := range coords {
		// GeoJSON orders coordinates [lon, lat].
		ring[i] = geo.LatLng{Lon: c[0], Lat: c[1]}
	}
	return ring
}
