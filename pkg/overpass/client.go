// Package overpass builds and executes Overpass QL queries for a city's
// runnable street network, failing over across a pool of public endpoints.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MeKo-Christian/go-overpass"

	"github.com/azybler/streetrunner/pkg/geo"
)

// queryTimeout bounds a single Overpass request. Overpass itself is asked
// for a shorter server-side timeout (see queries.go) so the client-side
// bound always wins first and the failure is attributable to us, not to the
// server silently sitting on the connection.
const queryTimeout = 55 * time.Second

// endpointPool is the default failover chain: the main public instance, a
// community mirror, then the main instance's lz4 host, tried in order until
// one succeeds.
var endpointPool = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://lz4.overpass-api.de/api/interpreter",
}

// Client fetches Overpass payloads, retrying each query with exponential
// backoff on one endpoint before failing over to the next.
type Client struct {
	endpoints []string
	workers   int
	http      *http.Client
}

// NewClient returns a Client that fails over across the default endpoint
// pool.
func NewClient() *Client {
	return &Client{endpoints: endpointPool, workers: 2, http: http.DefaultClient}
}

// NewClientWithEndpoints returns a Client that fails over across the given
// endpoint pool, in order.
func NewClientWithEndpoints(endpoints []string) *Client {
	return &Client{endpoints: endpoints, workers: 2, http: http.DefaultClient}
}

// FetchCity runs query against the endpoint pool, in order, returning the
// first successful raw JSON payload. ctx bounds the whole call, including
// every endpoint and retry attempt.
func (c *Client) FetchCity(ctx context.Context, query string) ([]byte, error) {
	var lastErr error
	for _, endpoint := range c.endpoints {
		data, err := c.fetchOne(ctx, endpoint, query)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("all overpass endpoints failed: %w", lastErr)
}

func (c *Client) fetchOne(ctx context.Context, endpoint, query string) ([]byte, error) {
	retry := overpass.DefaultRetryConfig()
	client := overpass.NewWithRetry(endpoint, c.workers, c.http, retry)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	type fetchResult struct {
		data []byte
		err  error
	}
	done := make(chan fetchResult, 1)
	go func() {
		result, err := client.Query(query)
		if err != nil {
			done <- fetchResult{err: err}
			return
		}
		data, marshalErr := encodeResultAsElements(&result)
		done <- fetchResult{data: data, err: marshalErr}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("query %s: %w", endpoint, r.err)
		}
		return r.data, nil
	}
}

// BBoxOf returns a bounding box around center, sized by radiusKm, suitable
// for an around-style or bbox-style query.
func BBoxOf(center geo.LatLng, radiusKm float64) geo.BBox {
	return geo.BBox{South: center.Lat, North: center.Lat, West: center.Lon, East: center.Lon}.Padded(radiusKm * 1000)
}
