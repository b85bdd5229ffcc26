package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		a, b             LatLng
		wantKm           float64
		tolerancePercent float64
	}{
		{
			name:             "Singapore CBD to Changi Airport",
			a:                LatLng{1.2830, 103.8513},
			b:                LatLng{1.3644, 103.9915},
			wantKm:           18.023,
			tolerancePercent: 1,
		},
		{
			name:   "Same point",
			a:      LatLng{1.3521, 103.8198},
			b:      LatLng{1.3521, 103.8198},
			wantKm: 0,
		},
		{
			name:             "London to Paris",
			a:                LatLng{51.5074, -0.1278},
			b:                LatLng{48.8566, 2.3522},
			wantKm:           343.5,
			tolerancePercent: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if tt.wantKm == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantKm) / tt.wantKm * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f km, want ~%f km (diff %.1f%%)", got, tt.wantKm, diff)
			}
		})
	}
}

func TestPointToSegmentMeters(t *testing.T) {
	tests := []struct {
		name     string
		p, a, b  LatLng
		maxDistM float64
	}{
		{
			name:     "point at start",
			p:        LatLng{1.3500, 103.8200},
			a:        LatLng{1.3500, 103.8200},
			b:        LatLng{1.3600, 103.8200},
			maxDistM: 1,
		},
		{
			name:     "point at end",
			p:        LatLng{1.3600, 103.8200},
			a:        LatLng{1.3500, 103.8200},
			b:        LatLng{1.3600, 103.8200},
			maxDistM: 1,
		},
		{
			name:     "degenerate segment",
			p:        LatLng{1.3500, 103.8210},
			a:        LatLng{1.3500, 103.8200},
			b:        LatLng{1.3500, 103.8200},
			maxDistM: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PointToSegmentMeters(tt.p, tt.a, tt.b)
			if d > tt.maxDistM {
				t.Errorf("dist = %f m, want <= %f m", d, tt.maxDistM)
			}
		})
	}
}

func TestPointToPathMeters(t *testing.T) {
	if d := PointToPathMeters(LatLng{0, 0}, nil); !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for empty path, got %f", d)
	}

	path := []LatLng{{0, 0}, {0, 0.01}, {0, 0.02}}
	d := PointToPathMeters(LatLng{0.0001, 0.01}, path)
	if d > 20 {
		t.Errorf("expected point near the path midpoint to be close, got %f m", d)
	}
}

func TestPolylineDistanceKm(t *testing.T) {
	path := []LatLng{{0, 0}, {0, 0.008983}} // ~1km at the equator
	d := PolylineDistanceKm(path)
	if math.Abs(d-1.0) > 0.05 {
		t.Errorf("PolylineDistanceKm = %f, want ~1.0", d)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []LatLng{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

	tests := []struct {
		name string
		p    LatLng
		want bool
	}{
		{"center", LatLng{0.5, 0.5}, true},
		{"outside", LatLng{2, 2}, false},
		{"on edge", LatLng{0, 0.5}, true},
		{"on vertex", LatLng{0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.p, square); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBBoxPadded(t *testing.T) {
	b := BBox{South: 1.0, North: 1.1, West: 103.0, East: 103.1}
	p := b.Padded(40)
	if p.South >= b.South || p.North <= b.North || p.West >= b.West || p.East <= b.East {
		t.Errorf("Padded box should grow in every direction: %+v -> %+v", b, p)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 {
		t.Error("in-range value should pass through")
	}
	if Clamp(-1, 0, 10) != 0 {
		t.Error("below range should clamp to lo")
	}
	if Clamp(20, 0, 10) != 10 {
		t.Error("above range should clamp to hi")
	}
}
