package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/nominatim"
)

type fakeOverpass struct {
	payload []byte
	err     error
}

func (f *fakeOverpass) FetchCity(ctx context.Context, query string) ([]byte, error) {
	return f.payload, f.err
}

type fakeNominatim struct {
	candidates []nominatim.Candidate
	err        error
}

func (f *fakeNominatim) Search(ctx context.Context, query string) ([]nominatim.Candidate, error) {
	return f.candidates, f.err
}

const samplePayload = `{
	"elements": [
		{"type": "node", "id": 1, "lat": 0.0, "lon": 0.0},
		{"type": "node", "id": 2, "lat": 0.0, "lon": 0.001},
		{"type": "way", "id": 1, "nodes": [1, 2], "tags": {"highway": "residential", "name": "Main St"}}
	]
}`

func TestPlanFromCityHappyPath(t *testing.T) {
	svc := Services{
		Overpass: &fakeOverpass{payload: []byte(samplePayload)},
		Nominatim: &fakeNominatim{candidates: []nominatim.Candidate{
			{DisplayName: "Springfield", Bounds: geo.BBox{South: -0.01, North: 0.01, West: -0.01, East: 0.01}},
		}},
	}
	plan, err := PlanFromCity(context.Background(), svc, Request{City: "Springfield", TargetKm: 1})
	if err != nil {
		t.Fatalf("PlanFromCity: %v", err)
	}
	if len(plan.Steps) == 0 {
		t.Fatalf("expected a non-empty plan")
	}
}

func TestPlanFromCityEmptyQuery(t *testing.T) {
	_, err := PlanFromCity(context.Background(), Services{}, Request{City: ""})
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != BadCityQuery {
		t.Fatalf("expected BadCityQuery error, got %v", err)
	}
}

func TestPlanFromCityNominatimFails(t *testing.T) {
	svc := Services{
		Overpass:  &fakeOverpass{},
		Nominatim: &fakeNominatim{err: errors.New("boom")},
	}
	_, err := PlanFromCity(context.Background(), svc, Request{City: "Nowhere"})
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != NominatimUnresolved {
		t.Fatalf("expected NominatimUnresolved error, got %v", err)
	}
}

func TestPlanFromCityNoCandidates(t *testing.T) {
	svc := Services{
		Overpass:  &fakeOverpass{},
		Nominatim: &fakeNominatim{candidates: nil},
	}
	_, err := PlanFromCity(context.Background(), svc, Request{City: "Nowhere"})
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != NominatimUnresolved {
		t.Fatalf("expected NominatimUnresolved error for no candidates, got %v", err)
	}
}

func TestPlanFromCityOverpassUnreachable(t *testing.T) {
	svc := Services{
		Overpass: &fakeOverpass{err: errors.New("network down")},
		Nominatim: &fakeNominatim{candidates: []nominatim.Candidate{
			{DisplayName: "Springfield", Bounds: geo.BBox{South: -0.01, North: 0.01, West: -0.01, East: 0.01}},
		}},
	}
	_, err := PlanFromCity(context.Background(), svc, Request{City: "Springfield"})
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != OverpassUnreachable {
		t.Fatalf("expected OverpassUnreachable error, got %v", err)
	}
}

func TestPlanFromCityEmptyImport(t *testing.T) {
	svc := Services{
		Overpass: &fakeOverpass{payload: []byte(`{"elements": []}`)},
		Nominatim: &fakeNominatim{candidates: []nominatim.Candidate{
			{DisplayName: "Springfield", Bounds: geo.BBox{South: -0.01, North: 0.01, West: -0.01, East: 0.01}},
		}},
	}
	_, err := PlanFromCity(context.Background(), svc, Request{City: "Springfield"})
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != EmptyImport {
		t.Fatalf("expected EmptyImport error, got %v", err)
	}
}

func TestPlanFromSegmentsEmpty(t *testing.T) {
	_, err := PlanFromSegments(nil, geo.LatLng{}, 5)
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != EmptyImport {
		t.Fatalf("expected EmptyImport error, got %v", err)
	}
}
