package api

import (
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/google/uuid"

	"github.com/azybler/streetrunner/pkg/geo"
	"github.com/azybler/streetrunner/pkg/runner"
	"github.com/azybler/streetrunner/pkg/serialize"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	services runner.Services
	stats    StatsResponse
}

// NewHandlers creates handlers bound to the given external services.
func NewHandlers(services runner.Services, stats StatsResponse) *Handlers {
	return &Handlers{services: services, stats: stats}
}

// HandlePlan handles POST /api/v1/plan.
func (h *Handlers) HandlePlan(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := validateCoord(req.Home); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "home")
		return
	}
	if req.City == "" {
		writeError(w, http.StatusBadRequest, "missing_city", "city")
		return
	}

	plan, err := runner.PlanFromCity(r.Context(), h.services, runner.Request{
		City:     req.City,
		Home:     geo.LatLng{Lat: req.Home.Lat, Lon: req.Home.Lon},
		TargetKm: req.TargetKm,
	})
	if err != nil {
		writeRunnerError(w, err)
		return
	}

	resp := PlanResponse{
		RouteID:         uuid.NewString(),
		TotalDistanceKm: plan.TotalDistanceKm,
		StreetsTotal:    plan.StreetsTotal,
		StreetsCovered:  plan.StreetsCovered,
		NodesTotal:      plan.NodesTotal,
		NodesCovered:    plan.NodesCovered,
		GoogleMapsURL:   serialize.GoogleMapsURL(plan),
		AppleMapsURL:    serialize.AppleMapsURL(plan),
		GPXOpenURL:      serialize.GPXOpenURL(plan),
	}
	for _, step := range plan.Steps {
		geom := make([]LatLngJSON, len(step.Path))
		for i, ll := range step.Path {
			geom[i] = LatLngJSON{Lat: ll.Lat, Lon: ll.Lon}
		}
		resp.Steps = append(resp.Steps, RouteStepJSON{
			StreetName:  step.StreetName,
			DistanceKm:  step.DistanceKm,
			IsConnector: step.IsConnector,
			Geometry:    geom,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lon, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lon < -180 || ll.Lon > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}

// writeRunnerError maps a tagged runner.Error to the appropriate HTTP
// status; anything else is an internal error.
func writeRunnerError(w http.ResponseWriter, err error) {
	var tagged *runner.Error
	if !errors.As(err, &tagged) {
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	switch tagged.Kind {
	case runner.BadCityQuery:
		writeError(w, http.StatusBadRequest, string(tagged.Kind), "city")
	case runner.NominatimUnresolved:
		writeError(w, http.StatusNotFound, string(tagged.Kind), "city")
	case runner.OverpassUnreachable:
		writeError(w, http.StatusServiceUnavailable, string(tagged.Kind), "")
	case runner.NoStreetsInBoundary, runner.EmptyImport:
		writeError(w, http.StatusUnprocessableEntity, string(tagged.Kind), "")
	case runner.UnsupportedImport:
		writeError(w, http.StatusBadRequest, string(tagged.Kind), "")
	case runner.PlanInfeasible:
		writeError(w, http.StatusUnprocessableEntity, string(tagged.Kind), "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
