package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/geo"
	"trip-route-service/internal/platform/httpx"
	"trip-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

const (
	orsBaseURL = "https://api.openrouteservice.org"
	orsProfile = "driving-car"
)

type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	Timeout time.Duration
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
		// Encoded polyline, precision 5.
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// ORSRouter implements ports.Router using the OpenRouteService directions endpoint.
type ORSRouter struct {
	client  *httpx.Client
	baseURL string
	profile string
	log     *zap.Logger
}

func NewORSRouter(cfg ORSConfig, log *zap.Logger) (*ORSRouter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = orsBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = orsProfile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &ORSRouter{
		client:  httpx.New(cfg.Timeout, httpx.WithHeader("Authorization", cfg.APIKey)),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
		log:     log,
	}, nil
}

func (o *ORSRouter) Route(ctx context.Context, waypoints []domain.Coordinates) (_ *domain.RoutedPath, err error) {
	defer obs.Time(ctx, o.log, "ors.Route")(&err)

	if len(waypoints) < 2 {
		return nil, fmt.Errorf("ors route: need at least 2 waypoints, got %d", len(waypoints))
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, w.LngLat())
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: coords})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	req, err := o.client.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ors route: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 {
		return nil, errors.New("ors route: no routes returned")
	}
	r := dr.Routes[0]

	geometry, err := geo.DecodePolyline(r.Geometry)
	if err != nil {
		return nil, fmt.Errorf("ors route: %w", err)
	}

	path := &domain.RoutedPath{
		Geometry:        geometry,
		Legs:            make([]domain.ProviderLeg, 0, len(r.Segments)),
		DistanceMeters:  r.Summary.Distance,
		DurationSeconds: r.Summary.Duration,
	}
	for _, s := range r.Segments {
		path.Legs = append(path.Legs, domain.ProviderLeg{DistanceMeters: s.Distance, DurationSeconds: s.Duration})
	}

	return path, nil
}
