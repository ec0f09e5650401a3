package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/httpx"
	"trip-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

const (
	osrmBaseURL    = "https://router.project-osrm.org"
	osrmProfile    = "driving"
	defaultTimeout = 15 * time.Second
)

type OSRMConfig struct {
	BaseURL string
	Profile string
	Timeout time.Duration
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Legs     []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// OSRMRouter implements ports.Router against an OSRM route/v1 service.
//
// Routing runs once per active-set change, so failures are not retried:
// the caller falls back to straight lines and the next change tries again.
type OSRMRouter struct {
	client  *httpx.Client
	baseURL string
	profile string
	log     *zap.Logger
}

func NewOSRMRouter(cfg OSRMConfig, log *zap.Logger) *OSRMRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = osrmBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = osrmProfile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &OSRMRouter{
		client:  httpx.New(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
		log:     log,
	}
}

func (o *OSRMRouter) Route(ctx context.Context, waypoints []domain.Coordinates) (_ *domain.RoutedPath, err error) {
	defer obs.Time(ctx, o.log, "osrm.Route")(&err)

	if len(waypoints) < 2 {
		return nil, fmt.Errorf("osrm route: need at least 2 waypoints, got %d", len(waypoints))
	}

	// OSRM expects lng,lat pairs separated by semicolons.
	pairs := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		pairs = append(pairs, fmt.Sprintf("%.6f,%.6f", w.Lng, w.Lat))
	}
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", o.baseURL, url.PathEscape(o.profile), strings.Join(pairs, ";"))

	req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}
	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("steps", "false")
	req.URL.RawQuery = q.Encode()

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("osrm route: decode response: %w", err)
	}

	if decoded.Code != "Ok" {
		return nil, fmt.Errorf("osrm route: code %q: %s", decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("osrm route: no routes returned")
	}

	r := decoded.Routes[0]
	path := &domain.RoutedPath{
		Geometry:        make([]domain.Coordinates, 0, len(r.Geometry.Coordinates)),
		Legs:            make([]domain.ProviderLeg, 0, len(r.Legs)),
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}
	for i, pair := range r.Geometry.Coordinates {
		c, err := domain.FromLngLat(pair)
		if err != nil {
			return nil, fmt.Errorf("osrm route: geometry point %d: %w", i, err)
		}
		path.Geometry = append(path.Geometry, c)
	}
	for _, l := range r.Legs {
		path.Legs = append(path.Legs, domain.ProviderLeg{DistanceMeters: l.Distance, DurationSeconds: l.Duration})
	}

	return path, nil
}
