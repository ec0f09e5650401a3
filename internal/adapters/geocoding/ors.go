package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/httpx"
	"trip-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

const orsBaseURL = "https://api.openrouteservice.org"

type ORSConfig struct {
	APIKey  string
	BaseURL string
	// Region is an ISO country code for boundary.country, e.g. "CH".
	Region  string
	Timeout time.Duration
}

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSGeocoder implements ports.Geocoder using OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	client  *httpx.Client
	baseURL string
	region  string
	log     *zap.Logger
}

func NewORSGeocoder(cfg ORSConfig, log *zap.Logger) (*ORSGeocoder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = orsBaseURL
	}
	return &ORSGeocoder{
		client:  newClient(cfg.Timeout, httpx.WithHeader("Authorization", cfg.APIKey)),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		region:  strings.ToUpper(cfg.Region),
		log:     log,
	}, nil
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.GeocodeResult, err error) {
	defer obs.Time(ctx, o.log, "ors.Geocode")(&err)

	q := url.Values{}
	q.Set("text", address)
	q.Set("size", "1")
	if o.region != "" {
		q.Set("boundary.country", o.region)
	}

	var decoded orsGeocodeResponse
	if err := getJSON(ctx, o.client, o.baseURL+"/geocode/search", q, &decoded); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("ors geocode %q: %w", address, err)
	}

	if len(decoded.Features) == 0 {
		return domain.GeocodeResult{Found: false}, nil
	}

	c, err := domain.FromLngLat(decoded.Features[0].Geometry.Coordinates)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("ors geocode %q: %w", address, err)
	}

	return domain.GeocodeResult{
		Found:            true,
		Coordinates:      c,
		FormattedAddress: decoded.Features[0].Properties.Label,
	}, nil
}
