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

const googleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

type GoogleConfig struct {
	APIKey string
	// Region biases results towards a ccTLD, e.g. "ch".
	Region  string
	BaseURL string
	Timeout time.Duration
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GoogleGeocoder implements ports.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	client  *httpx.Client
	apiKey  string
	region  string
	baseURL string
	log     *zap.Logger
}

func NewGoogleGeocoder(cfg GoogleConfig, log *zap.Logger) (*GoogleGeocoder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google geocoder: api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = googleBaseURL
	}
	return &GoogleGeocoder{
		client:  newClient(cfg.Timeout),
		apiKey:  cfg.APIKey,
		region:  strings.ToLower(cfg.Region),
		baseURL: cfg.BaseURL,
		log:     log,
	}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (_ domain.GeocodeResult, err error) {
	defer obs.Time(ctx, g.log, "google.Geocode")(&err)

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)
	if g.region != "" {
		q.Set("region", g.region)
	}

	var decoded googleResponse
	if err := getJSON(ctx, g.client, g.baseURL, q, &decoded); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("google geocode %q: %w", address, err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.GeocodeResult{Found: false}, nil
	default:
		return domain.GeocodeResult{}, fmt.Errorf("google geocode %q: status %s: %s",
			address, decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Results) == 0 {
		return domain.GeocodeResult{Found: false}, nil
	}

	top := decoded.Results[0]
	c := domain.Coordinates{Lat: top.Geometry.Location.Lat, Lng: top.Geometry.Location.Lng}
	if !c.Valid() {
		return domain.GeocodeResult{}, fmt.Errorf("google geocode %q: invalid coordinate %v", address, c)
	}

	return domain.GeocodeResult{
		Found:            true,
		Coordinates:      c,
		FormattedAddress: top.FormattedAddress,
	}, nil
}
