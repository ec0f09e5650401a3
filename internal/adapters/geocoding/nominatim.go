package geocoding

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/httpx"
	"trip-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	// Nominatim's usage policy rejects requests without an identifying agent.
	userAgent = "trip-route-service/1.0"
)

type NominatimConfig struct {
	BaseURL string
	// Region restricts results to ISO 3166-1 country codes, e.g. "ch".
	Region  string
	Timeout time.Duration
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder implements ports.Geocoder with an OpenStreetMap Nominatim server.
type NominatimGeocoder struct {
	client  *httpx.Client
	baseURL string
	region  string
	log     *zap.Logger
}

func NewNominatimGeocoder(cfg NominatimConfig, log *zap.Logger) *NominatimGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = nominatimBaseURL
	}
	return &NominatimGeocoder{
		client:  newClient(cfg.Timeout, httpx.WithHeader("User-Agent", userAgent)),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		region:  strings.ToLower(cfg.Region),
		log:     log,
	}
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.GeocodeResult, err error) {
	defer obs.Time(ctx, n.log, "nominatim.Geocode")(&err)

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	if n.region != "" {
		q.Set("countrycodes", n.region)
	}

	var places []nominatimPlace
	if err := getJSON(ctx, n.client, n.baseURL+"/search", q, &places); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: %w", address, err)
	}

	if len(places) == 0 {
		return domain.GeocodeResult{Found: false}, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: parse lat: %w", address, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: parse lon: %w", address, err)
	}

	c := domain.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.GeocodeResult{}, fmt.Errorf("nominatim geocode %q: invalid coordinate %v", address, c)
	}

	return domain.GeocodeResult{
		Found:            true,
		Coordinates:      c,
		FormattedAddress: places[0].DisplayName,
	}, nil
}
