package geocoding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGoogleGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "ch", r.URL.Query().Get("region"))

		switch r.URL.Query().Get("address") {
		case "Bundesplatz 3, Bern":
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Bundesplatz 3, 3005 Bern, Switzerland","geometry":{"location":{"lat":46.9466,"lng":7.4443}}}]}`))
		case "denied":
			_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"key invalid","results":[]}`))
		default:
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		}
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder(GoogleConfig{APIKey: "secret", Region: "CH", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	res, err := g.Geocode(ctx, "Bundesplatz 3, Bern")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, domain.Coordinates{Lat: 46.9466, Lng: 7.4443}, res.Coordinates)
	assert.Contains(t, res.FormattedAddress, "3005 Bern")

	res, err = g.Geocode(ctx, "nowhere")
	require.NoError(t, err)
	assert.False(t, res.Found)

	_, err = g.Geocode(ctx, "denied")
	assert.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestGoogleGeocoderKeepsKeyOutOfTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	g, err := NewGoogleGeocoder(GoogleConfig{APIKey: "AIza-live-key", BaseURL: base}, zap.NewNop())
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "Bundesplatz 3, Bern")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "AIza-live-key")
	assert.Contains(t, err.Error(), base)
}

func TestGoogleGeocoderRequiresKey(t *testing.T) {
	_, err := NewGoogleGeocoder(GoogleConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNominatimGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		if r.URL.Query().Get("q") == "Rheinfall" {
			_, _ = w.Write([]byte(`[{"lat":"47.6779","lon":"8.6155","display_name":"Rheinfall, Neuhausen"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	n := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL + "/"}, zap.NewNop())
	ctx := context.Background()

	res, err := n.Geocode(ctx, "Rheinfall")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, domain.Coordinates{Lat: 47.6779, Lng: 8.6155}, res.Coordinates)

	res, err = n.Geocode(ctx, "Atlantis")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestNominatimGeocoderRejectsMalformedCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"north","lon":"8.6"}]`))
	}))
	defer srv.Close()

	n := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL}, zap.NewNop())
	_, err := n.Geocode(context.Background(), "x")
	assert.Error(t, err)
}

func TestORSGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("Authorization"))
		assert.Equal(t, "CH", r.URL.Query().Get("boundary.country"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[8.3093,47.0502]},"properties":{"label":"Luzern, LU, Switzerland"}}]}`))
	}))
	defer srv.Close()

	o, err := NewORSGeocoder(ORSConfig{APIKey: "key", BaseURL: srv.URL, Region: "ch"}, zap.NewNop())
	require.NoError(t, err)

	res, err := o.Geocode(context.Background(), "Luzern")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 47.0502, Lng: 8.3093}, res.Coordinates)
	assert.Equal(t, "Luzern, LU, Switzerland", res.FormattedAddress)
}

func TestGeocoderRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"46.9480","lon":"7.4474","display_name":"Bern"}]`))
	}))
	defer srv.Close()

	n := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL}, zap.NewNop())
	res, err := n.Geocode(context.Background(), "Bern")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGeocoderDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	o, err := NewORSGeocoder(ORSConfig{APIKey: "key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = o.Geocode(context.Background(), "Bern")
	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, int32(1), hits.Load())
}

type memCache struct {
	entries map[string]domain.Coordinates
	failGet bool
}

func (m *memCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if m.failGet {
		return nil, errors.New("cache down")
	}
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if c, ok := m.entries[a]; ok {
			out[a] = c
		}
	}
	return out, nil
}

func (m *memCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	for k, v := range results {
		m.entries[k] = v
	}
	return nil
}

func TestCachedGeocoder(t *testing.T) {
	inner := NewMockGeocoder(map[string]domain.Coordinates{
		"Bern": {Lat: 46.9480, Lng: 7.4474},
	})
	cache := &memCache{entries: map[string]domain.Coordinates{}}
	g := NewCachedGeocoder(inner, cache, zap.NewNop())
	ctx := context.Background()

	res, err := g.Geocode(ctx, "Bern")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Contains(t, cache.entries, "bern")

	res, err = g.Geocode(ctx, "  BERN ")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"Bern"}, inner.Calls())

	res, err = g.Geocode(ctx, "Atlantis")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.NotContains(t, cache.entries, "atlantis")
}

func TestCachedGeocoderSurvivesCacheFailure(t *testing.T) {
	inner := NewMockGeocoder(map[string]domain.Coordinates{
		"Bern": {Lat: 46.9480, Lng: 7.4474},
	})
	g := NewCachedGeocoder(inner, &memCache{entries: map[string]domain.Coordinates{}, failGet: true}, zap.NewNop())

	res, err := g.Geocode(context.Background(), "Bern")
	require.NoError(t, err)
	assert.True(t, res.Found)
}
