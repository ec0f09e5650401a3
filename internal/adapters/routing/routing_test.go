package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/geo"
	"trip-route-service/internal/platform/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var twoStops = []domain.Coordinates{
	{Lat: 47.0, Lng: 8.0},
	{Lat: 47.5, Lng: 8.3},
}

func TestOSRMRouter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/8.000000,47.000000;8.300000,47.500000", r.URL.Path)
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		assert.Equal(t, "full", r.URL.Query().Get("overview"))

		_, _ = fmt.Fprint(w, `{
			"code": "Ok",
			"routes": [{
				"geometry": {"type": "LineString", "coordinates": [[8.0,47.0],[8.1,47.2],[8.3,47.5]]},
				"distance": 71234.5,
				"duration": 3120.2,
				"legs": [{"distance": 71234.5, "duration": 3120.2}]
			}]
		}`)
	}))
	defer srv.Close()

	o := NewOSRMRouter(OSRMConfig{BaseURL: srv.URL}, zap.NewNop())
	path, err := o.Route(context.Background(), twoStops)
	require.NoError(t, err)

	require.Len(t, path.Geometry, 3)
	assert.Equal(t, domain.Coordinates{Lat: 47.2, Lng: 8.1}, path.Geometry[1])
	require.Len(t, path.Legs, 1)
	assert.Equal(t, 71234.5, path.DistanceMeters)
	assert.Equal(t, 3120.2, path.Legs[0].DurationSeconds)
}

func TestOSRMRouterFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"no route": func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, `{"code":"NoRoute","message":"Impossible route between points","routes":[]}`)
		},
		"empty routes": func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, `{"code":"Ok","routes":[]}`)
		},
		"bad geometry": func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, `{"code":"Ok","routes":[{"geometry":{"coordinates":[[8.0]]},"legs":[{}]}]}`)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, `<html>`)
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			o := NewOSRMRouter(OSRMConfig{BaseURL: srv.URL}, zap.NewNop())
			_, err := o.Route(context.Background(), twoStops)
			assert.Error(t, err)
		})
	}
}

func TestOSRMRouterDoesNotRetry(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := NewOSRMRouter(OSRMConfig{BaseURL: srv.URL}, zap.NewNop())
	_, err := o.Route(context.Background(), twoStops)

	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, 1, hits)
}

func TestOSRMRouterNeedsTwoWaypoints(t *testing.T) {
	o := NewOSRMRouter(OSRMConfig{BaseURL: "http://unused"}, zap.NewNop())
	_, err := o.Route(context.Background(), twoStops[:1])
	assert.Error(t, err)
}

func TestORSRouter(t *testing.T) {
	geometry := []domain.Coordinates{{Lat: 47.0, Lng: 8.0}, {Lat: 47.25, Lng: 8.15}, {Lat: 47.5, Lng: 8.3}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/directions/driving-car", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("Authorization"))

		var body directionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]float64{{8.0, 47.0}, {8.3, 47.5}}, body.Coordinates)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{{
				"summary":  map[string]float64{"distance": 70100, "duration": 3300},
				"segments": []map[string]float64{{"distance": 70100, "duration": 3300}},
				"geometry": geo.EncodePolyline(geometry),
			}},
		})
	}))
	defer srv.Close()

	o, err := NewORSRouter(ORSConfig{APIKey: "key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	path, err := o.Route(context.Background(), twoStops)
	require.NoError(t, err)
	require.Len(t, path.Geometry, 3)
	assert.InDelta(t, 47.25, path.Geometry[1].Lat, 1e-5)
	assert.InDelta(t, 8.15, path.Geometry[1].Lng, 1e-5)
	assert.Equal(t, 70100.0, path.DistanceMeters)
	require.Len(t, path.Legs, 1)
	assert.Equal(t, 3300.0, path.Legs[0].DurationSeconds)
}

func TestORSRouterNoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"routes":[]}`)
	}))
	defer srv.Close()

	o, err := NewORSRouter(ORSConfig{APIKey: "key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	_, err = o.Route(context.Background(), twoStops)
	assert.Error(t, err)
}

func TestMockRouter(t *testing.T) {
	m := NewMockRouter()
	path, err := m.Route(context.Background(), twoStops)
	require.NoError(t, err)
	assert.Len(t, path.Geometry, 3)
	assert.Len(t, path.Legs, 1)
	assert.InDelta(t, geo.HaversineKm(twoStops[0], twoStops[1])*1000*1.25, path.DistanceMeters, 1e-6)
}
