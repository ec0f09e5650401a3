package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOCODER", "")
	t.Setenv("ROUTER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdleTTL)
	assert.Equal(t, "nominatim", cfg.Geocode.Provider)
	assert.Equal(t, "osrm", cfg.Routing.Provider)
	assert.Equal(t, 25, cfg.Routing.MaxWaypoints)
	assert.Equal(t, 1, cfg.Geocode.Concurrency)
	assert.Equal(t, 720*time.Hour, cfg.Geocode.CacheTTL)
	assert.InDelta(t, 1e-4, cfg.Engine.CollisionThreshold, 1e-12)
	assert.InDelta(t, 3e-4, cfg.Engine.OffsetMagnitude, 1e-12)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("GEOCODER", "Google")
	t.Setenv("GOOGLE_MAPS_API_KEY", "key")
	t.Setenv("ROUTER", "ors")
	t.Setenv("ORS_API_KEY", "ors-key")
	t.Setenv("MAX_WAYPOINTS", "10")
	t.Setenv("OSRM_URL", "http://osrm.local/")
	t.Setenv("GEOCODE_CACHE_TTL", "48h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "google", cfg.Geocode.Provider)
	assert.Equal(t, "ors", cfg.Routing.Provider)
	assert.Equal(t, 10, cfg.Routing.MaxWaypoints)
	assert.Equal(t, "http://osrm.local", cfg.Routing.OSRMURL)
	assert.Equal(t, 48*time.Hour, cfg.Geocode.CacheTTL)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOCODER", "google")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("ROUTER", "valhalla")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_MAPS_API_KEY")
	assert.Contains(t, err.Error(), "unknown ROUTER")
}
