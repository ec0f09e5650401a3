package cache

import (
	"context"
	"testing"
	"time"
	"trip-route-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisGeocodeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisGeocodeCache(client, ttl, zap.NewNop()), mr
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"bern":   {Lat: 46.9480, Lng: 7.4474},
		"luzern": {Lat: 47.0502, Lng: 8.3093},
	}))

	got, err := c.GetMany(ctx, []string{"bern", " bern ", "zug", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"bern": {Lat: 46.9480, Lng: 7.4474}}, got)
}

func TestRedisGeocodeCacheExpires(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"bern": {Lat: 46.9480, Lng: 7.4474}}))
	assert.Equal(t, time.Minute, mr.TTL("geocode:bern"))

	mr.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, []string{"bern"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeocodeCacheSkipsCorruptEntries(t *testing.T) {
	c, mr := newTestRedisCache(t, 0)
	require.NoError(t, mr.Set("geocode:bern", "not json"))

	got, err := c.GetMany(context.Background(), []string{"bern"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeocodeCacheRejectsEmptyKey(t *testing.T) {
	c, _ := newTestRedisCache(t, 0)
	err := c.PutMany(context.Background(), map[string]domain.Coordinates{" ": {}})
	assert.Error(t, err)
}

func TestRedisGeocodeCacheReportsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	c := NewRedisGeocodeCache(client, 0, zap.NewNop())

	_, err := c.GetMany(context.Background(), []string{"bern"})
	assert.Error(t, err)
}
