package geocoding

import (
	"context"
	"strings"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/ports"

	"go.uber.org/zap"
)

// CachedGeocoder consults a GeocodeCache before the wrapped geocoder and
// stores new matches. Cache failures are logged and never fail a lookup.
// Misses are not cached, so a later retry can still find the address.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
	log   *zap.Logger
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache, log *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache, log: log}
}

// cacheKey collapses whitespace and case so trivially different spellings share an entry.
func cacheKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	key := cacheKey(address)

	hits, err := c.cache.GetMany(ctx, []string{key})
	if err != nil {
		c.log.Warn("geocode cache read failed", zap.String("address", key), zap.Error(err))
	} else if coord, ok := hits[key]; ok {
		return domain.GeocodeResult{Found: true, Coordinates: coord}, nil
	}

	res, err := c.next.Geocode(ctx, address)
	if err != nil || !res.Found {
		return res, err
	}

	if err := c.cache.PutMany(ctx, map[string]domain.Coordinates{key: res.Coordinates}); err != nil {
		c.log.Warn("geocode cache write failed", zap.String("address", key), zap.Error(err))
	}
	return res, nil
}
