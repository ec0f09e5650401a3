package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const geocodeKeyPrefix = "geocode:"

// RedisGeocodeCache shares geocoding results between instances.
// Values are JSON coordinates; expiry is left to Redis.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl, log: log}
}

func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, r.log, "geocode.redis.GetMany")(&err)

	if r.client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, 0, len(uniq))
	for _, a := range uniq {
		keys = append(keys, geocodeKeyPrefix+a)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// nil for missing keys
			continue
		}

		var c domain.Coordinates
		if err := json.Unmarshal([]byte(s), &c); err != nil || !c.Valid() {
			r.log.Warn("dropping corrupt geocode cache entry", zap.String("key", keys[i]))
			continue
		}
		out[strings.TrimPrefix(keys[i], geocodeKeyPrefix)] = c
	}

	return out, nil
}

func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, r.log, "geocode.redis.PutMany")(&err)

	if r.client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("insert geocode cache: marshal %q: %w", addr, err)
		}
		pipe.Set(ctx, geocodeKeyPrefix+addr, b, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: exec: %w", err)
	}
	return nil
}
