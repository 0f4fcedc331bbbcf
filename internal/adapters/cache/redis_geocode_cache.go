package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/ports"
)

// Redis-backed cache in front of a Geocoder. Address keys are normalized by
// collapsing whitespace so semantically equal inputs share an entry.
//
// Cache faults never fail a lookup; they are logged and the inner geocoder is
// consulted directly.
type RedisGeocodeCache struct {
	client *redis.Client
	inner  ports.Geocoder
	ttl    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, inner ports.Geocoder, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, inner: inner, ttl: ttl}
}

type cachedCoords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c *RedisGeocodeCache) Lookup(ctx context.Context, address string) (*domain.Coordinates, error) {
	norm := strings.Join(strings.Fields(address), " ")
	key := "geocode:" + norm

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedCoords
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &domain.Coordinates{Lat: cached.Lat, Lon: cached.Lon}, nil
		}
		logrus.WithField("key", key).Warn("geocode cache entry is corrupt, refetching")
	} else if !errors.Is(err, redis.Nil) {
		logrus.WithError(err).Warn("geocode cache read failed")
	}

	coords, err := c.inner.Lookup(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", norm, err)
	}
	if coords == nil {
		return nil, nil
	}

	payload, err := json.Marshal(cachedCoords{Lat: coords.Lat, Lon: coords.Lon})
	if err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logrus.WithError(err).Warn("geocode cache write failed")
		}
	}

	return coords, nil
}
