package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"childcare-route-service/internal/adapters/geo"
	"childcare-route-service/internal/domain"
)

func newTestCache(t *testing.T, inner *geo.MockGeocoder) *RedisGeocodeCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeocodeCache(client, inner, time.Hour)
}

func TestGeocodeCacheHit(t *testing.T) {
	inner := geo.NewMockGeocoder(map[string]domain.Coordinates{
		"1 Main St Seattle": {Lat: 47.61, Lon: -122.33},
	})
	c := newTestCache(t, inner)

	first, err := c.Lookup(context.Background(), "1 Main St Seattle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == nil || first.Lat != 47.61 || first.Lon != -122.33 {
		t.Fatalf("first lookup = %+v, want (47.61, -122.33)", first)
	}

	second, err := c.Lookup(context.Background(), "1  Main   St Seattle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == nil || second.Lat != 47.61 || second.Lon != -122.33 {
		t.Fatalf("second lookup = %+v, want cached coordinates", second)
	}

	if inner.Calls != 1 {
		t.Fatalf("inner geocoder called %d times, want 1 (second hit served from cache)", inner.Calls)
	}
}

func TestGeocodeCacheMissDoesNotCache(t *testing.T) {
	inner := geo.NewMockGeocoder(map[string]domain.Coordinates{})
	c := newTestCache(t, inner)

	for i := 0; i < 2; i++ {
		coords, err := c.Lookup(context.Background(), "nowhere at all")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if coords != nil {
			t.Fatalf("expected nil coordinates for unknown address, got %+v", coords)
		}
	}

	if inner.Calls != 2 {
		t.Fatalf("inner geocoder called %d times, want 2 (misses are not cached)", inner.Calls)
	}
}
