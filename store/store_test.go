package store

import (
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/pkg/testsupport"
)

// newTestCache builds a real cache service with the given TTL. Expiry tests
// pick a short TTL and sleep past it.
func newTestCache(t *testing.T, ttl time.Duration) cache.CacheService {
	t.Helper()

	svc, err := cache.NewCacheService(cache.DefaultConfig().WithTTL(ttl))
	if err != nil {
		t.Fatalf("failed to create cache service: %v", err)
	}
	return svc
}

// fakeClock is a settable time source for stepping through rate-limit
// cooldown windows without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// seedRestaurants loads the restaurant fixture into the gateway and returns
// the seeded rows.
func seedRestaurants(t *testing.T, gw *testsupport.MemoryGateway) []dining.Restaurant {
	t.Helper()

	var rows []dining.Restaurant
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("restaurants.json"), &rows)
	if len(rows) == 0 {
		t.Fatal("fixture has no restaurants")
	}
	for i, r := range rows {
		rows[i] = gw.AddRestaurant(r)
	}
	return rows
}
