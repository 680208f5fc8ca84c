package store

import (
	"context"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// CuisineStore serves the cuisine category list. Cuisines change rarely, so
// the DI container gives this store the longest TTL.
type CuisineStore struct {
	base
	cuisines gateway.Cuisines
}

// NewCuisineStore builds a cuisine store over the given gateway slice.
func NewCuisineStore(cuisines gateway.Cuisines, svc cache.CacheService, opts ...Option) *CuisineStore {
	return &CuisineStore{
		base:     newBase("cuisines", svc, opts),
		cuisines: cuisines,
	}
}

func (s *CuisineStore) listKey() string {
	return s.keys.SerializeKey("Fetch")
}

// Fetch returns every cuisine category.
func (s *CuisineStore) Fetch(ctx context.Context) ([]dining.Cuisine, error) {
	return fetchThrough(ctx, &s.base, s.listKey(), func(ctx context.Context) ([]dining.Cuisine, error) {
		return s.cuisines.ListCuisines(ctx)
	})
}

// GetByID scans the cached list for a cuisine. It never touches the gateway.
func (s *CuisineStore) GetByID(id string) (dining.Cuisine, bool) {
	rows, ok := cache.Lookup[[]dining.Cuisine](context.Background(), s.cache, s.listKey())
	if !ok {
		return dining.Cuisine{}, false
	}
	for _, c := range rows {
		if c.ID == id {
			return c, true
		}
	}
	return dining.Cuisine{}, false
}

// ClearCache drops the cached list and resets status.
func (s *CuisineStore) ClearCache(ctx context.Context) {
	s.clearKeys(ctx, "")
	s.state.reset()
}

// ClearError clears the sticky error from the status snapshot.
func (s *CuisineStore) ClearError() {
	s.state.clearError()
}

// Status reports the store's current operational state.
func (s *CuisineStore) Status() Status {
	return s.state.snapshot(s.now())
}
