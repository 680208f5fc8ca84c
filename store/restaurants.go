package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// RestaurantStore serves restaurant listings and geo address search through a
// TTL cache with rate-limit back-off.
type RestaurantStore struct {
	base
	restaurants gateway.Restaurants
	addresses   gateway.Addresses
}

// NewRestaurantStore builds a restaurant store over the given gateway slices
// and cache service.
func NewRestaurantStore(restaurants gateway.Restaurants, addresses gateway.Addresses, svc cache.CacheService, opts ...Option) *RestaurantStore {
	return &RestaurantStore{
		base:        newBase("restaurants", svc, opts),
		restaurants: restaurants,
		addresses:   addresses,
	}
}

// Fetch returns the restaurant slice the query describes. A TTL-fresh cache
// entry is served without touching the gateway; concurrent identical misses
// collapse into a single gateway call. On hard failure the result is an empty
// slice alongside the error.
func (s *RestaurantStore) Fetch(ctx context.Context, q dining.RestaurantQuery) ([]dining.Restaurant, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return []dining.Restaurant{}, dining.Wrap(dining.KindValidation, "invalid restaurant query", err)
	}

	key := s.keys.SerializeKey("Fetch", q)
	return fetchThrough(ctx, &s.base, key, func(ctx context.Context) ([]dining.Restaurant, error) {
		return s.restaurants.ListRestaurants(ctx, q)
	})
}

// GetByID scans the cached listings for a restaurant. It never touches the
// gateway; a restaurant that was not part of any cached fetch is simply not
// found.
func (s *RestaurantStore) GetByID(id string) (dining.Restaurant, bool) {
	ctx := context.Background()

	var (
		found dining.Restaurant
		ok    bool
	)
	s.keyreg.Range(func(key string, _ struct{}) bool {
		rows, hit := cache.Lookup[[]dining.Restaurant](ctx, s.cache, key)
		if !hit {
			return true
		}
		for _, r := range rows {
			if r.ID == id {
				found = r
				ok = true
				return false
			}
		}
		return true
	})
	return found, ok
}

// SearchAddresses resolves addresses near a point via the backend's
// geo-radius RPC, falling back to client-side haversine filtering over the
// plain address listing when the RPC is not deployed. Results are cached
// under the normalized search.
func (s *RestaurantStore) SearchAddresses(ctx context.Context, search dining.AddressSearch) ([]dining.Address, error) {
	search = search.Normalize()
	if err := search.Validate(); err != nil {
		return []dining.Address{}, dining.Wrap(dining.KindValidation, "invalid address search", err)
	}

	key := s.keys.SerializeKey("SearchAddresses", search)
	return fetchThrough(ctx, &s.base, key, func(ctx context.Context) ([]dining.Address, error) {
		rows, err := s.addresses.SearchAddresses(ctx, search)
		if err == nil {
			return rows, nil
		}
		if !errors.Is(err, gateway.ErrRPCUnavailable) {
			return nil, err
		}

		s.log.Info(ctx, "search rpc unavailable, filtering client side", "store", s.name)
		all, err := s.addresses.ListAddresses(ctx)
		if err != nil {
			return nil, err
		}
		return gateway.FilterAddressesNear(all, search), nil
	})
}

// ClearCache drops every cached entry and resets status. Logout and
// pull-to-refresh both land here.
func (s *RestaurantStore) ClearCache(ctx context.Context) {
	s.clearKeys(ctx, "")
	s.state.reset()
}

// ClearError clears the sticky error from the status snapshot.
func (s *RestaurantStore) ClearError() {
	s.state.clearError()
}

// Status reports the store's current operational state.
func (s *RestaurantStore) Status() Status {
	return s.state.snapshot(s.now())
}
