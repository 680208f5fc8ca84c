// Package cache provides the caching surface the domain stores build on: a
// CacheService interface with read-through and patch-write operations, and a
// KeySerializer that turns a store method plus its parameters into a stable
// cache key.
//
// # Overview
//
// Each domain store (restaurants, menus, cuisines, session) owns one
// CacheService instance with its own TTL, constructed from a Config:
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig().WithTTL(10 * time.Minute))
//
// Read paths go through the generic wrapper, which fetches from the source of
// truth only when the cached entry is missing or past its TTL:
//
//	menus, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]dining.Menu, error) {
//		return gw.ListMenus(ctx, restaurantID)
//	})
//
// Mutators patch entries in place instead of invalidating and re-fetching:
//
//	if cached, ok := cache.Lookup[[]dining.Menu](ctx, svc, key); ok {
//		svc.Store(ctx, key, append(cached, created))
//	}
//
// # Key Serialization
//
// The default serializer handles the argument shapes the stores use: ids,
// normalized query structs, pointers, slices, and maps (sorted for
// determinism). Keys are stable across runs for these shapes. Function values
// are not supported as key material; store queries are plain data.
//
// Identical in-flight fetches for the same key are coalesced into a single
// call to the source of truth by the underlying cache client.
package cache
