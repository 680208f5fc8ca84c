// Package store implements the domain cache stores that sit between the
// application and the remote data gateway: restaurants, menus, cuisines, and
// the session user. Each store fronts its gateway slice with a TTL cache,
// maintains loading/error/rate-limit status, and patches cached lists in
// place after write-through mutations so readers see updates without a
// refetch.
//
// Stores are plain injected services. Build them directly or through pkg/di;
// there is no package-level state.
package store
