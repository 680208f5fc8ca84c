package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidResultType is returned when a cached value cannot be converted to
// the type the caller asked for. It indicates two call sites share a key with
// different types, which is a programming error.
var ErrInvalidResultType = errors.New("cache: result does not match requested type")

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the
// source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the caching operations the domain stores need: a
// read-through fetch with in-flight coalescing, a pure cache lookup that never
// reaches the source of truth, a direct write used to patch entries in place
// after mutations, and targeted invalidation.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Lookup(ctx context.Context, key string) (any, bool)
	Store(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is a type-safe wrapper around CacheService.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T", ErrInvalidResultType, key, result)
	}
	return typed, nil
}

// Lookup is a type-safe wrapper around CacheService.Lookup. A type mismatch is
// treated as a miss.
func Lookup[T any](ctx context.Context, service CacheService, key string) (T, bool) {
	var zero T

	result, ok := service.Lookup(ctx, key)
	if !ok || result == nil {
		return zero, false
	}

	typed, ok := result.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
