package store

import (
	"context"
	"errors"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
)

// base carries the plumbing every store shares: the domain cache service, key
// bookkeeping for invalidation, status state, and the ambient collaborators.
type base struct {
	options
	name   string
	cache  cache.CacheService
	keyreg *xsync.MapOf[string, struct{}]
	state  *state
}

func newBase(name string, svc cache.CacheService, opts []Option) base {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return base{
		options: o,
		name:    name,
		cache:   svc,
		keyreg:  xsync.NewMapOf[string, struct{}](),
		state:   &state{},
	}
}

// trackKey registers a cache key so ClearCache and prefix invalidation can
// find it later.
func (b *base) trackKey(key string) {
	b.keyreg.Store(key, struct{}{})
}

// clearKeys drops every tracked key with the given prefix from the cache. An
// empty prefix drops everything.
func (b *base) clearKeys(ctx context.Context, prefix string) {
	var keys []string
	b.keyreg.Range(func(key string, _ struct{}) bool {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	for _, key := range keys {
		if err := b.cache.Delete(ctx, key); err != nil {
			b.log.Warn(ctx, "cache delete failed", "store", b.name, "key", key, "error", err.Error())
		}
		b.keyreg.Delete(key)
	}
}

// classify coerces an arbitrary failure into the domain taxonomy.
func classify(err error) error {
	var derr *dining.Error
	if errors.As(err, &derr) {
		return err
	}
	return dining.Wrap(dining.KindGateway, "gateway failure", err)
}

// fault records a failed gateway interaction: the error lands in the store
// status, rate-limited responses open the back-off window, and the failure is
// logged and counted.
func (b *base) fault(ctx context.Context, err error) error {
	err = classify(err)
	now := b.now()
	b.state.recordError(err, now)
	if dining.IsRateLimited(err) {
		b.state.rateLimitUntil(now.Add(b.cooldown))
		b.stats.Add(ctx, MetricRateLimited, 1, "store", b.name)
	}
	b.stats.Add(ctx, MetricFailed, 1, "store", b.name)
	b.log.Error(ctx, "gateway interaction failed", "store", b.name, "error", err.Error())
	return err
}

// fetchThrough is the guarded read path shared by the list-shaped fetches:
// rate-limit gate first, then a coalescing read-through fetch. While the
// back-off window is open the cached value is served when present; otherwise
// the caller gets an empty slice and a rate-limited error, and the gateway is
// never touched. Hard fetch failures also degrade to an empty slice so
// screens can render.
func fetchThrough[T any](ctx context.Context, b *base, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	b.trackKey(key)

	if b.state.limited(b.now()) {
		if cached, ok := cache.Lookup[[]T](ctx, b.cache, key); ok {
			b.stats.Add(ctx, MetricHit, 1, "store", b.name)
			return cached, nil
		}
		return []T{}, dining.E(dining.KindRateLimited, "fetch suppressed while rate limited")
	}

	b.state.beginLoad()
	defer b.state.endLoad()

	fetched := false
	rows, err := cache.GetOrFetch(ctx, b.cache, key, func(ctx context.Context) ([]T, error) {
		fetched = true
		b.stats.Add(ctx, MetricMiss, 1, "store", b.name)
		rows, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []T{}
		}
		return rows, nil
	})
	if err != nil {
		return []T{}, b.fault(ctx, err)
	}

	if !fetched {
		b.stats.Add(ctx, MetricHit, 1, "store", b.name)
	}
	b.state.clearError()
	return rows, nil
}

// patchList rewrites one cached list in place. A cache miss is a no-op: the
// next read fetches fresh and there is nothing to patch.
func patchList[T any](ctx context.Context, b *base, key string, mutate func([]T) []T) {
	cached, ok := cache.Lookup[[]T](ctx, b.cache, key)
	if !ok {
		return
	}
	// Mutate a copy; readers may still hold the slice we looked up.
	b.cache.Store(ctx, key, mutate(append([]T(nil), cached...)))
	b.stats.Add(ctx, MetricWrite, 1, "store", b.name)
}
