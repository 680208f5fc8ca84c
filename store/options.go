package store

import (
	"time"

	"github.com/bool64/ctxd"
	"github.com/bool64/stats"

	"github.com/goliatone/go-dining-store/cache"
)

// DefaultRateLimitCooldown is how long a store backs off the gateway after a
// rate-limited response.
const DefaultRateLimitCooldown = 30 * time.Second

// Metric names reported through the injected stats.Tracker. Every sample
// carries a "store" label naming the emitting store.
const (
	MetricHit         = "dining_cache_hit"
	MetricMiss        = "dining_cache_miss"
	MetricWrite       = "dining_cache_write"
	MetricFailed      = "dining_fetch_failed"
	MetricRateLimited = "dining_fetch_rate_limited"
)

type options struct {
	keys     cache.KeySerializer
	log      ctxd.Logger
	stats    stats.Tracker
	now      func() time.Time
	cooldown time.Duration
}

func defaultOptions() options {
	return options{
		keys:     cache.NewDefaultKeySerializer(),
		log:      ctxd.NoOpLogger{},
		stats:    stats.NoOp{},
		now:      time.Now,
		cooldown: DefaultRateLimitCooldown,
	}
}

// Option configures a store at construction time.
type Option func(*options)

// WithKeySerializer overrides the cache key serializer.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(o *options) {
		if keys != nil {
			o.keys = keys
		}
	}
}

// WithLogger sets the contextual logger.
func WithLogger(log ctxd.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithStats sets the metrics tracker.
func WithStats(tracker stats.Tracker) Option {
	return func(o *options) {
		if tracker != nil {
			o.stats = tracker
		}
	}
}

// WithClock overrides the time source. Tests use it to step through
// rate-limit cooldown windows deterministically.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRateLimitCooldown overrides the backoff window applied after a
// rate-limited gateway response.
func WithRateLimitCooldown(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cooldown = d
		}
	}
}
