// Package di wires the module together: one cache service per domain store,
// each with its own TTL, built over a shared base configuration and a single
// gateway implementation.
package di

import (
	"context"
	"time"

	"github.com/bool64/ctxd"
	"github.com/bool64/stats"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/gateway"
	"github.com/goliatone/go-dining-store/store"
)

// Default per-domain TTLs. Restaurants and menus change often; cuisines are
// close to static; the session snapshot sits in between.
const (
	DefaultRestaurantTTL = 5 * time.Minute
	DefaultMenuTTL       = 10 * time.Minute
	DefaultCuisineTTL    = time.Hour
	DefaultSessionTTL    = 15 * time.Minute
)

// Config configures the container. The zero value plus a Gateway is usable;
// Normalize fills in everything else.
type Config struct {
	// Cache is the base cache configuration. Per-domain TTLs below override
	// its TTL field for each store.
	Cache cache.Config

	RestaurantTTL time.Duration
	MenuTTL       time.Duration
	CuisineTTL    time.Duration
	SessionTTL    time.Duration

	// RateLimitCooldown is how long stores back off the gateway after a
	// rate-limited response.
	RateLimitCooldown time.Duration

	Logger ctxd.Logger
	Stats  stats.Tracker
}

// Normalize fills zero fields with defaults.
func (c Config) Normalize() Config {
	if c.Cache == (cache.Config{}) {
		c.Cache = cache.DefaultConfig()
	}
	if c.RestaurantTTL <= 0 {
		c.RestaurantTTL = DefaultRestaurantTTL
	}
	if c.MenuTTL <= 0 {
		c.MenuTTL = DefaultMenuTTL
	}
	if c.CuisineTTL <= 0 {
		c.CuisineTTL = DefaultCuisineTTL
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.RateLimitCooldown <= 0 {
		c.RateLimitCooldown = store.DefaultRateLimitCooldown
	}
	if c.Logger == nil {
		c.Logger = ctxd.NoOpLogger{}
	}
	if c.Stats == nil {
		c.Stats = stats.NoOp{}
	}
	return c
}

// Container holds the wired stores and their shared collaborators.
type Container struct {
	config        Config
	keySerializer cache.KeySerializer

	restaurants *store.RestaurantStore
	menus       *store.MenuStore
	cuisines    *store.CuisineStore
	session     *store.SessionStore
}

// NewContainer wires the stores over the given gateway.
func NewContainer(gw gateway.Gateway, config Config) (*Container, error) {
	config = config.Normalize()
	if err := config.Cache.Validate(); err != nil {
		return nil, err
	}

	keySerializer := cache.NewDefaultKeySerializer()
	opts := []store.Option{
		store.WithKeySerializer(keySerializer),
		store.WithLogger(config.Logger),
		store.WithStats(config.Stats),
		store.WithRateLimitCooldown(config.RateLimitCooldown),
	}

	newService := func(ttl time.Duration) (cache.CacheService, error) {
		return cache.NewCacheService(config.Cache.WithTTL(ttl))
	}

	restaurantCache, err := newService(config.RestaurantTTL)
	if err != nil {
		return nil, err
	}
	menuCache, err := newService(config.MenuTTL)
	if err != nil {
		return nil, err
	}
	cuisineCache, err := newService(config.CuisineTTL)
	if err != nil {
		return nil, err
	}
	sessionCache, err := newService(config.SessionTTL)
	if err != nil {
		return nil, err
	}

	session := store.NewSessionStore(gw, sessionCache, opts...)

	return &Container{
		config:        config,
		keySerializer: keySerializer,
		restaurants:   store.NewRestaurantStore(gw, gw, restaurantCache, opts...),
		menus:         store.NewMenuStore(gw, gw, session, menuCache, opts...),
		cuisines:      store.NewCuisineStore(gw, cuisineCache, opts...),
		session:       session,
	}, nil
}

// NewContainerWithDefaults wires the stores with default configuration.
func NewContainerWithDefaults(gw gateway.Gateway) (*Container, error) {
	return NewContainer(gw, Config{})
}

// Restaurants returns the restaurant store.
func (c *Container) Restaurants() *store.RestaurantStore { return c.restaurants }

// Menus returns the menu store.
func (c *Container) Menus() *store.MenuStore { return c.menus }

// Cuisines returns the cuisine store.
func (c *Container) Cuisines() *store.CuisineStore { return c.cuisines }

// Session returns the session store.
func (c *Container) Session() *store.SessionStore { return c.session }

// KeySerializer returns the shared key serializer.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

// Config returns a copy of the normalized configuration.
func (c *Container) Config() Config { return c.config }

// ClearAll drops every store's cache and status. Call it on logout so no
// user-scoped data survives into the next session.
func (c *Container) ClearAll(ctx context.Context) {
	c.session.ClearCache(ctx)
	c.restaurants.ClearCache(ctx)
	c.menus.ClearCache(ctx)
	c.cuisines.ClearCache(ctx)
}
