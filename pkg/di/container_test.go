package di

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/pkg/testsupport"
)

func TestNewContainerWithDefaults(t *testing.T) {
	gw := testsupport.NewMemoryGateway()

	c, err := NewContainerWithDefaults(gw)
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	if c.Restaurants() == nil || c.Menus() == nil || c.Cuisines() == nil || c.Session() == nil {
		t.Fatal("expected every store wired")
	}
	if c.KeySerializer() == nil {
		t.Fatal("expected key serializer")
	}

	cfg := c.Config()
	if cfg.RestaurantTTL != DefaultRestaurantTTL {
		t.Errorf("restaurant TTL = %v, want %v", cfg.RestaurantTTL, DefaultRestaurantTTL)
	}
	if cfg.CuisineTTL != DefaultCuisineTTL {
		t.Errorf("cuisine TTL = %v, want %v", cfg.CuisineTTL, DefaultCuisineTTL)
	}
	if cfg.Logger == nil || cfg.Stats == nil {
		t.Error("expected no-op logger and stats defaults")
	}
}

func TestNewContainerRejectsInvalidCacheConfig(t *testing.T) {
	gw := testsupport.NewMemoryGateway()

	_, err := NewContainer(gw, Config{
		Cache: cache.Config{Capacity: -1, NumShards: 4, TTL: time.Minute, EvictionPercentage: 10},
	})
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestContainerStoresShareGateway(t *testing.T) {
	gw := testsupport.NewMemoryGateway()
	seeded := gw.AddRestaurant(dining.Restaurant{OwnerID: "u-ana", Name: "Casa de Tapas"})
	gw.SetUser(dining.User{ID: "u-ana", Language: "es"})

	c, err := NewContainerWithDefaults(gw)
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	ctx := context.Background()

	rows, err := c.Restaurants().Fetch(ctx, dining.RestaurantQuery{})
	if err != nil {
		t.Fatalf("restaurant fetch failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(rows))
	}

	// Menu writes use the same session and gateway wiring.
	menu, err := c.Menus().CreateMenu(ctx, seeded.ID, dining.MenuDraft{
		Name:   "Menú del día",
		Dishes: []dining.DishDraft{{Name: "Paella", PriceCents: 1800}},
	})
	if err != nil {
		t.Fatalf("menu create failed: %v", err)
	}
	if menu.Name.In("es") != "Menú del día" {
		t.Errorf("expected menu stamped under session language, got %v", menu.Name)
	}
}

func TestContainerClearAll(t *testing.T) {
	gw := testsupport.NewMemoryGateway()
	gw.AddRestaurant(dining.Restaurant{OwnerID: "u-ana", Name: "Casa de Tapas"})
	gw.SetUser(dining.User{ID: "u-ana"})

	c, err := NewContainerWithDefaults(gw)
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	ctx := context.Background()

	if _, err := c.Restaurants().Fetch(ctx, dining.RestaurantQuery{}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if _, err := c.Session().Current(ctx); err != nil {
		t.Fatalf("session fetch failed: %v", err)
	}

	c.ClearAll(ctx)

	if _, err := c.Restaurants().Fetch(ctx, dining.RestaurantQuery{}); err != nil {
		t.Fatalf("fetch after clear failed: %v", err)
	}
	if got := gw.Calls(testsupport.OpListRestaurants); got != 2 {
		t.Errorf("expected refetch after ClearAll, got %d gateway calls", got)
	}
	if _, err := c.Session().Current(ctx); err != nil {
		t.Fatalf("session fetch after clear failed: %v", err)
	}
	if got := gw.Calls(testsupport.OpCurrentUser); got < 2 {
		t.Errorf("expected session refetch after ClearAll, got %d gateway calls", got)
	}
}
