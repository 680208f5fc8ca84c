// Package gateway defines the remote data gateway boundary the cache stores
// talk through: table-style CRUD per domain area, an RPC for geo-radius
// address search, and the auth identity lookup used to stamp ownership and
// language on writes.
//
// Implementations map their transport failures to the dining error taxonomy at
// this boundary, so stores never see raw transport errors. Two implementations
// ship with the module: gateway/postgrest (hosted PostgREST-style backend) and
// gateway/bungateway (embedded SQL database for local development and tests).
package gateway

import (
	"context"
	"errors"

	"github.com/goliatone/go-dining-store/dining"
)

// ErrRPCUnavailable signals that the geo-radius search RPC is not deployed on
// the backend. Stores treat it as a cue to fall back to client-side haversine
// filtering, not as a user-facing failure. It is a plain sentinel on purpose:
// matching it must never catch other gateway failures, which share a Kind.
var ErrRPCUnavailable = errors.New("search rpc unavailable")

// Restaurants is the read surface for restaurant rows.
type Restaurants interface {
	ListRestaurants(ctx context.Context, q dining.RestaurantQuery) ([]dining.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (dining.Restaurant, error)
}

// Menus is the read/write surface for menu and dish rows. Writes are
// row-level: composing a menu with its dishes takes multiple round trips, and
// the store layer owns the compensating logic between them.
type Menus interface {
	ListMenus(ctx context.Context, restaurantID string) ([]dining.Menu, error)
	GetMenu(ctx context.Context, menuID string) (dining.Menu, error)
	InsertMenu(ctx context.Context, row MenuRow) (string, error)
	UpdateMenu(ctx context.Context, menuID string, patch MenuRowPatch) error
	DeleteMenu(ctx context.Context, menuID string) error
	InsertDishes(ctx context.Context, rows []DishRow) error
	DeleteDishes(ctx context.Context, menuID string) error
}

// Cuisines is the read surface for cuisine categories.
type Cuisines interface {
	ListCuisines(ctx context.Context) ([]dining.Cuisine, error)
}

// Addresses exposes the geo-radius search RPC and the plain listing used by
// the client-side fallback when the RPC is unavailable.
type Addresses interface {
	SearchAddresses(ctx context.Context, search dining.AddressSearch) ([]dining.Address, error)
	ListAddresses(ctx context.Context) ([]dining.Address, error)
}

// Auth resolves the acting authenticated user.
type Auth interface {
	CurrentUser(ctx context.Context) (dining.User, error)
}

// Gateway is the composed boundary a full backend implementation satisfies.
type Gateway interface {
	Restaurants
	Menus
	Cuisines
	Addresses
	Auth
}

// MenuRow is the insert payload for a menu record.
type MenuRow struct {
	RestaurantID string
	Name         dining.LocalizedText
	Description  dining.LocalizedText
}

// MenuRowPatch is a partial update of a menu's localized text under one
// language. Nil fields are left untouched.
type MenuRowPatch struct {
	Lang        string
	Name        *string
	Description *string
}

// DishRow is the insert payload for a dish record.
type DishRow struct {
	MenuID      string
	Name        dining.LocalizedText
	Description dining.LocalizedText
	PriceCents  int
	Position    int
}
