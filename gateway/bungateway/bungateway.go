// Package bungateway implements the gateway boundary over an embedded SQL
// database using bun. It exists for local development and integration tests:
// same semantics as the hosted backend, real SQL underneath, no network.
//
// There is no RPC layer in an embedded database, so SearchAddresses always
// reports gateway.ErrRPCUnavailable and callers exercise the same client-side
// fallback they would against a backend without the function deployed.
package bungateway

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bool64/ctxd"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// Gateway implements gateway.Gateway over a bun.DB.
type Gateway struct {
	db   *bun.DB
	user dining.User
	log  ctxd.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithUser sets the session user CurrentUser reports. An embedded database has
// no auth endpoint, so the acting user is part of the gateway's construction.
func WithUser(user dining.User) Option {
	return func(g *Gateway) { g.user = user }
}

// WithLogger sets the contextual logger.
func WithLogger(log ctxd.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// New builds a Gateway over db.
func New(db *bun.DB, opts ...Option) *Gateway {
	g := &Gateway{db: db, log: ctxd.NoOpLogger{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ gateway.Gateway = (*Gateway)(nil)

// CreateSchema creates the tables this gateway reads and writes. Meant for
// tests and throwaway local databases, not migrations.
func (g *Gateway) CreateSchema(ctx context.Context) error {
	models := []any{
		(*restaurantRow)(nil),
		(*menuRow)(nil),
		(*dishRow)(nil),
		(*cuisineRow)(nil),
		(*addressRow)(nil),
	}
	for _, model := range models {
		if _, err := g.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return dining.Wrap(dining.KindGateway, "could not create schema", err)
		}
	}
	return nil
}

// SeedRestaurant inserts a restaurant row, assigning an id when missing.
func (g *Gateway) SeedRestaurant(ctx context.Context, r dining.Restaurant) (dining.Restaurant, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	row := fromRestaurant(r)
	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return dining.Restaurant{}, dining.Wrap(dining.KindGateway, "could not insert restaurant", err)
	}
	return r, nil
}

// ListRestaurants implements gateway.Restaurants.
func (g *Gateway) ListRestaurants(ctx context.Context, q dining.RestaurantQuery) ([]dining.Restaurant, error) {
	var rows []restaurantRow

	query := g.db.NewSelect().Model(&rows).
		Order("created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset())

	if q.CuisineID != "" {
		query = query.Where("cuisine_id = ?", q.CuisineID)
	}
	if q.Search != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}

	if err := query.Scan(ctx); err != nil {
		return nil, dining.Wrap(dining.KindGateway, "could not list restaurants", err)
	}

	out := make([]dining.Restaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return gateway.FilterRestaurantsNear(out, q), nil
}

// GetRestaurant implements gateway.Restaurants.
func (g *Gateway) GetRestaurant(ctx context.Context, id string) (dining.Restaurant, error) {
	var row restaurantRow
	err := g.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dining.Restaurant{}, dining.E(dining.KindNotFound, "restaurant not found")
	}
	if err != nil {
		return dining.Restaurant{}, dining.Wrap(dining.KindGateway, "could not load restaurant", err)
	}
	return row.toDomain(), nil
}

// ListMenus implements gateway.Menus, composing each menu with its dishes.
func (g *Gateway) ListMenus(ctx context.Context, restaurantID string) ([]dining.Menu, error) {
	var rows []menuRow
	err := g.db.NewSelect().Model(&rows).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, dining.Wrap(dining.KindGateway, "could not list menus", err)
	}

	out := make([]dining.Menu, 0, len(rows))
	for _, row := range rows {
		dishes, err := g.dishesFor(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, row.toDomain(dishes))
	}
	return out, nil
}

// GetMenu implements gateway.Menus.
func (g *Gateway) GetMenu(ctx context.Context, menuID string) (dining.Menu, error) {
	var row menuRow
	err := g.db.NewSelect().Model(&row).Where("id = ?", menuID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dining.Menu{}, dining.E(dining.KindNotFound, "menu not found")
	}
	if err != nil {
		return dining.Menu{}, dining.Wrap(dining.KindGateway, "could not load menu", err)
	}

	dishes, err := g.dishesFor(ctx, menuID)
	if err != nil {
		return dining.Menu{}, err
	}
	return row.toDomain(dishes), nil
}

func (g *Gateway) dishesFor(ctx context.Context, menuID string) ([]dining.Dish, error) {
	var rows []dishRow
	err := g.db.NewSelect().Model(&rows).
		Where("menu_id = ?", menuID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, dining.Wrap(dining.KindGateway, "could not load dishes", err)
	}

	out := make([]dining.Dish, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// InsertMenu implements gateway.Menus.
func (g *Gateway) InsertMenu(ctx context.Context, row gateway.MenuRow) (string, error) {
	rec := menuRow{
		ID:           uuid.NewString(),
		RestaurantID: row.RestaurantID,
		Name:         ltext(row.Name),
		Description:  ltext(row.Description),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := g.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return "", dining.Wrap(dining.KindGateway, "could not insert menu", err)
	}
	return rec.ID, nil
}

// UpdateMenu implements gateway.Menus with a read-modify-write of the
// localized text columns.
func (g *Gateway) UpdateMenu(ctx context.Context, menuID string, patch gateway.MenuRowPatch) error {
	current, err := g.GetMenu(ctx, menuID)
	if err != nil {
		return err
	}

	columns := make([]string, 0, 2)
	rec := menuRow{ID: menuID}

	if patch.Name != nil {
		name := current.Name.Clone()
		if name == nil {
			name = dining.LocalizedText{}
		}
		name[patch.Lang] = *patch.Name
		rec.Name = ltext(name)
		columns = append(columns, "name")
	}
	if patch.Description != nil {
		desc := current.Description.Clone()
		if desc == nil {
			desc = dining.LocalizedText{}
		}
		desc[patch.Lang] = *patch.Description
		rec.Description = ltext(desc)
		columns = append(columns, "description")
	}
	if len(columns) == 0 {
		return nil
	}

	if _, err := g.db.NewUpdate().Model(&rec).Column(columns...).WherePK().Exec(ctx); err != nil {
		return dining.Wrap(dining.KindGateway, "could not update menu", err)
	}
	return nil
}

// DeleteMenu implements gateway.Menus.
func (g *Gateway) DeleteMenu(ctx context.Context, menuID string) error {
	if _, err := g.db.NewDelete().Model((*menuRow)(nil)).Where("id = ?", menuID).Exec(ctx); err != nil {
		return dining.Wrap(dining.KindGateway, "could not delete menu", err)
	}
	return nil
}

// InsertDishes implements gateway.Menus.
func (g *Gateway) InsertDishes(ctx context.Context, rows []gateway.DishRow) error {
	if len(rows) == 0 {
		return nil
	}

	recs := make([]dishRow, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, dishRow{
			ID:          uuid.NewString(),
			MenuID:      row.MenuID,
			Name:        ltext(row.Name),
			Description: ltext(row.Description),
			PriceCents:  row.PriceCents,
			Position:    row.Position,
		})
	}
	if _, err := g.db.NewInsert().Model(&recs).Exec(ctx); err != nil {
		return dining.Wrap(dining.KindGateway, "could not insert dishes", err)
	}
	return nil
}

// DeleteDishes implements gateway.Menus.
func (g *Gateway) DeleteDishes(ctx context.Context, menuID string) error {
	if _, err := g.db.NewDelete().Model((*dishRow)(nil)).Where("menu_id = ?", menuID).Exec(ctx); err != nil {
		return dining.Wrap(dining.KindGateway, "could not delete dishes", err)
	}
	return nil
}

// ListCuisines implements gateway.Cuisines.
func (g *Gateway) ListCuisines(ctx context.Context) ([]dining.Cuisine, error) {
	var rows []cuisineRow
	if err := g.db.NewSelect().Model(&rows).Order("slug ASC").Scan(ctx); err != nil {
		return nil, dining.Wrap(dining.KindGateway, "could not list cuisines", err)
	}

	out := make([]dining.Cuisine, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// SeedCuisine inserts a cuisine row, assigning an id when missing.
func (g *Gateway) SeedCuisine(ctx context.Context, c dining.Cuisine) (dining.Cuisine, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := cuisineRow{ID: c.ID, Slug: c.Slug, Label: ltext(c.Label)}
	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return dining.Cuisine{}, dining.Wrap(dining.KindGateway, "could not insert cuisine", err)
	}
	return c, nil
}

// SeedAddress inserts an address row, assigning an id when missing.
func (g *Gateway) SeedAddress(ctx context.Context, a dining.Address) (dining.Address, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := addressRow{ID: a.ID, Label: a.Label, Lat: a.Location.Lat, Lng: a.Location.Lng}
	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return dining.Address{}, dining.Wrap(dining.KindGateway, "could not insert address", err)
	}
	return a, nil
}

// SearchAddresses implements gateway.Addresses. The embedded database has no
// RPC layer, so this always reports the RPC as unavailable and callers fall
// back to ListAddresses plus client-side filtering.
func (g *Gateway) SearchAddresses(ctx context.Context, search dining.AddressSearch) ([]dining.Address, error) {
	return nil, gateway.ErrRPCUnavailable
}

// ListAddresses implements gateway.Addresses.
func (g *Gateway) ListAddresses(ctx context.Context) ([]dining.Address, error) {
	var rows []addressRow
	if err := g.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, dining.Wrap(dining.KindGateway, "could not list addresses", err)
	}

	out := make([]dining.Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// CurrentUser implements gateway.Auth.
func (g *Gateway) CurrentUser(ctx context.Context) (dining.User, error) {
	if g.user.ID == "" {
		return dining.User{}, dining.E(dining.KindNotAuthenticated, "no session user configured")
	}
	return g.user, nil
}
