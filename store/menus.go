package store

import (
	"context"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// MenuStore serves menus per restaurant and owns the write-through mutators.
// Every write re-checks authentication and restaurant ownership against the
// gateway, then patches the cached list in place so readers see the change
// without waiting out the TTL.
type MenuStore struct {
	base
	menus       gateway.Menus
	restaurants gateway.Restaurants
	session     *SessionStore
	saga        *Saga
}

// NewMenuStore builds a menu store. The session store supplies the acting
// user for ownership checks and write language.
func NewMenuStore(menus gateway.Menus, restaurants gateway.Restaurants, session *SessionStore, svc cache.CacheService, opts ...Option) *MenuStore {
	b := newBase("menus", svc, opts)
	return &MenuStore{
		base:        b,
		menus:       menus,
		restaurants: restaurants,
		session:     session,
		saga:        NewSaga(b.log),
	}
}

func (s *MenuStore) listKey(restaurantID string) string {
	return s.keys.SerializeKey("FetchMenus", restaurantID)
}

// FetchMenus returns the menus of one restaurant, cached per restaurant id.
func (s *MenuStore) FetchMenus(ctx context.Context, restaurantID string) ([]dining.Menu, error) {
	if restaurantID == "" {
		return []dining.Menu{}, dining.E(dining.KindValidation, "restaurant id is required")
	}

	return fetchThrough(ctx, &s.base, s.listKey(restaurantID), func(ctx context.Context) ([]dining.Menu, error) {
		return s.menus.ListMenus(ctx, restaurantID)
	})
}

// GetMenu scans the restaurant's cached menu list. It never touches the
// gateway.
func (s *MenuStore) GetMenu(restaurantID, menuID string) (dining.Menu, bool) {
	ctx := context.Background()

	rows, ok := cache.Lookup[[]dining.Menu](ctx, s.cache, s.listKey(restaurantID))
	if !ok {
		return dining.Menu{}, false
	}
	for _, m := range rows {
		if m.ID == menuID {
			return m, true
		}
	}
	return dining.Menu{}, false
}

// authorize resolves the acting user and verifies they own the restaurant.
// The restaurant is re-read from the gateway, not the cache, so a stale
// listing cannot grant a write.
func (s *MenuStore) authorize(ctx context.Context, restaurantID string) (dining.User, error) {
	user, err := s.session.Current(ctx)
	if err != nil {
		return dining.User{}, dining.Wrap(dining.KindNotAuthenticated, "sign in to manage menus", err)
	}

	restaurant, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return dining.User{}, classify(err)
	}
	if restaurant.OwnerID != user.ID {
		return dining.User{}, dining.E(dining.KindNotAuthorized, "only the restaurant owner can manage its menus")
	}
	return user, nil
}

// CreateMenu inserts a menu with its dishes and appends the composed result
// to the cached list. The backend has no multi-table transactions, so the
// dish insert runs under a saga that deletes the menu row again if the
// dishes fail; on any failure the cache is left untouched.
func (s *MenuStore) CreateMenu(ctx context.Context, restaurantID string, draft dining.MenuDraft) (dining.Menu, error) {
	if err := draft.Validate(); err != nil {
		return dining.Menu{}, dining.Wrap(dining.KindValidation, "invalid menu draft", err)
	}

	user, err := s.authorize(ctx, restaurantID)
	if err != nil {
		return dining.Menu{}, err
	}
	lang := user.LanguageOrDefault()

	row := gateway.MenuRow{
		RestaurantID: restaurantID,
		Name:         dining.LocalizedText{lang: draft.Name},
	}
	if draft.Description != "" {
		row.Description = dining.LocalizedText{lang: draft.Description}
	}

	var menuID string
	err = s.saga.Run(ctx,
		SagaStep{
			Name: "insert menu",
			Do: func(ctx context.Context) error {
				id, err := s.menus.InsertMenu(ctx, row)
				menuID = id
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.menus.DeleteMenu(ctx, menuID)
			},
		},
		SagaStep{
			Name: "insert dishes",
			Do: func(ctx context.Context) error {
				rows := make([]gateway.DishRow, 0, len(draft.Dishes))
				for i, dish := range draft.Dishes {
					dr := gateway.DishRow{
						MenuID:     menuID,
						Name:       dining.LocalizedText{lang: dish.Name},
						PriceCents: dish.PriceCents,
						Position:   i,
					}
					if dish.Description != "" {
						dr.Description = dining.LocalizedText{lang: dish.Description}
					}
					rows = append(rows, dr)
				}
				return s.menus.InsertDishes(ctx, rows)
			},
		},
	)
	if err != nil {
		return dining.Menu{}, s.fault(ctx, err)
	}

	menu, err := s.menus.GetMenu(ctx, menuID)
	if err != nil {
		return dining.Menu{}, s.fault(ctx, err)
	}

	patchList(ctx, &s.base, s.listKey(restaurantID), func(rows []dining.Menu) []dining.Menu {
		return append(rows, menu)
	})
	s.state.clearError()
	return menu, nil
}

// UpdateMenu applies a partial text update under the acting user's language
// and replaces the entry in the cached list with the re-fetched menu.
func (s *MenuStore) UpdateMenu(ctx context.Context, restaurantID, menuID string, patch dining.MenuPatch) (dining.Menu, error) {
	if err := patch.Validate(); err != nil {
		return dining.Menu{}, dining.Wrap(dining.KindValidation, "invalid menu patch", err)
	}

	user, err := s.authorize(ctx, restaurantID)
	if err != nil {
		return dining.Menu{}, err
	}

	rowPatch := gateway.MenuRowPatch{
		Lang:        user.LanguageOrDefault(),
		Name:        patch.Name,
		Description: patch.Description,
	}
	if err := s.menus.UpdateMenu(ctx, menuID, rowPatch); err != nil {
		return dining.Menu{}, s.fault(ctx, err)
	}

	menu, err := s.menus.GetMenu(ctx, menuID)
	if err != nil {
		return dining.Menu{}, s.fault(ctx, err)
	}

	patchList(ctx, &s.base, s.listKey(restaurantID), func(rows []dining.Menu) []dining.Menu {
		for i := range rows {
			if rows[i].ID == menuID {
				rows[i] = menu
			}
		}
		return rows
	})
	s.state.clearError()
	return menu, nil
}

// DeleteMenu removes a menu and its dishes, then drops the entry from the
// cached list. Dishes go first so a failure between the two deletes never
// leaves orphaned rows behind a missing menu.
func (s *MenuStore) DeleteMenu(ctx context.Context, restaurantID, menuID string) error {
	if _, err := s.authorize(ctx, restaurantID); err != nil {
		return err
	}

	if err := s.menus.DeleteDishes(ctx, menuID); err != nil {
		return s.fault(ctx, err)
	}
	if err := s.menus.DeleteMenu(ctx, menuID); err != nil {
		return s.fault(ctx, err)
	}

	patchList(ctx, &s.base, s.listKey(restaurantID), func(rows []dining.Menu) []dining.Menu {
		out := rows[:0]
		for _, m := range rows {
			if m.ID != menuID {
				out = append(out, m)
			}
		}
		return out
	})
	s.state.clearError()
	return nil
}

// ClearCache drops every cached menu list and resets status.
func (s *MenuStore) ClearCache(ctx context.Context) {
	s.clearKeys(ctx, "")
	s.state.reset()
}

// ClearError clears the sticky error from the status snapshot.
func (s *MenuStore) ClearError() {
	s.state.clearError()
}

// Status reports the store's current operational state.
func (s *MenuStore) Status() Status {
	return s.state.snapshot(s.now())
}
