package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// Operation names accepted by FailNext and Calls.
const (
	OpListRestaurants = "ListRestaurants"
	OpGetRestaurant   = "GetRestaurant"
	OpListMenus       = "ListMenus"
	OpGetMenu         = "GetMenu"
	OpInsertMenu      = "InsertMenu"
	OpUpdateMenu      = "UpdateMenu"
	OpDeleteMenu      = "DeleteMenu"
	OpInsertDishes    = "InsertDishes"
	OpDeleteDishes    = "DeleteDishes"
	OpListCuisines    = "ListCuisines"
	OpSearchAddresses = "SearchAddresses"
	OpListAddresses   = "ListAddresses"
	OpCurrentUser     = "CurrentUser"
)

type menuRec struct {
	ID           string
	RestaurantID string
	Name         dining.LocalizedText
	Description  dining.LocalizedText
	CreatedAt    time.Time
}

// MemoryGateway is a scriptable in-memory gateway.Gateway. It keeps rows in
// concurrent maps, counts calls per operation, and can be told to fail the
// next call to a given operation, which is how tests exercise rate limiting
// and the compensating-delete path.
type MemoryGateway struct {
	restaurants *xsync.MapOf[string, dining.Restaurant]
	menus       *xsync.MapOf[string, menuRec]
	dishes      *xsync.MapOf[string, dining.Dish]
	cuisines    *xsync.MapOf[string, dining.Cuisine]
	addresses   *xsync.MapOf[string, dining.Address]
	failures    *xsync.MapOf[string, error]
	calls       *xsync.MapOf[string, int64]

	mu      sync.Mutex
	user    dining.User
	rpcDown bool
	seq     int64
}

// NewMemoryGateway builds an empty gateway with no session user.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		restaurants: xsync.NewMapOf[string, dining.Restaurant](),
		menus:       xsync.NewMapOf[string, menuRec](),
		dishes:      xsync.NewMapOf[string, dining.Dish](),
		cuisines:    xsync.NewMapOf[string, dining.Cuisine](),
		addresses:   xsync.NewMapOf[string, dining.Address](),
		failures:    xsync.NewMapOf[string, error](),
		calls:       xsync.NewMapOf[string, int64](),
	}
}

var _ gateway.Gateway = (*MemoryGateway)(nil)

// SetUser sets the session user CurrentUser reports.
func (g *MemoryGateway) SetUser(user dining.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = user
}

// SetRPCDown toggles whether SearchAddresses reports the RPC as missing.
func (g *MemoryGateway) SetRPCDown(down bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rpcDown = down
}

// FailNext makes the next call to op return err instead of running.
func (g *MemoryGateway) FailNext(op string, err error) {
	g.failures.Store(op, err)
}

// Calls reports how many times op ran (scripted failures included).
func (g *MemoryGateway) Calls(op string) int64 {
	n, _ := g.calls.Load(op)
	return n
}

func (g *MemoryGateway) enter(op string) error {
	g.calls.Compute(op, func(old int64, _ bool) (int64, bool) {
		return old + 1, false
	})
	if err, ok := g.failures.LoadAndDelete(op); ok {
		return err
	}
	return nil
}

// nextCreatedAt hands out strictly increasing timestamps so list ordering is
// deterministic even when rows are seeded within the same walltime tick.
func (g *MemoryGateway) nextCreatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return time.Unix(0, g.seq).UTC()
}

// AddRestaurant seeds a restaurant row, assigning an id when missing.
func (g *MemoryGateway) AddRestaurant(r dining.Restaurant) dining.Restaurant {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = g.nextCreatedAt()
	}
	g.restaurants.Store(r.ID, r)
	return r
}

// AddCuisine seeds a cuisine row, assigning an id when missing.
func (g *MemoryGateway) AddCuisine(c dining.Cuisine) dining.Cuisine {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	g.cuisines.Store(c.ID, c)
	return c
}

// AddAddress seeds an address row, assigning an id when missing.
func (g *MemoryGateway) AddAddress(a dining.Address) dining.Address {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	g.addresses.Store(a.ID, a)
	return a
}

// AddMenu seeds a composed menu (row plus dishes), assigning ids when missing.
func (g *MemoryGateway) AddMenu(m dining.Menu) dining.Menu {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = g.nextCreatedAt()
	}
	g.menus.Store(m.ID, menuRec{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	})
	for i, d := range m.Dishes {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		d.MenuID = m.ID
		d.Position = i
		m.Dishes[i] = d
		g.dishes.Store(d.ID, d)
	}
	return m
}

// ListRestaurants implements gateway.Restaurants.
func (g *MemoryGateway) ListRestaurants(ctx context.Context, q dining.RestaurantQuery) ([]dining.Restaurant, error) {
	if err := g.enter(OpListRestaurants); err != nil {
		return nil, err
	}

	var rows []dining.Restaurant
	g.restaurants.Range(func(_ string, r dining.Restaurant) bool {
		if q.CuisineID != "" && r.CuisineID != q.CuisineID {
			return true
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q.Search)) {
			return true
		}
		rows = append(rows, r)
		return true
	})

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})

	rows = gateway.FilterRestaurantsNear(rows, q)

	start := q.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.Limit
	if q.Limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return append([]dining.Restaurant(nil), rows[start:end]...), nil
}

// GetRestaurant implements gateway.Restaurants.
func (g *MemoryGateway) GetRestaurant(ctx context.Context, id string) (dining.Restaurant, error) {
	if err := g.enter(OpGetRestaurant); err != nil {
		return dining.Restaurant{}, err
	}

	r, ok := g.restaurants.Load(id)
	if !ok {
		return dining.Restaurant{}, dining.E(dining.KindNotFound, "restaurant not found")
	}
	return r, nil
}

// ListMenus implements gateway.Menus.
func (g *MemoryGateway) ListMenus(ctx context.Context, restaurantID string) ([]dining.Menu, error) {
	if err := g.enter(OpListMenus); err != nil {
		return nil, err
	}

	var recs []menuRec
	g.menus.Range(func(_ string, rec menuRec) bool {
		if rec.RestaurantID == restaurantID {
			recs = append(recs, rec)
		}
		return true
	})

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})

	out := make([]dining.Menu, 0, len(recs))
	for _, rec := range recs {
		out = append(out, g.compose(rec))
	}
	return out, nil
}

// GetMenu implements gateway.Menus.
func (g *MemoryGateway) GetMenu(ctx context.Context, menuID string) (dining.Menu, error) {
	if err := g.enter(OpGetMenu); err != nil {
		return dining.Menu{}, err
	}

	rec, ok := g.menus.Load(menuID)
	if !ok {
		return dining.Menu{}, dining.E(dining.KindNotFound, "menu not found")
	}
	return g.compose(rec), nil
}

func (g *MemoryGateway) compose(rec menuRec) dining.Menu {
	dishes := []dining.Dish{}
	g.dishes.Range(func(_ string, d dining.Dish) bool {
		if d.MenuID == rec.ID {
			dishes = append(dishes, d)
		}
		return true
	})
	sort.Slice(dishes, func(i, j int) bool {
		if dishes[i].Position != dishes[j].Position {
			return dishes[i].Position < dishes[j].Position
		}
		return dishes[i].ID < dishes[j].ID
	})

	return dining.Menu{
		ID:           rec.ID,
		RestaurantID: rec.RestaurantID,
		Name:         rec.Name.Clone(),
		Description:  rec.Description.Clone(),
		Dishes:       dishes,
		CreatedAt:    rec.CreatedAt,
	}
}

// InsertMenu implements gateway.Menus.
func (g *MemoryGateway) InsertMenu(ctx context.Context, row gateway.MenuRow) (string, error) {
	if err := g.enter(OpInsertMenu); err != nil {
		return "", err
	}

	rec := menuRec{
		ID:           uuid.NewString(),
		RestaurantID: row.RestaurantID,
		Name:         row.Name.Clone(),
		Description:  row.Description.Clone(),
		CreatedAt:    g.nextCreatedAt(),
	}
	g.menus.Store(rec.ID, rec)
	return rec.ID, nil
}

// UpdateMenu implements gateway.Menus.
func (g *MemoryGateway) UpdateMenu(ctx context.Context, menuID string, patch gateway.MenuRowPatch) error {
	if err := g.enter(OpUpdateMenu); err != nil {
		return err
	}

	rec, ok := g.menus.Load(menuID)
	if !ok {
		return dining.E(dining.KindNotFound, "menu not found")
	}

	if patch.Name != nil {
		if rec.Name == nil {
			rec.Name = dining.LocalizedText{}
		}
		rec.Name[patch.Lang] = *patch.Name
	}
	if patch.Description != nil {
		if rec.Description == nil {
			rec.Description = dining.LocalizedText{}
		}
		rec.Description[patch.Lang] = *patch.Description
	}
	g.menus.Store(menuID, rec)
	return nil
}

// DeleteMenu implements gateway.Menus.
func (g *MemoryGateway) DeleteMenu(ctx context.Context, menuID string) error {
	if err := g.enter(OpDeleteMenu); err != nil {
		return err
	}
	g.menus.Delete(menuID)
	return nil
}

// InsertDishes implements gateway.Menus.
func (g *MemoryGateway) InsertDishes(ctx context.Context, rows []gateway.DishRow) error {
	if err := g.enter(OpInsertDishes); err != nil {
		return err
	}

	for _, row := range rows {
		d := dining.Dish{
			ID:          uuid.NewString(),
			MenuID:      row.MenuID,
			Name:        row.Name.Clone(),
			Description: row.Description.Clone(),
			PriceCents:  row.PriceCents,
			Position:    row.Position,
		}
		g.dishes.Store(d.ID, d)
	}
	return nil
}

// DeleteDishes implements gateway.Menus.
func (g *MemoryGateway) DeleteDishes(ctx context.Context, menuID string) error {
	if err := g.enter(OpDeleteDishes); err != nil {
		return err
	}

	var ids []string
	g.dishes.Range(func(id string, d dining.Dish) bool {
		if d.MenuID == menuID {
			ids = append(ids, id)
		}
		return true
	})
	for _, id := range ids {
		g.dishes.Delete(id)
	}
	return nil
}

// ListCuisines implements gateway.Cuisines.
func (g *MemoryGateway) ListCuisines(ctx context.Context) ([]dining.Cuisine, error) {
	if err := g.enter(OpListCuisines); err != nil {
		return nil, err
	}

	var rows []dining.Cuisine
	g.cuisines.Range(func(_ string, c dining.Cuisine) bool {
		rows = append(rows, c)
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].Slug < rows[j].Slug })
	return rows, nil
}

// SearchAddresses implements gateway.Addresses.
func (g *MemoryGateway) SearchAddresses(ctx context.Context, search dining.AddressSearch) ([]dining.Address, error) {
	if err := g.enter(OpSearchAddresses); err != nil {
		return nil, err
	}

	g.mu.Lock()
	down := g.rpcDown
	g.mu.Unlock()
	if down {
		return nil, gateway.ErrRPCUnavailable
	}

	rows, err := g.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	return gateway.FilterAddressesNear(rows, search), nil
}

// ListAddresses implements gateway.Addresses.
func (g *MemoryGateway) ListAddresses(ctx context.Context) ([]dining.Address, error) {
	if err := g.enter(OpListAddresses); err != nil {
		return nil, err
	}

	var rows []dining.Address
	g.addresses.Range(func(_ string, a dining.Address) bool {
		rows = append(rows, a)
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows, nil
}

// CurrentUser implements gateway.Auth.
func (g *MemoryGateway) CurrentUser(ctx context.Context) (dining.User, error) {
	if err := g.enter(OpCurrentUser); err != nil {
		return dining.User{}, err
	}

	g.mu.Lock()
	user := g.user
	g.mu.Unlock()

	if user.ID == "" {
		return dining.User{}, dining.E(dining.KindNotAuthenticated, "no session user")
	}
	return user, nil
}
