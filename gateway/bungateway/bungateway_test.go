package bungateway

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	gw := New(db, WithUser(dining.User{ID: "owner-1", Language: "en"}))
	if err := gw.CreateSchema(context.Background()); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	return gw
}

func TestGateway_RestaurantRoundTrip(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	seeded, err := gw.SeedRestaurant(ctx, dining.Restaurant{
		OwnerID:   "owner-1",
		Name:      "Casa Mia",
		CuisineID: "c-it",
		Location:  dining.GeoPoint{Lat: 40.4, Lng: -3.7},
	})
	if err != nil {
		t.Fatalf("SeedRestaurant: %v", err)
	}

	got, err := gw.GetRestaurant(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetRestaurant: %v", err)
	}
	if got.Name != "Casa Mia" || got.OwnerID != "owner-1" {
		t.Errorf("unexpected restaurant: %+v", got)
	}

	rows, err := gw.ListRestaurants(ctx, dining.RestaurantQuery{CuisineID: "c-it"}.Normalize())
	if err != nil {
		t.Fatalf("ListRestaurants: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(rows))
	}

	rows, err = gw.ListRestaurants(ctx, dining.RestaurantQuery{Search: "nothing"}.Normalize())
	if err != nil {
		t.Fatalf("ListRestaurants with search: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows for a non-matching search, got %d", len(rows))
	}
}

func TestGateway_GetRestaurant_NotFound(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.GetRestaurant(context.Background(), "missing")
	if !dining.IsNotFound(err) {
		t.Errorf("expected KindNotFound, got %v", err)
	}
}

func TestGateway_MenuLifecycle(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	rest, err := gw.SeedRestaurant(ctx, dining.Restaurant{OwnerID: "owner-1", Name: "Casa Mia"})
	if err != nil {
		t.Fatal(err)
	}

	menuID, err := gw.InsertMenu(ctx, gateway.MenuRow{
		RestaurantID: rest.ID,
		Name:         dining.LocalizedText{"en": "Lunch"},
	})
	if err != nil {
		t.Fatalf("InsertMenu: %v", err)
	}

	err = gw.InsertDishes(ctx, []gateway.DishRow{
		{MenuID: menuID, Name: dining.LocalizedText{"en": "Soup"}, PriceCents: 450, Position: 0},
		{MenuID: menuID, Name: dining.LocalizedText{"en": "Pasta"}, PriceCents: 1200, Position: 1},
	})
	if err != nil {
		t.Fatalf("InsertDishes: %v", err)
	}

	menu, err := gw.GetMenu(ctx, menuID)
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if len(menu.Dishes) != 2 {
		t.Fatalf("expected 2 dishes, got %d", len(menu.Dishes))
	}
	if menu.Dishes[0].Name.In("en") != "Soup" {
		t.Errorf("dish order wrong: %+v", menu.Dishes)
	}

	name := "Dinner"
	if err := gw.UpdateMenu(ctx, menuID, gateway.MenuRowPatch{Lang: "en", Name: &name}); err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	menu, err = gw.GetMenu(ctx, menuID)
	if err != nil {
		t.Fatal(err)
	}
	if menu.Name.In("en") != "Dinner" {
		t.Errorf("expected updated name, got %+v", menu.Name)
	}

	if err := gw.DeleteDishes(ctx, menuID); err != nil {
		t.Fatalf("DeleteDishes: %v", err)
	}
	if err := gw.DeleteMenu(ctx, menuID); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	if _, err := gw.GetMenu(ctx, menuID); !dining.IsNotFound(err) {
		t.Errorf("expected deleted menu to be not found, got %v", err)
	}
}

func TestGateway_SearchAddresses_AlwaysFallsBack(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	if _, err := gw.SeedAddress(ctx, dining.Address{Label: "Gran Via 1", Location: dining.GeoPoint{Lat: 40.42, Lng: -3.70}}); err != nil {
		t.Fatal(err)
	}

	_, err := gw.SearchAddresses(ctx, dining.AddressSearch{Query: "gran"}.Normalize())
	if !errors.Is(err, gateway.ErrRPCUnavailable) {
		t.Errorf("expected ErrRPCUnavailable, got %v", err)
	}

	rows, err := gw.ListAddresses(ctx)
	if err != nil {
		t.Fatalf("ListAddresses: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 address, got %d", len(rows))
	}
}

func TestGateway_CurrentUser(t *testing.T) {
	gw := newTestGateway(t)

	user, err := gw.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.ID != "owner-1" {
		t.Errorf("unexpected user: %+v", user)
	}

	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	anon := New(db)
	if _, err := anon.CurrentUser(context.Background()); dining.KindOf(err) != dining.KindNotAuthenticated {
		t.Errorf("expected not_authenticated, got %v", err)
	}
}
