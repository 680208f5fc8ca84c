package postgrest

import (
	"time"

	"github.com/goliatone/go-dining-store/dining"
)

// Wire rows mirror the backend's column layout (flat lat/lng columns, jsonb
// localized text) and convert to the domain shapes at the boundary.

type restaurantRow struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Name        string               `json:"name"`
	Description dining.LocalizedText `json:"description"`
	CuisineID   string               `json:"cuisine_id"`
	Address     string               `json:"address"`
	Lat         float64              `json:"lat"`
	Lng         float64              `json:"lng"`
	Rating      float64              `json:"rating"`
	PriceLevel  int                  `json:"price_level"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (r restaurantRow) toDomain() dining.Restaurant {
	return dining.Restaurant{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		CuisineID:   r.CuisineID,
		Address:     r.Address,
		Location:    dining.GeoPoint{Lat: r.Lat, Lng: r.Lng},
		Rating:      r.Rating,
		PriceLevel:  r.PriceLevel,
		CreatedAt:   r.CreatedAt,
	}
}

type menuRow struct {
	ID           string               `json:"id"`
	RestaurantID string               `json:"restaurant_id"`
	Name         dining.LocalizedText `json:"name"`
	Description  dining.LocalizedText `json:"description"`
	Dishes       []dishRow            `json:"dishes"`
	CreatedAt    time.Time            `json:"created_at"`
}

func (r menuRow) toDomain() dining.Menu {
	dishes := make([]dining.Dish, 0, len(r.Dishes))
	for _, d := range r.Dishes {
		dishes = append(dishes, d.toDomain())
	}
	return dining.Menu{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		Name:         r.Name,
		Description:  r.Description,
		Dishes:       dishes,
		CreatedAt:    r.CreatedAt,
	}
}

type dishRow struct {
	ID          string               `json:"id"`
	MenuID      string               `json:"menu_id"`
	Name        dining.LocalizedText `json:"name"`
	Description dining.LocalizedText `json:"description"`
	PriceCents  int                  `json:"price_cents"`
	Position    int                  `json:"position"`
}

func (r dishRow) toDomain() dining.Dish {
	return dining.Dish{
		ID:          r.ID,
		MenuID:      r.MenuID,
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Position:    r.Position,
	}
}

type cuisineRow struct {
	ID    string               `json:"id"`
	Slug  string               `json:"slug"`
	Label dining.LocalizedText `json:"label"`
}

func (r cuisineRow) toDomain() dining.Cuisine {
	return dining.Cuisine{ID: r.ID, Slug: r.Slug, Label: r.Label}
}

type addressRow struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

func (r addressRow) toDomain() dining.Address {
	return dining.Address{
		ID:       r.ID,
		Label:    r.Label,
		Location: dining.GeoPoint{Lat: r.Lat, Lng: r.Lng},
	}
}

type userRow struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Language string `json:"language"`
	} `json:"user_metadata"`
}

func (r userRow) toDomain() dining.User {
	return dining.User{ID: r.ID, Email: r.Email, Language: r.Metadata.Language}
}
