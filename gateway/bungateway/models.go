package bungateway

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-dining-store/dining"
)

// ltext persists localized text as a JSON column so the same schema works on
// SQLite and Postgres.
type ltext dining.LocalizedText

func (t ltext) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (t *ltext) Scan(src any) error {
	if src == nil {
		*t = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("bungateway: cannot scan %T into localized text", src)
	}

	if len(data) == 0 {
		*t = nil
		return nil
	}
	return json.Unmarshal(data, t)
}

type restaurantRow struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	ID          string    `bun:"id,pk"`
	OwnerID     string    `bun:"owner_id,notnull"`
	Name        string    `bun:"name,notnull"`
	Description ltext     `bun:"description"`
	CuisineID   string    `bun:"cuisine_id"`
	Address     string    `bun:"address"`
	Lat         float64   `bun:"lat"`
	Lng         float64   `bun:"lng"`
	Rating      float64   `bun:"rating"`
	PriceLevel  int       `bun:"price_level"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (r restaurantRow) toDomain() dining.Restaurant {
	return dining.Restaurant{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: dining.LocalizedText(r.Description),
		CuisineID:   r.CuisineID,
		Address:     r.Address,
		Location:    dining.GeoPoint{Lat: r.Lat, Lng: r.Lng},
		Rating:      r.Rating,
		PriceLevel:  r.PriceLevel,
		CreatedAt:   r.CreatedAt,
	}
}

func fromRestaurant(r dining.Restaurant) restaurantRow {
	return restaurantRow{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: ltext(r.Description),
		CuisineID:   r.CuisineID,
		Address:     r.Address,
		Lat:         r.Location.Lat,
		Lng:         r.Location.Lng,
		Rating:      r.Rating,
		PriceLevel:  r.PriceLevel,
		CreatedAt:   r.CreatedAt,
	}
}

type menuRow struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID           string    `bun:"id,pk"`
	RestaurantID string    `bun:"restaurant_id,notnull"`
	Name         ltext     `bun:"name"`
	Description  ltext     `bun:"description"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (r menuRow) toDomain(dishes []dining.Dish) dining.Menu {
	if dishes == nil {
		dishes = []dining.Dish{}
	}
	return dining.Menu{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		Name:         dining.LocalizedText(r.Name),
		Description:  dining.LocalizedText(r.Description),
		Dishes:       dishes,
		CreatedAt:    r.CreatedAt,
	}
}

type dishRow struct {
	bun.BaseModel `bun:"table:dishes,alias:d"`

	ID          string `bun:"id,pk"`
	MenuID      string `bun:"menu_id,notnull"`
	Name        ltext  `bun:"name"`
	Description ltext  `bun:"description"`
	PriceCents  int    `bun:"price_cents"`
	Position    int    `bun:"position"`
}

func (r dishRow) toDomain() dining.Dish {
	return dining.Dish{
		ID:          r.ID,
		MenuID:      r.MenuID,
		Name:        dining.LocalizedText(r.Name),
		Description: dining.LocalizedText(r.Description),
		PriceCents:  r.PriceCents,
		Position:    r.Position,
	}
}

type cuisineRow struct {
	bun.BaseModel `bun:"table:cuisines,alias:c"`

	ID    string `bun:"id,pk"`
	Slug  string `bun:"slug,notnull"`
	Label ltext  `bun:"label"`
}

func (r cuisineRow) toDomain() dining.Cuisine {
	return dining.Cuisine{ID: r.ID, Slug: r.Slug, Label: dining.LocalizedText(r.Label)}
}

type addressRow struct {
	bun.BaseModel `bun:"table:addresses,alias:a"`

	ID    string  `bun:"id,pk"`
	Label string  `bun:"label,notnull"`
	Lat   float64 `bun:"lat"`
	Lng   float64 `bun:"lng"`
}

func (r addressRow) toDomain() dining.Address {
	return dining.Address{ID: r.ID, Label: r.Label, Location: dining.GeoPoint{Lat: r.Lat, Lng: r.Lng}}
}
