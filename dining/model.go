package dining

import "time"

// DefaultLanguage is the fallback language tag used when the acting user has no
// language preference or a translation is missing.
const DefaultLanguage = "en"

// LocalizedText maps a language tag ("en", "es", ...) to a translation.
type LocalizedText map[string]string

// In returns the translation for lang, falling back to DefaultLanguage and then
// to any available translation. Returns "" only when the map is empty.
func (t LocalizedText) In(lang string) string {
	if s, ok := t[lang]; ok {
		return s
	}
	if s, ok := t[DefaultLanguage]; ok {
		return s
	}
	for _, s := range t {
		return s
	}
	return ""
}

// Clone returns a copy of the map so cached values can be handed out without
// sharing mutable state.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Restaurant is a venue row as served by the gateway.
type Restaurant struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Name        string        `json:"name"`
	Description LocalizedText `json:"description,omitempty"`
	CuisineID   string        `json:"cuisine_id,omitempty"`
	Address     string        `json:"address,omitempty"`
	Location    GeoPoint      `json:"location"`
	Rating      float64       `json:"rating"`
	PriceLevel  int           `json:"price_level"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Cuisine is a cuisine category row.
type Cuisine struct {
	ID    string        `json:"id"`
	Slug  string        `json:"slug"`
	Label LocalizedText `json:"label"`
}

// Menu is a menu row composed with its dishes, exactly the shape a fresh
// gateway read of the menu produces.
type Menu struct {
	ID           string        `json:"id"`
	RestaurantID string        `json:"restaurant_id"`
	Name         LocalizedText `json:"name"`
	Description  LocalizedText `json:"description,omitempty"`
	Dishes       []Dish        `json:"dishes"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Dish is a single line item belonging to a menu.
type Dish struct {
	ID          string        `json:"id"`
	MenuID      string        `json:"menu_id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description,omitempty"`
	PriceCents  int           `json:"price_cents"`
	Position    int           `json:"position"`
}

// Address is a saved address row, used by the geo-radius search.
type Address struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Location GeoPoint `json:"location"`
}

// User is the acting authenticated user as reported by the gateway's auth
// endpoint. Language drives localized-text stamping on writes.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Language string `json:"language"`
}

// LanguageOrDefault returns the user's language preference or DefaultLanguage.
func (u User) LanguageOrDefault() string {
	if u.Language == "" {
		return DefaultLanguage
	}
	return u.Language
}
