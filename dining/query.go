package dining

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Pagination defaults for list-style fetches.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// DefaultSearchRadiusKM bounds the geo-radius address search when the caller
// does not provide one.
const DefaultSearchRadiusKM = 5.0

// RestaurantQuery identifies a slice of the restaurant list. Its normalized
// form doubles as the cache key input, so two queries that mean the same thing
// must normalize identically.
type RestaurantQuery struct {
	Page      int
	Limit     int
	CuisineID string
	Search    string
	Near      *GeoPoint
	RadiusKM  float64
}

// Normalize fills pagination defaults and clamps the limit so equivalent
// queries produce identical cache keys.
func (q RestaurantQuery) Normalize() RestaurantQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Near != nil && q.RadiusKM <= 0 {
		q.RadiusKM = DefaultSearchRadiusKM
	}
	if q.Near == nil {
		q.RadiusKM = 0
	}
	return q
}

// Validate checks the query after normalization. A non-empty search term must
// be at least two characters; shorter terms would fan out to the whole table.
func (q RestaurantQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(1)),
		validation.Field(&q.Limit, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&q.Search, validation.RuneLength(2, 80)),
	)
}

// Offset converts page/limit into a row offset.
func (q RestaurantQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// AddressSearch describes a geo-radius address lookup.
type AddressSearch struct {
	Query    string
	Center   GeoPoint
	RadiusKM float64
}

// Normalize applies the default search radius.
func (s AddressSearch) Normalize() AddressSearch {
	if s.RadiusKM <= 0 {
		s.RadiusKM = DefaultSearchRadiusKM
	}
	return s
}

// Validate enforces the minimum query length the backend RPC expects.
func (s AddressSearch) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Query, validation.Required, validation.RuneLength(2, 80)),
	)
}

// MenuDraft is the caller-supplied payload for creating a menu together with
// its dishes. Text fields are single-language; the store stamps them into
// LocalizedText keyed by the acting user's language.
type MenuDraft struct {
	Name        string
	Description string
	Dishes      []DishDraft
}

// DishDraft is one line item of a MenuDraft.
type DishDraft struct {
	Name        string
	Description string
	PriceCents  int
}

// Validate checks the draft and every dish in it.
func (d MenuDraft) Validate() error {
	if err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.RuneLength(1, 120)),
		validation.Field(&d.Description, validation.RuneLength(0, 500)),
		validation.Field(&d.Dishes, validation.Required),
	); err != nil {
		return err
	}
	for _, dish := range d.Dishes {
		if err := dish.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single dish draft.
func (d DishDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.RuneLength(1, 120)),
		validation.Field(&d.PriceCents, validation.Min(0)),
	)
}

// MenuPatch is a partial update to a menu's text fields. Nil fields are left
// untouched. The store applies the patch under the acting user's language.
type MenuPatch struct {
	Name        *string
	Description *string
}

// Validate rejects an empty patch and over-long values.
func (p MenuPatch) Validate() error {
	if p.Name == nil && p.Description == nil {
		return validation.NewError("validation_empty_patch", "at least one field must be set")
	}
	if p.Name != nil {
		if err := validation.Validate(*p.Name, validation.Required, validation.RuneLength(1, 120)); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validation.Validate(*p.Description, validation.RuneLength(0, 500)); err != nil {
			return err
		}
	}
	return nil
}
