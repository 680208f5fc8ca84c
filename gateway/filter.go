package gateway

import "github.com/goliatone/go-dining-store/dining"

// FilterRestaurantsNear applies the query's geo constraint client-side. The
// table endpoints cannot evaluate distance, so every implementation runs the
// fetched page through the same haversine filter.
func FilterRestaurantsNear(rows []dining.Restaurant, q dining.RestaurantQuery) []dining.Restaurant {
	if q.Near == nil || q.RadiusKM <= 0 {
		return rows
	}

	out := make([]dining.Restaurant, 0, len(rows))
	for _, r := range rows {
		if dining.WithinKM(*q.Near, r.Location, q.RadiusKM) {
			out = append(out, r)
		}
	}
	return out
}

// FilterAddressesNear is the client-side fallback for the geo-radius RPC: it
// keeps addresses within the search radius whose label contains the query.
func FilterAddressesNear(rows []dining.Address, search dining.AddressSearch) []dining.Address {
	out := make([]dining.Address, 0, len(rows))
	for _, a := range rows {
		if !dining.WithinKM(search.Center, a.Location, search.RadiusKM) {
			continue
		}
		if search.Query != "" && !containsFold(a.Label, search.Query) {
			continue
		}
		out = append(out, a)
	}
	return out
}
