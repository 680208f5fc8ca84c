// Package dining defines the domain model shared by the cache stores and the
// remote gateway implementations: restaurants, menus and their dishes, cuisines,
// addresses, the acting user, and the closed error taxonomy every store action
// reports through.
//
// # Error Taxonomy
//
// Store actions never surface raw gateway failures. Every error that crosses a
// store boundary is a *Error carrying one of the closed Kind values, so call
// sites branch on kind instead of matching message substrings:
//
//	menu, err := menus.CreateMenu(ctx, restaurantID, draft)
//	if dining.KindOf(err) == dining.KindNotAuthorized {
//		// show the ownership error state
//	}
//
// # Localized Text
//
// User-facing fields (menu names, dish names, cuisine labels) are stored as
// LocalizedText, a language-tag keyed map. Writes stamp the acting user's
// language; reads fall back to DefaultLanguage and then to any available
// translation.
package dining
