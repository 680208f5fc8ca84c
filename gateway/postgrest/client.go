// Package postgrest implements the gateway boundary against a hosted
// PostgREST-style backend (Supabase-shaped): row queries and writes under
// /rest/v1, RPC functions under /rest/v1/rpc, and the auth identity endpoint
// under /auth/v1. Row-level security on the backend scopes every query to the
// bearer token's user.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bool64/ctxd"
	"golang.org/x/oauth2"

	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// header values PostgREST understands.
const (
	preferReturn = "return=representation"
	acceptObject = "application/vnd.pgrst.object+json"
)

// Client talks to the hosted backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	tokens  oauth2.TokenSource
	httpc   *http.Client
	log     ctxd.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger sets the contextual logger.
func WithLogger(log ctxd.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client. apiKey is the project's anon key sent on every request;
// tokens yields the signed-in user's bearer token (use
// oauth2.StaticTokenSource for a fixed session token).
func New(baseURL, apiKey string, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		tokens:  tokens,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     ctxd.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ gateway.Gateway = (*Client)(nil)

// ListRestaurants implements gateway.Restaurants.
func (c *Client) ListRestaurants(ctx context.Context, q dining.RestaurantQuery) ([]dining.Restaurant, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "created_at.desc")
	params.Set("limit", fmt.Sprintf("%d", q.Limit))
	params.Set("offset", fmt.Sprintf("%d", q.Offset()))
	if q.CuisineID != "" {
		params.Set("cuisine_id", "eq."+q.CuisineID)
	}
	if q.Search != "" {
		params.Set("name", "ilike.*"+q.Search+"*")
	}

	var rows []restaurantRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/restaurants", params, nil, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]dining.Restaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return gateway.FilterRestaurantsNear(out, q), nil
}

// GetRestaurant implements gateway.Restaurants.
func (c *Client) GetRestaurant(ctx context.Context, id string) (dining.Restaurant, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id)

	var row restaurantRow
	headers := map[string]string{"Accept": acceptObject}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/restaurants", params, headers, nil, &row); err != nil {
		return dining.Restaurant{}, err
	}
	return row.toDomain(), nil
}

// ListMenus implements gateway.Menus. Dishes are composed server-side via an
// embedded resource select, so the returned shape matches a fresh read.
func (c *Client) ListMenus(ctx context.Context, restaurantID string) ([]dining.Menu, error) {
	params := url.Values{}
	params.Set("select", "*,dishes(*)")
	params.Set("restaurant_id", "eq."+restaurantID)
	params.Set("order", "created_at.asc")

	var rows []menuRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/menus", params, nil, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]dining.Menu, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// GetMenu implements gateway.Menus.
func (c *Client) GetMenu(ctx context.Context, menuID string) (dining.Menu, error) {
	params := url.Values{}
	params.Set("select", "*,dishes(*)")
	params.Set("id", "eq."+menuID)

	var row menuRow
	headers := map[string]string{"Accept": acceptObject}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/menus", params, headers, nil, &row); err != nil {
		return dining.Menu{}, err
	}
	return row.toDomain(), nil
}

// InsertMenu implements gateway.Menus and returns the new row id.
func (c *Client) InsertMenu(ctx context.Context, row gateway.MenuRow) (string, error) {
	body := map[string]any{
		"restaurant_id": row.RestaurantID,
		"name":          row.Name,
		"description":   row.Description,
	}

	var created menuRow
	headers := map[string]string{"Accept": acceptObject, "Prefer": preferReturn}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/menus", nil, headers, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateMenu implements gateway.Menus. Localized text lives in jsonb columns
// the PATCH endpoint replaces wholesale, so the patch is applied
// read-modify-write under the acting language.
func (c *Client) UpdateMenu(ctx context.Context, menuID string, patch gateway.MenuRowPatch) error {
	current, err := c.GetMenu(ctx, menuID)
	if err != nil {
		return err
	}

	body := map[string]any{}
	if patch.Name != nil {
		name := current.Name.Clone()
		if name == nil {
			name = dining.LocalizedText{}
		}
		name[patch.Lang] = *patch.Name
		body["name"] = name
	}
	if patch.Description != nil {
		desc := current.Description.Clone()
		if desc == nil {
			desc = dining.LocalizedText{}
		}
		desc[patch.Lang] = *patch.Description
		body["description"] = desc
	}
	if len(body) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("id", "eq."+menuID)
	return c.do(ctx, http.MethodPatch, "/rest/v1/menus", params, nil, body, nil)
}

// DeleteMenu implements gateway.Menus.
func (c *Client) DeleteMenu(ctx context.Context, menuID string) error {
	params := url.Values{}
	params.Set("id", "eq."+menuID)
	return c.do(ctx, http.MethodDelete, "/rest/v1/menus", params, nil, nil, nil)
}

// InsertDishes implements gateway.Menus.
func (c *Client) InsertDishes(ctx context.Context, rows []gateway.DishRow) error {
	if len(rows) == 0 {
		return nil
	}

	body := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		body = append(body, map[string]any{
			"menu_id":     row.MenuID,
			"name":        row.Name,
			"description": row.Description,
			"price_cents": row.PriceCents,
			"position":    row.Position,
		})
	}
	return c.do(ctx, http.MethodPost, "/rest/v1/dishes", nil, nil, body, nil)
}

// DeleteDishes implements gateway.Menus.
func (c *Client) DeleteDishes(ctx context.Context, menuID string) error {
	params := url.Values{}
	params.Set("menu_id", "eq."+menuID)
	return c.do(ctx, http.MethodDelete, "/rest/v1/dishes", params, nil, nil, nil)
}

// ListCuisines implements gateway.Cuisines.
func (c *Client) ListCuisines(ctx context.Context) ([]dining.Cuisine, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "slug.asc")

	var rows []cuisineRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/cuisines", params, nil, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]dining.Cuisine, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// SearchAddresses implements gateway.Addresses via the geo-radius RPC. A
// missing function maps to gateway.ErrRPCUnavailable so the store can fall
// back to client-side filtering.
func (c *Client) SearchAddresses(ctx context.Context, search dining.AddressSearch) ([]dining.Address, error) {
	body := map[string]any{
		"query":     search.Query,
		"lat":       search.Center.Lat,
		"lng":       search.Center.Lng,
		"radius_km": search.RadiusKM,
	}

	var rows []addressRow
	err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/search_addresses_within_radius", nil, nil, body, &rows)
	if err != nil {
		if dining.IsNotFound(err) {
			c.log.Warn(ctx, "address search rpc missing, caller should fall back")
			return nil, gateway.ErrRPCUnavailable
		}
		return nil, err
	}

	out := make([]dining.Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListAddresses implements gateway.Addresses.
func (c *Client) ListAddresses(ctx context.Context) ([]dining.Address, error) {
	params := url.Values{}
	params.Set("select", "*")

	var rows []addressRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/addresses", params, nil, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]dining.Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// CurrentUser implements gateway.Auth.
func (c *Client) CurrentUser(ctx context.Context) (dining.User, error) {
	var row userRow
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, nil, &row); err != nil {
		switch dining.KindOf(err) {
		case dining.KindNotAuthenticated, dining.KindRateLimited, dining.KindGateway:
			return dining.User{}, err
		default:
			// 403s and missing-user responses from the auth endpoint both
			// mean there is no usable session.
			return dining.User{}, dining.Wrap(dining.KindNotAuthenticated, "could not resolve current user", err)
		}
	}
	return row.toDomain(), nil
}

// do performs one HTTP round trip: builds the URL, stamps auth headers,
// executes, and maps non-2xx statuses to the dining error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, headers map[string]string, body, out any) error {
	urlStr, err := c.buildURL(path, params)
	if err != nil {
		return dining.Wrap(dining.KindGateway, "invalid request target", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return dining.Wrap(dining.KindGateway, "could not encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
	if err != nil {
		return dining.Wrap(dining.KindGateway, "could not build request", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return dining.Wrap(dining.KindNotAuthenticated, "no session token", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return dining.Wrap(dining.KindGateway, "gateway request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return dining.Wrap(dining.KindGateway, "could not read gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug(ctx, "gateway error response",
			"method", method, "path", path, "status", resp.StatusCode)
		return mapStatus(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return dining.Wrap(dining.KindGateway, "could not decode gateway response", err)
	}
	return nil
}

func (c *Client) buildURL(path string, params url.Values) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	full := base.ResolveReference(ref)
	if params != nil {
		full.RawQuery = params.Encode()
	}
	return full.String(), nil
}

// pgrstError is the error body PostgREST and the auth endpoint return.
type pgrstError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func (e pgrstError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Msg
}

// pgrstNoRows is the PostgREST code for "requested a single object, got zero
// rows".
const pgrstNoRows = "PGRST116"

func mapStatus(status int, body []byte) error {
	var payload pgrstError
	_ = json.Unmarshal(body, &payload)

	msg := payload.text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return dining.E(dining.KindNotAuthenticated, msg)
	case status == http.StatusForbidden:
		return dining.E(dining.KindNotAuthorized, msg)
	case status == http.StatusNotFound:
		return dining.E(dining.KindNotFound, msg)
	case status == http.StatusNotAcceptable && payload.Code == pgrstNoRows:
		return dining.E(dining.KindNotFound, "no rows found")
	case status == http.StatusNotAcceptable:
		return dining.E(dining.KindNotFound, msg)
	case status == http.StatusTooManyRequests:
		return dining.E(dining.KindRateLimited, msg)
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return dining.E(dining.KindValidation, msg)
	default:
		return dining.Ef(dining.KindGateway, "gateway returned status %d: %s", status, msg)
	}
}
