package store

import (
	"context"

	"github.com/goliatone/go-dining-store/cache"
	"github.com/goliatone/go-dining-store/dining"
	"github.com/goliatone/go-dining-store/gateway"
)

// SessionStore caches the authenticated user snapshot. Other stores read it
// at call time for ownership checks and for the language writes are stamped
// under.
type SessionStore struct {
	base
	auth gateway.Auth
}

// NewSessionStore builds a session store over the auth gateway slice.
func NewSessionStore(auth gateway.Auth, svc cache.CacheService, opts ...Option) *SessionStore {
	return &SessionStore{
		base: newBase("session", svc, opts),
		auth: auth,
	}
}

// Current returns the signed-in user, served from cache while fresh. Without
// a session the error kind is NotAuthenticated.
func (s *SessionStore) Current(ctx context.Context) (dining.User, error) {
	key := s.keys.SerializeKey("Current")
	s.trackKey(key)

	if s.state.limited(s.now()) {
		if cached, ok := cache.Lookup[dining.User](ctx, s.cache, key); ok {
			return cached, nil
		}
		return dining.User{}, dining.E(dining.KindRateLimited, "session fetch suppressed while rate limited")
	}

	s.state.beginLoad()
	defer s.state.endLoad()

	user, err := cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (dining.User, error) {
		return s.auth.CurrentUser(ctx)
	})
	if err != nil {
		return dining.User{}, s.fault(ctx, err)
	}
	s.state.clearError()
	return user, nil
}

// Language resolves the acting user's language, falling back to the default
// when there is no session or the user set none.
func (s *SessionStore) Language(ctx context.Context) string {
	user, err := s.Current(ctx)
	if err != nil {
		return dining.DefaultLanguage
	}
	return user.LanguageOrDefault()
}

// ClearCache drops the cached session. Call it on logout before clearing the
// other stores.
func (s *SessionStore) ClearCache(ctx context.Context) {
	s.clearKeys(ctx, "")
	s.state.reset()
}

// ClearError clears the sticky error from the status snapshot.
func (s *SessionStore) ClearError() {
	s.state.clearError()
}

// Status reports the store's current operational state.
func (s *SessionStore) Status() Status {
	return s.state.snapshot(s.now())
}
