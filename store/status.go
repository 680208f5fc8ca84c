package store

import (
	"sync"
	"time"
)

// Status is a point-in-time snapshot of a store's operational state, shaped
// for screens that render spinners, error banners, and back-off notices.
type Status struct {
	Loading          bool
	Err              error
	LastErrorAt      time.Time
	RateLimitedUntil time.Time
}

// RateLimited reports whether a back-off window is in effect in this
// snapshot.
func (s Status) RateLimited() bool {
	return !s.RateLimitedUntil.IsZero()
}

// state is the mutable status shared by a store's operations. All access goes
// through its methods; the zero value is ready to use.
type state struct {
	mu               sync.Mutex
	loading          int
	err              error
	lastErrorAt      time.Time
	rateLimitedUntil time.Time
}

func (s *state) beginLoad() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *state) endLoad() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func (s *state) recordError(err error, at time.Time) {
	s.mu.Lock()
	s.err = err
	s.lastErrorAt = at
	s.mu.Unlock()
}

func (s *state) clearError() {
	s.mu.Lock()
	s.err = nil
	s.lastErrorAt = time.Time{}
	s.mu.Unlock()
}

func (s *state) rateLimitUntil(t time.Time) {
	s.mu.Lock()
	s.rateLimitedUntil = t
	s.mu.Unlock()
}

// limited reports whether the back-off window is still in effect at now. An
// elapsed window is cleared here, on the read path, rather than by a timer.
func (s *state) limited(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rateLimitedUntil.IsZero() {
		return false
	}
	if !now.Before(s.rateLimitedUntil) {
		s.rateLimitedUntil = time.Time{}
		return false
	}
	return true
}

func (s *state) snapshot(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rateLimitedUntil.IsZero() && !now.Before(s.rateLimitedUntil) {
		s.rateLimitedUntil = time.Time{}
	}
	return Status{
		Loading:          s.loading > 0,
		Err:              s.err,
		LastErrorAt:      s.lastErrorAt,
		RateLimitedUntil: s.rateLimitedUntil,
	}
}

func (s *state) reset() {
	s.mu.Lock()
	s.err = nil
	s.lastErrorAt = time.Time{}
	s.rateLimitedUntil = time.Time{}
	s.mu.Unlock()
}
