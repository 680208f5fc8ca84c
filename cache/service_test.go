package cache

import (
	"context"
	"errors"
	"testing"
)

// mockCacheService returns canned values for testing the generic wrappers.
type mockCacheService struct {
	result    any
	err       error
	lookupOK  bool
	lookupVal any
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	return m.result, m.err
}

func (m *mockCacheService) Lookup(ctx context.Context, key string) (any, bool) {
	return m.lookupVal, m.lookupOK
}

func (m *mockCacheService) Store(ctx context.Context, key string, value any) {}

func (m *mockCacheService) Delete(ctx context.Context, key string) error { return nil }

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error { return nil }

func TestGetOrFetch_ValidResult(t *testing.T) {
	mock := &mockCacheService{result: "test-value"}

	result, err := GetOrFetch[string](context.Background(), mock, "test-key", func(ctx context.Context) (string, error) {
		return "test-value", nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != "test-value" {
		t.Errorf("expected 'test-value' but got: %q", result)
	}
}

func TestGetOrFetch_NilInterfaceNoPanic(t *testing.T) {
	// A nil interface{} result must map to the zero value, not panic on the
	// type assertion.
	mock := &mockCacheService{result: nil}

	type someInterface interface{ DoSomething() string }

	result, err := GetOrFetch[someInterface](context.Background(), mock, "test-key", func(ctx context.Context) (someInterface, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_TypeAssertionFailure(t *testing.T) {
	mock := &mockCacheService{result: "wrong-type"}

	result, err := GetOrFetch[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 42, nil
	})

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}
	if result != 0 {
		t.Errorf("expected zero value (0) but got: %v", result)
	}
}

func TestGetOrFetch_ErrorPassthrough(t *testing.T) {
	wantErr := errors.New("fetch failed")
	mock := &mockCacheService{err: wantErr}

	_, err := GetOrFetch[string](context.Background(), mock, "test-key", func(ctx context.Context) (string, error) {
		return "", nil
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected fetch error to pass through, got: %v", err)
	}
}

func TestLookup(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		mock := &mockCacheService{lookupOK: true, lookupVal: []int{1, 2, 3}}

		got, ok := Lookup[[]int](context.Background(), mock, "k")
		if !ok {
			t.Fatal("expected a hit")
		}
		if len(got) != 3 {
			t.Errorf("unexpected value: %v", got)
		}
	})

	t.Run("miss", func(t *testing.T) {
		mock := &mockCacheService{}

		if _, ok := Lookup[[]int](context.Background(), mock, "k"); ok {
			t.Error("expected a miss")
		}
	})

	t.Run("type mismatch is a miss", func(t *testing.T) {
		mock := &mockCacheService{lookupOK: true, lookupVal: "not-a-slice"}

		if _, ok := Lookup[[]int](context.Background(), mock, "k"); ok {
			t.Error("expected a type mismatch to report a miss")
		}
	})
}
