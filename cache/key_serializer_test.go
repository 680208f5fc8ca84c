package cache

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultKeySerializer_NoArgs(t *testing.T) {
	s := NewDefaultKeySerializer()

	if got := s.SerializeKey("Cuisines.List"); got != "Cuisines.List" {
		t.Errorf("SerializeKey() = %q", got)
	}
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	s := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"string id", []any{"rest-42"}, "Method::rest-42"},
		{"int", []any{7}, "Method::7"},
		{"bool", []any{true}, "Method::true"},
		{"float", []any{1.5}, "Method::1.5"},
		{"multiple args", []any{"a", 2}, "Method::a::2"},
		{"nil", []any{nil}, "Method::nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SerializeKey("Method", tt.args...); got != tt.want {
				t.Errorf("SerializeKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Structs(t *testing.T) {
	s := NewDefaultKeySerializer()

	type query struct {
		Page   int
		Search string
		hidden string
	}

	got := s.SerializeKey("Restaurants.List", query{Page: 2, Search: "ramen", hidden: "x"})

	if !strings.Contains(got, "Page:2") || !strings.Contains(got, "Search:ramen") {
		t.Errorf("expected exported fields in key, got %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("unexported field leaked into key: %q", got)
	}
}

func TestDefaultKeySerializer_PointersAndSlices(t *testing.T) {
	s := NewDefaultKeySerializer()

	n := 5
	if got := s.SerializeKey("M", &n); got != "M::5" {
		t.Errorf("pointer should dereference, got %q", got)
	}

	var nilPtr *int
	if got := s.SerializeKey("M", nilPtr); got != "M::nil" {
		t.Errorf("nil pointer = %q", got)
	}

	got := s.SerializeKey("M", []string{"a", "b"})
	if got != "M::slice[2]:{a,b}" {
		t.Errorf("slice = %q", got)
	}

	var nilSlice []string
	if got := s.SerializeKey("M", nilSlice); got != "M::slice:nil" {
		t.Errorf("nil slice = %q", got)
	}
}

func TestDefaultKeySerializer_MapDeterminism(t *testing.T) {
	s := NewDefaultKeySerializer()

	m := map[string]int{"a": 1, "b": 2, "c": 3}
	first := s.SerializeKey("M", m)
	for i := 0; i < 50; i++ {
		if got := s.SerializeKey("M", m); got != first {
			t.Fatalf("map key not deterministic: %q vs %q", got, first)
		}
	}
}

func TestDefaultKeySerializer_Time(t *testing.T) {
	s := NewDefaultKeySerializer()

	// Two time values representing the same instant, one with a monotonic
	// clock reading, must serialize identically.
	now := time.Now()
	stripped := now.Round(0)

	if s.SerializeKey("M", now) != s.SerializeKey("M", stripped) {
		t.Error("monotonic clock reading leaked into key")
	}
}

func TestDefaultKeySerializer_Stability(t *testing.T) {
	s := NewDefaultKeySerializer()

	type query struct {
		Page  int
		Limit int
		Tags  []string
	}

	q := query{Page: 1, Limit: 20, Tags: []string{"vegan"}}
	first := s.SerializeKey("Restaurants.List", q)
	for i := 0; i < 20; i++ {
		if got := s.SerializeKey("Restaurants.List", q); got != first {
			t.Fatalf("key not stable across calls: %q vs %q", got, first)
		}
	}
}
