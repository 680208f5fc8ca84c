package dining

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"typed error", E(KindNotFound, "menu not found"), KindNotFound},
		{"wrapped typed error", fmt.Errorf("outer: %w", E(KindRateLimited, "slow down")), KindRateLimited},
		{"untyped error", errors.New("connection reset"), KindGateway},
		{"wrap preserves cause kind", Wrap("", "fetch failed", E(KindNotAuthorized, "nope")), KindNotAuthorized},
		{"wrap overrides kind", Wrap(KindValidation, "bad input", errors.New("boom")), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := Wrap(KindNotFound, "restaurant missing", errors.New("no rows"))

	if !errors.Is(err, E(KindNotFound, "")) {
		t.Error("expected errors.Is to match on kind")
	}
	if errors.Is(err, E(KindNotAuthorized, "")) {
		t.Error("did not expect a kind mismatch to match")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("tcp reset")
	err := Wrap(KindGateway, "gateway call failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable via errors.Is")
	}
	if err.Error() != "gateway call failed: tcp reset" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestAsGatewayError(t *testing.T) {
	if AsGatewayError(nil) != nil {
		t.Error("nil should pass through")
	}

	typed := E(KindRateLimited, "429")
	if got := AsGatewayError(typed); got != typed {
		t.Error("typed errors should pass through untouched")
	}

	plain := errors.New("dial timeout")
	got := AsGatewayError(plain)
	if got.Kind != KindGateway {
		t.Errorf("expected KindGateway, got %q", got.Kind)
	}
	if !errors.Is(got, plain) {
		t.Error("expected cause to be preserved")
	}
}
