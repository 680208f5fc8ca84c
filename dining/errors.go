package dining

import (
	"errors"
	"fmt"
)

// Kind identifies one of the closed set of error conditions a store action can
// report. Call sites branch on Kind; Message is for humans.
type Kind string

const (
	// KindNotAuthenticated means no signed-in user is available for an
	// operation that requires one.
	KindNotAuthenticated Kind = "not_authenticated"

	// KindNotFound means the requested entity does not exist (mapped from the
	// gateway's "no rows" condition).
	KindNotFound Kind = "not_found"

	// KindNotAuthorized means the acting user does not own the parent entity
	// of a write.
	KindNotAuthorized Kind = "not_authorized"

	// KindRateLimited means the gateway reported throttling, or a store gate
	// refused a fetch while its cooldown window is open.
	KindRateLimited Kind = "rate_limited"

	// KindValidation means caller-supplied parameters failed validation.
	KindValidation Kind = "validation"

	// KindGateway covers every other gateway failure; the underlying message
	// is passed through.
	KindGateway Kind = "gateway_error"
)

// Error is the structured error every store action and gateway implementation
// reports. It wraps the underlying cause when one exists.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// E builds a new Error with the given kind and message.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef builds a new Error with a formatted message.
func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around cause. When cause is already an *Error its kind
// is preserved unless kind is non-empty.
func Wrap(kind Kind, message string, cause error) *Error {
	if kind == "" {
		kind = KindOf(cause)
	}
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// Is treats two Errors with the same Kind as equivalent, so sentinel-style
// comparisons like errors.Is(err, dining.E(dining.KindNotFound, "")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf reports the Kind of err, unwrapping as needed. Unknown errors map to
// KindGateway; nil maps to the empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGateway
}

// IsNotFound reports whether err carries KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsRateLimited reports whether err carries KindRateLimited.
func IsRateLimited(err error) bool { return KindOf(err) == KindRateLimited }

// AsGatewayError coerces an arbitrary gateway failure into an *Error. Typed
// errors pass through untouched; everything else becomes KindGateway with the
// message preserved.
func AsGatewayError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindGateway, Message: err.Error(), cause: err}
}
