package jwt

import (
	"errors"
	"fmt"
)

// Sentinel errors returned while creating or verifying tokens. Use
// errors.Is to test for them.
var (
	ErrNoClaimSet         = errors.New("cannot create token with empty claims set")
	ErrTokenExpired       = errors.New("token is expired")
	ErrTokenNotYetValid   = errors.New("token is not valid yet")
	ErrIssuerNotAllowed   = errors.New("issuer not allowed")
	ErrAudienceNotAllowed = errors.New("audience not allowed")
)

// ErrSigningFailed wraps the reason New could not sign a token.
type ErrSigningFailed struct {
	Inner error
}

func (e *ErrSigningFailed) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Inner)
}

func (e *ErrSigningFailed) Unwrap() error { return e.Inner }

func NewSigningError(inner error) *ErrSigningFailed {
	return &ErrSigningFailed{Inner: inner}
}

// ErrInvalidType reports a header or claim holding a value of the wrong
// type, such as a "typ" other than JWT or a fractional "exp".
type ErrInvalidType struct {
	Inner error
}

func (e *ErrInvalidType) Error() string {
	return fmt.Sprintf("invalid type: %v", e.Inner)
}

func (e *ErrInvalidType) Unwrap() error { return e.Inner }

func NewInvalidTypeError(inner error) *ErrInvalidType {
	return &ErrInvalidType{Inner: inner}
}
