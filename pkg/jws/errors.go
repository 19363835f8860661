package jws

import (
	"errors"
	"fmt"
)

var (
	ErrNoPrivateKey  = errors.New("no private key")
	ErrNoPublicKey   = errors.New("no public key")
	ErrKeyIDMismatch = errors.New("key id does not match")
)

// SigningError is returned when a JWS cannot be produced.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("jws signing failed: %s", e.Reason)
	}
	return fmt.Sprintf("jws signing failed: %s: %v", e.Reason, e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// SignatureVerificationError is returned for every way a JWS can fail
// verification: malformed structure, disallowed algorithm, or a signature
// that does not match the key.
type SignatureVerificationError struct {
	Reason string
	Err    error
}

func (e *SignatureVerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("jws verification failed: %s", e.Reason)
	}
	return fmt.Sprintf("jws verification failed: %s: %v", e.Reason, e.Err)
}

func (e *SignatureVerificationError) Unwrap() error {
	return e.Err
}

func newVerificationError(reason string, err error) *SignatureVerificationError {
	return &SignatureVerificationError{Reason: reason, Err: err}
}
