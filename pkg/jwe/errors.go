package jwe

import (
	"errors"
	"fmt"
)

var (
	ErrNoPublicKey   = errors.New("no public key")
	ErrNoPrivateKey  = errors.New("no private key")
	ErrNilPayload    = errors.New("nil payload")
	ErrKeyIDMismatch = errors.New("key id does not match")
)

// EncryptionError is returned when a JWE cannot be produced. Op names the
// step that failed.
type EncryptionError struct {
	Op  string
	Err error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("jwe encryption failed: %s: %v", e.Op, e.Err)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// DecryptionError is returned for every way a JWE can fail to decrypt.
// No plaintext is ever returned alongside it.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("jwe decryption failed: %s", e.Reason)
	}
	return fmt.Sprintf("jwe decryption failed: %s: %v", e.Reason, e.Err)
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}
