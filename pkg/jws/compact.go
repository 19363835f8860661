package jws

import (
	"fmt"

	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// Config holds the settings applied by Sign and Verify.
type Config struct {
	// Type is the "typ" header parameter set by Sign.
	Type string

	// ContentType is the optional "cty" header parameter set by Sign.
	ContentType string

	// KeyID is stamped as "kid" by Sign. Verify rejects a token whose
	// "kid" is present and differs from it.
	KeyID string

	// AllowedAlgorithms restricts the "alg" values Verify accepts.
	AllowedAlgorithms []jwa.Algorithm
}

// Option configures Sign or Verify.
type Option func(*Config) error

// WithType overrides the default "typ" header parameter.
func WithType(typ string) Option {
	return func(c *Config) error {
		c.Type = typ
		return nil
	}
}

// WithContentType sets the "cty" header parameter.
func WithContentType(cty string) Option {
	return func(c *Config) error {
		c.ContentType = cty
		return nil
	}
}

// WithKeyID sets the "kid" header parameter when signing, and the
// expected "kid" when verifying.
func WithKeyID(kid string) Option {
	return func(c *Config) error {
		c.KeyID = kid
		return nil
	}
}

// WithAllowedAlgorithms replaces the algorithms Verify accepts.
func WithAllowedAlgorithms(algs ...jwa.Algorithm) Option {
	return func(c *Config) error {
		if len(algs) == 0 {
			return fmt.Errorf("at least one allowed algorithm is required")
		}
		for _, alg := range algs {
			if _, ok := jwa.SigningHash(alg); !ok {
				return fmt.Errorf("unsupported algorithm %q", alg)
			}
		}
		c.AllowedAlgorithms = algs
		return nil
	}
}

func newConfig(opts []Option) (*Config, error) {
	c := &Config{
		Type:              Type,
		AllowedAlgorithms: jwa.DefaultAllowedAlgorithms().List(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Sign produces the compact serialization of a JWS over payload, signed
// with the private half of signer.
func Sign(payload string, signer *keyutil.KeyMaterial, alg jwa.Algorithm, opts ...Option) (string, error) {
	c, err := newConfig(opts)
	if err != nil {
		return "", &SigningError{Reason: "invalid option", Err: err}
	}

	if !signer.HasPrivate() {
		return "", &SigningError{Reason: "signer key", Err: ErrNoPrivateKey}
	}

	h := Header{
		header.Algorithm: alg,
	}
	if c.Type != "" {
		h[header.Type] = c.Type
	}
	if c.ContentType != "" {
		h[header.ContentType] = c.ContentType
	}
	if c.KeyID != "" {
		h[header.KeyID] = c.KeyID
	}

	s, err := New(h, []byte(payload), signer.Private())
	if err != nil {
		return "", &SigningError{Reason: "sign", Err: err}
	}

	return s.String(), nil
}

// Verify checks token against the public half of signer and returns the
// payload. Nothing is returned unless the signature verified.
func Verify(token string, signer *keyutil.KeyMaterial, opts ...Option) (string, error) {
	s, err := VerifySignature(token, signer, opts...)
	if err != nil {
		return "", err
	}
	return string(s.Payload), nil
}

// VerifySignature is Verify, returning the parsed and verified JWS so
// callers can inspect its header.
func VerifySignature(token string, signer *keyutil.KeyMaterial, opts ...Option) (*Signature, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, newVerificationError("invalid option", err)
	}

	if signer.Public() == nil {
		return nil, newVerificationError("signer key", ErrNoPublicKey)
	}

	s, err := Parse(token)
	if err != nil {
		return nil, newVerificationError("malformed token", err)
	}

	if err := s.Verify(signer.Public(), c.AllowedAlgorithms...); err != nil {
		return nil, newVerificationError("invalid signature", err)
	}

	if c.KeyID != "" {
		if kid, err := s.Header.KeyID(); err == nil && kid != c.KeyID {
			return nil, newVerificationError("key id", fmt.Errorf("%w: got %q, want %q", ErrKeyIDMismatch, kid, c.KeyID))
		}
	}

	return s, nil
}
