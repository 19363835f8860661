package jwe

import (
	"fmt"

	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
)

// Config holds the settings applied by the encrypt and decrypt functions.
type Config struct {
	// KeyID is stamped as "kid" when encrypting. When decrypting, a token
	// whose "kid" is present and differs from it is rejected.
	KeyID string

	// ContentType and Type set the "cty" and "typ" header parameters.
	ContentType string
	Type        string

	// KeyAlgorithms and ContentAlgorithms restrict the "alg" and "enc"
	// values accepted when decrypting.
	KeyAlgorithms     jwa.AllowedAlgorithms
	ContentAlgorithms jwa.AllowedAlgorithms
}

type Option func(*Config) error

func WithKeyID(kid string) Option {
	return func(c *Config) error {
		c.KeyID = kid
		return nil
	}
}

func WithContentType(cty string) Option {
	return func(c *Config) error {
		c.ContentType = cty
		return nil
	}
}

func WithType(typ string) Option {
	return func(c *Config) error {
		c.Type = typ
		return nil
	}
}

// WithAllowedAlgorithms narrows the key management and content encryption
// algorithms accepted when decrypting. Each algorithm is sorted into the
// right list; at least one of each kind must be given.
func WithAllowedAlgorithms(algs ...jwa.Algorithm) Option {
	return func(c *Config) error {
		keyAlgs := jwa.AllowedAlgorithms{}
		contentAlgs := jwa.AllowedAlgorithms{}

		for _, alg := range algs {
			switch {
			case jwa.DefaultKeyManagementAlgorithms().Allowed(alg):
				keyAlgs[alg] = struct{}{}
			case jwa.DefaultContentEncryptionAlgorithms().Allowed(alg):
				contentAlgs[alg] = struct{}{}
			default:
				return fmt.Errorf("unsupported algorithm %q", alg)
			}
		}

		if len(keyAlgs) == 0 || len(contentAlgs) == 0 {
			return fmt.Errorf("allowed algorithms need at least one key management and one content encryption algorithm")
		}

		c.KeyAlgorithms = keyAlgs
		c.ContentAlgorithms = contentAlgs
		return nil
	}
}

func newConfig(opts []Option) (*Config, error) {
	c := &Config{
		KeyAlgorithms:     jwa.DefaultKeyManagementAlgorithms(),
		ContentAlgorithms: jwa.DefaultContentEncryptionAlgorithms(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
