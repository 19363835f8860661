package envelope

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
)

// Option configures a Composer.
type Option func(*Composer) error

func WithEncrypter(e Encrypter) Option {
	return func(c *Composer) error {
		if e == nil {
			return fmt.Errorf("nil encrypter")
		}
		c.encrypter = e
		return nil
	}
}

func WithDecrypter(d Decrypter) Option {
	return func(c *Composer) error {
		if d == nil {
			return fmt.Errorf("nil decrypter")
		}
		c.decrypter = d
		return nil
	}
}

func WithSigner(s Signer) Option {
	return func(c *Composer) error {
		if s == nil {
			return fmt.Errorf("nil signer")
		}
		c.signer = s
		return nil
	}
}

func WithVerifier(v Verifier) Option {
	return func(c *Composer) error {
		if v == nil {
			return fmt.Errorf("nil verifier")
		}
		c.verifier = v
		return nil
	}
}

// WithKeyAlgorithm sets the JWE key management algorithm.
func WithKeyAlgorithm(alg jwa.Algorithm) Option {
	return func(c *Composer) error {
		if !jwa.DefaultKeyManagementAlgorithms().Allowed(alg) {
			return fmt.Errorf("unsupported key management algorithm %q", alg)
		}
		c.keyAlgorithm = alg
		return nil
	}
}

// WithContentAlgorithm sets the JWE content encryption algorithm.
func WithContentAlgorithm(alg jwa.Algorithm) Option {
	return func(c *Composer) error {
		if !jwa.DefaultContentEncryptionAlgorithms().Allowed(alg) {
			return fmt.Errorf("unsupported content encryption algorithm %q", alg)
		}
		c.contentAlgorithm = alg
		return nil
	}
}

// WithSigningAlgorithm sets the JWS algorithm. Verification only accepts
// this algorithm.
func WithSigningAlgorithm(alg jwa.Algorithm) Option {
	return func(c *Composer) error {
		if _, ok := jwa.SigningHash(alg); !ok {
			return fmt.Errorf("unsupported signing algorithm %q", alg)
		}
		c.signingAlgorithm = alg
		return nil
	}
}

// WithQuotedInnerToken signs the inner JWE as a JSON string, quotes
// included, and expects the same when verifying. This is the wire form
// produced by implementations that JSON encode the token before signing.
func WithQuotedInnerToken() Option {
	return func(c *Composer) error {
		c.quotedInnerToken = true
		return nil
	}
}

// WithKeyIDs stamps the RFC 7638 thumbprint of the recipient key as the
// JWE "kid" and of the signer key as the JWS "kid". When opening, a "kid"
// that is present must match the thumbprint of the key being used.
func WithKeyIDs() Option {
	return func(c *Composer) error {
		c.keyIDs = true
		return nil
	}
}

// WithLogger sets the logger used for per-stage debug output at V(1).
// Key material and plaintext are never logged.
func WithLogger(log logr.Logger) Option {
	return func(c *Composer) error {
		c.log = log
		return nil
	}
}
