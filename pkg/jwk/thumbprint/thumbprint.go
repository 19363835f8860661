package thumbprint

import (
	"bytes"
	"crypto"
	_ "crypto/sha256"
	"errors"
	"fmt"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwk"
)

var (
	ErrInvalidKey = errors.New("thumbprint: invalid key")
)

// requiredRSA lists the required members of an RSA JWK in lexicographic order.
var requiredRSA = []string{jwk.E, jwk.KeyType, jwk.N}

// Generate returns the JWK Thumbprint for the given JWK following
// the steps defined in RFC 7638.
func Generate(value jwk.Value, h crypto.Hash) ([]byte, error) {
	if value[jwk.KeyType] != jwk.KeyTypeRSA {
		return nil, ErrInvalidKey
	}

	// RFC 7638 section 3.1: the required members only, ordered by name,
	// without whitespace.
	b := bytes.NewBuffer(nil)

	b.WriteRune('{')

	for i, key := range requiredRSA {
		v, ok := value[key].(string)
		if !ok || v == "" {
			return nil, ErrInvalidKey
		}

		if i > 0 {
			b.WriteRune(',')
		}

		fmt.Fprintf(b, "%q:%q", key, v)
	}

	b.WriteRune('}')

	// SHA-256 unless another hash is given.
	if h == 0 {
		h = crypto.SHA256
	}

	if !h.Available() {
		return nil, fmt.Errorf("thumbprint: hash %v is not available", h)
	}

	hash := h.New()

	_, err := hash.Write(b.Bytes())
	if err != nil {
		return nil, err
	}

	return hash.Sum(nil), nil
}

// GenerateString returns the JWK Thumbprint for the given JWK following
// the steps defined in RFC 7638 as a base64url encoded string.
func GenerateString(value jwk.Value, h crypto.Hash) (string, error) {
	thumbprint, err := Generate(value, h)
	if err != nil {
		return "", err
	}

	return base64.Encode(thumbprint), nil
}
