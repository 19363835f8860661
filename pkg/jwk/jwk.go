package jwk

import (
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
)

// https://datatracker.ietf.org/doc/html/rfc7517#section-4
type (
	ParameterName = string

	RSA = ParameterName
)

const (
	KeyType              ParameterName = "kty"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.1
	PublicKeyUse         ParameterName = "use"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.2
	KeyOperations        ParameterName = "key_ops"  // https://datatracker.ietf.org/doc/html/rfc7517#section-4.3
	Algorithm            ParameterName = "alg"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.4
	KeyID                ParameterName = "kid"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.5
	X509URL              ParameterName = "x5u"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.6
	X509CertificateChain ParameterName = "x5c"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.7
	X509SHA1Thumbprint   ParameterName = "x5t"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.8
	X509SHA256Thumbprint ParameterName = "x5t#S256" // https://datatracker.ietf.org/doc/html/rfc7517#section-4.9

	N RSA = "n" // N is the RSA public modulus value.
	E RSA = "e" // E is the RSA public exponent value.
)

// KeyTypeRSA is the "kty" value for RSA keys.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-6.3
const KeyTypeRSA = "RSA"

// Use values for the "use" parameter.
const (
	UseSignature  = "sig"
	UseEncryption = "enc"
)

// Value is a JSON object representing a cryptographic key.
//
// https://datatracker.ietf.org/doc/html/rfc7517#section-4
type Value = map[ParameterName]any

// Validate checks that the required parameters are present for
// the given key type, and that the values are valid.
func Validate(v Value) error {
	kty, ok := v[KeyType]
	if !ok {
		return fmt.Errorf("missing required parameter %q", KeyType)
	}

	if kty != KeyTypeRSA {
		return fmt.Errorf("unsupported key type %q", kty)
	}

	for _, name := range []ParameterName{N, E} {
		value, ok := v[name]
		if !ok {
			return fmt.Errorf("missing required parameter %q", name)
		}

		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type %T for %q", value, name)
		}

		if _, err := base64.Decode(s); err != nil {
			return fmt.Errorf("invalid base64 encoding for %q: %w", name, err)
		}
	}

	return nil
}

// RSAValues returns the encoded modulus and exponent of an RSA key.
func RSAValues(v Value) (n, e string, err error) {
	if v[KeyType] != KeyTypeRSA {
		err = fmt.Errorf("JWK value is not RSA")
		return
	}

	nValue, ok := v[N].(string)
	if !ok {
		err = fmt.Errorf("no %q set", N)
		return
	}

	eValue, ok := v[E].(string)
	if !ok {
		err = fmt.Errorf("no %q set", E)
		return
	}

	return nValue, eValue, nil
}

// RSAPublicKey returns the RSA public key described by the value.
func RSAPublicKey(v Value) (*rsa.PublicKey, error) {
	if err := Validate(v); err != nil {
		return nil, fmt.Errorf("failed to get RSA public key: %w", err)
	}

	nEnc, eEnc, err := RSAValues(v)
	if err != nil {
		return nil, fmt.Errorf("failed to get RSA public key: %w", err)
	}

	nBytes, err := base64.Decode(nEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode RSA public key N: %w", err)
	}

	eBytes, err := base64.Decode(eEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode RSA public key E: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() < 3 || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("invalid RSA public exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

// ValueFromPublicKey returns a JWK value from the given public key.
func ValueFromPublicKey(pubKey any) (Value, error) {
	switch pubKey := pubKey.(type) {
	case *rsa.PublicKey:
		if pubKey == nil || pubKey.N == nil {
			return nil, fmt.Errorf("nil RSA public key used for JWK value")
		}
		return Value{
			KeyType: KeyTypeRSA,
			N:       base64.Encode(pubKey.N.Bytes()),
			E:       base64.Encode(big.NewInt(int64(pubKey.E)).Bytes()),
		}, nil
	default:
		return nil, fmt.Errorf("invalid type %T used for JWK value", pubKey)
	}
}
