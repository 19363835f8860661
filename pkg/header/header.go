package header

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
)

// There are three classes of Header Parameter names: Registered Header
// Parameter names, Public Header Parameter names, and Private Header
// Parameter names.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4
type (
	ParameterName = string

	Registered = ParameterName
	Public     = ParameterName
	Private    = ParameterName
)

// Registered Header Parameter Names
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4.1
const (
	Type                            Registered = "typ"
	Algorithm                       Registered = "alg"
	JWKSetURL                       Registered = "jku"
	JSONWebKey                      Registered = "jwk"
	KeyID                           Registered = "kid"
	X509URL                         Registered = "x5u"
	X509CertificateChain            Registered = "x5c"
	X509CertificateSHA1Thumbprint   Registered = "x5t"
	X509CertificateSHA256Thumbprint Registered = "x5t#S256"
	ContentType                     Registered = "cty"
	Critical                        Registered = "crit"

	// https://www.rfc-editor.org/rfc/rfc7516.html#section-4.1.2
	Encryption Registered = "enc"

	// https://www.rfc-editor.org/rfc/rfc7516.html#section-4.1.3
	Zip Registered = "zip"
)

var (
	ErrParameterNotFound    = errors.New("header parameter not found")
	ErrInvalidParameterType = errors.New("header parameter has invalid type")
	ErrUnsupportedCritical  = errors.New("header lists critical extensions")

	// ErrInvalidEncoding wraps failures to base64url decode a header
	// segment, as opposed to a segment that decodes to invalid JSON.
	ErrInvalidEncoding = errors.New("failed to decode JOSE header base64")
)

// Parameters is a JSON object containing the parameters describing
// the cryptographic operations and parameters employed.
//
// The JOSE (JSON Object Signing and Encryption) Header is comprised
// of a set of Header Parameters.
type Parameters map[ParameterName]any

// Decode parses a base64url encoded JOSE header segment.
func Decode(segment string) (Parameters, error) {
	b, err := base64.Decode(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}

	params := Parameters{}
	if err := json.Unmarshal(b, &params); err != nil {
		return nil, fmt.Errorf("failed to decode JOSE header JSON: %w", err)
	}

	return params, nil
}

// Base64URLString returns the base64url encoded JSON form of the header,
// which is the first segment of a compact serialization.
func (h Parameters) Base64URLString() (string, error) {
	b, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("failed to encode JOSE header base64 URL string: %w", err)
	}
	return base64.Encode(b), nil
}

// GetString returns the named parameter as a string.
func (h Parameters) GetString(name ParameterName) (string, error) {
	value, ok := h[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrParameterNotFound, name)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T", ErrInvalidParameterType, name, value)
	}
	return strValue, nil
}

func (h Parameters) Type() (string, error) {
	return h.GetString(Type)
}

func (h Parameters) Algorithm() (jwa.Algorithm, error) {
	return h.GetString(Algorithm)
}

// EncryptionAlgorithm returns the JWE "enc" parameter.
func (h Parameters) EncryptionAlgorithm() (jwa.Algorithm, error) {
	return h.GetString(Encryption)
}

func (h Parameters) ContentType() (string, error) {
	return h.GetString(ContentType)
}

func (h Parameters) KeyID() (string, error) {
	return h.GetString(KeyID)
}

func (h Parameters) Get(param ParameterName) (any, error) {
	value, ok := h[param]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParameterNotFound, param)
	}
	return value, nil
}

// CheckCritical rejects headers that carry a "crit" parameter. None of the
// extensions it could name are understood by this module, and RFC 7515
// Section 4.1.11 requires rejecting the token in that case.
func (h Parameters) CheckCritical() error {
	if _, ok := h[Critical]; ok {
		return ErrUnsupportedCritical
	}
	return nil
}

// Clone returns a shallow copy of the header.
func (h Parameters) Clone() Parameters {
	out := make(Parameters, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
