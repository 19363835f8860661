package keyutil

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/heliostechlabs/axis-test-enc/pkg/jwk"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwk/thumbprint"
)

// Kind is the declared encoding of a PEM key document.
type Kind int

const (
	// Auto infers the kind from the PEM block type.
	Auto Kind = iota

	// Certificate is an X.509 certificate ("CERTIFICATE"), from which
	// the RSA public key is extracted.
	Certificate

	// PublicKey is a PKIX ("PUBLIC KEY") or PKCS #1 ("RSA PUBLIC KEY")
	// encoded RSA public key.
	PublicKey

	// PrivateKeyPKCS8 is a PKCS #8 ("PRIVATE KEY") encoded RSA private key.
	PrivateKeyPKCS8

	// PrivateKeyPKCS1 is a legacy PKCS #1 ("RSA PRIVATE KEY") encoded RSA private key.
	PrivateKeyPKCS1
)

// PEM block types.
const (
	blockCertificate   = "CERTIFICATE"
	blockPublicKey     = "PUBLIC KEY"
	blockRSAPublicKey  = "RSA PUBLIC KEY"
	blockPrivateKey    = "PRIVATE KEY"
	blockRSAPrivateKey = "RSA PRIVATE KEY"
)

var kindNames = map[Kind]string{
	Auto:            "auto",
	Certificate:     "certificate",
	PublicKey:       "public",
	PrivateKeyPKCS8: "pkcs8",
	PrivateKeyPKCS1: "pkcs1",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsPrivate reports whether keys of this kind carry a private key.
func (k Kind) IsPrivate() bool {
	return k == PrivateKeyPKCS8 || k == PrivateKeyPKCS1
}

// ParseKind returns the Kind named by s, as printed by Kind.String.
// The empty string is Auto.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Auto, nil
	}
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}
	return Auto, fmt.Errorf("unknown key kind %q", s)
}

// KeyFormatError is returned when a PEM document cannot be parsed as the
// declared kind of RSA key material.
type KeyFormatError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *KeyFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("key format error (%s): %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("key format error (%s): %s", e.Kind, e.Reason)
}

func (e *KeyFormatError) Unwrap() error {
	return e.Err
}

func newKeyFormatError(kind Kind, reason string, err error) *KeyFormatError {
	return &KeyFormatError{Kind: kind, Reason: reason, Err: err}
}

// KeyMaterial is an immutable handle to a loaded RSA key. It always holds
// the public key, and holds the private key when loaded from a private kind.
type KeyMaterial struct {
	kind    Kind
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// FromRSAPrivateKey wraps an in-memory RSA private key.
func FromRSAPrivateKey(key *rsa.PrivateKey) *KeyMaterial {
	return &KeyMaterial{kind: PrivateKeyPKCS8, public: &key.PublicKey, private: key}
}

// FromRSAPublicKey wraps an in-memory RSA public key.
func FromRSAPublicKey(key *rsa.PublicKey) *KeyMaterial {
	return &KeyMaterial{kind: PublicKey, public: key}
}

// Kind returns the kind the key was loaded as.
func (k *KeyMaterial) Kind() Kind {
	return k.kind
}

// Public returns the RSA public key.
func (k *KeyMaterial) Public() *rsa.PublicKey {
	if k == nil {
		return nil
	}
	return k.public
}

// Private returns the RSA private key, or nil for public key material.
func (k *KeyMaterial) Private() *rsa.PrivateKey {
	if k == nil {
		return nil
	}
	return k.private
}

// HasPrivate reports whether the private key is available.
func (k *KeyMaterial) HasPrivate() bool {
	return k != nil && k.private != nil
}

// Size returns the RSA modulus size in bits.
func (k *KeyMaterial) Size() int {
	if k == nil || k.public == nil || k.public.N == nil {
		return 0
	}
	return k.public.N.BitLen()
}

// PublicOnly returns key material holding only the public half.
func (k *KeyMaterial) PublicOnly() *KeyMaterial {
	if k == nil {
		return nil
	}
	return &KeyMaterial{kind: PublicKey, public: k.public}
}

// KeyID returns the RFC 7638 SHA-256 thumbprint of the public key, which
// is the same for every encoding of the same key.
func (k *KeyMaterial) KeyID() (string, error) {
	value, err := jwk.ValueFromPublicKey(k.Public())
	if err != nil {
		return "", fmt.Errorf("failed to build JWK for key id: %w", err)
	}
	return thumbprint.GenerateString(value, crypto.SHA256)
}

// Load parses a PEM document as the given kind of RSA key material.
//
// Only the first PEM block is considered, and its type must match the
// declared kind. Encrypted PEM blocks are rejected.
func Load(pemBytes []byte, kind Kind) (*KeyMaterial, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, newKeyFormatError(kind, "no PEM block found", nil)
	}

	if _, ok := block.Headers["Proc-Type"]; ok {
		return nil, newKeyFormatError(kind, "encrypted PEM blocks are not supported", nil)
	}

	if kind == Auto {
		inferred, err := kindOf(block.Type)
		if err != nil {
			return nil, err
		}
		kind = inferred
	}

	switch kind {
	case Certificate:
		if block.Type != blockCertificate {
			return nil, unexpectedBlock(kind, block.Type)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, newKeyFormatError(kind, "failed to parse X.509 certificate", err)
		}
		return publicMaterial(kind, cert.PublicKey)
	case PublicKey:
		switch block.Type {
		case blockPublicKey:
			parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, newKeyFormatError(kind, "failed to parse PKIX public key", err)
			}
			return publicMaterial(kind, parsed)
		case blockRSAPublicKey:
			parsed, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, newKeyFormatError(kind, "failed to parse PKCS #1 public key", err)
			}
			return publicMaterial(kind, parsed)
		default:
			return nil, unexpectedBlock(kind, block.Type)
		}
	case PrivateKeyPKCS8:
		if block.Type != blockPrivateKey {
			return nil, unexpectedBlock(kind, block.Type)
		}
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, newKeyFormatError(kind, "failed to parse PKCS #8 private key", err)
		}
		return privateMaterial(kind, parsed)
	case PrivateKeyPKCS1:
		if block.Type != blockRSAPrivateKey {
			return nil, unexpectedBlock(kind, block.Type)
		}
		parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, newKeyFormatError(kind, "failed to parse PKCS #1 private key", err)
		}
		return privateMaterial(kind, parsed)
	default:
		return nil, newKeyFormatError(kind, "unsupported key kind", nil)
	}
}

// LoadAny parses a PEM document, inferring the kind from its block type.
func LoadAny(pemBytes []byte) (*KeyMaterial, error) {
	return Load(pemBytes, Auto)
}

// LoadFile reads the named file and parses it as the given kind.
func LoadFile(path string, kind Kind) (*KeyMaterial, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}

	key, err := Load(b, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load key file %q: %w", path, err)
	}

	return key, nil
}

func kindOf(blockType string) (Kind, error) {
	switch blockType {
	case blockCertificate:
		return Certificate, nil
	case blockPublicKey, blockRSAPublicKey:
		return PublicKey, nil
	case blockPrivateKey:
		return PrivateKeyPKCS8, nil
	case blockRSAPrivateKey:
		return PrivateKeyPKCS1, nil
	}
	return Auto, newKeyFormatError(Auto, fmt.Sprintf("unsupported PEM block type %q", blockType), nil)
}

func unexpectedBlock(kind Kind, blockType string) *KeyFormatError {
	return newKeyFormatError(kind, fmt.Sprintf("unexpected PEM block type %q", blockType), nil)
}

func publicMaterial(kind Kind, parsed any) (*KeyMaterial, error) {
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, newKeyFormatError(kind, fmt.Sprintf("invalid type %T for RSA public key", parsed), nil)
	}
	return &KeyMaterial{kind: kind, public: pub}, nil
}

func privateMaterial(kind Kind, parsed any) (*KeyMaterial, error) {
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, newKeyFormatError(kind, fmt.Sprintf("invalid type %T for RSA private key", parsed), nil)
	}
	return &KeyMaterial{kind: kind, public: &priv.PublicKey, private: priv}, nil
}

// NewSymmetricKey generates a new random symmetric key of the given size in bytes.
func NewSymmetricKey(size int) ([]byte, error) {
	key := make([]byte, size)

	_, err := rand.Read(key)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new symmetric key: %w", err)
	}

	return key, nil
}

// NewRSAKeyPair returns a new RSA key pair of the given size, or an error if one occurs.
func NewRSAKeyPair(bits int) (*rsa.PublicKey, *rsa.PrivateKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate new RSA key pair: %w", err)
	}

	return &privateKey.PublicKey, privateKey, nil
}

// EncodePrivateKeyPEM encodes the private key as PEM in the given private kind.
func EncodePrivateKeyPEM(key *rsa.PrivateKey, kind Kind) ([]byte, error) {
	switch kind {
	case PrivateKeyPKCS8:
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal PKCS #8 private key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: blockPrivateKey, Bytes: der}), nil
	case PrivateKeyPKCS1:
		der := x509.MarshalPKCS1PrivateKey(key)
		return pem.EncodeToMemory(&pem.Block{Type: blockRSAPrivateKey, Bytes: der}), nil
	default:
		return nil, fmt.Errorf("cannot encode private key as %s", kind)
	}
}

// EncodePublicKeyPEM encodes the public key as a PKIX "PUBLIC KEY" PEM block.
func EncodePublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: blockPublicKey, Bytes: der}), nil
}

// NewSelfSignedCertificate returns a PEM encoded self-signed X.509
// certificate for the key, valid from now for the given duration.
func NewSelfSignedCertificate(key *rsa.PrivateKey, commonName string, validity time.Duration) ([]byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 127))
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate serial number: %w", err)
	}

	now := time.Now()

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create self-signed certificate: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: blockCertificate, Bytes: der}), nil
}
