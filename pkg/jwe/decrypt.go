package jwe

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// Decrypt decrypts token with the private half of recipient and parses the
// plaintext as a JSON object.
func Decrypt(token string, recipient *keyutil.KeyMaterial, opts ...Option) (Payload, error) {
	var payload Payload
	if err := DecryptInto(token, recipient, &payload, opts...); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &DecryptionError{Reason: "plaintext is not a JSON object"}
	}
	return payload, nil
}

// DecryptInto decrypts token and unmarshals the JSON plaintext into v.
func DecryptInto(token string, recipient *keyutil.KeyMaterial, v any, opts ...Option) error {
	plaintext, err := DecryptBytes(token, recipient, opts...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return &DecryptionError{Reason: "plaintext is not the expected JSON", Err: err}
	}

	return nil
}

// DecryptBytes decrypts token with the private half of recipient. The
// plaintext is only returned once the authentication tag has been checked.
func DecryptBytes(token string, recipient *keyutil.KeyMaterial, opts ...Option) ([]byte, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, &DecryptionError{Reason: "invalid option", Err: err}
	}

	if !recipient.HasPrivate() {
		return nil, &DecryptionError{Reason: "recipient key", Err: ErrNoPrivateKey}
	}

	t, err := Parse(token)
	if err != nil {
		return nil, &DecryptionError{Reason: "malformed token", Err: err}
	}

	return t.decrypt(recipient.Private(), c)
}

func (t *Token) decrypt(key *rsa.PrivateKey, c *Config) ([]byte, error) {
	alg, err := t.Header.Algorithm()
	if err != nil {
		return nil, &DecryptionError{Reason: "missing or invalid algorithm", Err: err}
	}

	enc, err := t.Header.EncryptionAlgorithm()
	if err != nil {
		return nil, &DecryptionError{Reason: "missing or invalid encryption algorithm", Err: err}
	}

	if !c.KeyAlgorithms.Allowed(alg) {
		return nil, &DecryptionError{Reason: fmt.Sprintf("key management algorithm %q is not allowed", alg)}
	}

	if !c.ContentAlgorithms.Allowed(enc) {
		return nil, &DecryptionError{Reason: fmt.Sprintf("content encryption algorithm %q is not allowed", enc)}
	}

	if err := t.Header.CheckCritical(); err != nil {
		return nil, &DecryptionError{Reason: "critical header", Err: err}
	}

	if _, ok := t.Header[header.Zip]; ok {
		return nil, &DecryptionError{Reason: "compressed plaintext is not supported"}
	}

	if c.KeyID != "" {
		if kid, err := t.Header.KeyID(); err == nil && kid != c.KeyID {
			return nil, &DecryptionError{Reason: "key id", Err: fmt.Errorf("%w: got %q, want %q", ErrKeyIDMismatch, kid, c.KeyID)}
		}
	}

	if len(t.IV) != ivSize {
		return nil, &DecryptionError{Reason: fmt.Sprintf("initialization vector must be %d bytes, got %d", ivSize, len(t.IV))}
	}

	if len(t.Tag) != tagSize {
		return nil, &DecryptionError{Reason: fmt.Sprintf("authentication tag must be %d bytes, got %d", tagSize, len(t.Tag))}
	}

	kek, ok := oaepHash(alg)
	if !ok {
		return nil, &DecryptionError{Reason: fmt.Sprintf("unsupported algorithm %q", alg)}
	}

	cek, err := rsa.DecryptOAEP(kek, nil, key, t.EncryptedKey, nil)
	if err != nil {
		return nil, &DecryptionError{Reason: "unwrap content encryption key", Err: err}
	}

	if size, _ := jwa.ContentKeySize(enc); len(cek) != size {
		return nil, &DecryptionError{Reason: fmt.Sprintf("content encryption key must be %d bytes for %s, got %d", size, enc, len(cek))}
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return nil, &DecryptionError{Reason: "content cipher", Err: err}
	}

	sealed := make([]byte, 0, len(t.Ciphertext)+len(t.Tag))
	sealed = append(sealed, t.Ciphertext...)
	sealed = append(sealed, t.Tag...)

	plaintext, err := gcm.Open(nil, t.IV, sealed, []byte(t.protected))
	if err != nil {
		return nil, &DecryptionError{Reason: "authentication failed", Err: err}
	}

	return plaintext, nil
}
