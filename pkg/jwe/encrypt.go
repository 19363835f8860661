package jwe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"
	"io"

	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// oaepHash returns the hash used by the RSAES-OAEP key management
// algorithm alg.
//
// https://www.rfc-editor.org/rfc/rfc7518.html#section-4.3
func oaepHash(alg jwa.Algorithm) (hash.Hash, bool) {
	switch alg {
	case jwa.RSAOAEP:
		return sha1.New(), true
	case jwa.RSAOAEP256:
		return sha256.New(), true
	default:
		return nil, false
	}
}

// Encrypt serializes payload as JSON and encrypts it for the public half
// of recipient.
func Encrypt(payload Payload, recipient *keyutil.KeyMaterial, keyAlg, contentAlg jwa.Algorithm, opts ...Option) (string, error) {
	if payload == nil {
		return "", &EncryptionError{Op: "marshal payload", Err: ErrNilPayload}
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", &EncryptionError{Op: "marshal payload", Err: err}
	}

	return EncryptBytes(plaintext, recipient, keyAlg, contentAlg, opts...)
}

// EncryptBytes encrypts plaintext for the public half of recipient. A fresh
// content encryption key and initialization vector are drawn for every call.
func EncryptBytes(plaintext []byte, recipient *keyutil.KeyMaterial, keyAlg, contentAlg jwa.Algorithm, opts ...Option) (string, error) {
	c, err := newConfig(opts)
	if err != nil {
		return "", &EncryptionError{Op: "options", Err: err}
	}

	pub := recipient.Public()
	if pub == nil || pub.N == nil {
		return "", &EncryptionError{Op: "recipient key", Err: ErrNoPublicKey}
	}

	if bits := pub.N.BitLen(); bits < jwa.MinRSAKeyBits {
		return "", &EncryptionError{Op: "recipient key", Err: fmt.Errorf("RSA key size %d is below the minimum of %d bits", bits, jwa.MinRSAKeyBits)}
	}

	kek, ok := oaepHash(keyAlg)
	if !ok {
		return "", &EncryptionError{Op: "key management algorithm", Err: fmt.Errorf("unsupported algorithm %q", keyAlg)}
	}

	cekSize, ok := jwa.ContentKeySize(contentAlg)
	if !ok {
		return "", &EncryptionError{Op: "content encryption algorithm", Err: fmt.Errorf("unsupported algorithm %q", contentAlg)}
	}

	cek, err := keyutil.NewSymmetricKey(cekSize)
	if err != nil {
		return "", &EncryptionError{Op: "generate content encryption key", Err: err}
	}

	encryptedKey, err := rsa.EncryptOAEP(kek, rand.Reader, pub, cek, nil)
	if err != nil {
		return "", &EncryptionError{Op: "wrap content encryption key", Err: err}
	}

	h := Header{
		header.Algorithm:  keyAlg,
		header.Encryption: contentAlg,
	}
	if c.KeyID != "" {
		h[header.KeyID] = c.KeyID
	}
	if c.ContentType != "" {
		h[header.ContentType] = c.ContentType
	}
	if c.Type != "" {
		h[header.Type] = c.Type
	}

	protected, err := h.Base64URLString()
	if err != nil {
		return "", &EncryptionError{Op: "encode header", Err: err}
	}

	gcm, err := newGCM(cek)
	if err != nil {
		return "", &EncryptionError{Op: "content cipher", Err: err}
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", &EncryptionError{Op: "generate initialization vector", Err: err}
	}

	sealed := gcm.Seal(nil, iv, plaintext, []byte(protected))

	token := &Token{
		Header:       h,
		EncryptedKey: encryptedKey,
		IV:           iv,
		Ciphertext:   sealed[:len(sealed)-tagSize],
		Tag:          sealed[len(sealed)-tagSize:],
		protected:    protected,
	}

	return token.String(), nil
}

func newGCM(cek []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return cipher.NewGCMWithTagSize(block, tagSize)
}
