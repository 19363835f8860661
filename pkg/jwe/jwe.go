package jwe

import (
	"fmt"
	"strings"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
	"github.com/heliostechlabs/axis-test-enc/pkg/header"
)

// Header is the JOSE Protected Header of a JWE.
//
// https://www.rfc-editor.org/rfc/rfc7516.html#section-4
type Header = header.Parameters

// Payload is the JSON object carried inside a JWE by Encrypt and Decrypt.
type Payload = map[string]any

const (
	// ivSize is the 96 bit initialization vector used with AES GCM.
	//
	// https://www.rfc-editor.org/rfc/rfc7518.html#section-5.3
	ivSize = 12

	// tagSize is the 128 bit GCM authentication tag.
	tagSize = 16
)

// Token is a JWE in compact serialization, split into its five parts.
//
// https://www.rfc-editor.org/rfc/rfc7516.html#section-7.1
type Token struct {
	Header       Header
	EncryptedKey []byte
	IV           []byte
	Ciphertext   []byte
	Tag          []byte

	// protected is the first segment exactly as received. It is the
	// additional authenticated data for AES GCM.
	protected string
}

// Parse splits a JWE compact serialization into its parts. It does not
// decrypt or authenticate anything.
func Parse(input string) (*Token, error) {
	if input == "" {
		return nil, fmt.Errorf("empty JWE string")
	}

	if dots := strings.Count(input, "."); dots != 4 {
		return nil, fmt.Errorf("invalid JWE format: expected 4 dots, got %d", dots)
	}

	parts := strings.Split(input, ".")

	h, err := header.Decode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	encryptedKey, err := base64.Decode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted key: %w", err)
	}

	iv, err := base64.Decode(parts[2])
	if err != nil {
		return nil, fmt.Errorf("failed to decode initialization vector: %w", err)
	}

	// An empty plaintext produces an empty ciphertext segment.
	var ciphertext []byte
	if parts[3] != "" {
		ciphertext, err = base64.Decode(parts[3])
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
		}
	}

	tag, err := base64.Decode(parts[4])
	if err != nil {
		return nil, fmt.Errorf("failed to decode authentication tag: %w", err)
	}

	return &Token{
		Header:       h,
		EncryptedKey: encryptedKey,
		IV:           iv,
		Ciphertext:   ciphertext,
		Tag:          tag,
		protected:    parts[0],
	}, nil
}

// String returns the compact serialization of the token.
func (t *Token) String() string {
	protected := t.protected
	if protected == "" {
		encoded, err := t.Header.Base64URLString()
		if err != nil {
			return fmt.Sprintf("<invalid-jwe %v>", err)
		}
		protected = encoded
	}

	return strings.Join([]string{
		protected,
		base64.Encode(t.EncryptedKey),
		base64.Encode(t.IV),
		base64.Encode(t.Ciphertext),
		base64.Encode(t.Tag),
	}, ".")
}
