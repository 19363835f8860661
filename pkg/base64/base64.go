package base64

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned by Decode when given an empty segment.
var ErrEmptyInput = errors.New("base64: input cannot be empty")

// encoding is the unpadded, strict base64url alphabet. Strict mode rejects
// encodings whose trailing bits are not zero, so every byte string has
// exactly one valid encoding.
var encoding = base64.RawURLEncoding.Strict()

// Decode returns the base64url decoded bytes from the given input.
// This function implements base64url decoding as defined in RFC 4648 Section 5,
// which is used in the JWS and JWE compact serializations (RFC 7515, RFC 7516).
//
// Padding characters are not part of the compact serialization and are rejected.
func Decode(input string) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	if strings.ContainsRune(input, '=') {
		return nil, fmt.Errorf("base64: padding is not allowed in base64url segments")
	}

	result, err := encoding.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("base64: invalid base64url input: %w", err)
	}
	return result, nil
}

// Encode returns the unpadded base64url encoded string for the given input.
// This function implements base64url encoding as defined in RFC 4648 Section 5.
//
// An empty input encodes to an empty string, which is how the compact
// serializations represent an empty segment.
func Encode(input []byte) string {
	return encoding.EncodeToString(input)
}
