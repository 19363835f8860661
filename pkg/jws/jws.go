package jws

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
)

// Header is a JSON object containing the parameters describing
// the cryptographic operations and parameters employed.
//
// The JOSE (JSON Object Signing and Encryption) Header is comprised
// of a set of Header Parameters.
type Header = header.Parameters

// Type is the default "typ" header parameter for tokens created by Sign.
const Type = "JWS"

// Signature is a JSON Web Signature: a header, an arbitrary payload and
// the signature over both.
//
// https://datatracker.ietf.org/doc/html/rfc7515
type Signature struct {
	Header    Header
	Payload   []byte
	Signature []byte

	// signingInput is the ASCII "header.payload" exactly as it appeared in
	// the parsed compact serialization, or as computed by Sign.
	signingInput string
}

// New creates a JWS over the payload and signs it with the given RSA
// private key, using the algorithm named by the "alg" header parameter.
func New(h Header, payload []byte, key *rsa.PrivateKey) (*Signature, error) {
	if len(h) == 0 {
		return nil, fmt.Errorf("cannot create JWS with empty header parameters")
	}

	s := &Signature{
		Header:  h,
		Payload: payload,
	}

	if _, err := s.Sign(key); err != nil {
		return nil, err
	}

	return s, nil
}

// Parse parses a JWS compact serialization.
//
// # Warning
//
// Parse does not verify the signature. Use Verify on the result, or the
// package level Verify function, before trusting the payload.
func Parse(input string) (*Signature, error) {
	if input == "" {
		return nil, fmt.Errorf("empty JWS string")
	}

	if dots := strings.Count(input, "."); dots != 2 {
		return nil, fmt.Errorf("invalid JWS format: expected 2 dots, got %d", dots)
	}

	parts := strings.SplitN(input, ".", 3)

	h, err := header.Decode(parts[0])
	if err != nil {
		if errors.Is(err, header.ErrInvalidEncoding) {
			return nil, fmt.Errorf("failed to decode header: %w", err)
		}
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	var payload []byte
	if parts[1] != "" {
		payload, err = base64.Decode(parts[1])
		if err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
	}

	signature, err := base64.Decode(parts[2])
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}

	return &Signature{
		Header:       h,
		Payload:      payload,
		Signature:    signature,
		signingInput: parts[0] + "." + parts[1],
	}, nil
}

// SigningInput returns the ASCII "base64url(header).base64url(payload)"
// the signature is computed over.
func (s *Signature) SigningInput() (string, error) {
	if s.signingInput != "" {
		return s.signingInput, nil
	}

	encodedHeader, err := s.Header.Base64URLString()
	if err != nil {
		return "", err
	}

	return encodedHeader + "." + base64.Encode(s.Payload), nil
}

// Sign computes the signature with the given private key and stores it on s.
func (s *Signature) Sign(key *rsa.PrivateKey) ([]byte, error) {
	alg, err := s.Header.Algorithm()
	if err != nil {
		return nil, fmt.Errorf("missing or invalid algorithm: %w", err)
	}

	hash, ok := jwa.SigningHash(alg)
	if !ok {
		return nil, fmt.Errorf("unsupported algorithm %q", alg)
	}

	if key == nil {
		return nil, fmt.Errorf("no RSA private key")
	}

	if bits := key.N.BitLen(); bits < jwa.MinRSAKeyBits {
		return nil, fmt.Errorf("RSA key size %d is below the minimum of %d bits", bits, jwa.MinRSAKeyBits)
	}

	// The header may have changed since the token was parsed.
	s.signingInput = ""

	input, err := s.SigningInput()
	if err != nil {
		return nil, err
	}

	sig, err := rsa.SignPKCS1v15(rand.Reader, key, hash, digest(hash, input))
	if err != nil {
		return nil, fmt.Errorf("failed to sign with RSA private key: %w", err)
	}

	s.Signature = sig
	s.signingInput = input

	return sig, nil
}

// Verify checks the signature with the given RSA public key. The "alg"
// header parameter must be one of the allowed algorithms, which default
// to jwa.DefaultAllowedAlgorithms.
func (s *Signature) Verify(key *rsa.PublicKey, allowed ...jwa.Algorithm) error {
	alg, err := s.Header.Algorithm()
	if err != nil {
		return fmt.Errorf("missing or invalid algorithm: %w", err)
	}

	hash, ok := jwa.SigningHash(alg)
	if !ok {
		return fmt.Errorf("unsupported algorithm %q", alg)
	}

	allowedAlgs := jwa.DefaultAllowedAlgorithms()
	if len(allowed) > 0 {
		allowedAlgs = jwa.NewAllowedAlgorithms(allowed...)
	}

	if !allowedAlgs.Allowed(alg) {
		return fmt.Errorf("algorithm %q is not allowed", alg)
	}

	if err := s.Header.CheckCritical(); err != nil {
		return err
	}

	if key == nil || key.N == nil {
		return fmt.Errorf("no RSA public key")
	}

	if bits := key.N.BitLen(); bits < jwa.MinRSAKeyBits {
		return fmt.Errorf("RSA key size %d is below the minimum of %d bits", bits, jwa.MinRSAKeyBits)
	}

	input, err := s.SigningInput()
	if err != nil {
		return err
	}

	if err := rsa.VerifyPKCS1v15(key, hash, digest(hash, input), s.Signature); err != nil {
		return fmt.Errorf("failed to verify RSA signature: %w", err)
	}

	return nil
}

// String returns the compact serialization of the JWS.
func (s *Signature) String() string {
	input, err := s.SigningInput()
	if err != nil {
		return fmt.Sprintf("<invalid-jws %v>", err)
	}
	return input + "." + base64.Encode(s.Signature)
}

func digest(hash crypto.Hash, input string) []byte {
	h := hash.New()
	h.Write([]byte(input))
	return h.Sum(nil)
}
