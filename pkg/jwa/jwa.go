package jwa

import (
	"crypto"

	"golang.org/x/exp/slices"
)

// https://datatracker.ietf.org/doc/html/rfc7518#section-3.1
type Algorithm = string

// RSASSA-PKCS1-v1_5
//
// These algorithms are used to digitally sign a JWS and produce a
// JWS Signature using PKCS #1 v1.5 methods.
//
// # RSA Key Size
//
// A key of size 2048 bits or larger MUST be used with these algorithms.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.3
const (
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
)

// Key Encryption with RSAES OAEP
//
// RSA-OAEP uses the default parameters of RFC 3447 Section A.2.1 (SHA-1 and
// MGF1 with SHA-1), RSA-OAEP-256 uses SHA-256 and MGF1 with SHA-256.
//
// # RSA Key Size
//
// A key of size 2048 bits or larger MUST be used with these algorithms.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-4.3
const (
	RSAOAEP    Algorithm = "RSA-OAEP"
	RSAOAEP256 Algorithm = "RSA-OAEP-256"
)

// Content Encryption with AES GCM
//
// The content encryption key is 128, 192 or 256 bits, the initialization
// vector is always 96 bits and the authentication tag 128 bits.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-5.3
const (
	A128GCM Algorithm = "A128GCM"
	A192GCM Algorithm = "A192GCM"
	A256GCM Algorithm = "A256GCM"
)

// MinRSAKeyBits is the smallest RSA modulus accepted by every algorithm above.
const MinRSAKeyBits = 2048

// SigningHash returns the hash function for the given signing algorithm,
// or false if the algorithm is not a supported signing algorithm.
func SigningHash(alg Algorithm) (crypto.Hash, bool) {
	switch alg {
	case RS256:
		return crypto.SHA256, true
	case RS384:
		return crypto.SHA384, true
	case RS512:
		return crypto.SHA512, true
	}
	return 0, false
}

// ContentKeySize returns the content encryption key size in bytes for the
// given content encryption algorithm, or false if it is not supported.
func ContentKeySize(enc Algorithm) (int, bool) {
	switch enc {
	case A128GCM:
		return 16, true
	case A192GCM:
		return 24, true
	case A256GCM:
		return 32, true
	}
	return 0, false
}

// AllowedAlgorithms is a set of algorithms a caller is willing to accept.
type AllowedAlgorithms map[Algorithm]struct{}

// NewAllowedAlgorithms returns a set containing the given algorithms.
func NewAllowedAlgorithms(algs ...Algorithm) AllowedAlgorithms {
	set := make(AllowedAlgorithms, len(algs))
	for _, alg := range algs {
		set[alg] = struct{}{}
	}
	return set
}

// Allowed reports whether every one of the given algorithms is in the set.
// It returns false when called without any algorithms.
func (a AllowedAlgorithms) Allowed(algs ...Algorithm) bool {
	if len(algs) == 0 {
		return false
	}
	for _, alg := range algs {
		if _, ok := a[alg]; !ok {
			return false
		}
	}
	return true
}

// List returns the algorithms in the set in lexical order.
func (a AllowedAlgorithms) List() []Algorithm {
	list := make([]Algorithm, 0, len(a))
	for alg := range a {
		list = append(list, alg)
	}
	slices.Sort(list)
	return list
}

// DefaultAllowedAlgorithms returns the signing algorithms accepted when
// verifying a JWS without an explicit allow-list.
func DefaultAllowedAlgorithms() AllowedAlgorithms {
	return NewAllowedAlgorithms(RS256)
}

// DefaultKeyManagementAlgorithms returns the key management algorithms
// accepted when decrypting a JWE without an explicit allow-list.
func DefaultKeyManagementAlgorithms() AllowedAlgorithms {
	return NewAllowedAlgorithms(RSAOAEP, RSAOAEP256)
}

// DefaultContentEncryptionAlgorithms returns the content encryption
// algorithms accepted when decrypting a JWE without an explicit allow-list.
func DefaultContentEncryptionAlgorithms() AllowedAlgorithms {
	return NewAllowedAlgorithms(A128GCM, A192GCM, A256GCM)
}
