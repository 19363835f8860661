package envelope

import (
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwe"
	"github.com/heliostechlabs/axis-test-enc/pkg/jws"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// Encrypter produces the inner JWE.
type Encrypter interface {
	Encrypt(payload jwe.Payload, recipient *keyutil.KeyMaterial, keyAlg, contentAlg jwa.Algorithm, opts ...jwe.Option) (string, error)
}

// Decrypter opens the inner JWE.
type Decrypter interface {
	Decrypt(token string, recipient *keyutil.KeyMaterial, opts ...jwe.Option) (jwe.Payload, error)
}

// Signer produces the outer JWS.
type Signer interface {
	Sign(payload string, signer *keyutil.KeyMaterial, alg jwa.Algorithm, opts ...jws.Option) (string, error)
}

// Verifier checks the outer JWS and returns its payload.
type Verifier interface {
	Verify(token string, signer *keyutil.KeyMaterial, opts ...jws.Option) (string, error)
}

// EncrypterFunc adapts a function to the Encrypter interface.
type EncrypterFunc func(payload jwe.Payload, recipient *keyutil.KeyMaterial, keyAlg, contentAlg jwa.Algorithm, opts ...jwe.Option) (string, error)

func (f EncrypterFunc) Encrypt(payload jwe.Payload, recipient *keyutil.KeyMaterial, keyAlg, contentAlg jwa.Algorithm, opts ...jwe.Option) (string, error) {
	return f(payload, recipient, keyAlg, contentAlg, opts...)
}

// DecrypterFunc adapts a function to the Decrypter interface.
type DecrypterFunc func(token string, recipient *keyutil.KeyMaterial, opts ...jwe.Option) (jwe.Payload, error)

func (f DecrypterFunc) Decrypt(token string, recipient *keyutil.KeyMaterial, opts ...jwe.Option) (jwe.Payload, error) {
	return f(token, recipient, opts...)
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc func(payload string, signer *keyutil.KeyMaterial, alg jwa.Algorithm, opts ...jws.Option) (string, error)

func (f SignerFunc) Sign(payload string, signer *keyutil.KeyMaterial, alg jwa.Algorithm, opts ...jws.Option) (string, error) {
	return f(payload, signer, alg, opts...)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(token string, signer *keyutil.KeyMaterial, opts ...jws.Option) (string, error)

func (f VerifierFunc) Verify(token string, signer *keyutil.KeyMaterial, opts ...jws.Option) (string, error) {
	return f(token, signer, opts...)
}
