package envelope

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwe"
	"github.com/heliostechlabs/axis-test-enc/pkg/jws"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// ContentType is the "cty" of the outer JWS, marking its payload as a JWE.
const ContentType = "JWE"

// VerificationError is returned by VerifyThenDecrypt when the outer
// signature does not verify. Decryption is never attempted in that case.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("envelope signature verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Composer nests a JWE inside a JWS. It is immutable once built and safe
// for concurrent use.
type Composer struct {
	encrypter Encrypter
	decrypter Decrypter
	signer    Signer
	verifier  Verifier

	keyAlgorithm     jwa.Algorithm
	contentAlgorithm jwa.Algorithm
	signingAlgorithm jwa.Algorithm

	quotedInnerToken bool
	keyIDs           bool

	log logr.Logger
}

// New returns a Composer using RSA-OAEP, A128GCM and RS256 unless
// configured otherwise.
func New(opts ...Option) (*Composer, error) {
	c := &Composer{
		encrypter:        EncrypterFunc(jwe.Encrypt),
		decrypter:        DecrypterFunc(jwe.Decrypt),
		signer:           SignerFunc(jws.Sign),
		verifier:         VerifierFunc(jws.Verify),
		keyAlgorithm:     jwa.RSAOAEP,
		contentAlgorithm: jwa.A128GCM,
		signingAlgorithm: jwa.RS256,
		log:              logr.Discard(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to configure envelope: %w", err)
		}
	}

	return c, nil
}

// EncryptThenSign encrypts payload for recipient, then signs the resulting
// JWE with signer. The result is a JWS compact serialization whose payload
// is the JWE.
func (c *Composer) EncryptThenSign(ctx context.Context, payload jwe.Payload, recipient, signer *keyutil.KeyMaterial) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var jweOpts []jwe.Option
	jwsOpts := []jws.Option{jws.WithContentType(ContentType)}

	if c.keyIDs {
		recipientID, err := recipient.KeyID()
		if err != nil {
			return "", &jwe.EncryptionError{Op: "recipient key id", Err: err}
		}
		signerID, err := signer.KeyID()
		if err != nil {
			return "", &jws.SigningError{Reason: "signer key id", Err: err}
		}
		jweOpts = append(jweOpts, jwe.WithKeyID(recipientID))
		jwsOpts = append(jwsOpts, jws.WithKeyID(signerID))
	}

	inner, err := c.encrypter.Encrypt(payload, recipient, c.keyAlgorithm, c.contentAlgorithm, jweOpts...)
	if err != nil {
		return "", err
	}

	c.log.V(1).Info("encrypted payload", "alg", c.keyAlgorithm, "enc", c.contentAlgorithm, "size", len(inner))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	signingPayload := inner
	if c.quotedInnerToken {
		quoted, err := json.Marshal(inner)
		if err != nil {
			return "", &jws.SigningError{Reason: "quote inner token", Err: err}
		}
		signingPayload = string(quoted)
	}

	outer, err := c.signer.Sign(signingPayload, signer, c.signingAlgorithm, jwsOpts...)
	if err != nil {
		return "", err
	}

	c.log.V(1).Info("signed envelope", "alg", c.signingAlgorithm, "size", len(outer))

	return outer, nil
}

// VerifyThenDecrypt verifies token against signer and only then decrypts
// the inner JWE with recipient. A failed verification is returned as a
// *VerificationError and the inner token is never decrypted.
func (c *Composer) VerifyThenDecrypt(ctx context.Context, token string, signer, recipient *keyutil.KeyMaterial) (jwe.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jwsOpts := []jws.Option{jws.WithAllowedAlgorithms(c.signingAlgorithm)}
	jweOpts := []jwe.Option{jwe.WithAllowedAlgorithms(c.keyAlgorithm, c.contentAlgorithm)}

	if c.keyIDs {
		signerID, err := signer.KeyID()
		if err != nil {
			return nil, &VerificationError{Err: &jws.SignatureVerificationError{Reason: "signer key id", Err: err}}
		}
		jwsOpts = append(jwsOpts, jws.WithKeyID(signerID))
	}

	inner, err := c.verifier.Verify(token, signer, jwsOpts...)
	if err != nil {
		c.log.V(1).Info("envelope signature rejected", "error", err.Error())
		return nil, &VerificationError{Err: err}
	}

	c.log.V(1).Info("verified envelope", "size", len(inner))

	if c.keyIDs {
		recipientID, err := recipient.KeyID()
		if err != nil {
			return nil, &jwe.DecryptionError{Reason: "recipient key id", Err: err}
		}
		jweOpts = append(jweOpts, jwe.WithKeyID(recipientID))
	}

	if c.quotedInnerToken {
		var unquoted string
		if err := json.Unmarshal([]byte(inner), &unquoted); err != nil {
			return nil, &jwe.DecryptionError{Reason: "signed payload is not a quoted token", Err: err}
		}
		inner = unquoted
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := c.decrypter.Decrypt(inner, recipient, jweOpts...)
	if err != nil {
		return nil, err
	}

	c.log.V(1).Info("decrypted payload", "fields", len(payload))

	return payload, nil
}

var defaultComposer, _ = New()

// EncryptThenSign uses a Composer with the default algorithms.
func EncryptThenSign(ctx context.Context, payload jwe.Payload, recipient, signer *keyutil.KeyMaterial) (string, error) {
	return defaultComposer.EncryptThenSign(ctx, payload, recipient, signer)
}

// VerifyThenDecrypt uses a Composer with the default algorithms.
func VerifyThenDecrypt(ctx context.Context, token string, signer, recipient *keyutil.KeyMaterial) (jwe.Payload, error) {
	return defaultComposer.VerifyThenDecrypt(ctx, token, signer, recipient)
}
