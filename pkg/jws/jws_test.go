package jws

import (
	"errors"
	"strings"
	"testing"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil/keyutiltest"
	"github.com/stretchr/testify/require"
)

func loadKey(t *testing.T, pemBytes []byte) *keyutil.KeyMaterial {
	t.Helper()

	key, err := keyutil.LoadAny(pemBytes)
	require.NoError(t, err)
	return key
}

func TestJWSBasicFlow(t *testing.T) {
	key := loadKey(t, keyutiltest.RecipientPKCS8)

	for _, alg := range []jwa.Algorithm{jwa.RS256, jwa.RS384, jwa.RS512} {
		t.Run(string(alg), func(t *testing.T) {
			h := Header{
				header.Algorithm: alg,
				header.Type:      "JWS",
			}

			payload := []byte("Hello, JWS World!")

			signature, err := New(h, payload, key.Private())
			require.NoError(t, err)
			require.NotNil(t, signature)
			require.Equal(t, payload, signature.Payload)
			require.Len(t, signature.Signature, 256)

			signatureStr := signature.String()
			require.Equal(t, 2, strings.Count(signatureStr, "."), "JWS should have exactly 2 periods")

			parsedSignature, err := Parse(signatureStr)
			require.NoError(t, err)

			parsedAlg, err := parsedSignature.Header.Algorithm()
			require.NoError(t, err)
			require.Equal(t, alg, parsedAlg)
			require.Equal(t, signature.Payload, parsedSignature.Payload)
			require.Equal(t, signature.Signature, parsedSignature.Signature)
			require.Equal(t, signatureStr, parsedSignature.String())

			err = parsedSignature.Verify(key.Public(), alg)
			require.NoError(t, err)
		})
	}
}

func TestJWSParsing(t *testing.T) {
	validHeader := base64.Encode([]byte(`{"alg":"RS256"}`))

	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "empty string", input: "", errMsg: "empty JWS string"},
		{name: "one dot", input: validHeader + ".payload", errMsg: "expected 2 dots, got 1"},
		{name: "too many dots", input: "a.b.c.d", errMsg: "expected 2 dots, got 3"},
		{name: "jwe shaped", input: "a.b.c.d.e", errMsg: "expected 2 dots, got 4"},
		{name: "empty header", input: ".cGF5bG9hZA.c2ln", errMsg: "failed to decode header"},
		{name: "invalid header base64", input: "!!!.cGF5bG9hZA.c2ln", errMsg: "failed to decode header"},
		{name: "invalid header json", input: base64.Encode([]byte("not json")) + ".cGF5bG9hZA.c2ln", errMsg: "failed to parse header"},
		{name: "invalid payload base64", input: validHeader + ".!!!.c2ln", errMsg: "failed to decode payload"},
		{name: "missing signature", input: validHeader + ".cGF5bG9hZA.", errMsg: "failed to decode signature"},
		{name: "padded signature", input: validHeader + ".cGF5bG9hZA.c2lnbg==", errMsg: "failed to decode signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("header encoding errors wrap the sentinel", func(t *testing.T) {
		_, err := Parse("!!!.cGF5bG9hZA.c2ln")
		require.ErrorIs(t, err, header.ErrInvalidEncoding)

		_, err = Parse(base64.Encode([]byte("not json")) + ".cGF5bG9hZA.c2ln")
		require.NotErrorIs(t, err, header.ErrInvalidEncoding)
	})
}

func TestJWSSignatureVerification(t *testing.T) {
	key := loadKey(t, keyutiltest.RecipientPKCS8)

	h := Header{
		header.Algorithm: jwa.RS256,
	}
	payload := []byte("test payload")

	token, err := New(h, payload, key.Private())
	require.NoError(t, err)

	t.Run("valid signature", func(t *testing.T) {
		err := token.Verify(key.Public())
		require.NoError(t, err)
	})

	t.Run("tampered signature", func(t *testing.T) {
		tamperedToken := *token
		tamperedToken.Signature = append([]byte(nil), token.Signature...)
		tamperedToken.Signature[0] ^= 0xFF

		err := tamperedToken.Verify(key.Public())
		require.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := loadKey(t, keyutiltest.OtherPKCS8)

		err := token.Verify(other.Public())
		require.Error(t, err)
	})

	t.Run("weak key", func(t *testing.T) {
		weak := loadKey(t, keyutiltest.WeakPKCS1)

		err := token.Verify(weak.Public())
		require.Error(t, err)
		require.Contains(t, err.Error(), "below the minimum")

		_, err = New(h, payload, weak.Private())
		require.Error(t, err)
	})

	t.Run("algorithm not allowed", func(t *testing.T) {
		err := token.Verify(key.Public(), jwa.RS512)
		require.Error(t, err)
		require.Contains(t, err.Error(), "not allowed")
	})

	t.Run("critical header", func(t *testing.T) {
		critical, err := New(Header{
			header.Algorithm: jwa.RS256,
			header.Critical:  []string{"exp"},
		}, payload, key.Private())
		require.NoError(t, err)

		err = critical.Verify(key.Public())
		require.ErrorIs(t, err, header.ErrUnsupportedCritical)
	})

	t.Run("missing algorithm", func(t *testing.T) {
		tokenWithoutAlg := &Signature{
			Header:  Header{},
			Payload: payload,
		}

		err := tokenWithoutAlg.Verify(key.Public())
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing or invalid algorithm")
	})
}

func TestJWSAlgorithmSupport(t *testing.T) {
	key := loadKey(t, keyutiltest.RecipientPKCS8)

	for _, alg := range []jwa.Algorithm{"UNSUPPORTED", "HS256", "none", "ES256"} {
		t.Run(string(alg), func(t *testing.T) {
			token := &Signature{
				Header:  Header{header.Algorithm: alg},
				Payload: []byte("test"),
			}

			_, err := token.Sign(key.Private())
			require.Error(t, err)
			require.Contains(t, err.Error(), "unsupported algorithm")

			token.Signature = []byte("sig")
			err = token.Verify(key.Public())
			require.Error(t, err)
			require.Contains(t, err.Error(), "unsupported algorithm")
		})
	}
}

func TestJWSPayloadFlexibility(t *testing.T) {
	key := loadKey(t, keyutiltest.RecipientPKCS1)

	h := Header{
		header.Algorithm: jwa.RS256,
	}

	testCases := []struct {
		name    string
		payload []byte
	}{
		{"empty payload", []byte{}},
		{"text payload", []byte("Hello, World!")},
		{"json payload", []byte(`{"message": "Hello, JWS!", "timestamp": 1234567890}`)},
		{"binary payload", []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := New(h, tc.payload, key.Private())
			require.NoError(t, err)

			parsedToken, err := Parse(token.String())
			require.NoError(t, err)
			require.Equal(t, tc.payload, parsedToken.Payload)

			err = parsedToken.Verify(key.Public())
			require.NoError(t, err)
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	signer := loadKey(t, keyutiltest.RecipientPKCS8)
	verifier := loadKey(t, keyutiltest.RecipientCertificate)

	token, err := Sign(`{"hello":"world"}`, signer, jwa.RS256, WithContentType("JWE"), WithKeyID("abc"))
	require.NoError(t, err)

	parsed, err := Parse(token)
	require.NoError(t, err)

	typ, err := parsed.Header.Type()
	require.NoError(t, err)
	require.Equal(t, Type, typ)

	cty, err := parsed.Header.ContentType()
	require.NoError(t, err)
	require.Equal(t, "JWE", cty)

	payload, err := Verify(token, verifier)
	require.NoError(t, err)
	require.Equal(t, `{"hello":"world"}`, payload)

	payload, err = Verify(token, verifier, WithKeyID("abc"))
	require.NoError(t, err)
	require.Equal(t, `{"hello":"world"}`, payload)

	empty, err := Sign("", signer, jwa.RS256)
	require.NoError(t, err)

	payload, err = Verify(empty, verifier)
	require.NoError(t, err)
	require.Empty(t, payload)
}

func TestSignErrors(t *testing.T) {
	signer := loadKey(t, keyutiltest.RecipientPKCS8)

	tests := []struct {
		name   string
		key    *keyutil.KeyMaterial
		alg    jwa.Algorithm
		opts   []Option
		target error
	}{
		{name: "nil key", key: nil, alg: jwa.RS256, target: ErrNoPrivateKey},
		{name: "public key only", key: loadKey(t, keyutiltest.RecipientCertificate), alg: jwa.RS256, target: ErrNoPrivateKey},
		{name: "weak key", key: loadKey(t, keyutiltest.WeakPKCS1), alg: jwa.RS256},
		{name: "unsupported algorithm", key: signer, alg: "HS256"},
		{name: "invalid option", key: signer, alg: jwa.RS256, opts: []Option{WithAllowedAlgorithms()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Sign("payload", tt.key, tt.alg, tt.opts...)
			require.Error(t, err)
			require.Empty(t, token)

			var signErr *SigningError
			require.ErrorAs(t, err, &signErr)

			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestVerifyFailures(t *testing.T) {
	signer := loadKey(t, keyutiltest.RecipientPKCS8)
	verifier := loadKey(t, keyutiltest.RecipientCertificate)

	token, err := Sign("payload", signer, jwa.RS256, WithKeyID("signer"))
	require.NoError(t, err)

	rs512, err := Sign("payload", signer, jwa.RS512)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	otherHeader := base64.Encode([]byte(`{"alg":"RS256","typ":"JWT"}`))
	otherPayload := base64.Encode([]byte("payloaD"))

	tests := []struct {
		name  string
		token string
		key   *keyutil.KeyMaterial
		opts  []Option
	}{
		{name: "appended character", token: token + "x", key: verifier},
		{name: "appended dot", token: token + ".", key: verifier},
		{name: "truncated", token: token[:len(token)-4], key: verifier},
		{name: "swapped header", token: otherHeader + "." + parts[1] + "." + parts[2], key: verifier},
		{name: "swapped payload", token: parts[0] + "." + otherPayload + "." + parts[2], key: verifier},
		{name: "wrong key", token: token, key: loadKey(t, keyutiltest.OtherPKCS8)},
		{name: "no key", token: token, key: nil},
		{name: "empty token", token: "", key: verifier},
		{name: "jwe token", token: "a.b.c.d.e", key: verifier},
		{name: "algorithm not allowed by default", token: rs512, key: verifier},
		{name: "key id mismatch", token: token, key: verifier, opts: []Option{WithKeyID("someone-else")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Verify(tt.token, tt.key, tt.opts...)
			require.Error(t, err)
			require.Empty(t, payload)

			var verifyErr *SignatureVerificationError
			require.True(t, errors.As(err, &verifyErr), "got %T: %v", err, err)
		})
	}

	payload, err := Verify(rs512, verifier, WithAllowedAlgorithms(jwa.RS256, jwa.RS512))
	require.NoError(t, err)
	require.Equal(t, "payload", payload)
}
