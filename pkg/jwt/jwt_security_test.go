package jwt_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"
	"testing"
	"time"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/jws"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwt"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil/keyutiltest"
	"github.com/stretchr/testify/require"
)

func TestSecurityVulnerabilities(t *testing.T) {
	keys := testKeyPair(t)
	claims := base64.Encode([]byte(`{"sub":"admin"}`))

	t.Run("Algorithm Confusion Attack", func(t *testing.T) {
		// HMAC keyed with the public key bytes a verifier might hold.
		publicPEM, err := keyutil.EncodePublicKeyPEM(keys.public.Public())
		require.NoError(t, err)

		input := base64.Encode([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + claims
		mac := hmac.New(sha256.New, publicPEM)
		mac.Write([]byte(input))
		forged := input + "." + base64.Encode(mac.Sum(nil))

		_, err = jwt.ParseAndVerify(forged, keys.public)
		require.Error(t, err)

		_, err = jwt.ParseAndVerify(forged, keys.public, jwt.WithAllowedAlgorithms("HS256"))
		require.Error(t, err)
	})

	t.Run("None Algorithm Security", func(t *testing.T) {
		for _, alg := range []string{"none", "None", "NONE"} {
			forged := base64.Encode([]byte(`{"alg":"`+alg+`","typ":"JWT"}`)) + "." + claims + "."

			_, err := jwt.ParseAndVerify(forged, keys.public)
			require.Error(t, err, alg)

			_, err = jwt.ParseAndVerify(forged+"AA", keys.public, jwt.WithAllowedAlgorithms(alg))
			require.Error(t, err, alg)
		}
	})

	t.Run("Missing Algorithm Header", func(t *testing.T) {
		forged := base64.Encode([]byte(`{"typ":"JWT"}`)) + "." + claims + ".AA"

		_, err := jwt.ParseAndVerify(forged, keys.public)
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing or invalid algorithm")
	})

	t.Run("Empty Algorithm Header", func(t *testing.T) {
		forged := base64.Encode([]byte(`{"alg":"","typ":"JWT"}`)) + "." + claims + ".AA"

		_, err := jwt.ParseAndVerify(forged, keys.public)
		require.Error(t, err)
	})

	t.Run("Critical Header", func(t *testing.T) {
		signature, err := jws.New(jws.Header{
			header.Algorithm: jwa.RS256,
			header.Type:      jwt.Type,
			header.Critical:  []string{"exp"},
		}, []byte(`{"sub":"admin"}`), keys.private.Private())
		require.NoError(t, err)

		_, err = jwt.ParseAndVerify(signature.String(), keys.public)
		require.ErrorIs(t, err, header.ErrUnsupportedCritical)
	})

	t.Run("Wrong Header Type", func(t *testing.T) {
		token, err := jws.Sign(`{"sub":"admin"}`, keys.private, jwa.RS256)
		require.NoError(t, err)

		_, err = jwt.ParseAndVerify(token, keys.public)
		var typeErr *jwt.ErrInvalidType
		require.ErrorAs(t, err, &typeErr)
	})
}

func TestRSAKeySizeValidation(t *testing.T) {
	weak, err := keyutil.Load(keyutiltest.WeakPKCS1, keyutil.PrivateKeyPKCS1)
	require.NoError(t, err)
	require.Equal(t, 1024, weak.Size())

	t.Run("Signing with 1024-bit key should fail", func(t *testing.T) {
		_, err := jwt.New(jwt.ClaimsSet{jwt.Subject: "test"}, weak)
		require.Error(t, err)
		require.Contains(t, err.Error(), "below the minimum")
	})

	t.Run("Verification with 1024-bit key should fail", func(t *testing.T) {
		input := base64.Encode([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." + base64.Encode([]byte(`{"sub":"test"}`))

		// Sign directly so the weak key is only rejected by the verifier.
		signature := &jws.Signature{Header: jws.Header{header.Algorithm: jwa.RS256, header.Type: jwt.Type}, Payload: []byte(`{"sub":"test"}`)}
		_, err := signature.Sign(weak.Private())
		require.Error(t, err)

		_, err = jwt.ParseAndVerify(input+".AA", weak.PublicOnly())
		require.Error(t, err)
		require.Contains(t, err.Error(), "below the minimum")
	})

	t.Run("Signing with 2048-bit key should succeed", func(t *testing.T) {
		keys := testKeyPair(t)

		token, err := jwt.New(jwt.ClaimsSet{jwt.Subject: "test"}, keys.private)
		require.NoError(t, err)

		_, err = jwt.ParseAndVerify(token.String(), keys.public)
		require.NoError(t, err)
	})
}

func TestClockSkewTolerance(t *testing.T) {
	keys := testKeyPair(t)

	t.Run("Expiration with Clock Skew", func(t *testing.T) {
		token := testToken(t, jwt.ClaimsSet{
			jwt.Subject:        "test",
			jwt.ExpirationTime: time.Now().Add(-30 * time.Second),
		}, keys.private)

		_, err := jwt.ParseAndVerify(token.String(), keys.public)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)

		_, err = jwt.ParseAndVerify(token.String(), keys.public, jwt.WithClockSkewTolerance(time.Minute))
		require.NoError(t, err)

		_, err = jwt.ParseAndVerify(token.String(), keys.public, jwt.WithClockSkewTolerance(10*time.Second))
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("NotBefore with Clock Skew", func(t *testing.T) {
		token := testToken(t, jwt.ClaimsSet{
			jwt.Subject:   "test",
			jwt.NotBefore: time.Now().Add(30 * time.Second),
		}, keys.private)

		_, err := jwt.ParseAndVerify(token.String(), keys.public)
		require.ErrorIs(t, err, jwt.ErrTokenNotYetValid)

		_, err = jwt.ParseAndVerify(token.String(), keys.public, jwt.WithClockSkewTolerance(time.Minute))
		require.NoError(t, err)
	})

	t.Run("Negative tolerance", func(t *testing.T) {
		token := testToken(t, jwt.ClaimsSet{jwt.Subject: "test"}, keys.private)

		_, err := jwt.ParseAndVerify(token.String(), keys.public, jwt.WithClockSkewTolerance(-time.Second))
		require.Error(t, err)
	})
}

func TestParsingVulnerabilities(t *testing.T) {
	keys := testKeyPair(t)

	t.Run("Malformed JWT Structure", func(t *testing.T) {
		for _, malformed := range []string{
			"",
			"a",
			"a.b",
			"a.b.c.d",
			"..",
			"a..c",
		} {
			t.Run("malformed_"+malformed, func(t *testing.T) {
				_, err := jwt.Parse(malformed)
				require.Error(t, err)

				_, err = jwt.ParseAndVerify(malformed, keys.public)
				require.Error(t, err)
			})
		}
	})

	signed := func(t *testing.T, payload string) string {
		t.Helper()

		signature, err := jws.New(jws.Header{
			header.Algorithm: jwa.RS256,
			header.Type:      jwt.Type,
		}, []byte(payload), keys.private.Private())
		require.NoError(t, err)
		return signature.String()
	}

	t.Run("Invalid JSON in Claims", func(t *testing.T) {
		_, err := jwt.ParseAndVerify(signed(t, `{"sub":`), keys.public)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to decode claims JSON")
	})

	t.Run("Claims Not An Object", func(t *testing.T) {
		_, err := jwt.ParseAndVerify(signed(t, `["sub"]`), keys.public)
		require.Error(t, err)
	})

	t.Run("Invalid Time Claims", func(t *testing.T) {
		for _, payload := range []string{
			`{"exp":"tomorrow"}`,
			`{"nbf":true}`,
			`{"iat":1.5}`,
			`{"exp":1e300}`,
			`{"nbf":-1e300}`,
			`{"iat":9223372036854775808}`,
		} {
			_, err := jwt.ParseAndVerify(signed(t, payload), keys.public)
			var typeErr *jwt.ErrInvalidType
			require.ErrorAs(t, err, &typeErr, payload)
		}
	})

	t.Run("Invalid Audience Type", func(t *testing.T) {
		_, err := jwt.ParseAndVerify(signed(t, `{"aud":123}`), keys.public, jwt.WithAllowedAudiences("any"))
		require.Error(t, err)
		require.True(t, strings.Contains(err.Error(), "invalid type"))
	})
}
