package jws

import (
	"testing"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil/keyutiltest"
	"github.com/stretchr/testify/require"
)

func TestInteropGoJose(t *testing.T) {
	key := loadKey(t, keyutiltest.RecipientPKCS8)
	payload := `{"message":"This is a secret message."}`

	t.Run("go-jose verifies our token", func(t *testing.T) {
		token, err := Sign(payload, key, jwa.RS256, WithContentType("JWE"))
		require.NoError(t, err)

		parsed, err := jose.ParseSigned(token)
		require.NoError(t, err)

		verified, err := parsed.Verify(key.Public())
		require.NoError(t, err)
		require.Equal(t, payload, string(verified))
	})

	t.Run("we verify a go-jose token", func(t *testing.T) {
		signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key.Private()}, nil)
		require.NoError(t, err)

		object, err := signer.Sign([]byte(payload))
		require.NoError(t, err)

		token, err := object.CompactSerialize()
		require.NoError(t, err)

		verified, err := Verify(token, key.PublicOnly())
		require.NoError(t, err)
		require.Equal(t, payload, verified)
	})

	t.Run("go-jose rejects a token signed by another key", func(t *testing.T) {
		other := loadKey(t, keyutiltest.OtherPKCS8)

		token, err := Sign(payload, other, jwa.RS256)
		require.NoError(t, err)

		parsed, err := jose.ParseSigned(token)
		require.NoError(t, err)

		_, err = parsed.Verify(key.Public())
		require.Error(t, err)
	})
}
