package jwk

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueRSA(t *testing.T) {
	input := `
		{
			"kty":"RSA",
			"n": "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw",
			"e":"AQAB",
			"alg":"RS256",
			"kid":"2011-04-29"
		}`

	value := Value{}
	err := json.NewDecoder(strings.NewReader(input)).Decode(&value)
	require.NoError(t, err)
	require.NotEmpty(t, value)
	require.Equal(t, "2011-04-29", value[KeyID])

	require.NoError(t, Validate(value))

	pkey, err := RSAPublicKey(value)
	require.NoError(t, err)
	require.NotNil(t, pkey)
	require.Equal(t, 2048, pkey.N.BitLen())
	require.Equal(t, 65537, pkey.E)
}

func TestValueFromPublicKeyRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	value, err := ValueFromPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.Equal(t, KeyTypeRSA, value[KeyType])
	require.Equal(t, "AQAB", value[E])

	pub, err := RSAPublicKey(value)
	require.NoError(t, err)
	require.True(t, key.PublicKey.Equal(pub))
}

func TestValueFromPublicKeyInvalid(t *testing.T) {
	_, err := ValueFromPublicKey("not a key")
	require.Error(t, err)

	var nilKey *rsa.PublicKey
	_, err = ValueFromPublicKey(nilKey)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{name: "missing kty", value: Value{N: "AQAB", E: "AQAB"}},
		{name: "unsupported kty", value: Value{KeyType: "EC", "crv": "P-256"}},
		{name: "missing n", value: Value{KeyType: KeyTypeRSA, E: "AQAB"}},
		{name: "numeric e", value: Value{KeyType: KeyTypeRSA, N: "AQAB", E: 65537}},
		{name: "invalid base64 n", value: Value{KeyType: KeyTypeRSA, N: "A+B/", E: "AQAB"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Error(t, Validate(test.value))

			_, err := RSAPublicKey(test.value)
			require.Error(t, err)
		})
	}
}
