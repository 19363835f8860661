package base64

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		Name  string
		Input []byte
	}{
		{
			Name:  "plaintext",
			Input: []byte("hello world"),
		},
		{
			Name:  "url unsafe characters",
			Input: []byte{0xfb, 0xff, 0xfe},
		},
		{
			Name: "random bytes",
			Input: func() []byte {
				numBytes := 32
				buff := make([]byte, numBytes)

				n, err := rand.Read(buff)
				require.NoError(t, err)
				require.Equal(t, n, numBytes)

				t.Logf("random bytes for test: %x", buff)

				return buff
			}(),
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			encoded := Encode(test.Input)
			require.NotEmpty(t, encoded)
			require.NotContains(t, encoded, "=")
			require.NotContains(t, encoded, "+")
			require.NotContains(t, encoded, "/")

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, test.Input, decoded)
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	require.Equal(t, "", Encode(nil))
	require.Equal(t, "", Encode([]byte{}))
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		Name  string
		Input string
	}{
		{Name: "empty", Input: ""},
		{Name: "padded", Input: "aGk="},
		{Name: "standard alphabet", Input: "+/+/"},
		{Name: "impossible length", Input: "abcde"},
		{Name: "non-zero trailing bits", Input: "aGl"},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, err := Decode(test.Input)
			require.Error(t, err)
		})
	}

	_, err := Decode("")
	require.ErrorIs(t, err, ErrEmptyInput)
}
