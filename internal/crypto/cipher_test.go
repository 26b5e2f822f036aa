package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)
	return c
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	for _, plain := range []string{"", "hello world today", "Hari ini aku senang sekali! 😀"} {
		sealed, err := c.Seal(plain)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
		if plain != "" {
			assert.NotContains(t, sealed, plain)
		}

		opened, err := c.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, opened)
	}
}

func TestCipher_NonceIsRandom(t *testing.T) {
	c := newTestCipher(t)
	a, err := c.Seal("same text")
	require.NoError(t, err)
	b, err := c.Seal("same text")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipher_OpenPlainPassesThrough(t *testing.T) {
	c := newTestCipher(t)
	out, err := c.Open("stored before encryption")
	require.NoError(t, err)
	assert.Equal(t, "stored before encryption", out)
}

func TestCipher_OpenFailures(t *testing.T) {
	c := newTestCipher(t)
	other := newTestCipher(t)

	sealed, err := other.Seal("secret")
	require.NoError(t, err)
	_, err = c.Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = c.Open(sealedPrefix + "!!!")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = c.Open(sealedPrefix + base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewCipher_InvalidKeys(t *testing.T) {
	_, err := NewCipher("not base64 ***")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewCipher(base64.StdEncoding.EncodeToString([]byte("sixteen byte key")))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}
