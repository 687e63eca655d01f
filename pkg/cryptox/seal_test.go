package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)

	s, err := NewSealer("correct horse", salt)
	require.NoError(t, err)

	plaintext := []byte(`{"id":"u-1","email":"a@example.com"}`)
	sealed, err := s.Seal(plaintext)
	require.NoError(t, err)
	require.False(t, bytes.Contains(sealed, []byte("a@example.com")), "sealed output must not contain plaintext")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealerUsesFreshNonce(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)
	s, err := NewSealer("pw", salt)
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestSealerRejectsWrongKey(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	s1, err := NewSealer("one", salt)
	require.NoError(t, err)
	s2, err := NewSealer("two", salt)
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decryption failed")
}

func TestSealerInputValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSealer("", []byte("0123456789abcdef"))
	require.Error(t, err)

	_, err = NewSealer("pw", []byte("short"))
	require.Error(t, err)

	s, err := NewSealer("pw", []byte("0123456789abcdef"))
	require.NoError(t, err)
	_, err = s.Open([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}
