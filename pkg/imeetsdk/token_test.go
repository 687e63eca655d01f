package imeetsdk

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestInspectToken(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)

	t.Run("live token", func(t *testing.T) {
		tok := signed(t, jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})

		claims, err := InspectToken(tok)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.True(t, claims.IssuedAt.Equal(now))
		require.False(t, claims.Expired(now))
		require.True(t, claims.Expired(now.Add(2*time.Hour)))
	})

	t.Run("expired token still decodes", func(t *testing.T) {
		tok := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})

		claims, err := InspectToken(tok)
		require.NoError(t, err)
		require.True(t, claims.Expired(now))
	})

	t.Run("no exp never expires", func(t *testing.T) {
		claims, err := InspectToken(signed(t, jwt.RegisteredClaims{Subject: "x"}))
		require.NoError(t, err)
		require.False(t, claims.Expired(now.Add(100*365*24*time.Hour)))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := InspectToken("not-a-jwt")
		require.ErrorIs(t, err, ErrNotJWT)
	})
}

func TestNewRequestID(t *testing.T) {
	t.Parallel()

	a := newRequestID()
	b := newRequestID()
	require.Len(t, a, 26)
	require.NotEqual(t, a, b)
	require.Less(t, a, b)
}
