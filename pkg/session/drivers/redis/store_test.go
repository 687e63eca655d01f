package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/session/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T, prefix string, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewStore(rdb, prefix, ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) session.Store {
		s, _ := newMiniredisStore(t, "", 0)
		return s
	})
}

func TestKeysArePrefixed(t *testing.T) {
	s, mr := newMiniredisStore(t, "browser-42", 0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "token", "abc"))
	v, err := mr.Get("browser-42:token")
	require.NoError(t, err)
	require.Equal(t, "abc", v)
	require.False(t, mr.Exists("token"))
}

func TestDefaultPrefix(t *testing.T) {
	s, mr := newMiniredisStore(t, "", 0)
	require.NoError(t, s.Set(context.Background(), "user", "{}"))
	require.True(t, mr.Exists(DefaultPrefix+":user"))
}

func TestTTLExpiresValues(t *testing.T) {
	s, mr := newMiniredisStore(t, "p", time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "oauth2User", `{"id":"x"}`))
	require.Equal(t, time.Minute, mr.TTL("p:oauth2User"))

	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "oauth2User")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestUnavailableServerSurfacesError(t *testing.T) {
	s, mr := newMiniredisStore(t, "", 0)
	mr.Close()

	_, err := s.Get(context.Background(), "token")
	require.Error(t, err)
	require.NotErrorIs(t, err, session.ErrNotFound)
}
