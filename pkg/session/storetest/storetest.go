// Package storetest is a conformance suite shared by session.Store drivers.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/stretchr/testify/require"
)

// Run exercises the session.Store contract against stores built by newStore.
// Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) session.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "user", `{"id":"1"}`))

		v, err := s.Get(ctx, "user")
		require.NoError(t, err)
		require.Equal(t, `{"id":"1"}`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "token", "a"))
		require.NoError(t, s.Set(ctx, "token", "b"))

		v, err := s.Get(ctx, "token")
		require.NoError(t, err)
		require.Equal(t, "b", v)
	})

	t.Run("delete removes many and ignores missing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", "1"))
		require.NoError(t, s.Set(ctx, "b", "2"))
		require.NoError(t, s.Set(ctx, "keep", "3"))

		require.NoError(t, s.Delete(ctx, "a", "b", "never-set"))

		_, err := s.Get(ctx, "a")
		require.ErrorIs(t, err, session.ErrNotFound)
		_, err = s.Get(ctx, "b")
		require.ErrorIs(t, err, session.ErrNotFound)

		v, err := s.Get(ctx, "keep")
		require.NoError(t, err)
		require.Equal(t, "3", v)
	})

	t.Run("delete with no keys is a no-op", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Delete(ctx))
	})

	t.Run("empty value round trips", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "empty", ""))

		v, err := s.Get(ctx, "empty")
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("clear all through cache", func(t *testing.T) {
		s := newStore(t)
		cache := session.NewCache(s, nil)
		require.NoError(t, cache.SaveUser(ctx, session.UserRecord{ID: "u"}))
		require.NoError(t, cache.SaveOAuth2User(ctx, session.UserRecord{ID: "o"}))
		require.NoError(t, cache.SaveToken(ctx, "tok"))

		require.NoError(t, cache.ClearAll(ctx))
		require.Nil(t, cache.User(ctx))
		require.Nil(t, cache.OAuth2User(ctx))
		require.Empty(t, cache.Token(ctx))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStore(t)

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Set(ctx, "shared", string(rune('a'+i)))
			}()
		}
		wg.Wait()

		v, err := s.Get(ctx, "shared")
		require.NoError(t, err)
		require.Len(t, v, 1)
	})
}
