package session_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/session/drivers/memory"
	"github.com/aussiebroadwan/imeet/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newJar(t *testing.T, store session.Store) *session.CookieJar {
	t.Helper()
	jar, err := session.NewCookieJar(context.Background(), store, slogx.Discard())
	require.NoError(t, err)
	return jar
}

func cookieValues(cs []*http.Cookie) map[string]string {
	out := make(map[string]string, len(cs))
	for _, c := range cs {
		out[c.Name] = c.Value
	}
	return out
}

func TestCookieJar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend, _ := url.Parse("http://127.0.0.1:8081/api/oauth2/user")
	other, _ := url.Parse("http://imeet.test/")

	t.Run("cookies survive a new jar over the same store", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		newJar(t, store).SetCookies(backend, []*http.Cookie{{Name: "JSESSIONID", Value: "abc", Path: "/", HttpOnly: true}})

		again := newJar(t, store)
		require.Equal(t, map[string]string{"JSESSIONID": "abc"}, cookieValues(again.Cookies(backend)))
		require.Empty(t, again.Cookies(other))
	})

	t.Run("server expiry removes the persisted cookie", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		jar := newJar(t, store)
		jar.SetCookies(backend, []*http.Cookie{{Name: "JSESSIONID", Value: "abc", Path: "/"}})

		clear, _ := url.Parse("http://127.0.0.1:8081/api/oauth2/clear-session")
		jar.SetCookies(clear, []*http.Cookie{{Name: "JSESSIONID", Path: "/", MaxAge: -1}})

		require.Empty(t, jar.Cookies(backend))
		require.Empty(t, newJar(t, store).Cookies(backend))
		_, err := store.Get(ctx, string(session.SlotCookies))
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("expired cookies are not replayed", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		newJar(t, store).SetCookies(backend, []*http.Cookie{
			{Name: "short", Value: "1", Path: "/", Expires: time.Now().Add(50 * time.Millisecond)},
			{Name: "long", Value: "2", Path: "/", MaxAge: 3600},
		})
		time.Sleep(100 * time.Millisecond)

		require.Equal(t, map[string]string{"long": "2"}, cookieValues(newJar(t, store).Cookies(backend)))
	})

	t.Run("reset forgets everything", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		jar := newJar(t, store)
		jar.SetCookies(backend, []*http.Cookie{{Name: "JSESSIONID", Value: "abc", Path: "/"}})

		require.NoError(t, jar.Reset(ctx))
		require.Empty(t, jar.Cookies(backend))
		require.Empty(t, newJar(t, store).Cookies(backend))
	})

	t.Run("clear all keeps cookies", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		newJar(t, store).SetCookies(backend, []*http.Cookie{{Name: "JSESSIONID", Value: "abc", Path: "/"}})

		require.NoError(t, session.NewCache(store, slogx.Discard()).ClearAll(ctx))
		require.NotEmpty(t, newJar(t, store).Cookies(backend))
	})

	t.Run("malformed slot reads as empty", func(t *testing.T) {
		t.Parallel()
		store := memory.New()
		require.NoError(t, store.Set(ctx, string(session.SlotCookies), "{not json"))
		require.Empty(t, newJar(t, store).Cookies(backend))
	})
}
