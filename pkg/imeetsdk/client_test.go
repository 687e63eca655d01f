package imeetsdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/imeet/internal/fakebackend"
	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/session/drivers/memory"
	"github.com/aussiebroadwan/imeet/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*fakebackend.Server, *imeetsdk.SDKClient) {
	t.Helper()
	srv := fakebackend.New()
	t.Cleanup(srv.Close)
	return srv, imeetsdk.NewSDKClient(srv.URL)
}

func TestNewSDKClient(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		c := imeetsdk.NewSDKClient("")
		require.Equal(t, imeetsdk.DefaultBaseURL, c.BaseURL)
		require.NotNil(t, c.HTTPClient.Jar)
		require.Nil(t, c.Limiter)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c := imeetsdk.NewSDKClient("http://example.test/")
		require.Equal(t, "http://example.test", c.BaseURL)
		require.Equal(t, "http://example.test/oauth2/authorization/cognito", c.AuthorizationURL())
	})

	t.Run("rate limit option", func(t *testing.T) {
		c := imeetsdk.NewSDKClient("http://example.test", imeetsdk.WithRateLimit(5, 0))
		require.NotNil(t, c.Limiter)
		require.Equal(t, 1, c.Limiter.Burst())

		c = imeetsdk.NewSDKClient("http://example.test", imeetsdk.WithRateLimit(0, 3))
		require.Nil(t, c.Limiter)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	srv.AddAccount(fakebackend.Account{
		Email:     "an@imeet.test",
		Password:  "secret1",
		Username:  "an",
		FullName:  "Nguyen Van An",
		AvatarURL: "/uploads/a.png",
	})

	t.Run("success", func(t *testing.T) {
		resp, err := client.Login(ctx, imeetsdk.LoginRequest{Email: "an@imeet.test", Password: "secret1"})
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.NotEmpty(t, resp.Token)
		require.Equal(t, "an", resp.Username)
		require.Equal(t, "Nguyen Van An", resp.FullName)
		require.Equal(t, "/uploads/a.png", resp.AvatarURL)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, imeetsdk.LoginRequest{Email: "an@imeet.test", Password: "nope"})
		require.Error(t, err)

		apiErr, ok := imeetsdk.AsAPIError(err)
		require.True(t, ok)
		require.True(t, apiErr.IsUnauthorized())
		require.Equal(t, "Invalid email or password", apiErr.Message)
		require.True(t, imeetsdk.IsRejection(err))
	})
}

func TestSignup(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	resp, err := client.Signup(ctx, imeetsdk.SignupRequest{Email: "b@imeet.test", Password: "pw1234", Username: "b"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, ok := srv.Account("b@imeet.test")
	require.True(t, ok)

	_, err = client.Signup(ctx, imeetsdk.SignupRequest{Email: "b@imeet.test", Password: "pw1234", Username: "b"})
	apiErr, ok := imeetsdk.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Email already exists", apiErr.Message)
}

func TestCheckAuth(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	srv.AddAccount(fakebackend.Account{Email: "c@imeet.test", Password: "pw", Username: "c", AvatarURL: "/a.png"})
	token := srv.IssueToken("c@imeet.test", time.Hour)

	t.Run("valid token", func(t *testing.T) {
		resp, err := client.CheckAuth(ctx, token)
		require.NoError(t, err)
		require.True(t, resp.Accepted())
		require.Equal(t, "c", resp.Username)
		require.Equal(t, "/a.png", resp.AvatarURL)
	})

	t.Run("unknown token answers 200 not accepted", func(t *testing.T) {
		resp, err := client.CheckAuth(ctx, "garbage")
		require.NoError(t, err)
		require.False(t, resp.Accepted())
		require.Equal(t, "Invalid token", resp.Message)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := client.CheckAuth(ctx, "")
		require.ErrorIs(t, err, imeetsdk.ErrMissingToken)
	})

	t.Run("bearer header sent", func(t *testing.T) {
		srv.ResetCalls()
		_, err := client.CheckAuth(ctx, token)
		require.NoError(t, err)

		calls := srv.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, token, calls[0].Bearer)
		require.Len(t, calls[0].RequestID, 26)
	})
}

func TestErrorResponses(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	t.Run("server error with message", func(t *testing.T) {
		srv.Fail(http.MethodGet, "/api/oauth2/user", fakebackend.Fault{Status: http.StatusBadGateway, Times: 1})
		_, err := client.OAuth2User(ctx)

		apiErr, ok := imeetsdk.AsAPIError(err)
		require.True(t, ok)
		require.True(t, apiErr.IsServerError())
		require.False(t, apiErr.IsRejection())
		require.Equal(t, "Bad Gateway", apiErr.Message)
		require.Contains(t, apiErr.Error(), "502")
	})

	t.Run("error field", func(t *testing.T) {
		srv.Fail(http.MethodGet, "/api/oauth2/user", fakebackend.Fault{
			Status: http.StatusForbidden,
			Body:   map[string]any{"error": "slow down"},
			Times:  1,
		})
		_, err := client.OAuth2User(ctx)

		apiErr, ok := imeetsdk.AsAPIError(err)
		require.True(t, ok)
		require.True(t, apiErr.IsForbidden())
		require.Equal(t, "slow down", apiErr.Message)
	})

	t.Run("plain text body", func(t *testing.T) {
		srv.Fail(http.MethodGet, "/api/oauth2/user", fakebackend.Fault{
			Status: http.StatusUnauthorized,
			Body:   "Not authenticated",
			Times:  1,
		})
		_, err := client.OAuth2User(ctx)

		apiErr, ok := imeetsdk.AsAPIError(err)
		require.True(t, ok)
		require.Equal(t, "Not authenticated", apiErr.Message)
	})

	t.Run("long plain text body is cut on a rune boundary", func(t *testing.T) {
		// "ệ" is three bytes, so a byte cut at 200 would land inside a rune.
		long := "x" + strings.Repeat("ệ", 300)
		srv.Fail(http.MethodGet, "/api/oauth2/user", fakebackend.Fault{
			Status: http.StatusBadGateway,
			Body:   long,
			Times:  1,
		})
		_, err := client.OAuth2User(ctx)

		apiErr, ok := imeetsdk.AsAPIError(err)
		require.True(t, ok)
		require.True(t, utf8.ValidString(apiErr.Message))
		require.Equal(t, 200, utf8.RuneCountInString(apiErr.Message))
		require.Equal(t, string([]rune(long)[:200]), apiErr.Message)
		require.Len(t, apiErr.Body, len(long))
	})

	t.Run("deadline is a transport error", func(t *testing.T) {
		srv.Fail(http.MethodGet, "/api/oauth2/status", fakebackend.Fault{Delay: time.Second, Times: 1})

		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := client.OAuth2Status(ctx)
		require.Error(t, err)
		require.True(t, errors.Is(err, context.DeadlineExceeded))
		_, ok := imeetsdk.AsAPIError(err)
		require.False(t, ok)
	})
}

func TestOAuth2Session(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	user, err := client.OAuth2User(ctx)
	require.NoError(t, err)
	require.False(t, user.Authenticated)
	require.Equal(t, "No principal found", user.Error)

	refresh, err := client.RefreshSession(ctx)
	require.NoError(t, err)
	require.False(t, refresh.Success)

	sid := srv.SignIn(fakebackend.Identity{
		Sub:        "sub-1",
		Username:   "google_123",
		Email:      "d@imeet.test",
		Name:       "Dang Thi D",
		Picture:    "https://img.test/d.png",
		Attributes: map[string]any{"email_verified": true},
	})

	// Another client without the cookie does not see the session.
	other, err := imeetsdk.NewSDKClient(srv.URL).OAuth2User(ctx)
	require.NoError(t, err)
	require.False(t, other.Authenticated)

	require.NoError(t, client.SetSessionCookie(sid))

	user, err = client.OAuth2User(ctx)
	require.NoError(t, err)
	require.True(t, user.Authenticated)
	require.Equal(t, "sub-1", user.Sub)
	require.Equal(t, "Dang Thi D", user.DisplayFullName())
	require.Equal(t, true, user.Attributes["email_verified"])

	refresh, err = client.RefreshSession(ctx)
	require.NoError(t, err)
	require.True(t, refresh.Success)
	require.True(t, refresh.Authenticated)
	require.Equal(t, "d@imeet.test", refresh.Email)

	status, err := client.OAuth2Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Authenticated)

	require.NoError(t, client.ClearSession(ctx))
	require.False(t, srv.SignedIn())

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	require.Empty(t, client.HTTPClient.Jar.Cookies(base))
}

func TestSessionCookieSharedThroughStore(t *testing.T) {
	t.Parallel()
	srv := fakebackend.New()
	t.Cleanup(srv.Close)
	ctx := context.Background()
	store := memory.New()

	newClient := func() *imeetsdk.SDKClient {
		jar, err := session.NewCookieJar(ctx, store, slogx.Discard())
		require.NoError(t, err)
		return imeetsdk.NewSDKClient(srv.URL, imeetsdk.WithCookieJar(jar))
	}

	first := newClient()
	require.NoError(t, first.SetSessionCookie(srv.SignIn(fakebackend.Identity{Sub: "sub-9", Email: "e@imeet.test"})))

	second := newClient()
	user, err := second.OAuth2User(ctx)
	require.NoError(t, err)
	require.True(t, user.Authenticated)
	require.Equal(t, "sub-9", user.Sub)

	// Logging out through the second client expires the cookie for everyone.
	require.NoError(t, second.Logout(ctx))
	user, err = newClient().OAuth2User(ctx)
	require.NoError(t, err)
	require.False(t, user.Authenticated)
}

func TestSetSessionCookieWithoutJar(t *testing.T) {
	t.Parallel()
	client := imeetsdk.NewSDKClient("http://localhost:8081", imeetsdk.WithHTTPClient(&http.Client{}))
	require.Error(t, client.SetSessionCookie("abc"))
}

func TestHostedUIURLs(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	login, err := client.HostedUILoginURLForce(ctx)
	require.NoError(t, err)
	require.Equal(t, srv.HostedLoginURL, login)

	rel, err := client.LoginURL(ctx)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rel, "/oauth2/authorization/cognito"))

	logout, err := client.HostedUILogoutURL(ctx)
	require.NoError(t, err)
	require.Equal(t, srv.HostedLogoutURL, logout)

	srv.Fail(http.MethodGet, "/api/oauth2/hosted-ui/logout-url", fakebackend.Fault{
		Status: http.StatusOK,
		Body:   map[string]any{"message": "no url"},
		Times:  1,
	})
	_, err = client.HostedUILogoutURL(ctx)
	require.Error(t, err)
}

func TestLogoutEndpoints(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	srv.AddAccount(fakebackend.Account{Email: "e@imeet.test", Password: "pw"})
	token := srv.IssueToken("e@imeet.test", time.Hour)

	require.NoError(t, client.AuthLogout(ctx, token))
	resp, err := client.CheckAuth(ctx, token)
	require.NoError(t, err)
	require.False(t, resp.Accepted())

	require.NoError(t, client.AuthLogout(ctx, ""))
	require.NoError(t, client.Logout(ctx))

	srv.Fail(http.MethodPost, "/logout", fakebackend.Fault{Status: http.StatusInternalServerError, Times: 1})
	require.Error(t, client.Logout(ctx))
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	srv.AddAccount(fakebackend.Account{Email: "f@imeet.test", Password: "old-pw"})
	token := srv.IssueToken("f@imeet.test", time.Hour)

	_, err := client.ChangePassword(ctx, token, imeetsdk.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "new-pw", ConfirmPassword: "new-pw",
	})
	apiErr, ok := imeetsdk.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "Current password is incorrect", apiErr.Message)

	resp, err := client.ChangePassword(ctx, token, imeetsdk.ChangePasswordRequest{
		CurrentPassword: "old-pw", NewPassword: "new-pw", ConfirmPassword: "new-pw",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	acc, _ := srv.Account("f@imeet.test")
	require.Equal(t, "new-pw", acc.Password)
}

func TestAvatar(t *testing.T) {
	t.Parallel()
	srv, client := newBackend(t)
	ctx := context.Background()

	acc := srv.AddAccount(fakebackend.Account{Email: "g@imeet.test", Password: "pw"})
	token := srv.IssueToken("g@imeet.test", time.Hour)

	resp, err := client.UploadAvatar(ctx, token, `me "1".png`, "image/png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "/uploads/avatars/"+acc.ID+`-me "1".png`, resp.AvatarURL)

	_, err = client.UploadAvatar(ctx, token, "notes.txt", "text/plain", strings.NewReader("hi"))
	apiErr, ok := imeetsdk.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "Only image files are allowed", apiErr.Message)

	removed, err := client.RemoveAvatar(ctx, token)
	require.NoError(t, err)
	require.True(t, removed.Success)

	got, _ := srv.Account("g@imeet.test")
	require.Empty(t, got.AvatarURL)
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()
	srv := fakebackend.New()
	t.Cleanup(srv.Close)

	client := imeetsdk.NewSDKClient(srv.URL, imeetsdk.WithRateLimit(1, 1))

	_, err := client.OAuth2Status(context.Background())
	require.NoError(t, err)

	// The second request must wait about a second; a short deadline fails it
	// before anything is sent.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.OAuth2Status(ctx)
	require.Error(t, err)
	require.Equal(t, 1, srv.CallCount(http.MethodGet, "/api/oauth2/status"))
}
