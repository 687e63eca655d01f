package auth

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"github.com/aussiebroadwan/imeet/pkg/session"
	"github.com/aussiebroadwan/imeet/pkg/slogx"
)

// Backend is the subset of the iMeet API the service drives.
// *imeetsdk.SDKClient implements it.
type Backend interface {
	AuthorizationURL() string

	Login(ctx context.Context, req imeetsdk.LoginRequest) (*imeetsdk.LoginResponse, error)
	Signup(ctx context.Context, req imeetsdk.SignupRequest) (*imeetsdk.LoginResponse, error)
	CheckAuth(ctx context.Context, token string) (*imeetsdk.CheckAuthResponse, error)
	ChangePassword(ctx context.Context, token string, req imeetsdk.ChangePasswordRequest) (*imeetsdk.MessageResponse, error)
	AuthLogout(ctx context.Context, token string) error
	Logout(ctx context.Context) error

	HostedUILoginURLForce(ctx context.Context) (string, error)
	LoginURL(ctx context.Context) (string, error)
	HostedUILogoutURL(ctx context.Context) (string, error)
	OAuth2User(ctx context.Context) (*imeetsdk.OAuth2UserResponse, error)
	OAuth2Status(ctx context.Context) (*imeetsdk.OAuth2StatusResponse, error)
	RefreshSession(ctx context.Context) (*imeetsdk.RefreshResponse, error)
	ClearSession(ctx context.Context) error

	UploadAvatar(ctx context.Context, token, filename, contentType string, r io.Reader) (*imeetsdk.AvatarResponse, error)
	RemoveAvatar(ctx context.Context, token string) (*imeetsdk.AvatarResponse, error)
}

var (
	_ Backend        = (*imeetsdk.SDKClient)(nil)
	_ SessionCookies = (*session.CookieJar)(nil)
)

// Navigator performs the redirects a browser would.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// SessionCookies is the cookie jar behind the backend client.
// *session.CookieJar implements it.
type SessionCookies interface {
	Reset(ctx context.Context) error
}

// RetryPolicy controls CheckAuthStatusWithRetry.
type RetryPolicy struct {
	// Attempts is the default number of probes.
	Attempts int
	// Backoff is the fixed wait between failed attempts.
	Backoff time.Duration
	// ForbiddenBackoff, when non-zero, replaces Backoff after a 403.
	ForbiddenBackoff time.Duration
}

// Config tunes the service. Zero fields take the DefaultConfig value.
type Config struct {
	RequestTimeout  time.Duration
	Retry           RetryPolicy
	CallbackSettle  time.Duration
	CallbackRetries int
	LoginRoute      string
}

// DefaultConfig matches the web frontend's timings.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 5 * time.Second,
		Retry: RetryPolicy{
			Attempts: 2,
			Backoff:  300 * time.Millisecond,
		},
		CallbackSettle:  1500 * time.Millisecond,
		CallbackRetries: 1,
		LoginRoute:      "/login",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.Retry.Attempts < 1 {
		c.Retry.Attempts = d.Retry.Attempts
	}
	if c.Retry.Backoff < 0 {
		c.Retry.Backoff = 0
	}
	if c.CallbackSettle < 0 {
		c.CallbackSettle = 0
	}
	if c.CallbackRetries < 1 {
		c.CallbackRetries = d.CallbackRetries
	}
	if c.LoginRoute == "" {
		c.LoginRoute = d.LoginRoute
	}
	return c
}

// Service is the auth reconciler.
type Service struct {
	api     Backend
	cache   *session.Cache
	nav     Navigator
	cfg     Config
	logger  *slog.Logger
	cookies SessionCookies

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Service.
type Option func(*Service)

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg.withDefaults() }
}

// WithNavigator sets the redirect target. The default discards redirects.
func WithNavigator(nav Navigator) Option {
	return func(s *Service) {
		if nav != nil {
			s.nav = nav
		}
	}
}

// WithLogger sets the fallback logger for contexts that carry none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionCookies lets Logout drop the backend session cookie, so it is
// not replayed even when the backend could not be told to end the session.
func WithSessionCookies(c SessionCookies) Option {
	return func(s *Service) { s.cookies = c }
}

// NewService creates the reconciler over api and cache.
func NewService(api Backend, cache *session.Cache, opts ...Option) *Service {
	s := &Service{
		api:    api,
		cache:  cache,
		nav:    NavigatorFunc(func(string) {}),
		cfg:    DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
		sleep:  sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) log(ctx context.Context) *slog.Logger {
	return slogx.FromContextOr(ctx, s.logger)
}

// call bounds a single backend call by the request timeout.
func call[T any](ctx context.Context, s *Service, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return fn(ctx)
}

// callErr is call for functions that return only an error.
func callErr(ctx context.Context, s *Service, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	return fn(ctx)
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
