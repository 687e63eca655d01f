package imeetsdk

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/imeet/pkg/slogx"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the backend address used by the iMeet web frontend.
const DefaultBaseURL = "http://localhost:8081"

// SessionCookie is the backend's servlet session cookie. It carries the
// server-side OAuth2 session.
const SessionCookie = "JSESSIONID"

// SDKClient is a client for the iMeet backend.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Limiter, when set, throttles outbound requests. Nil means unlimited.
	Limiter *rate.Limiter
}

// Option configures an SDKClient.
type Option func(*SDKClient)

// WithHTTPClient replaces the default HTTP client. The caller is responsible
// for giving it a cookie jar if OAuth2 session endpoints are used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *SDKClient) { c.HTTPClient = hc }
}

// WithCookieJar replaces the in-memory cookie jar, e.g. with a
// session.CookieJar that outlives the process.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *SDKClient) { c.HTTPClient.Jar = jar }
}

// WithLogger logs every request through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *SDKClient) {
		c.HTTPClient.Transport = slogx.NewTransport(c.HTTPClient.Transport, logger)
	}
}

// WithRateLimit allows at most perSecond requests per second with the given
// burst. A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *SDKClient) {
		if perSecond <= 0 {
			c.Limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewSDKClient creates a client with a cookie jar so that the backend's
// session cookie is sent on every request, like a browser with credentials
// included.
func NewSDKClient(baseURL string, opts ...Option) *SDKClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	jar, _ := cookiejar.New(nil) // never fails with nil options

	c := &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizationURL is the backend entry point of the Spring OAuth2 login flow,
// used when the hosted UI login URL cannot be fetched.
func (c *SDKClient) AuthorizationURL() string {
	return c.url("/oauth2/authorization/cognito")
}

// SetSessionCookie adopts a backend session that was established elsewhere,
// typically the browser that completed the hosted UI login.
func (c *SDKClient) SetSessionCookie(value string) error {
	if c.HTTPClient.Jar == nil {
		return errors.New("imeetsdk: client has no cookie jar")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	}})
	return nil
}
