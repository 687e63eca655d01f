package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// CookieJar is an http.CookieJar whose cookies outlive the process. Every
// cookie the backend sets is mirrored into SlotCookies and replayed by the
// next NewCookieJar over the same Store.
type CookieJar struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	jar   *cookiejar.Jar
	saved map[string]savedCookie
}

// savedCookie is one persisted cookie with the URL it was set for.
type savedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

func (c savedCookie) key() string {
	return c.URL + "|" + c.Domain + "|" + c.Name
}

// defaultPath is the RFC 6265 default cookie path of a request path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func (c savedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// NewCookieJar loads the persisted cookies from store. A malformed slot is
// logged and treated as empty. A nil logger uses slog.Default.
func NewCookieJar(ctx context.Context, store Store, logger *slog.Logger) (*CookieJar, error) {
	if logger == nil {
		logger = slog.Default()
	}
	j := &CookieJar{store: store, logger: logger, now: time.Now}
	j.reset()

	raw, err := store.Get(ctx, string(SlotCookies))
	switch {
	case errors.Is(err, ErrNotFound):
		return j, nil
	case err != nil:
		return nil, fmt.Errorf("load cookies: %w", err)
	}

	var list []savedCookie
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Warn("session: malformed cookies ignored", "error", err)
		return j, nil
	}

	now := j.now()
	for _, c := range list {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		u, err := url.Parse(c.URL)
		if err != nil {
			continue
		}
		j.jar.SetCookies(u, []*http.Cookie{c.cookie()})
		j.saved[c.key()] = c
	}
	return j, nil
}

func (j *CookieJar) reset() {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	j.jar = jar
	j.saved = make(map[string]savedCookie)
}

// SetCookies implements http.CookieJar.
func (j *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	now := j.now()
	for _, c := range cookies {
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}
		sc := savedCookie{
			URL:      (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: path}).String(),
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge < 0:
			delete(j.saved, sc.key())
			continue
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			sc.Expires = c.Expires
		}
		if !sc.Expires.IsZero() && !sc.Expires.After(now) {
			delete(j.saved, sc.key())
			continue
		}
		j.saved[sc.key()] = sc
	}

	if err := j.persist(context.Background()); err != nil {
		j.logger.Warn("session: persist cookies failed", "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Reset forgets every cookie, in memory and in the Store.
func (j *CookieJar) Reset(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.reset()
	if err := j.store.Delete(ctx, string(SlotCookies)); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

func (j *CookieJar) persist(ctx context.Context) error {
	if len(j.saved) == 0 {
		return j.store.Delete(ctx, string(SlotCookies))
	}

	list := make([]savedCookie, 0, len(j.saved))
	for _, c := range j.saved {
		list = append(list, c)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	return j.store.Set(ctx, string(SlotCookies), string(data))
}
