package fakebackend

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

// Account is a traditional email/password account.
type Account struct {
	ID        string
	Email     string
	Password  string
	Username  string
	FullName  string
	AvatarURL string
	Role      string
}

// Identity is the principal behind an established OAuth2 server session.
type Identity struct {
	Sub        string
	Username   string
	Email      string
	Name       string
	Picture    string
	Attributes map[string]any
}

// Fault replaces the normal handling of a route.
type Fault struct {
	// Status, when non-zero, is written instead of the normal response.
	Status int
	// Body is written with Status: strings as text/plain, anything else
	// JSON-encoded. Nil writes {"message": StatusText}.
	Body any
	// Delay is waited (or until the client gives up) before responding.
	Delay time.Duration
	// Drop closes the connection without a response.
	Drop bool
	// Times limits how many requests the fault applies to. Zero means all.
	Times int
}

// Call is a recorded request.
type Call struct {
	Method    string
	Path      string
	RequestID string
	Bearer    string
	// Session is the SessionCookie value the request carried.
	Session string
}

// Server is a fake iMeet backend.
type Server struct {
	*httptest.Server

	// HostedLoginURL and HostedLogoutURL are returned by the hosted UI endpoints.
	HostedLoginURL  string
	HostedLogoutURL string

	mu       sync.Mutex
	accounts map[string]*Account  // by email
	tokens   map[string]string    // token -> email
	sessions map[string]*Identity // SessionCookie value -> principal
	faults   map[string]*Fault
	calls    []Call
	limiter  *rate.Limiter
	key      []byte
	nextID   int
	tokenSeq int
}

// New starts a fake backend. Close it with t.Cleanup(srv.Close).
func New() *Server {
	key := make([]byte, 32)
	_, _ = rand.Read(key)

	s := &Server{
		HostedLoginURL:  "https://auth.imeet.test/login?prompt=select_account",
		HostedLogoutURL: "https://auth.imeet.test/logout?client_id=imeet",
		accounts:        make(map[string]*Account),
		tokens:          make(map[string]string),
		sessions:        make(map[string]*Identity),
		faults:          make(map[string]*Fault),
		key:             key,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("GET /api/auth/check-auth", s.handleCheckAuth)
	mux.HandleFunc("POST /api/auth/change-password", s.handleChangePassword)
	mux.HandleFunc("POST /api/auth/logout", s.handleAuthLogout)
	mux.HandleFunc("POST /api/auth/upload-avatar", s.handleUploadAvatar)
	mux.HandleFunc("DELETE /api/auth/remove-avatar", s.handleRemoveAvatar)
	mux.HandleFunc("POST /logout", s.handleServletLogout)

	mux.HandleFunc("GET /api/oauth2/hosted-ui/login-url-force", s.handleHostedLoginURL)
	mux.HandleFunc("GET /api/oauth2/login-url", s.handleLoginURL)
	mux.HandleFunc("GET /api/oauth2/hosted-ui/logout-url", s.handleHostedLogoutURL)
	mux.HandleFunc("GET /api/oauth2/user", s.handleOAuth2User)
	mux.HandleFunc("GET /api/oauth2/status", s.handleOAuth2Status)
	mux.HandleFunc("POST /api/oauth2/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/oauth2/clear-session", s.handleClearSession)

	return s.intercept(mux)
}

// intercept records the call and applies faults and the rate limit.
func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get("X-Request-ID"),
			Bearer:    bearerToken(r),
			Session:   sessionID(r),
		})
		fault := s.takeFault(r.Method + " " + r.URL.Path)
		limited := s.limiter != nil && !s.limiter.Allow()
		s.mu.Unlock()

		if limited {
			writeJSON(w, http.StatusForbidden, object{"message": "rate limited"})
			return
		}

		if fault == nil {
			next.ServeHTTP(w, r)
			return
		}

		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}

		if fault.Drop {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		}

		if fault.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}

		switch body := fault.Body.(type) {
		case nil:
			writeJSON(w, fault.Status, object{"message": http.StatusText(fault.Status)})
		case string:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(fault.Status)
			_, _ = w.Write([]byte(body))
		default:
			writeJSON(w, fault.Status, body)
		}
	})
}

// takeFault returns the fault for route, consuming one use. Caller holds mu.
func (s *Server) takeFault(route string) *Fault {
	f, ok := s.faults[route]
	if !ok {
		return nil
	}
	out := *f
	if f.Times > 0 {
		f.Times--
		if f.Times == 0 {
			delete(s.faults, route)
		}
	}
	return &out
}

// ============================================================================
// Test controls
// ============================================================================

// AddAccount registers a traditional account. ID defaults to a sequence number.
func (s *Server) AddAccount(a Account) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(a)
}

func (s *Server) addAccountLocked(a Account) *Account {
	if a.ID == "" {
		s.nextID++
		a.ID = fmt.Sprintf("%d", s.nextID)
	}
	if a.Role == "" {
		a.Role = "USER"
	}
	acc := a
	s.accounts[a.Email] = &acc
	return &acc
}

// Account returns a copy of the account registered under email.
func (s *Server) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// UpdateAccount applies fn to the account registered under email.
func (s *Server) UpdateAccount(email string, fn func(*Account)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if ok {
		fn(a)
	}
	return ok
}

// IssueToken mints a bearer token for email that expires after ttl.
// A negative ttl yields an already expired token.
func (s *Server) IssueToken(email string, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(email, ttl)
}

func (s *Server) issueTokenLocked(email string, ttl time.Duration) string {
	s.tokenSeq++
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        fmt.Sprintf("%d", s.tokenSeq),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		panic(err)
	}
	s.tokens[tok] = email
	return tok
}

// RevokeToken makes the backend reject token.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// SignIn establishes a server-side OAuth2 session for id, as a completed
// hosted UI login would, and returns its SessionCookie value. Only requests
// carrying that cookie see the session.
func (s *Server) SignIn(id Identity) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	sid := strings.ToUpper(hex.EncodeToString(b))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = &id
	return sid
}

// SignedIn reports whether any OAuth2 session is established.
func (s *Server) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions) > 0
}

// Fail installs a fault for "METHOD /path".
func (s *Server) Fail(method, path string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = &f
}

// Heal removes every installed fault.
func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]*Fault)
}

// LimitRate answers 403 once more than burst requests arrive faster than
// perSecond. Zero disables limiting.
func (s *Server) LimitRate(perSecond float64, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perSecond <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Calls returns every recorded request.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts recorded requests to "METHOD /path".
func (s *Server) CallCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
