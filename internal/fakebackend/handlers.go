package fakebackend

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// MaxAvatarSize matches the backend's upload limit.
const MaxAvatarSize = 5 << 20

// TokenTTL is the lifetime of tokens minted by login.
const TokenTTL = time.Hour

// ============================================================================
// Traditional auth
// ============================================================================

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[req.Email]
	if !ok || acc.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, object{"success": false, "message": "Invalid email or password"})
		return
	}

	writeJSON(w, http.StatusOK, object{
		"success":   true,
		"message":   "Login successful",
		"token":     s.issueTokenLocked(acc.Email, TokenTTL),
		"userId":    acc.ID,
		"username":  acc.Username,
		"fullName":  acc.FullName,
		"email":     acc.Email,
		"avatarUrl": acc.AvatarURL,
		"role":      acc.Role,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Email already exists"})
		return
	}

	acc := s.addAccountLocked(Account{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	writeJSON(w, http.StatusOK, object{
		"success":  true,
		"message":  "User registered successfully",
		"userId":   acc.ID,
		"username": acc.Username,
		"email":    acc.Email,
	})
}

// accountForToken resolves the bearer token. Caller holds mu.
func (s *Server) accountForToken(r *http.Request) (*Account, bool) {
	email, ok := s.tokens[bearerToken(r)]
	if !ok {
		return nil, false
	}
	acc, ok := s.accounts[email]
	return acc, ok
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accountForToken(r)
	if !ok {
		writeJSON(w, http.StatusOK, object{"authenticated": false, "valid": false, "message": "Invalid token"})
		return
	}

	writeJSON(w, http.StatusOK, object{
		"authenticated": true,
		"valid":         true,
		"userId":        acc.ID,
		"email":         acc.Email,
		"username":      acc.Username,
		"fullName":      acc.FullName,
		"role":          acc.Role,
		"avatarUrl":     acc.AvatarURL,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accountForToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, object{"success": false, "message": "Invalid token"})
		return
	}
	switch {
	case acc.Password != req.CurrentPassword:
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Current password is incorrect"})
	case req.NewPassword != req.ConfirmPassword:
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Passwords do not match"})
	default:
		acc.Password = req.NewPassword
		writeJSON(w, http.StatusOK, object{"success": true, "message": "Password changed successfully"})
	}
}

func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.tokens, bearerToken(r))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, object{"success": true, "message": "Logged out"})
}

// handleServletLogout invalidates the session and deletes its cookie.
func (s *Server) handleServletLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.sessions, sessionID(r))
	s.mu.Unlock()

	expireCookie(w, SessionCookie)
	w.WriteHeader(http.StatusOK)
}

// ============================================================================
// Avatar
// ============================================================================

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Invalid upload"})
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Please select a file"})
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "Only image files are allowed"})
		return
	}
	if header.Size > MaxAvatarSize {
		writeJSON(w, http.StatusBadRequest, object{"success": false, "message": "File size must not exceed 5MB"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accountForToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, object{"success": false, "message": "Invalid token"})
		return
	}
	acc.AvatarURL = "/uploads/avatars/" + acc.ID + "-" + header.Filename
	writeJSON(w, http.StatusOK, object{
		"success":   true,
		"message":   "Avatar uploaded successfully",
		"avatarUrl": acc.AvatarURL,
	})
}

func (s *Server) handleRemoveAvatar(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accountForToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, object{"success": false, "message": "Invalid token"})
		return
	}
	acc.AvatarURL = ""
	writeJSON(w, http.StatusOK, object{"success": true, "message": "Avatar removed successfully"})
}

// ============================================================================
// OAuth2 server session
// ============================================================================

func (s *Server) handleHostedLoginURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, object{"loginUrl": s.HostedLoginURL})
}

func (s *Server) handleLoginURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, object{"loginUrl": "/oauth2/authorization/cognito?prompt=select_account"})
}

func (s *Server) handleHostedLogoutURL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, object{"logoutUrl": s.HostedLogoutURL})
}

func (s *Server) identityBody(id *Identity) object {
	attrs := id.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return object{
		"authenticated": true,
		"sub":           id.Sub,
		"username":      id.Username,
		"email":         id.Email,
		"name":          id.Name,
		"fullName":      id.Name,
		"picture":       id.Picture,
		"attributes":    attrs,
	}
}

// principal returns the identity of the request's session. Caller holds mu.
func (s *Server) principal(r *http.Request) *Identity {
	return s.sessions[sessionID(r)]
}

func (s *Server) handleOAuth2User(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.principal(r)
	if id == nil {
		writeJSON(w, http.StatusOK, object{"authenticated": false, "error": "No principal found"})
		return
	}
	writeJSON(w, http.StatusOK, s.identityBody(id))
}

func (s *Server) handleOAuth2Status(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.principal(r)
	if id == nil {
		writeJSON(w, http.StatusOK, object{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, object{
		"authenticated": true,
		"username":      id.Username,
		"email":         id.Email,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.principal(r)
	if id == nil {
		writeJSON(w, http.StatusOK, object{"success": false, "authenticated": false, "message": "No active session found"})
		return
	}
	body := s.identityBody(id)
	body["success"] = true
	body["timestamp"] = time.Now().UnixMilli()
	writeJSON(w, http.StatusOK, body)
}

// handleClearSession invalidates the session and expires every cookie the
// request carried.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.sessions, sessionID(r))
	s.mu.Unlock()

	for _, c := range r.Cookies() {
		expireCookie(w, c.Name)
	}
	writeJSON(w, http.StatusOK, object{"success": true, "message": "Session cleared"})
}
