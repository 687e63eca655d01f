package imeetsdk

// ============================================================================
// Traditional Auth Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}

// LoginResponse is returned by login and signup.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Token     string `json:"token,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role,omitempty"`
}

// CheckAuthResponse is returned by GET /api/auth/check-auth. The backend
// answers 200 even for a rejected token, with Authenticated and Valid false.
type CheckAuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Valid         bool   `json:"valid"`
	Message       string `json:"message,omitempty"`
	UserID        string `json:"userId,omitempty"`
	Email         string `json:"email,omitempty"`
	Username      string `json:"username,omitempty"`
	FullName      string `json:"fullName,omitempty"`
	Role          string `json:"role,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
}

// Accepted reports whether the backend considers the token valid.
func (r *CheckAuthResponse) Accepted() bool {
	return r.Authenticated && r.Valid
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse is the generic {success, message} envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// OAuth2 Server Session Types
// ============================================================================

// OAuth2UserResponse is returned by GET /api/oauth2/user. Unauthenticated
// sessions get Authenticated false and an Error.
type OAuth2UserResponse struct {
	Authenticated bool           `json:"authenticated"`
	Sub           string         `json:"sub,omitempty"`
	Username      string         `json:"username,omitempty"`
	Email         string         `json:"email,omitempty"`
	Name          string         `json:"name,omitempty"`
	FullName      string         `json:"fullName,omitempty"`
	Picture       string         `json:"picture,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// DisplayFullName prefers fullName and falls back to the OIDC name claim.
func (r *OAuth2UserResponse) DisplayFullName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Name
}

// OAuth2StatusResponse is returned by GET /api/oauth2/status.
type OAuth2StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
}

// RefreshResponse is returned by POST /api/oauth2/refresh.
type RefreshResponse struct {
	OAuth2UserResponse
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LoginURLResponse carries a hosted UI URL.
type LoginURLResponse struct {
	LoginURL string `json:"loginUrl"`
}

// LogoutURLResponse carries the hosted UI logout URL.
type LogoutURLResponse struct {
	LogoutURL string `json:"logoutUrl"`
}

// ============================================================================
// Avatar Types
// ============================================================================

// AvatarResponse is returned by the avatar endpoints.
type AvatarResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
