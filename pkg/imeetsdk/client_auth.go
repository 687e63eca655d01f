package imeetsdk

import (
	"context"
	"net/http"
)

// ============================================================================
// Traditional Auth Endpoints
// ============================================================================

// Login authenticates with email and password and returns a bearer token.
// Rejected credentials come back as *APIError with the backend's message.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new traditional account.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", req)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckAuth validates a bearer token. A rejected token usually yields a 2xx
// response with Accepted() false rather than an error.
func (c *SDKClient) CheckAuth(ctx context.Context, token string) (*CheckAuthResponse, error) {
	resp, err := c.doAuthRequest(ctx, token, http.MethodGet, "/api/auth/check-auth", nil, nil)
	if err != nil {
		return nil, err
	}

	var out CheckAuthResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the password of the token's account.
func (c *SDKClient) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (*MessageResponse, error) {
	resp, err := c.doAuthJSON(ctx, token, http.MethodPost, "/api/auth/change-password", req)
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthLogout calls POST /api/auth/logout. The token is optional.
func (c *SDKClient) AuthLogout(ctx context.Context, token string) error {
	var (
		resp *http.Response
		err  error
	)
	if token != "" {
		resp, err = c.doAuthRequest(ctx, token, http.MethodPost, "/api/auth/logout", nil, nil)
	} else {
		resp, err = c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}
	if err != nil {
		return err
	}
	return checkStatusOK(resp)
}

// Logout calls the servlet-level POST /logout endpoint.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/logout", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusOK(resp)
}
