package imeetsdk

import (
	"context"
	"net/http"
)

// ============================================================================
// OAuth2 Server Session Endpoints
// ============================================================================

// HostedUILoginURLForce returns the hosted UI login URL that forces the
// account picker.
func (c *SDKClient) HostedUILoginURLForce(ctx context.Context) (string, error) {
	return c.getLoginURL(ctx, "/api/oauth2/hosted-ui/login-url-force")
}

// LoginURL returns the backend's OAuth2 login URL. It may be relative to BaseURL.
func (c *SDKClient) LoginURL(ctx context.Context) (string, error) {
	return c.getLoginURL(ctx, "/api/oauth2/login-url")
}

func (c *SDKClient) getLoginURL(ctx context.Context, path string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", err
	}

	var out LoginURLResponse
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	if out.LoginURL == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "missing loginUrl"}
	}
	return out.LoginURL, nil
}

// HostedUILogoutURL returns the identity provider logout URL.
func (c *SDKClient) HostedUILogoutURL(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/oauth2/hosted-ui/logout-url", nil, nil)
	if err != nil {
		return "", err
	}

	var out LogoutURLResponse
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	if out.LogoutURL == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "missing logoutUrl"}
	}
	return out.LogoutURL, nil
}

// OAuth2User probes the server-side OAuth2 session.
func (c *SDKClient) OAuth2User(ctx context.Context) (*OAuth2UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/oauth2/user", nil, nil)
	if err != nil {
		return nil, err
	}

	var out OAuth2UserResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OAuth2Status is the debug status endpoint.
func (c *SDKClient) OAuth2Status(ctx context.Context) (*OAuth2StatusResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/oauth2/status", nil, nil)
	if err != nil {
		return nil, err
	}

	var out OAuth2StatusResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshSession asks the backend to refresh the OAuth2 session.
func (c *SDKClient) RefreshSession(ctx context.Context) (*RefreshResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/oauth2/refresh", nil, nil)
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearSession invalidates the server-side OAuth2 session.
func (c *SDKClient) ClearSession(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/oauth2/clear-session", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusOK(resp)
}
