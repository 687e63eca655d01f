package auth

import (
	"context"

	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
)

// InitiateHostedUILogin redirects to the hosted UI with the account picker
// forced. When the URL cannot be fetched it falls back to the backend's
// authorization entry point.
func (s *Service) InitiateHostedUILogin(ctx context.Context) string {
	target, err := call(ctx, s, s.api.HostedUILoginURLForce)
	if err != nil {
		s.log(ctx).Warn("hosted ui login url unavailable, using authorization endpoint", "error", err)
		target = s.api.AuthorizationURL()
	}
	s.nav.Navigate(target)
	return target
}

// LoginURL returns the backend's OAuth2 login URL. It is usually relative to
// the backend base URL.
func (s *Service) LoginURL(ctx context.Context) (string, error) {
	return call(ctx, s, s.api.LoginURL)
}

// CheckAuthStatusDebug reports the backend's OAuth2 session status.
// Errors read as unauthenticated.
func (s *Service) CheckAuthStatusDebug(ctx context.Context) *imeetsdk.OAuth2StatusResponse {
	resp, err := call(ctx, s, s.api.OAuth2Status)
	if err != nil {
		s.log(ctx).Warn("oauth2 status check failed", "error", err)
		return &imeetsdk.OAuth2StatusResponse{}
	}
	return resp
}

// RefreshSession refreshes the server-side OAuth2 session without touching
// the cache. Errors read as an unsuccessful refresh.
func (s *Service) RefreshSession(ctx context.Context) *imeetsdk.RefreshResponse {
	resp, err := call(ctx, s, s.api.RefreshSession)
	if err != nil {
		s.log(ctx).Warn("session refresh failed", "error", err)
		return &imeetsdk.RefreshResponse{}
	}
	return resp
}
