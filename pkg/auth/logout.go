package auth

import (
	"context"
)

// Logout ends the current session, whichever login path produced it.
// Local state is always cleared, even when the backend is unreachable.
// The result reports whether the backend side of the logout succeeded.
func (s *Service) Logout(ctx context.Context) bool {
	st := s.IsAuthenticated(ctx)
	if st.Authenticated && st.Type == TypeOAuth2Server {
		return s.logoutOAuth2(ctx)
	}
	return s.logoutTraditional(ctx)
}

func (s *Service) logoutOAuth2(ctx context.Context) bool {
	log := s.log(ctx)
	s.clearAll(ctx)

	if err := callErr(ctx, s, s.api.ClearSession); err != nil {
		log.Warn("clear server session failed", "error", err)
	}
	if err := callErr(ctx, s, func(ctx context.Context) error { return s.api.AuthLogout(ctx, "") }); err != nil {
		log.Warn("backend logout failed", "error", err)
	}

	target, err := call(ctx, s, s.api.HostedUILogoutURL)
	s.resetCookies(ctx)
	if err != nil {
		log.Error("hosted ui logout url unavailable", "error", err)
		s.clearAll(ctx)
		s.nav.Navigate(s.cfg.LoginRoute)
		return false
	}

	s.nav.Navigate(target)
	return true
}

func (s *Service) logoutTraditional(ctx context.Context) bool {
	log := s.log(ctx)
	token := s.cache.Token(ctx)
	ok := true

	if err := callErr(ctx, s, s.api.Logout); err != nil {
		log.Warn("logout failed", "error", err)
		ok = false
	}
	if token != "" {
		if err := callErr(ctx, s, func(ctx context.Context) error { return s.api.AuthLogout(ctx, token) }); err != nil {
			log.Warn("backend logout failed", "error", err)
		}
	}

	s.clearAll(ctx)
	s.resetCookies(ctx)
	return ok
}

func (s *Service) resetCookies(ctx context.Context) {
	if s.cookies == nil {
		return
	}
	if err := s.cookies.Reset(ctx); err != nil {
		s.log(ctx).Warn("clear session cookies failed", "error", err)
	}
}
