package auth

import (
	"context"
	"time"

	"github.com/aussiebroadwan/imeet/pkg/cryptox"
	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"github.com/aussiebroadwan/imeet/pkg/session"
)

// IsAuthenticated reconciles the cached identities with the backend.
//
// Lookup order, stopping at the first hit:
//  1. cached OAuth2 identity, trusted without a network call
//  2. cached traditional identity, validated against check-auth
//  3. the server-side OAuth2 session, probed with retries
//  4. an OAuth2 session refresh
func (s *Service) IsAuthenticated(ctx context.Context) Status {
	if u := s.cache.OAuth2User(ctx); u != nil {
		return Status{Authenticated: true, Type: TypeOAuth2Server, User: u}
	}

	if u := s.cache.User(ctx); u != nil {
		return s.reconcileTraditional(ctx, *u)
	}

	if probe := s.CheckAuthStatusWithRetry(ctx, s.cfg.Retry.Attempts); probe.Authenticated {
		return s.adoptOAuth2(ctx, probe)
	}

	refresh, err := call(ctx, s, s.api.RefreshSession)
	if err != nil {
		s.log(ctx).Debug("session refresh failed", "error", err)
		return unauthenticated
	}
	if refresh.Success && refresh.Authenticated {
		return s.adoptOAuth2(ctx, &refresh.OAuth2UserResponse)
	}
	return unauthenticated
}

// reconcileTraditional validates the cached bearer token. Only an explicit
// rejection purges the cache; an unreachable backend keeps the cached user.
func (s *Service) reconcileTraditional(ctx context.Context, u session.UserRecord) Status {
	log := s.log(ctx)

	token := s.cache.Token(ctx)
	if token == "" {
		log.Info("cached user without token, clearing session", "user_id", u.ID)
		s.clearAll(ctx)
		return unauthenticated
	}
	log = log.With("token_fp", cryptox.ShortFingerprint(token))

	// The local clock may disagree with the backend, so exp is only logged.
	if claims, err := imeetsdk.InspectToken(token); err == nil && claims.Expired(s.now()) {
		log = log.With("expired_at", claims.ExpiresAt)
		log.Debug("token looks expired locally, asking backend")
	}

	resp, err := call(ctx, s, func(ctx context.Context) (*imeetsdk.CheckAuthResponse, error) {
		return s.api.CheckAuth(ctx, token)
	})
	switch {
	case err == nil && resp.Accepted():
		if resp.AvatarURL != "" && resp.AvatarURL != u.AvatarURL {
			u.AvatarURL = resp.AvatarURL
			if err := s.cache.SaveUser(ctx, u); err != nil {
				log.Warn("persist refreshed avatar failed", "error", err)
			}
		}
		return Status{Authenticated: true, Type: TypeTraditional, User: &u}

	case err == nil:
		log.Info("token rejected, clearing session", "message", resp.Message)
		s.clearAll(ctx)
		return unauthenticated

	case imeetsdk.IsRejection(err):
		log.Info("token rejected, clearing session", "error", err)
		s.clearAll(ctx)
		return unauthenticated

	default:
		log.Warn("token validation unavailable, keeping cached user", "error", err)
		return Status{Authenticated: true, Type: TypeTraditional, User: &u}
	}
}

// adoptOAuth2 caches the identity behind an authenticated session probe.
func (s *Service) adoptOAuth2(ctx context.Context, probe *imeetsdk.OAuth2UserResponse) Status {
	rec := oauth2Record(probe)
	if err := s.cache.SaveOAuth2User(ctx, rec); err != nil {
		s.log(ctx).Warn("persist oauth2 user failed", "error", err)
	}
	return Status{Authenticated: true, Type: TypeOAuth2Server, User: &rec}
}

// CheckAuthStatusWithRetry probes GET /api/oauth2/user up to attempts times,
// waiting the policy's fixed backoff between failed attempts. The first
// answer from the backend, authenticated or not, ends the loop. When every
// attempt fails the result is unauthenticated.
func (s *Service) CheckAuthStatusWithRetry(ctx context.Context, attempts int) *imeetsdk.OAuth2UserResponse {
	if attempts < 1 {
		attempts = 1
	}
	log := s.log(ctx)

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := call(ctx, s, s.api.OAuth2User)
		if err == nil {
			return resp
		}
		log.Debug("oauth2 session probe failed", "attempt", attempt, "of", attempts, "error", err)

		if attempt == attempts || ctx.Err() != nil {
			break
		}
		if err := s.sleep(ctx, s.backoffFor(err)); err != nil {
			break
		}
	}
	return &imeetsdk.OAuth2UserResponse{Authenticated: false}
}

func (s *Service) backoffFor(err error) time.Duration {
	if s.cfg.Retry.ForbiddenBackoff > 0 {
		if apiErr, ok := imeetsdk.AsAPIError(err); ok && apiErr.IsForbidden() {
			return s.cfg.Retry.ForbiddenBackoff
		}
	}
	return s.cfg.Retry.Backoff
}

// HandleHostedUICallback completes a hosted UI login: local state is cleared,
// the backend is given CallbackSettle to finish the code exchange, then the
// new session is probed and cached. Any failure yields nil.
func (s *Service) HandleHostedUICallback(ctx context.Context) *session.UserRecord {
	log := s.log(ctx)
	s.clearAll(ctx)

	if err := s.sleep(ctx, s.cfg.CallbackSettle); err != nil {
		log.Debug("hosted ui callback cancelled", "error", err)
		return nil
	}

	var probe *imeetsdk.OAuth2UserResponse
	if s.cfg.CallbackRetries > 1 {
		probe = s.CheckAuthStatusWithRetry(ctx, s.cfg.CallbackRetries)
	} else {
		resp, err := call(ctx, s, s.api.OAuth2User)
		if err != nil {
			log.Warn("hosted ui callback probe failed", "error", err)
			return nil
		}
		probe = resp
	}

	if !probe.Authenticated {
		log.Info("hosted ui callback found no session", "error", probe.Error)
		return nil
	}
	return s.adoptOAuth2(ctx, probe).User
}
