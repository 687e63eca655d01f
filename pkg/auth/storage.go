package auth

import (
	"context"

	"github.com/aussiebroadwan/imeet/pkg/session"
)

// ClearAllUserData removes every session slot, including legacy keys.
func (s *Service) ClearAllUserData(ctx context.Context) error {
	return s.cache.ClearAll(ctx)
}

// clearAll is ClearAllUserData for paths that cannot report failure.
func (s *Service) clearAll(ctx context.Context) {
	if err := s.cache.ClearAll(ctx); err != nil {
		s.log(ctx).Error("clear session failed", "error", err)
	}
}

// GetOAuth2User returns the cached OAuth2 identity without a network call.
func (s *Service) GetOAuth2User(ctx context.Context) *session.UserRecord {
	return s.cache.OAuth2User(ctx)
}

// GetUserFromStorage returns the cached traditional identity.
func (s *Service) GetUserFromStorage(ctx context.Context) *session.UserRecord {
	return s.cache.User(ctx)
}

// SaveUserToStorage replaces the cached traditional identity.
func (s *Service) SaveUserToStorage(ctx context.Context, u session.UserRecord) error {
	return s.cache.SaveUser(ctx, u)
}
