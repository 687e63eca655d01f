package auth

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aussiebroadwan/imeet/pkg/cryptox"
	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"github.com/aussiebroadwan/imeet/pkg/session"
)

// Login authenticates with email and password. On success the token and the
// traditional identity are cached and any cached OAuth2 identity is dropped.
func (s *Service) Login(ctx context.Context, email, password string) (*imeetsdk.LoginResponse, error) {
	resp, err := call(ctx, s, func(ctx context.Context) (*imeetsdk.LoginResponse, error) {
		return s.api.Login(ctx, imeetsdk.LoginRequest{Email: email, Password: password})
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return resp, fmt.Errorf("%w: %s", ErrLoginFailed, resp.Message)
	}

	if err := s.cache.Remove(ctx, session.SlotOAuth2User); err != nil {
		return resp, fmt.Errorf("drop oauth2 identity: %w", err)
	}
	if err := s.cache.SaveToken(ctx, resp.Token); err != nil {
		return resp, fmt.Errorf("persist token: %w", err)
	}
	if err := s.cache.SaveUser(ctx, traditionalRecord(resp)); err != nil {
		return resp, fmt.Errorf("persist user: %w", err)
	}

	s.log(ctx).Info("logged in", "user_id", resp.UserID, "token_fp", cryptox.ShortFingerprint(resp.Token))
	return resp, nil
}

// Signup registers a traditional account. It does not log in.
func (s *Service) Signup(ctx context.Context, username, email, password, fullName string) (*imeetsdk.LoginResponse, error) {
	resp, err := call(ctx, s, func(ctx context.Context) (*imeetsdk.LoginResponse, error) {
		return s.api.Signup(ctx, imeetsdk.SignupRequest{
			Email:    email,
			Password: password,
			Username: username,
			FullName: fullName,
		})
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s", ErrSignupFailed, resp.Message)
	}
	return resp, nil
}

// ValidateToken checks the cached bearer token with the backend.
func (s *Service) ValidateToken(ctx context.Context) TokenValidation {
	token := s.cache.Token(ctx)
	if token == "" {
		return TokenValidation{Message: ErrNoToken.Error()}
	}

	resp, err := s.checkToken(ctx, token)
	if err != nil {
		s.log(ctx).Debug("token validation failed", "error", err, "token_fp", cryptox.ShortFingerprint(token))
		return TokenValidation{Message: ErrTokenInvalid.Error()}
	}
	if !resp.Accepted() {
		msg := resp.Message
		if msg == "" {
			msg = ErrTokenInvalid.Error()
		}
		return TokenValidation{Data: resp, Message: msg}
	}
	return TokenValidation{Valid: true, Data: resp}
}

func (s *Service) checkToken(ctx context.Context, token string) (*imeetsdk.CheckAuthResponse, error) {
	return call(ctx, s, func(ctx context.Context) (*imeetsdk.CheckAuthResponse, error) {
		return s.api.CheckAuth(ctx, token)
	})
}

// ChangePassword changes the traditional account password. Input is checked
// locally first, then the token is validated before the change is posted.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) (*imeetsdk.MessageResponse, error) {
	if s.cache.OAuth2User(ctx) != nil {
		return nil, ErrOAuth2PasswordChange
	}
	if next != confirm {
		return nil, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	token := s.cache.Token(ctx)
	if token == "" {
		return nil, ErrNoToken
	}

	check, err := s.checkToken(ctx, token)
	switch {
	case imeetsdk.IsRejection(err):
		return nil, ErrTokenInvalid
	case err != nil:
		return nil, fmt.Errorf("validate token: %w", err)
	case !check.Accepted():
		return nil, ErrTokenInvalid
	}

	resp, err := call(ctx, s, func(ctx context.Context) (*imeetsdk.MessageResponse, error) {
		return s.api.ChangePassword(ctx, token, imeetsdk.ChangePasswordRequest{
			CurrentPassword: current,
			NewPassword:     next,
			ConfirmPassword: confirm,
		})
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s", ErrPasswordChangeFailed, resp.Message)
	}
	return resp, nil
}
