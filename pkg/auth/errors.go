package auth

import "errors"

var (
	ErrNoToken              = errors.New("no token, please log in again")
	ErrTokenInvalid         = errors.New("token is invalid or expired, please log in again")
	ErrPasswordMismatch     = errors.New("new password and confirmation do not match")
	ErrPasswordTooShort     = errors.New("new password must be at least 6 characters")
	ErrOAuth2PasswordChange = errors.New("password is managed by the identity provider")
	ErrLoginFailed          = errors.New("login failed")
	ErrSignupFailed         = errors.New("signup failed")
	ErrPasswordChangeFailed = errors.New("password change failed")
	ErrAvatarNotImage       = errors.New("avatar must be an image")
	ErrAvatarTooLarge       = errors.New("avatar must not exceed 5MB")
	ErrAvatarRejected       = errors.New("avatar update rejected")
)

// MinPasswordLength is the shortest new password accepted client-side.
const MinPasswordLength = 6

// MaxAvatarSize is the backend's upload limit.
const MaxAvatarSize = 5 << 20
