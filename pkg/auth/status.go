package auth

import (
	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"github.com/aussiebroadwan/imeet/pkg/session"
)

// Type identifies which login path produced a Status.
type Type string

const (
	TypeOAuth2Server Type = "oauth2-server"
	TypeTraditional  Type = "traditional"
)

// Status is the result of a reconciliation.
type Status struct {
	Authenticated bool
	Type          Type
	User          *session.UserRecord
}

var unauthenticated = Status{}

// TokenValidation is the result of ValidateToken.
type TokenValidation struct {
	Valid   bool
	Data    *imeetsdk.CheckAuthResponse
	Message string
}

// oauth2Record builds the cached identity from an OAuth2 session probe.
func oauth2Record(r *imeetsdk.OAuth2UserResponse) session.UserRecord {
	return session.UserRecord{
		ID:         r.Sub,
		Username:   r.Username,
		Email:      r.Email,
		FullName:   r.DisplayFullName(),
		Picture:    r.Picture,
		AuthType:   session.AuthTypeOAuth2Server,
		Attributes: r.Attributes,
	}
}

// traditionalRecord builds the cached identity from a login response.
func traditionalRecord(r *imeetsdk.LoginResponse) session.UserRecord {
	return session.UserRecord{
		ID:        r.UserID,
		Username:  r.Username,
		Email:     r.Email,
		FullName:  r.FullName,
		AvatarURL: r.AvatarURL,
	}
}
