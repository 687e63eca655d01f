package session

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AuthTypeOAuth2Server marks records created by the server-side OAuth2 flow.
// Traditional records leave AuthType empty.
const AuthTypeOAuth2Server = "cognito-oauth2-server"

// UserRecord is the cached identity of the current user.
type UserRecord struct {
	ID         string         `json:"id"`
	Username   string         `json:"username,omitempty"`
	Email      string         `json:"email,omitempty"`
	FullName   string         `json:"fullName,omitempty"`
	AvatarURL  string         `json:"avatarUrl,omitempty"`
	Picture    string         `json:"picture,omitempty"`
	AuthType   string         `json:"authType,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// IsOAuth2 reports whether the record came from the OAuth2 hosted UI flow.
func (u UserRecord) IsOAuth2() bool {
	return u.AuthType == AuthTypeOAuth2Server
}

// PictureURL returns the identity provider picture, falling back to the
// uploaded avatar.
func (u UserRecord) PictureURL() string {
	if u.Picture != "" {
		return u.Picture
	}
	return u.AvatarURL
}

// DisplayName returns the best human readable name for the user.
func (u UserRecord) DisplayName() string {
	switch {
	case strings.TrimSpace(u.FullName) != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return "User"
	}
}

// Initials returns up to two upper-cased initials used when no picture exists.
func (u UserRecord) Initials() string {
	if words := strings.Fields(u.FullName); len(words) > 0 {
		var b strings.Builder
		for _, w := range words {
			r, _ := utf8.DecodeRuneInString(w)
			b.WriteRune(unicode.ToUpper(r))
			if utf8.RuneCountInString(b.String()) == 2 {
				break
			}
		}
		return b.String()
	}
	if u.Email != "" {
		r, _ := utf8.DecodeRuneInString(u.Email)
		return string(unicode.ToUpper(r))
	}
	return "U"
}
