// Package statusmsg renders short localized status strings for auth
// outcomes, in English and Vietnamese.
package statusmsg

import (
	"errors"
	"strings"

	"github.com/aussiebroadwan/imeet/pkg/auth"
	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer prints catalog messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the best supported match of locale.
// Unknown or malformed locales fall back to BaseLocale.
func New(locale string) *Localizer {
	tag := supportedTags[0]
	if parsed, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		_, idx, conf := tagMatcher.Match(parsed)
		if conf != language.No {
			tag = supportedTags[idx]
		}
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale is the resolved locale, e.g. "vi-VN".
func (l *Localizer) Locale() string { return l.tag.String() }

// Text formats the message for key. Unknown keys print as the key itself.
func (l *Localizer) Text(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Error renders err for display: known failures by their catalog message,
// backend errors by the backend's message, anything else verbatim.
func (l *Localizer) Error(err error) string {
	if err == nil {
		return ""
	}
	if key, ok := FromError(err); ok {
		return l.Text(key)
	}
	if apiErr, ok := imeetsdk.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

var errorKeys = []struct {
	err error
	key string
}{
	{auth.ErrNoToken, KeyTokenMissing},
	{imeetsdk.ErrMissingToken, KeyTokenMissing},
	{auth.ErrTokenInvalid, KeyTokenInvalid},
	{auth.ErrPasswordMismatch, KeyPasswordMismatch},
	{auth.ErrPasswordTooShort, KeyPasswordTooShort},
	{auth.ErrOAuth2PasswordChange, KeyPasswordOAuth2},
	{auth.ErrPasswordChangeFailed, KeyPasswordFailed},
	{auth.ErrLoginFailed, KeyLoginFailed},
	{auth.ErrSignupFailed, KeySignupFailed},
	{auth.ErrAvatarNotImage, KeyAvatarNotImage},
	{auth.ErrAvatarTooLarge, KeyAvatarTooLarge},
	{auth.ErrAvatarRejected, KeyAvatarRejected},
}

// FromError maps a service error to its message key.
func FromError(err error) (string, bool) {
	for _, e := range errorKeys {
		if errors.Is(err, e.err) {
			return e.key, true
		}
	}
	return "", false
}
