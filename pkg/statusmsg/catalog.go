package statusmsg

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the source locale of the catalog.
const BaseLocale = "en-US"

// Message keys.
const (
	KeyLoginSuccess          = "login.success"
	KeyLoginFailed           = "login.failed"
	KeySignupSuccess         = "signup.success"
	KeySignupFailed          = "signup.failed"
	KeyTokenMissing          = "token.missing"
	KeyTokenInvalid          = "token.invalid"
	KeyPasswordMismatch      = "password.mismatch"
	KeyPasswordTooShort      = "password.too_short"
	KeyPasswordOAuth2        = "password.oauth2"
	KeyPasswordCheckingToken = "password.checking_token"
	KeyPasswordChanging      = "password.changing"
	KeyPasswordChanged       = "password.changed"
	KeyPasswordFailed        = "password.failed"
	KeyLogoutSuccess         = "logout.success"
	KeyLogoutFailed          = "logout.failed"
	KeyCallbackWaiting       = "callback.waiting"
	KeyCallbackSuccess       = "callback.success"
	KeyCallbackFailed        = "callback.failed"
	KeyAvatarUploaded        = "avatar.uploaded"
	KeyAvatarRemoved         = "avatar.removed"
	KeyAvatarNotImage        = "avatar.not_image"
	KeyAvatarTooLarge        = "avatar.too_large"
	KeyAvatarRejected        = "avatar.rejected"
	KeyStatusAuthenticated   = "status.authenticated"
	KeyStatusAnonymous       = "status.anonymous"
)

var catalog = map[string]map[string]string{
	"en-US": {
		KeyLoginSuccess:          "Logged in successfully.",
		KeyLoginFailed:           "Login failed. Please try again.",
		KeySignupSuccess:         "Account created. You can now log in.",
		KeySignupFailed:          "Sign up failed.",
		KeyTokenMissing:          "No token. Please log in again.",
		KeyTokenInvalid:          "Invalid token. Please log in again.",
		KeyPasswordMismatch:      "New password and confirmation do not match.",
		KeyPasswordTooShort:      "New password must be at least 6 characters.",
		KeyPasswordOAuth2:        "OAuth2 accounts cannot change their password here.",
		KeyPasswordCheckingToken: "Checking token...",
		KeyPasswordChanging:      "Changing password...",
		KeyPasswordChanged:       "Password changed successfully!",
		KeyPasswordFailed:        "Password change failed.",
		KeyLogoutSuccess:         "Logged out.",
		KeyLogoutFailed:          "Logout did not complete on the server. Local session cleared.",
		KeyCallbackWaiting:       "Please wait while login completes...",
		KeyCallbackSuccess:       "Login successful! Redirecting...",
		KeyCallbackFailed:        "Could not authenticate. Please log in again.",
		KeyAvatarUploaded:        "Avatar updated.",
		KeyAvatarRemoved:         "Avatar removed.",
		KeyAvatarNotImage:        "Only image files are allowed.",
		KeyAvatarTooLarge:        "File size must not exceed 5MB.",
		KeyAvatarRejected:        "The server did not accept the avatar change.",
		KeyStatusAuthenticated:   "Signed in as %s (%s).",
		KeyStatusAnonymous:       "Not signed in.",
	},
	"vi-VN": {
		KeyLoginSuccess:          "Đăng nhập thành công!",
		KeyLoginFailed:           "Đăng nhập thất bại. Vui lòng thử lại.",
		KeySignupSuccess:         "Đăng ký thành công. Bạn có thể đăng nhập.",
		KeySignupFailed:          "Đăng ký thất bại.",
		KeyTokenMissing:          "Không có token. Vui lòng đăng nhập lại.",
		KeyTokenInvalid:          "Token không hợp lệ. Vui lòng đăng nhập lại.",
		KeyPasswordMismatch:      "Mật khẩu mới và xác nhận mật khẩu không khớp.",
		KeyPasswordTooShort:      "Mật khẩu mới phải có ít nhất 6 ký tự.",
		KeyPasswordOAuth2:        "Tài khoản OAuth2 không thể đổi mật khẩu tại đây.",
		KeyPasswordCheckingToken: "Đang kiểm tra token...",
		KeyPasswordChanging:      "Đang đổi mật khẩu...",
		KeyPasswordChanged:       "Đổi mật khẩu thành công!",
		KeyPasswordFailed:        "Đổi mật khẩu thất bại.",
		KeyLogoutSuccess:         "Đã đăng xuất.",
		KeyLogoutFailed:          "Đăng xuất trên máy chủ chưa hoàn tất. Phiên cục bộ đã được xóa.",
		KeyCallbackWaiting:       "Vui lòng đợi đăng nhập hoàn tất...",
		KeyCallbackSuccess:       "Đăng nhập thành công! Đang chuyển hướng...",
		KeyCallbackFailed:        "Không thể xác thực. Vui lòng đăng nhập lại.",
		KeyAvatarUploaded:        "Cập nhật ảnh đại diện thành công.",
		KeyAvatarRemoved:         "Đã xóa ảnh đại diện.",
		KeyAvatarNotImage:        "Chỉ chấp nhận file ảnh.",
		KeyAvatarTooLarge:        "Kích thước file không được vượt quá 5MB.",
		KeyAvatarRejected:        "Máy chủ không chấp nhận thay đổi ảnh đại diện.",
		KeyStatusAuthenticated:   "Đã đăng nhập: %s (%s).",
		KeyStatusAnonymous:       "Chưa đăng nhập.",
	},
}

var supportedTags = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("vi-VN"),
}

var tagMatcher = language.NewMatcher(supportedTags)

func init() {
	if err := register(); err != nil {
		panic(err)
	}
}

// register loads the catalog into x/text/message under the exact tag and
// its base language, so "vi" and "vi-VN" both resolve.
func register() error {
	for locale, messages := range catalog {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, _ := tag.Base(); base.String() != "und" {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range messages {
			for _, t := range tags {
				if err := message.SetString(t, key, value); err != nil {
					return fmt.Errorf("register %s/%s: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// Keys returns every message key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(catalog[BaseLocale]))
	for k := range catalog[BaseLocale] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Locales returns the supported locale identifiers.
func Locales() []string {
	out := make([]string, 0, len(catalog))
	for l := range catalog {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
