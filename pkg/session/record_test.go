package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserRecordPictureURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "p", UserRecord{Picture: "p", AvatarURL: "a"}.PictureURL())
	require.Equal(t, "a", UserRecord{AvatarURL: "a"}.PictureURL())
	require.Empty(t, UserRecord{}.PictureURL())
}

func TestUserRecordDisplayName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Nguyen Van A", UserRecord{FullName: "Nguyen Van A", Username: "nva"}.DisplayName())
	require.Equal(t, "nva", UserRecord{FullName: "  ", Username: "nva"}.DisplayName())
	require.Equal(t, "User", UserRecord{}.DisplayName())
}

func TestUserRecordInitials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  UserRecord
		want string
	}{
		{"two words", UserRecord{FullName: "ada lovelace"}, "AL"},
		{"three words keeps two", UserRecord{FullName: "Nguyen Van An"}, "NV"},
		{"single word", UserRecord{FullName: "Cher"}, "C"},
		{"unicode", UserRecord{FullName: "Đặng Ánh"}, "ĐÁ"},
		{"email fallback", UserRecord{Email: "bob@example.com"}, "B"},
		{"default", UserRecord{}, "U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.rec.Initials())
		})
	}
}
