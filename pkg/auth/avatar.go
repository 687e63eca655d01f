package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aussiebroadwan/imeet/pkg/imeetsdk"
)

// UploadAvatar uploads a new avatar and updates the cached identity's
// avatarUrl. The image type and size limits are enforced before upload.
func (s *Service) UploadAvatar(ctx context.Context, filename, contentType string, r io.Reader) (*imeetsdk.AvatarResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrAvatarNotImage
	}

	token := s.cache.Token(ctx)
	if token == "" {
		return nil, ErrNoToken
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}

	resp, err := call(ctx, s, func(ctx context.Context) (*imeetsdk.AvatarResponse, error) {
		return s.api.UploadAvatar(ctx, token, filename, contentType, bytes.NewReader(data))
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s", ErrAvatarRejected, resp.Message)
	}

	s.setCachedAvatar(ctx, resp.AvatarURL)
	return resp, nil
}

// RemoveAvatar deletes the avatar and clears the cached avatarUrl.
func (s *Service) RemoveAvatar(ctx context.Context) (*imeetsdk.AvatarResponse, error) {
	token := s.cache.Token(ctx)
	if token == "" {
		return nil, ErrNoToken
	}

	resp, err := call(ctx, s, func(ctx context.Context) (*imeetsdk.AvatarResponse, error) {
		return s.api.RemoveAvatar(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s", ErrAvatarRejected, resp.Message)
	}

	s.setCachedAvatar(ctx, "")
	return resp, nil
}

func (s *Service) setCachedAvatar(ctx context.Context, url string) {
	u := s.cache.User(ctx)
	if u == nil {
		return
	}
	u.AvatarURL = url
	if err := s.cache.SaveUser(ctx, *u); err != nil {
		s.log(ctx).Warn("persist avatar failed", "error", err)
	}
}
