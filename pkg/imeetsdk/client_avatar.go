package imeetsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// AvatarField is the multipart form field the backend reads the upload from.
const AvatarField = "avatar"

// UploadAvatar uploads an avatar image as multipart/form-data.
func (c *SDKClient) UploadAvatar(ctx context.Context, token, filename, contentType string, r io.Reader) (*AvatarResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, AvatarField, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	resp, err := c.doAuthRequest(ctx, token, http.MethodPost, "/api/auth/upload-avatar", &buf, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var out AvatarResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveAvatar deletes the account's avatar.
func (c *SDKClient) RemoveAvatar(ctx context.Context, token string) (*AvatarResponse, error) {
	resp, err := c.doAuthRequest(ctx, token, http.MethodDelete, "/api/auth/remove-avatar", nil, nil)
	if err != nil {
		return nil, err
	}

	var out AvatarResponse
	if err := decodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
