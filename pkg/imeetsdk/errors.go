package imeetsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrMissingToken is returned by bearer endpoints when called with an empty token.
var ErrMissingToken = errors.New("imeetsdk: no bearer token")

// ============================================================================
// APIError - non-2xx backend response
// ============================================================================

// APIError is returned for any non-2xx response from the backend.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Message is the backend's "message" or "error" field, or the plain-text
	// body when the response is not JSON
	Message string

	// Body is the raw response body
	Body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("imeet api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("imeet api: %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports a 401 response.
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// IsForbidden reports a 403 response.
func (e *APIError) IsForbidden() bool { return e.StatusCode == http.StatusForbidden }

// IsRejection reports an explicit refusal of the credentials: 401 or 403.
func (e *APIError) IsRejection() bool { return e.IsUnauthorized() || e.IsForbidden() }

// IsServerError reports a 5xx response.
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRejection reports whether err is an *APIError with status 401 or 403.
func IsRejection(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsRejection()
}

// messageBody is the error envelope the backend uses across controllers.
type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// maxMessageRunes caps a plain-text error body used as APIError.Message.
const maxMessageRunes = 200

// parseErrorResponse builds an *APIError from a non-2xx response.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Body: body}

	var env messageBody
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = env.Message
		if apiErr.Message == "" {
			apiErr.Message = env.Error
		}
		return apiErr
	}

	// Some endpoints answer with a bare string such as "Not authenticated"
	text := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes])
	}
	apiErr.Message = text
	return apiErr
}
