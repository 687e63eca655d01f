package imeetsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/imeet/pkg/slogx"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// jsonBody encodes v as a request body. A nil v yields no body.
func jsonBody(v any) (io.Reader, map[string]string, error) {
	if v == nil {
		return nil, nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(data), map[string]string{"Content-Type": "application/json"}, nil
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
// This is for requests without an Authorization header; the cookie jar
// still applies.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(slogx.RequestIDHeader, newRequestID())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// doJSON sends payload (may be nil) as JSON.
func (c *SDKClient) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	body, headers, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	return c.doRequest(ctx, method, path, body, headers)
}

// doAuthRequest performs an HTTP request carrying the bearer token.
func (c *SDKClient) doAuthRequest(
	ctx context.Context,
	token string,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	all := map[string]string{"Authorization": "Bearer " + token}
	for k, v := range headers {
		all[k] = v
	}
	return c.doRequest(ctx, method, path, body, all)
}

// doAuthJSON is doAuthRequest with a JSON payload.
func (c *SDKClient) doAuthJSON(ctx context.Context, token, method, path string, payload any) (*http.Response, error) {
	body, headers, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	return c.doAuthRequest(ctx, token, method, path, body, headers)
}

// decodeJSON decodes a 2xx JSON response into target.
// Non-2xx responses are returned as *APIError.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp, bodyBytes)
	}

	if target == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatusOK returns *APIError unless the response is 2xx. The body is
// drained and discarded.
func checkStatusOK(resp *http.Response) error {
	return decodeJSON(resp, nil)
}
