/*
Package imeetsdk provides a client SDK for the iMeet backend HTTP API.

# Overview

SDKClient wraps every endpoint the iMeet frontend talks to: traditional
email/password login, the server-side OAuth2 (Cognito hosted UI) session
endpoints, password change, token validation and avatar management.

	client := imeetsdk.NewSDKClient("http://localhost:8081")

	// Traditional login returns a bearer token
	resp, err := client.Login(ctx, imeetsdk.LoginRequest{Email: email, Password: pw})

	// Bearer endpoints take the token explicitly
	info, err := client.CheckAuth(ctx, resp.Token)

	// OAuth2 endpoints rely on the session cookie kept in the client's jar
	user, err := client.OAuth2User(ctx)

The client is stateless apart from its cookie jar. Session persistence and
the reconciliation of the two login paths live in package auth.

# Errors

Non-2xx responses are returned as *APIError carrying the status code, the
backend's message (when the body has one) and the raw body:

	var apiErr *imeetsdk.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		// token rejected
	}

Transport failures (connection refused, context deadline) are returned
wrapped, never as *APIError.

# Request Correlation

Every request carries an X-Request-ID header holding a fresh ULID. The
logging transport from package slogx records it with each request.
*/
package imeetsdk
