// Package auth reconciles the two iMeet login paths, traditional bearer
// tokens and the server-side OAuth2 session, against a local session cache.
//
// The cache is optimistic: a cached OAuth2 identity is trusted without a
// round trip, a cached traditional identity is validated when the backend is
// reachable and kept when it is not. Only an explicit rejection by the
// backend purges local state.
package auth
