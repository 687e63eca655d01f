// Package fakebackend is an in-process stand-in for the iMeet backend, used
// by tests. It implements the traditional auth, OAuth2 session and avatar
// endpoints with in-memory state, records every call and can inject faults
// (status codes, delays, dropped connections) per route.
package fakebackend
