package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session: not found")

// Slot names a well-known key in the Store.
type Slot string

const (
	SlotUser       Slot = "user"
	SlotOAuth2User Slot = "oauth2User"
	SlotToken      Slot = "token"

	// SlotCookies holds the backend session cookies. It survives ClearAll the
	// way browser cookies survive a local storage clear; see CookieJar.Reset.
	SlotCookies Slot = "cookies"

	// Scalar keys written by older frontends. Only ever cleared.
	SlotLegacyUserID   Slot = "userId"
	SlotLegacyUsername Slot = "username"
	SlotLegacyFullName Slot = "fullName"
)

// AllSlots lists every slot removed by Cache.ClearAll.
var AllSlots = []Slot{
	SlotOAuth2User,
	SlotUser,
	SlotToken,
	SlotLegacyUserID,
	SlotLegacyUsername,
	SlotLegacyFullName,
}

// Store is the raw key/value backend. Concrete drivers (memory, sqlite,
// redis) implement this. Implementations must be safe for concurrent use
// within a process; across processes the last writer wins.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any underlying resources.
	Close() error
}
