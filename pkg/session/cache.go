package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Cache is the typed view of a Store used by the auth service.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// NewCache wraps store. A nil logger uses slog.Default.
func NewCache(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, logger: logger}
}

// Store returns the underlying key/value store.
func (c *Cache) Store() Store { return c.store }

// OAuth2User returns the cached OAuth2 identity or nil.
func (c *Cache) OAuth2User(ctx context.Context) *UserRecord {
	return c.readRecord(ctx, SlotOAuth2User)
}

// User returns the cached traditional identity or nil.
func (c *Cache) User(ctx context.Context) *UserRecord {
	return c.readRecord(ctx, SlotUser)
}

// SaveOAuth2User stores u under the OAuth2 slot, stamping its AuthType.
func (c *Cache) SaveOAuth2User(ctx context.Context, u UserRecord) error {
	u.AuthType = AuthTypeOAuth2Server
	return c.writeRecord(ctx, SlotOAuth2User, u)
}

// SaveUser stores u under the traditional slot.
func (c *Cache) SaveUser(ctx context.Context, u UserRecord) error {
	return c.writeRecord(ctx, SlotUser, u)
}

// Token returns the bearer token or "" when none is stored.
func (c *Cache) Token(ctx context.Context) string {
	tok, err := c.store.Get(ctx, string(SlotToken))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("session: read token failed", "error", err)
		}
		return ""
	}
	return tok
}

// SaveToken stores the bearer token of a traditional login.
func (c *Cache) SaveToken(ctx context.Context, token string) error {
	if err := c.store.Set(ctx, string(SlotToken), token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Remove deletes the given slots.
func (c *Cache) Remove(ctx context.Context, slots ...Slot) error {
	if len(slots) == 0 {
		return nil
	}
	keys := make([]string, len(slots))
	for i, s := range slots {
		keys[i] = string(s)
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("remove %v: %w", keys, err)
	}
	return nil
}

// ClearAll removes every known slot, legacy keys included.
func (c *Cache) ClearAll(ctx context.Context) error {
	return c.Remove(ctx, AllSlots...)
}

func (c *Cache) readRecord(ctx context.Context, slot Slot) *UserRecord {
	raw, err := c.store.Get(ctx, string(slot))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("session: read failed", "slot", slot, "error", err)
		}
		return nil
	}

	var u UserRecord
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		c.logger.Warn("session: malformed record ignored", "slot", slot, "error", err)
		return nil
	}
	return &u
}

func (c *Cache) writeRecord(ctx context.Context, slot Slot, u UserRecord) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	if err := c.store.Set(ctx, string(slot), string(data)); err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	return nil
}
