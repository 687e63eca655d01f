// Package sqlite is a file-backed session.Store, the desktop counterpart of
// browser local storage. Values can optionally be sealed at rest.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/imeet/pkg/cryptox"
	"github.com/aussiebroadwan/imeet/pkg/session"
	_ "modernc.org/sqlite"
)

const saltMetaName = "seal_salt"

type Store struct {
	db     *sql.DB
	sealer *cryptox.Sealer
}

type options struct {
	passphrase string
}

// Option configures NewStore.
type Option func(*options)

// WithPassphrase seals every stored value with a key derived from passphrase.
// The salt is generated on first use and kept in the database.
func WithPassphrase(passphrase string) Option {
	return func(o *options) { o.passphrase = passphrase }
}

// NewStore opens (creating if needed) the database at dsn and applies
// migrations.
func NewStore(dsn string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection serialises writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply session migrations: %w", err)
	}

	if o.passphrase != "" {
		salt, err := s.loadOrCreateSalt(context.Background())
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		sealer, err := cryptox.NewSealer(o.passphrase, salt)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		s.sealer = sealer
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Sealed reports whether values are encrypted at rest.
func (s *Store) Sealed() bool { return s.sealer != nil }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", session.ErrNotFound
		}
		return "", err
	}

	if s.sealer != nil {
		plain, err := s.sealer.Open(raw)
		if err != nil {
			return "", fmt.Errorf("open %q: %w", key, err)
		}
		raw = plain
	}
	return string(raw), nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	raw := []byte(value)
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(raw)
		if err != nil {
			return fmt.Errorf("seal %q: %w", key, err)
		}
		raw = sealed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, raw,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) loadOrCreateSalt(ctx context.Context) ([]byte, error) {
	var salt []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_meta WHERE name = ?`, saltMetaName).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read seal salt: %w", err)
	}

	salt, err = cryptox.NewSalt()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO session_meta (name, value) VALUES (?, ?)`, saltMetaName, salt,
	); err != nil {
		return nil, fmt.Errorf("failed to store seal salt: %w", err)
	}
	return salt, nil
}
