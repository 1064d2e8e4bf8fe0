package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/replydesk/replydesk/internal/bot"
)

// SettingsStore persists configuration key-value pairs in Postgres.
type SettingsStore struct {
	conn Conn
}

// NewSettingsStore constructs a SettingsStore over an existing pool.
func NewSettingsStore(conn Conn) *SettingsStore {
	return &SettingsStore{conn: conn}
}

// Get returns the value for key, or ErrNotFound.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", bot.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// GetAll returns the values for the requested keys. Missing keys are simply
// absent from the result.
func (s *SettingsStore) GetAll(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT key, value FROM settings WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return values, nil
}

// Set upserts one key-value pair.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
