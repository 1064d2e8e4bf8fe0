package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/replydesk/replydesk/internal/bot"
)

// TokenStore persists password reset tokens in Postgres.
type TokenStore struct {
	conn Conn
}

// NewTokenStore constructs a TokenStore over an existing pool.
func NewTokenStore(conn Conn) *TokenStore {
	return &TokenStore{conn: conn}
}

// Create inserts a fresh reset token.
func (s *TokenStore) Create(ctx context.Context, token bot.ResetToken) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO password_reset_tokens (email, token, expires_at) VALUES ($1, $2, $3)`,
		token.Email, token.Token, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// Get looks up a token by its value.
func (s *TokenStore) Get(ctx context.Context, token string) (bot.ResetToken, error) {
	rt := bot.ResetToken{Token: token}
	err := s.conn.QueryRow(ctx,
		`SELECT email, expires_at, used FROM password_reset_tokens WHERE token = $1`,
		token).Scan(&rt.Email, &rt.ExpiresAt, &rt.Used)
	if errors.Is(err, pgx.ErrNoRows) {
		return bot.ResetToken{}, bot.ErrNotFound
	}
	if err != nil {
		return bot.ResetToken{}, fmt.Errorf("get reset token: %w", err)
	}
	return rt, nil
}

// MarkUsed consumes a token; subsequent Get calls report it as used.
func (s *TokenStore) MarkUsed(ctx context.Context, token string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bot.ErrNotFound
	}
	return nil
}
