package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/replydesk/replydesk/internal/bot"
)

// UserStore persists admin accounts in Postgres.
type UserStore struct {
	conn Conn
}

// NewUserStore constructs a UserStore over an existing pool.
func NewUserStore(conn Conn) *UserStore {
	return &UserStore{conn: conn}
}

// GetByUsername returns the user with the given username, or ErrNotFound.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (bot.User, error) {
	var u bot.User
	err := s.conn.QueryRow(ctx,
		`SELECT id, username, password, email FROM users WHERE username = $1`,
		username).Scan(&u.ID, &u.Username, &u.Password, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return bot.User{}, bot.ErrNotFound
	}
	if err != nil {
		return bot.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (bot.User, error) {
	var u bot.User
	err := s.conn.QueryRow(ctx,
		`SELECT id, username, password, email FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Username, &u.Password, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return bot.User{}, bot.ErrNotFound
	}
	if err != nil {
		return bot.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdatePasswordByEmail replaces the password hash for every account with the
// given email.
func (s *UserStore) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE users SET password = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bot.ErrNotFound
	}
	return nil
}
