package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/bot"
)

// ErrInvalidCredentials is returned for unknown users or wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// resetTokenTTL is how long a reset token stays valid after issuance.
const resetTokenTTL = time.Hour

// Service implements login and the single-use password reset flow.
type Service struct {
	users   bot.UserStore
	tokens  bot.TokenStore
	mailer  bot.Mailer
	clock   bot.Clock
	baseURL string
	logger  *zap.Logger
}

// NewService constructs a Service. baseURL is used to build reset links.
func NewService(
	users bot.UserStore,
	tokens bot.TokenStore,
	mailer bot.Mailer,
	clock bot.Clock,
	baseURL string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		clock:   clock,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Login verifies a username/password pair against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, username, password string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, bot.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !CheckPassword(password, user.Password) {
		return ErrInvalidCredentials
	}
	return nil
}

// RequestReset issues a fresh token for the email and mails the reset link.
// Unknown addresses yield ErrNotFound: this serves the operator's own admin
// accounts, so a wrong address is a typo to report, not a secret to keep.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			return bot.ErrNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	value, err := newTokenValue()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	token := bot.ResetToken{
		Email:     email,
		Token:     value,
		ExpiresAt: s.clock.Now().Add(resetTokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, value)
	body := "Click here to reset your password: " + link
	if err := s.mailer.Send(ctx, email, "Password Reset Request", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	s.logger.Info("reset link issued", zap.String("email", email))
	return nil
}

// ResetPassword consumes a token and replaces the account password. A token
// works exactly once and only within its lifetime; anything else yields
// ErrInvalidToken.
func (s *Service) ResetPassword(ctx context.Context, tokenValue, newPassword string) error {
	token, err := s.tokens.Get(ctx, tokenValue)
	if errors.Is(err, bot.ErrNotFound) {
		return bot.ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token.Used || s.clock.Now().After(token.ExpiresAt) {
		return bot.ErrInvalidToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordByEmail(ctx, token.Email, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.MarkUsed(ctx, tokenValue); err != nil {
		return fmt.Errorf("consume token: %w", err)
	}
	return nil
}

// newTokenValue returns an unguessable URL-safe token.
func newTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
