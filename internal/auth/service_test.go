package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/bot"
)

type fakeUserStore struct {
	users          map[string]bot.User // by username
	passwordByMail map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:          map[string]bot.User{},
		passwordByMail: map[string]string{},
	}
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (bot.User, error) {
	u, ok := f.users[username]
	if !ok {
		return bot.User{}, bot.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (bot.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return bot.User{}, bot.ErrNotFound
}

func (f *fakeUserStore) UpdatePasswordByEmail(_ context.Context, email, hash string) error {
	found := false
	for name, u := range f.users {
		if u.Email == email {
			u.Password = hash
			f.users[name] = u
			found = true
		}
	}
	if !found {
		return bot.ErrNotFound
	}
	f.passwordByMail[email] = hash
	return nil
}

type fakeTokenStore struct {
	tokens map[string]bot.ResetToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]bot.ResetToken{}}
}

func (f *fakeTokenStore) Create(_ context.Context, token bot.ResetToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, token string) (bot.ResetToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return bot.ResetToken{}, bot.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenStore) MarkUsed(_ context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok {
		return bot.ErrNotFound
	}
	t.Used = true
	f.tokens[token] = t
	return nil
}

type fakeMailer struct {
	sent []string // "to|subject|body"
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+subject+"|"+body)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeTokenStore, *fakeMailer, *fixedClock) {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	mail := &fakeMailer{}
	clock := &fixedClock{now: time.Unix(1700000000, 0).UTC()}
	svc := NewService(users, tokens, mail, clock, "https://desk.example.com", zap.NewNop())
	return svc, users, tokens, mail, clock
}

func seedUser(t *testing.T, users *fakeUserStore, username, password, email string) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	users.users[username] = bot.User{ID: 1, Username: username, Password: hash, Email: email}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, users, _, _, _ := newTestService(t)
	seedUser(t, users, "Admin", "s3cret", "admin@example.com")

	require.NoError(t, svc.Login(context.Background(), "Admin", "s3cret"))
	require.ErrorIs(t, svc.Login(context.Background(), "Admin", "wrong"), ErrInvalidCredentials)
	require.ErrorIs(t, svc.Login(context.Background(), "ghost", "s3cret"), ErrInvalidCredentials)
}

func TestRequestResetMailsLink(t *testing.T) {
	t.Parallel()

	svc, users, tokens, mail, clock := newTestService(t)
	seedUser(t, users, "Admin", "s3cret", "admin@example.com")

	require.NoError(t, svc.RequestReset(context.Background(), "admin@example.com"))
	require.Len(t, mail.sent, 1)
	require.Contains(t, mail.sent[0], "admin@example.com|Password Reset Request|")
	require.Contains(t, mail.sent[0], "https://desk.example.com/reset-password/")

	require.Len(t, tokens.tokens, 1)
	for _, token := range tokens.tokens {
		require.Equal(t, clock.now.Add(time.Hour), token.ExpiresAt)
		require.False(t, token.Used)
		require.GreaterOrEqual(t, len(token.Token), 32)
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, users, tokens, mail, _ := newTestService(t)
	seedUser(t, users, "Admin", "s3cret", "admin@example.com")

	err := svc.RequestReset(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, bot.ErrNotFound)
	require.Empty(t, tokens.tokens)
	require.Empty(t, mail.sent)
}

func TestResetPasswordSingleUse(t *testing.T) {
	t.Parallel()

	svc, users, tokens, _, clock := newTestService(t)
	seedUser(t, users, "Admin", "old", "admin@example.com")
	tokens.tokens["tok"] = bot.ResetToken{
		Email:     "admin@example.com",
		Token:     "tok",
		ExpiresAt: clock.now.Add(time.Hour),
	}

	require.NoError(t, svc.ResetPassword(context.Background(), "tok", "newpass"))
	require.True(t, CheckPassword("newpass", users.users["Admin"].Password))

	// Second use of the same token must fail.
	err := svc.ResetPassword(context.Background(), "tok", "another")
	require.ErrorIs(t, err, bot.ErrInvalidToken)
	require.True(t, CheckPassword("newpass", users.users["Admin"].Password))
}

func TestResetPasswordExpiredToken(t *testing.T) {
	t.Parallel()

	svc, users, tokens, _, clock := newTestService(t)
	seedUser(t, users, "Admin", "old", "admin@example.com")
	tokens.tokens["tok"] = bot.ResetToken{
		Email:     "admin@example.com",
		Token:     "tok",
		ExpiresAt: clock.now.Add(-time.Minute),
	}

	err := svc.ResetPassword(context.Background(), "tok", "newpass")
	require.ErrorIs(t, err, bot.ErrInvalidToken)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	t.Parallel()

	svc, _, _, _, _ := newTestService(t)
	err := svc.ResetPassword(context.Background(), "missing", "newpass")
	require.ErrorIs(t, err, bot.ErrInvalidToken)
}

func TestHashPasswordSalted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("same")
	require.NoError(t, err)
	second, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, CheckPassword("same", first))
	require.True(t, CheckPassword("same", second))
	require.False(t, CheckPassword("different", first))
	require.True(t, strings.HasPrefix(first, "$2"))
}
