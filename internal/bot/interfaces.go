package bot

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a missing row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidToken reports a reset token that is unknown, used, or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidParent reports an attempt to nest a FAQ under a sub-question.
	ErrInvalidParent = errors.New("parent must be a top-level question")
)

// FAQStore persists the FAQ catalogue.
type FAQStore interface {
	List(ctx context.Context) ([]FAQ, error)
	Create(ctx context.Context, question, answer string, parentID *int64) (FAQ, error)
	Update(ctx context.Context, id int64, question, answer string) error
	Delete(ctx context.Context, id int64) error
	FindAnswer(ctx context.Context, query string) (string, error)
}

// KnowledgeStore persists crawled pages.
type KnowledgeStore interface {
	Insert(ctx context.Context, page Page) error
	FindContent(ctx context.Context, query string) (string, error)
}

// SettingsStore persists the fixed key/value settings set.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetAll(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// UserStore persists admin accounts.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// TokenStore persists password reset tokens.
type TokenStore interface {
	Create(ctx context.Context, token ResetToken) error
	Get(ctx context.Context, token string) (ResetToken, error)
	MarkUsed(ctx context.Context, token string) error
}

// Fetcher retrieves one document body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Sender delivers one outbound text message.
type Sender interface {
	SendText(ctx context.Context, to, body string) (DeliveryResult, error)
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Clock abstracts time for testable expiry checks.
type Clock interface {
	Now() time.Time
}
