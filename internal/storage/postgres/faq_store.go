package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/replydesk/replydesk/internal/bot"
)

// FAQStore persists FAQ rows in Postgres.
type FAQStore struct {
	conn Conn
}

// NewFAQStore constructs a FAQStore over an existing pool.
func NewFAQStore(conn Conn) *FAQStore {
	return &FAQStore{conn: conn}
}

// List returns every FAQ, newest first.
func (s *FAQStore) List(ctx context.Context) ([]bot.FAQ, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, question, answer, parent_id, created_at FROM faqs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()

	var faqs []bot.FAQ
	for rows.Next() {
		var f bot.FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.ParentID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return faqs, nil
}

// Create inserts a FAQ. A non-nil parentID must reference an existing
// top-level FAQ; nesting is limited to one level.
func (s *FAQStore) Create(ctx context.Context, question, answer string, parentID *int64) (bot.FAQ, error) {
	if parentID != nil {
		var grandparent *int64
		err := s.conn.QueryRow(ctx,
			`SELECT parent_id FROM faqs WHERE id = $1`, *parentID).Scan(&grandparent)
		if errors.Is(err, pgx.ErrNoRows) {
			return bot.FAQ{}, bot.ErrInvalidParent
		}
		if err != nil {
			return bot.FAQ{}, fmt.Errorf("check parent: %w", err)
		}
		if grandparent != nil {
			return bot.FAQ{}, bot.ErrInvalidParent
		}
	}

	faq := bot.FAQ{Question: question, Answer: answer, ParentID: parentID}
	err := s.conn.QueryRow(ctx,
		`INSERT INTO faqs (question, answer, parent_id) VALUES ($1, $2, $3) RETURNING id, created_at`,
		question, answer, parentID).Scan(&faq.ID, &faq.CreatedAt)
	if err != nil {
		return bot.FAQ{}, fmt.Errorf("insert faq: %w", err)
	}
	return faq, nil
}

// Update rewrites the question and answer of an existing FAQ.
func (s *FAQStore) Update(ctx context.Context, id int64, question, answer string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE faqs SET question = $1, answer = $2 WHERE id = $3`,
		question, answer, id)
	if err != nil {
		return fmt.Errorf("update faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bot.ErrNotFound
	}
	return nil
}

// Delete removes a FAQ and its direct children.
func (s *FAQStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM faqs WHERE parent_id = $1`, id); err != nil {
		return fmt.Errorf("delete sub-faqs: %w", err)
	}
	tag, err := s.conn.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bot.ErrNotFound
	}
	return nil
}

// FindAnswer returns the answer of the first FAQ matching the query. The
// match is a substring check in either direction: a short stored question
// ("hours") matches a longer inbound sentence and vice versa. Matching uses
// Postgres LIKE, which is case-sensitive.
func (s *FAQStore) FindAnswer(ctx context.Context, query string) (string, error) {
	var answer string
	err := s.conn.QueryRow(ctx,
		`SELECT answer FROM faqs
		 WHERE question LIKE '%' || $1 || '%' OR $1 LIKE '%' || question || '%'
		 LIMIT 1`,
		query).Scan(&answer)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", bot.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find answer: %w", err)
	}
	return answer, nil
}
