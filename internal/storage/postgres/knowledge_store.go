package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/replydesk/replydesk/internal/bot"
)

// KnowledgeStore persists crawled page rows in Postgres.
type KnowledgeStore struct {
	conn Conn
}

// NewKnowledgeStore constructs a KnowledgeStore over an existing pool.
func NewKnowledgeStore(conn Conn) *KnowledgeStore {
	return &KnowledgeStore{conn: conn}
}

// Insert stores one extracted page. Image URLs are serialized as a JSON
// array in a text column. Duplicate URLs are not merged.
func (s *KnowledgeStore) Insert(ctx context.Context, page bot.Page) error {
	images := page.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	_, err = s.conn.Exec(ctx,
		`INSERT INTO knowledge (url, title, content, images) VALUES ($1, $2, $3, $4)`,
		page.URL, page.Title, page.Content, string(imagesJSON))
	if err != nil {
		return fmt.Errorf("insert knowledge: %w", err)
	}
	return nil
}

// FindContent returns the content of the first entry containing the query.
// Matching uses Postgres LIKE, which is case-sensitive.
func (s *KnowledgeStore) FindContent(ctx context.Context, query string) (string, error) {
	var content string
	err := s.conn.QueryRow(ctx,
		`SELECT content FROM knowledge WHERE content LIKE '%' || $1 || '%' LIMIT 1`,
		query).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", bot.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find content: %w", err)
	}
	return content, nil
}
