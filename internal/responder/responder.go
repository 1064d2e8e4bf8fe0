// Package responder resolves inbound free text to an answer.
package responder

import (
	"context"
	"errors"
	"fmt"

	"github.com/replydesk/replydesk/internal/bot"
)

// Responder searches FAQs first, then the knowledge base, and falls back to a
// fixed message. Both lookups rely on the stores' LIKE substring semantics,
// which on Postgres are case-sensitive.
type Responder struct {
	faqs      bot.FAQStore
	knowledge bot.KnowledgeStore
	fallback  string
}

// New constructs a Responder with the given fallback message.
func New(faqs bot.FAQStore, knowledge bot.KnowledgeStore, fallback string) *Responder {
	return &Responder{
		faqs:      faqs,
		knowledge: knowledge,
		fallback:  fallback,
	}
}

// Respond returns the reply for inbound text. Which row wins when several
// match is storage order; no ranking is applied.
func (r *Responder) Respond(ctx context.Context, text string) (string, error) {
	answer, err := r.faqs.FindAnswer(ctx, text)
	if err == nil {
		return answer, nil
	}
	if !errors.Is(err, bot.ErrNotFound) {
		return "", fmt.Errorf("faq lookup: %w", err)
	}

	content, err := r.knowledge.FindContent(ctx, text)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, bot.ErrNotFound) {
		return "", fmt.Errorf("knowledge lookup: %w", err)
	}

	return r.fallback, nil
}
