package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/replydesk/replydesk/internal/bot"
)

func TestKnowledgeStoreInsert(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewKnowledgeStore(mock)

	mock.ExpectExec("INSERT INTO knowledge").
		WithArgs(
			"https://example.com/about",
			"About Us",
			"We are a small shop.",
			`["https://example.com/logo.png"]`,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Insert(context.Background(), bot.Page{
		URL:     "https://example.com/about",
		Title:   "About Us",
		Content: "We are a small shop.",
		Images:  []string{"https://example.com/logo.png"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKnowledgeStoreInsertNoImages(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewKnowledgeStore(mock)

	mock.ExpectExec("INSERT INTO knowledge").
		WithArgs("https://example.com", "", "plain text", "[]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Insert(context.Background(), bot.Page{
		URL:     "https://example.com",
		Content: "plain text",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKnowledgeStoreFindContent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewKnowledgeStore(mock)

	mock.ExpectQuery("SELECT content FROM knowledge").
		WithArgs("shipping").
		WillReturnRows(pgxmock.NewRows([]string{"content"}).AddRow("Free shipping over 50."))

	content, err := store.FindContent(context.Background(), "shipping")
	require.NoError(t, err)
	require.Equal(t, "Free shipping over 50.", content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKnowledgeStoreFindContentMiss(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewKnowledgeStore(mock)

	mock.ExpectQuery("SELECT content FROM knowledge").
		WithArgs("xyz123").
		WillReturnRows(pgxmock.NewRows([]string{"content"}))

	_, err = store.FindContent(context.Background(), "xyz123")
	require.ErrorIs(t, err, bot.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
