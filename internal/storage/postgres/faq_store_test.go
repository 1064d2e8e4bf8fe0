package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/replydesk/replydesk/internal/bot"
)

func TestFAQStoreCreateTopLevel(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)
	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectQuery("INSERT INTO faqs").
		WithArgs("hours", "9-5", (*int64)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	faq, err := store.Create(context.Background(), "hours", "9-5", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), faq.ID)
	require.Equal(t, "hours", faq.Question)
	require.Nil(t, faq.ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreCreateSubFAQ(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)
	parent := int64(1)
	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectQuery("SELECT parent_id FROM faqs").
		WithArgs(parent).
		WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow((*int64)(nil)))
	mock.ExpectQuery("INSERT INTO faqs").
		WithArgs("opening hours", "9-5 weekdays", &parent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))

	faq, err := store.Create(context.Background(), "opening hours", "9-5 weekdays", &parent)
	require.NoError(t, err)
	require.Equal(t, int64(2), faq.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreCreateRejectsNestedParent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)
	parent := int64(2)
	grandparent := int64(1)

	mock.ExpectQuery("SELECT parent_id FROM faqs").
		WithArgs(parent).
		WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow(&grandparent))

	_, err = store.Create(context.Background(), "q", "a", &parent)
	require.ErrorIs(t, err, bot.ErrInvalidParent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreDeleteCascades(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)

	mock.ExpectExec("DELETE FROM faqs WHERE parent_id").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM faqs WHERE id").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Delete(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreDeleteMissing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)

	mock.ExpectExec("DELETE FROM faqs WHERE parent_id").
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM faqs WHERE id").
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.ErrorIs(t, store.Delete(context.Background(), 9), bot.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreFindAnswer(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)

	mock.ExpectQuery("SELECT answer FROM faqs").
		WithArgs("hours").
		WillReturnRows(pgxmock.NewRows([]string{"answer"}).AddRow("9-5"))

	answer, err := store.FindAnswer(context.Background(), "hours")
	require.NoError(t, err)
	require.Equal(t, "9-5", answer)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreFindAnswerMatchesEitherDirection(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)

	// A short stored question must match a longer inbound sentence, so the
	// query checks containment both ways.
	mock.ExpectQuery(`question LIKE '%' \|\| \$1 \|\| '%' OR \$1 LIKE '%' \|\| question \|\| '%'`).
		WithArgs("what are your hours").
		WillReturnRows(pgxmock.NewRows([]string{"answer"}).AddRow("9-5"))

	answer, err := store.FindAnswer(context.Background(), "what are your hours")
	require.NoError(t, err)
	require.Equal(t, "9-5", answer)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreFindAnswerMiss(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)

	mock.ExpectQuery("SELECT answer FROM faqs").
		WithArgs("xyz123").
		WillReturnRows(pgxmock.NewRows([]string{"answer"}))

	_, err = store.FindAnswer(context.Background(), "xyz123")
	require.ErrorIs(t, err, bot.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFAQStoreList(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFAQStore(mock)
	now := time.Unix(1700000000, 0).UTC()
	parent := int64(1)

	mock.ExpectQuery("SELECT id, question, answer, parent_id, created_at FROM faqs").
		WillReturnRows(pgxmock.NewRows([]string{"id", "question", "answer", "parent_id", "created_at"}).
			AddRow(int64(2), "sub", "sub answer", &parent, now).
			AddRow(int64(1), "top", "top answer", (*int64)(nil), now))

	faqs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, faqs, 2)
	require.Equal(t, &parent, faqs[0].ParentID)
	require.Nil(t, faqs[1].ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}
