package responder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/replydesk/replydesk/internal/bot"
)

const testFallback = "Sorry, I don't have an answer for that. Please contact support."

type fakeFAQStore struct {
	answers map[string]string // question -> answer
	err     error
}

func (f *fakeFAQStore) List(context.Context) ([]bot.FAQ, error) { return nil, nil }
func (f *fakeFAQStore) Create(context.Context, string, string, *int64) (bot.FAQ, error) {
	return bot.FAQ{}, nil
}
func (f *fakeFAQStore) Update(context.Context, int64, string, string) error { return nil }
func (f *fakeFAQStore) Delete(context.Context, int64) error                 { return nil }

func (f *fakeFAQStore) FindAnswer(_ context.Context, query string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for question, answer := range f.answers {
		if strings.Contains(question, query) || strings.Contains(query, question) {
			return answer, nil
		}
	}
	return "", bot.ErrNotFound
}

type fakeKnowledge struct {
	content string
}

func (f *fakeKnowledge) Insert(context.Context, bot.Page) error { return nil }

func (f *fakeKnowledge) FindContent(_ context.Context, query string) (string, error) {
	if f.content != "" && strings.Contains(f.content, query) {
		return f.content, nil
	}
	return "", bot.ErrNotFound
}

func TestRespondMatchesFAQ(t *testing.T) {
	t.Parallel()

	r := New(
		&fakeFAQStore{answers: map[string]string{"hours": "9-5"}},
		&fakeKnowledge{},
		testFallback,
	)

	reply, err := r.Respond(context.Background(), "hours")
	require.NoError(t, err)
	require.Equal(t, "9-5", reply)

	// A stored question shorter than the inbound sentence still matches.
	reply, err = r.Respond(context.Background(), "what are your hours")
	require.NoError(t, err)
	require.Equal(t, "9-5", reply)
}

func TestRespondFallsThroughToKnowledge(t *testing.T) {
	t.Parallel()

	r := New(
		&fakeFAQStore{},
		&fakeKnowledge{content: "We deliver worldwide within 5 days."},
		testFallback,
	)

	reply, err := r.Respond(context.Background(), "deliver")
	require.NoError(t, err)
	require.Equal(t, "We deliver worldwide within 5 days.", reply)
}

func TestRespondFallback(t *testing.T) {
	t.Parallel()

	r := New(&fakeFAQStore{}, &fakeKnowledge{}, testFallback)

	reply, err := r.Respond(context.Background(), "xyz123")
	require.NoError(t, err)
	require.Equal(t, testFallback, reply)
}

func TestRespondPropagatesStoreError(t *testing.T) {
	t.Parallel()

	r := New(&fakeFAQStore{err: errors.New("db down")}, &fakeKnowledge{}, testFallback)

	_, err := r.Respond(context.Background(), "anything")
	require.Error(t, err)
}

func TestDenyListCaseInsensitive(t *testing.T) {
	t.Parallel()

	list := NewDenyList([]string{"Spam", " scam "})

	require.True(t, list.Matches("this is SPAM for sure"))
	require.True(t, list.Matches("obvious sCaM attempt"))
	require.False(t, list.Matches("a perfectly fine question"))
}

func TestDenyListEmpty(t *testing.T) {
	t.Parallel()

	require.False(t, NewDenyList(nil).Matches("anything"))
	require.False(t, NewDenyList([]string{"", "  "}).Matches("anything"))
}
