package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	reply map[string]any
	err   error
	state map[string]any
}

func (f *fakeAgent) Invoke(_ context.Context, state map[string]any) (map[string]any, error) {
	f.state = state
	return f.reply, f.err
}

func newTestWatcher(agent *fakeAgent) *Watcher {
	w := NewWatcher(agent, Settings{
		Accounts:           map[string][]string{"twitter": {"https://twitter.com/acme"}},
		Keywords:           []string{"policy"},
		MaxPostsPerAccount: 5,
		LookbackDays:       7,
		PriorityCategories: []string{"announcement"},
	}, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return w
}

func TestWatchFiltersPosts(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: map[string]any{
		"gathered_posts": []any{
			map[string]any{"url": "https://twitter.com/acme/status/1", "content": "New policy brief", "timestamp": "2024-03-08"},
			map[string]any{"url": "https://twitter.com/acme/status/2", "content": "New policy brief", "timestamp": "2024-01-01"},
			map[string]any{"url": "https://twitter.com/acme/status/3", "content": "Team lunch", "timestamp": "2024-03-09"},
			"not a post",
		},
		"analysis": "Mostly policy chatter",
	}}

	report, err := newTestWatcher(agent).Watch(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Posts, 1)
	assert.Equal(t, "https://twitter.com/acme/status/1", report.Posts[0].PostURL)
	assert.Equal(t, "Mostly policy chatter", report.Analysis)
	assert.Equal(t, 2, report.Dropped)
	assert.False(t, report.IsEmpty())

	assert.Equal(t, 5, agent.state["max_posts"])
	assert.Equal(t, "2024-03-03", agent.state["start_date"])
}

func TestWatchParsesEncodedReport(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: map[string]any{
		"social_media_report": `{"posts":[{"url":"https://x.com/acme/status/9","content":"We announce a partnership"}],"analysis":"one announcement"}`,
	}}

	report, err := newTestWatcher(agent).Watch(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Posts, 1)
	assert.Equal(t, "twitter", report.Posts[0].Platform)
	assert.Equal(t, "one announcement", report.Analysis)
}

func TestWatchTextOnlyReply(t *testing.T) {
	t.Parallel()

	agent := &fakeAgent{reply: map[string]any{"output": "No posts found this week."}}

	report, err := newTestWatcher(agent).Watch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Posts)
	assert.Equal(t, "No posts found this week.", report.Analysis)
	assert.False(t, report.IsEmpty())
}

func TestWatchEmptyReply(t *testing.T) {
	t.Parallel()

	report, err := newTestWatcher(&fakeAgent{reply: map[string]any{}}).Watch(context.Background())
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
}

func TestWatchAgentError(t *testing.T) {
	t.Parallel()

	_, err := newTestWatcher(&fakeAgent{err: errors.New("boom")}).Watch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
