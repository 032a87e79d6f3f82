package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "curator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveRecordsAndKnownURLs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepo(t)

	records := []domain.ContentRecord{
		{Title: "A", URL: "https://a.example/1", Source: "a.example", Kind: domain.KindNews, Topics: []string{"ai"}},
		{Title: "B", URL: "https://b.example/2", Source: "b.example", Kind: domain.KindEvent, PublishedAt: "2024-03-01"},
	}
	require.NoError(t, repo.SaveRecords(ctx, "workflow_1", records))

	// Upsert on the same URL must not fail.
	records[0].Title = "A (updated)"
	require.NoError(t, repo.SaveRecords(ctx, "workflow_2", records[:1]))

	known, err := repo.KnownURLs(ctx, []string{"https://a.example/1", "https://c.example/3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"https://a.example/1": true}, known)
}

func TestKnownURLsEmptyInput(t *testing.T) {
	t.Parallel()

	known, err := openTestRepo(t).KnownURLs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestSaveRunUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepo(t)
	started := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveRun(ctx, domain.RunSummary{WorkflowID: "workflow_x", Status: "running", StartedAt: started, StateJSON: []byte("{}")}))
	require.NoError(t, repo.SaveRun(ctx, domain.RunSummary{WorkflowID: "workflow_x", Status: "partial", StartedAt: started, EndedAt: started.Add(time.Minute), StateJSON: []byte(`{"status":"partial"}`)}))

	status, err := repo.RunStatus(ctx, "workflow_x")
	require.NoError(t, err)
	assert.Equal(t, "partial", status)
}
