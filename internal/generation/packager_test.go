package generation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

type memoryArtifacts struct {
	content map[string]string
	err     error
}

func (m *memoryArtifacts) SaveStepResult(step string, _ any) (string, error) {
	return step + ".json", nil
}

func (m *memoryArtifacts) SaveContent(name, content string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.content == nil {
		m.content = map[string]string{}
	}
	m.content[name] = content
	return filepath.Join("content", name+".md"), nil
}

func (m *memoryArtifacts) SaveReport(string) (string, error) { return "report.md", nil }

func (m *memoryArtifacts) SaveState(id string, _ any) (string, error) { return id + "_state.json", nil }

type memoryRepository struct {
	saved []domain.ContentRecord
	err   error
}

func (m *memoryRepository) KnownURLs(context.Context, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (m *memoryRepository) SaveRecords(_ context.Context, _ string, records []domain.ContentRecord) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, records...)
	return nil
}

func (m *memoryRepository) SaveRun(context.Context, domain.RunSummary) error { return nil }

type memoryNotifier struct {
	messages []string
	err      error
}

func (m *memoryNotifier) PublishDigest(_ context.Context, digest string) error {
	m.messages = append(m.messages, digest)
	return m.err
}

func TestPackageWithGeneratedContent(t *testing.T) {
	t.Parallel()

	artifacts := &memoryArtifacts{}
	repo := &memoryRepository{}
	notifier := &memoryNotifier{}
	news := []domain.ContentRecord{{Title: "A", URL: "https://example.org/a"}}

	pkg, err := NewPackager(artifacts, repo, notifier, nil).Package(context.Background(), Bundle{
		WorkflowID: "workflow_1",
		News:       news,
		Analysis:   "quiet",
		Content:    &Content{Body: "# Final"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"news", "social_media", "content"}, pkg.Components)
	assert.Equal(t, []string{filepath.Join("content", "final_content.md")}, pkg.Files)
	assert.Equal(t, "# Final", artifacts.content["final_content"])
	assert.Equal(t, 1, pkg.RecordsStored)
	assert.True(t, pkg.Notified)
	assert.Equal(t, []string{"# Final"}, notifier.messages)
	assert.Equal(t, news, repo.saved)
}

func TestPackageFallsBackToDigest(t *testing.T) {
	t.Parallel()

	artifacts := &memoryArtifacts{}
	pkg, err := NewPackager(artifacts, nil, nil, nil).Package(context.Background(), Bundle{
		News: []domain.ContentRecord{{Title: "Only news", URL: "https://example.org/n"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"news"}, pkg.Components)
	assert.Contains(t, artifacts.content["news_digest"], "Only news")
	assert.False(t, pkg.Notified)
	assert.Zero(t, pkg.RecordsStored)
}

func TestPackageToleratesStorageAndNotifierFailures(t *testing.T) {
	t.Parallel()

	pkg, err := NewPackager(
		&memoryArtifacts{},
		&memoryRepository{err: errors.New("db down")},
		&memoryNotifier{err: errors.New("telegram down")},
		nil,
	).Package(context.Background(), Bundle{
		News: []domain.ContentRecord{{Title: "A", URL: "https://example.org/a"}},
	})
	require.NoError(t, err)
	assert.Zero(t, pkg.RecordsStored)
	assert.False(t, pkg.Notified)
	assert.False(t, pkg.IsEmpty())
}

func TestPackageArtifactFailure(t *testing.T) {
	t.Parallel()

	_, err := NewPackager(&memoryArtifacts{err: errors.New("disk full")}, nil, nil, nil).Package(context.Background(), Bundle{
		Content: &Content{Body: "text"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPackageNothingToDo(t *testing.T) {
	t.Parallel()

	pkg, err := NewPackager(&memoryArtifacts{}, nil, nil, nil).Package(context.Background(), Bundle{})
	require.NoError(t, err)
	assert.True(t, pkg.IsEmpty())
}
