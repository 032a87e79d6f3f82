package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/config"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/workflow"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		published := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>feed</title>
<item><title>Agency publishes AI policy guidance</title><link>%[1]s/article/1</link><description>Guidance for agencies.</description><pubDate>%[2]s</pubDate></item>
<item><title>University hosts privacy summit</title><link>%[1]s/article/2</link><description>A summit on privacy.</description><pubDate>%[2]s</pubDate></item>
</channel></rss>`, server.URL, published)
	})
	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Article</title></head><body><article><p>Full article text about responsible AI policy and public guidance for agencies.</p></article></body></html>`)
	})
	mux.HandleFunc("/llm", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var reply map[string]any
		if strings.Contains(req.Messages[0].Content, "social media") {
			reply = map[string]any{"social_media_report": map[string]any{
				"posts": []any{map[string]any{
					"post_url":  "https://twitter.com/acme/status/1",
					"content":   "We announce new AI policy resources",
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				}},
				"analysis": "Policy announcements dominate.",
			}}
		} else {
			reply = map[string]any{"generated_content": "# Weekly Brief\n\nAgencies published new guidance."}
		}
		content, _ := json.Marshal(reply)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": string(content)}}},
		})
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, server *httptest.Server) config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.News.Keywords = []string{"AI policy"}
	cfg.News.SourceDomains = []string{"gov"}
	cfg.News.ResourceLinks = nil
	cfg.News.EventCalendars = nil
	cfg.News.MaxResults = 2
	cfg.Search.FeedTemplate = server.URL + "/rss?q={q}&hl={lang}&gl={country}"
	cfg.LLM = config.LLMConfig{Endpoint: server.URL + "/llm", Model: "test-model", APIKey: "key"}
	cfg.Workflow.RetryDelaySeconds = 0
	cfg.Paths = config.PathsConfig{
		Output:  filepath.Join(dir, "output"),
		Content: filepath.Join(dir, "output", "content"),
		Logs:    filepath.Join(dir, "output", "logs"),
	}
	cfg.Database.DSN = filepath.Join(dir, "curator.db")
	return cfg
}

func TestRunProducesArtifacts(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	cfg := testConfig(t, server)

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	result, err := application.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusSuccess, result.Status)
	require.Len(t, result.News, 2)
	assert.NotEmpty(t, result.News[0].ScrapedText)
	require.Len(t, result.Posts, 1)
	require.NotNil(t, result.Content)
	assert.Contains(t, result.Content.Body, "Weekly Brief")

	require.NotEmpty(t, result.ReportPath)
	require.NotEmpty(t, result.StatePath)
	for _, file := range result.Files {
		_, statErr := os.Stat(file)
		assert.NoError(t, statErr, file)
	}

	finals, err := filepath.Glob(filepath.Join(cfg.Paths.Content, "final_content_*.md"))
	require.NoError(t, err)
	assert.Len(t, finals, 1)

	steps, err := filepath.Glob(filepath.Join(cfg.Paths.Output, "news_gathering_*.json"))
	require.NoError(t, err)
	assert.Len(t, steps, 1)
}

func TestGatherUsesDiscoveryOnly(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	cfg := testConfig(t, server)
	cfg.Database.DSN = ""

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	records, err := application.Gather(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.True(t, strings.HasPrefix(record.URL, server.URL+"/article/"))
	}
}

func TestDiscoveryRequestMirrorsConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Database.DSN = ""
	cfg.News.SkipKnownURLs = true

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	req := application.DiscoveryRequest()
	assert.Equal(t, cfg.News.Keywords, req.Keywords)
	assert.Equal(t, cfg.News.CountryFocus, req.CountryCode)
	assert.Equal(t, cfg.News.DaysBack, req.DaysBack)
	assert.Equal(t, cfg.News.MaxResults, req.MaxResults)
	assert.True(t, req.SkipKnownURLs)
}
