package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"WORKER_MODEL":        "gpt-test",
		"DAYS_BACK":           "7",
		"MAX_RESULTS":         "12",
		"KEYWORDS":            "AI Act, , privacy ",
		"CONTINUE_ON_FAILURE": "false",
		"RETRY_DELAY":         "2",
		"MAX_RETRIES":         "not-a-number",
	}
	cfg := Default()
	cfg.applyEnvOverrides(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	assert.Equal(t, "gpt-test", cfg.LLM.Model)
	assert.Equal(t, 7, cfg.News.DaysBack)
	assert.Equal(t, 12, cfg.News.MaxResults)
	assert.Equal(t, []string{"AI Act", "privacy"}, cfg.News.Keywords)
	assert.False(t, cfg.Workflow.ContinueOnFailure)
	assert.Equal(t, 2*time.Second, cfg.Workflow.RetryDelay())
	assert.Equal(t, 3, cfg.Workflow.MaxRetries)
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
news:
  keywords: ["digital services"]
  maxResults: 9
workflow:
  maxRetries: 4
scheduler:
  timezone: Europe/Paris
`), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.Equal(t, []string{"digital services"}, cfg.News.Keywords)
	assert.Equal(t, 9, cfg.News.MaxResults)
	assert.Equal(t, 4, cfg.Workflow.MaxRetries)
	assert.Equal(t, 14, cfg.News.DaysBack)
	assert.Equal(t, "Europe/Paris", cfg.Scheduler.Location().String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.News.DaysBack = -1
	cfg.News.MaxResults = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daysBack")
	assert.Contains(t, err.Error(), "maxResults")
}

func TestStartDate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.News.DaysBack = 14
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate(now))
}
