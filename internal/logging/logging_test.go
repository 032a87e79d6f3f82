package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormatJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithFormat(&buf, "info", "json").Info("step finished", "step", "news_gathering")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "step finished", line["msg"])
	assert.Equal(t, "news_gathering", line["step"])
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithFormat(&buf, "warn", "text")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
