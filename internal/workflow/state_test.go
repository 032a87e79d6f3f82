package workflow

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	current time.Time
}

func (c *stepClock) now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func TestStateLifecycle(t *testing.T) {
	t.Parallel()

	clock := &stepClock{current: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	state := NewState(clock.now)
	assert.Equal(t, "workflow_20240501_080001", state.WorkflowID())
	assert.Equal(t, StatusPending, state.Status())

	state.AddStep("a", "first", 3)
	state.AddStep("b", "second", 3)
	state.AddStep("a", "duplicate", 3)

	state.StartWorkflow()
	state.StartStep("a", 1)
	state.CompleteStep("a", "ok")
	state.StartStep("b", 1)
	state.FailStep("b", "boom")
	state.CompleteWorkflow(StatusPartial)

	summary := state.Summary()
	assert.Equal(t, 2, summary.TotalSteps)
	assert.Equal(t, 1, summary.CompletedSteps)
	assert.Equal(t, 1, summary.FailedSteps)
	assert.InDelta(t, 50.0, summary.SuccessRate, 0.001)
	assert.Equal(t, StatusPartial, summary.Status)
	assert.Positive(t, summary.Duration)

	a, _ := state.Step("a")
	require.NotNil(t, a.Duration)
	assert.InDelta(t, 1.0, *a.Duration, 0.001)

	result, ok := state.Result("a")
	assert.True(t, ok)
	assert.Equal(t, "ok", result)

	errs := state.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "b", errs[0].Step)
}

func TestStateSkipKeepsReason(t *testing.T) {
	t.Parallel()

	state := NewState(nil)
	state.AddStep("content_generation", "generate", 1)
	state.SkipStep("content_generation", "No input data from previous steps")

	step, _ := state.Step("content_generation")
	assert.Equal(t, StepSkipped, step.Status)
	assert.Equal(t, "No input data from previous steps", step.Error)
	assert.Zero(t, state.Summary().FailedSteps)
}

func TestStateJSONKeepsStepOrder(t *testing.T) {
	t.Parallel()

	state := NewState(nil)
	for _, name := range []string{"news_gathering", "social_media_monitoring", "content_generation", "final_output"} {
		state.AddStep(name, name, 3)
	}

	payload, err := json.Marshal(state)
	require.NoError(t, err)

	text := string(payload)
	assert.Less(t, strings.Index(text, `"news_gathering"`), strings.Index(text, `"social_media_monitoring"`))
	assert.Less(t, strings.Index(text, `"social_media_monitoring"`), strings.Index(text, `"content_generation"`))
	assert.Less(t, strings.Index(text, `"content_generation"`), strings.Index(text, `"final_output"`))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, state.WorkflowID(), decoded["workflow_id"])
	assert.Len(t, decoded["steps"], 4)
	assert.Equal(t, []any{}, decoded["errors"])
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	clock := &stepClock{current: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	state := NewState(clock.now)
	state.AddStep("news_gathering", "gather", 3)
	state.AddStep("content_generation", "generate", 3)
	state.StartWorkflow()
	state.StartStep("news_gathering", 2)
	state.FailStep("news_gathering", "news_gathering failed: timeout")
	state.SkipStep("content_generation", "No input data from previous steps")
	state.CompleteWorkflow(StatusFailed)

	report := FormatReport(state)

	assert.Contains(t, report, "# Workflow Execution Report")
	assert.Contains(t, report, "**Status:** FAILED")
	assert.Contains(t, report, "### [failed] News Gathering")
	assert.Contains(t, report, "- **Attempts:** 2/3")
	assert.Contains(t, report, "### [skipped] Content Generation")
	assert.Contains(t, report, "- **Success Rate:** 0.0%")
	assert.Contains(t, report, "1. **news_gathering:** news_gathering failed: timeout")
}
