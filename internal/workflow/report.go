package workflow

import (
	"fmt"
	"strings"
	"time"
)

var stepMarkers = map[StepStatus]string{
	StepSuccess:  "[ok]",
	StepFailed:   "[failed]",
	StepRunning:  "[running]",
	StepPending:  "[pending]",
	StepRetrying: "[retrying]",
	StepSkipped:  "[skipped]",
}

// FormatReport renders the state as a Markdown report.
func FormatReport(state *State) string {
	summary := state.Summary()

	var b strings.Builder
	fmt.Fprintf(&b, "# Workflow Execution Report\n")
	fmt.Fprintf(&b, "**Workflow ID:** %s\n", summary.WorkflowID)
	fmt.Fprintf(&b, "**Status:** %s\n\n", strings.ToUpper(string(summary.Status)))

	b.WriteString("## Timing\n")
	fmt.Fprintf(&b, "- **Started:** %s\n", formatTime(summary.StartTime, "Not started"))
	fmt.Fprintf(&b, "- **Ended:** %s\n", formatTime(summary.EndTime, "In Progress"))
	seconds := summary.Duration.Seconds()
	fmt.Fprintf(&b, "- **Duration:** %.2f seconds (%.1f minutes)\n\n", seconds, seconds/60)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Steps:** %d\n", summary.TotalSteps)
	fmt.Fprintf(&b, "- **Completed:** %d\n", summary.CompletedSteps)
	fmt.Fprintf(&b, "- **Failed:** %d\n", summary.FailedSteps)
	fmt.Fprintf(&b, "- **Success Rate:** %.1f%%\n\n", summary.SuccessRate)

	b.WriteString("## Step Details\n\n")
	for _, step := range state.Steps() {
		fmt.Fprintf(&b, "### %s %s\n", stepMarkers[step.Status], titleCase(step.Name))
		fmt.Fprintf(&b, "- **Status:** %s\n", step.Status)
		fmt.Fprintf(&b, "- **Attempts:** %d/%d\n", step.Attempts, step.MaxAttempts)
		if step.Duration != nil {
			fmt.Fprintf(&b, "- **Duration:** %.2f seconds\n", *step.Duration)
		}
		if step.Error != "" {
			fmt.Fprintf(&b, "- **Error:** %s\n", step.Error)
		}
		b.WriteString("\n")
	}

	if errs := state.Errors(); len(errs) > 0 {
		b.WriteString("## Errors Encountered\n\n")
		for i, entry := range errs {
			fmt.Fprintf(&b, "%d. **%s:** %s\n", i+1, entry.Step, entry.Error)
		}
	}

	return b.String()
}

func formatTime(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.Format(time.RFC3339)
}

func titleCase(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
