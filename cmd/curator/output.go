package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/textutil"
	"ContentCurator/internal/workflow"
)

const summaryPreviewRunes = 240

func renderRunSummary(result workflow.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow %s finished with status %s\n", result.WorkflowID, strings.ToUpper(string(result.Status)))

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Step", "Status", "Attempts", "Duration", "Error"})
	for _, step := range result.Steps {
		duration := "-"
		if step.Duration != nil {
			duration = strconv.FormatFloat(*step.Duration, 'f', 2, 64) + "s"
		}
		tw.AppendRow(table.Row{
			step.Name,
			string(step.Status),
			fmt.Sprintf("%d/%d", step.Attempts, step.MaxAttempts),
			duration,
			textutil.Truncate(step.Error, 80),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	b.WriteString(tw.Render())
	b.WriteString("\n")

	fmt.Fprintf(&b, "Steps: %d completed, %d failed of %d (%.1f%% success)\n",
		result.Summary.CompletedSteps, result.Summary.FailedSteps, result.Summary.TotalSteps, result.Summary.SuccessRate)

	for i, entry := range result.Errors {
		if i == 3 {
			fmt.Fprintf(&b, "... and %d more errors\n", len(result.Errors)-i)
			break
		}
		fmt.Fprintf(&b, "error: %s: %s\n", entry.Step, entry.Error)
	}
	for _, file := range result.Files {
		fmt.Fprintf(&b, "wrote %s\n", file)
	}
	return b.String()
}

func renderRecords(records []domain.ContentRecord) string {
	if len(records) == 0 {
		return "No results.\n"
	}

	var b strings.Builder
	for i, record := range records {
		fmt.Fprintf(&b, "%d. %s\n", i+1, record.Title)
		fmt.Fprintf(&b, "   Source: %s | Type: %s | Date: %s\n",
			record.Source, record.Kind, textutil.FirstNonEmpty(record.PublishedAt, "unknown"))
		if record.Kind == domain.KindEvent && (record.EventStart != "" || record.EventLocation != "") {
			fmt.Fprintf(&b, "   Event: %s %s\n", record.EventStart, record.EventLocation)
		}
		if len(record.Topics) > 0 {
			fmt.Fprintf(&b, "   Topics: %s\n", strings.Join(record.Topics, ", "))
		}
		fmt.Fprintf(&b, "   URL: %s\n", record.URL)
		if summary := textutil.FirstNonEmpty(record.Summary, record.ScrapedText); summary != "" {
			preview := textutil.Truncate(summary, summaryPreviewRunes)
			if preview != summary {
				preview += "..."
			}
			fmt.Fprintf(&b, "   Summary: %s\n", preview)
		}
		b.WriteString("\n")
	}
	return b.String()
}
