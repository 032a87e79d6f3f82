package generation

import (
	"fmt"
	"strings"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/textutil"
)

const digestSummaryRunes = 400

// RenderDigest lays out records as a Markdown briefing. It is what the
// generator hands to the agent and what the notifier sends when no content
// was generated.
func RenderDigest(title string, records []domain.ContentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(records) == 0 {
		b.WriteString("No items were found.\n")
		return b.String()
	}

	for i, record := range records {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, textutil.FirstNonEmpty(record.Title, "Untitled"))
		fmt.Fprintf(&b, "- **Source:** %s\n", textutil.FirstNonEmpty(record.Source, "unknown"))
		fmt.Fprintf(&b, "- **Type:** %s\n", record.Kind)
		fmt.Fprintf(&b, "- **Date:** %s\n", textutil.FirstNonEmpty(record.PublishedAt, "unknown"))
		if record.Kind == domain.KindEvent && (record.EventStart != "" || record.EventLocation != "") {
			fmt.Fprintf(&b, "- **When/Where:** %s %s\n", record.EventStart, record.EventLocation)
		}
		if record.Author != "" {
			fmt.Fprintf(&b, "- **Author:** %s\n", record.Author)
		}
		if len(record.Topics) > 0 {
			fmt.Fprintf(&b, "- **Topics:** %s\n", strings.Join(record.Topics, ", "))
		}
		fmt.Fprintf(&b, "- **URL:** %s\n", record.URL)

		summary := textutil.FirstNonEmpty(record.Summary, record.ScrapedText)
		if summary != "" {
			b.WriteString("\n")
			b.WriteString(excerpt(summary, digestSummaryRunes))
			b.WriteString("\n")
		}
		b.WriteString("\n---\n\n")
	}
	return b.String()
}

func excerpt(text string, limit int) string {
	cut := textutil.Truncate(text, limit)
	if cut != text {
		return strings.TrimSpace(cut) + "..."
	}
	return text
}
