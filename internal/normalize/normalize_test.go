package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func TestNormalizeResolvesAliases(t *testing.T) {
	t.Parallel()

	record, ok := Normalize(domain.RawResult{
		"headline":    "  Senate   hearing on &quot;AI&quot; safety ",
		"link":        "https://www.news.example.co.uk/story?id=1",
		"description": "<p>Lawmakers <b>question</b> vendors.</p>",
		"pubDate":     "Mon, 15 Jan 2024 10:30:00 GMT",
		"tags":        []any{"AI", "safety", "ai"},
	})
	require.True(t, ok)

	assert.Equal(t, `Senate hearing on "AI" safety`, record.Title)
	assert.Equal(t, "https://www.news.example.co.uk/story?id=1", record.URL)
	assert.Equal(t, "Lawmakers question vendors.", record.Summary)
	assert.Equal(t, "example.co.uk", record.Source)
	assert.Equal(t, domain.KindEvent, record.Kind)
	assert.Equal(t, "2024-01-15T10:30:00Z", record.PublishedAt)
	assert.Equal(t, []string{"AI", "safety"}, record.Topics)
}

func TestNormalizeDropsUnresolvable(t *testing.T) {
	t.Parallel()

	_, ok := Normalize(domain.RawResult{"title": "No link"})
	assert.False(t, ok)

	_, ok = Normalize(domain.RawResult{"url": "https://example.org/a"})
	assert.False(t, ok)

	_, ok = Normalize(domain.RawResult{"title": "Relative", "url": "/path/only"})
	assert.False(t, ok)
}

func TestNormalizeDefaultsAndKinds(t *testing.T) {
	t.Parallel()

	record, ok := Normalize(domain.RawResult{
		"name":   "Quarterly privacy update",
		"url":    "https://agency.gov/update",
		"source": "Agency",
	})
	require.True(t, ok)
	assert.Equal(t, domain.KindNews, record.Kind)
	assert.Equal(t, "Agency", record.Source)
	assert.Equal(t, "", record.Summary)
	assert.Empty(t, record.PublishedAt)
	assert.NotNil(t, record.Topics)

	report, ok := Normalize(domain.RawResult{
		"title": "Annual summit outcomes",
		"url":   "https://agency.gov/report",
		"type":  "report",
	})
	require.True(t, ok)
	assert.Equal(t, domain.KindReport, report.Kind)

	event, ok := Normalize(domain.RawResult{
		"title":    "Data privacy webinar",
		"url":      "https://agency.gov/webinar",
		"start":    "2024/02/01",
		"location": "Online",
	})
	require.True(t, ok)
	assert.Equal(t, domain.KindEvent, event.Kind)
	assert.Equal(t, "2024-02-01", event.EventStart)
	assert.Equal(t, "Online", event.EventLocation)
}

func TestNormalizeAllSkipsBadHits(t *testing.T) {
	t.Parallel()

	got := NormalizeAll([]domain.RawResult{
		{"title": "ok", "url": "https://a.org/1"},
		{"title": "missing url"},
		{"title": "ok too", "link": "https://b.org/2"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a.org", got[0].Source)
	assert.Equal(t, "b.org", got[1].Source)
}
