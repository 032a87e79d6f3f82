package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>search</title>
    <item>
      <title>Regulator opens AI consultation</title>
      <link>https://news.example.org/ai-consultation</link>
      <description>&lt;p&gt;Draft rules published&lt;/p&gt;</description>
      <pubDate>Mon, 15 Jan 2024 10:30:00 GMT</pubDate>
    </item>
    <item>
      <title>No link here</title>
    </item>
    <item>
      <title>Second</title>
      <link>https://news.example.org/second</link>
    </item>
  </channel>
</rss>`

func TestFetchParsesItems(t *testing.T) {
	t.Parallel()

	var gotQuery, gotLang, gotCountry string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLang = r.URL.Query().Get("hl")
		gotCountry = r.URL.Query().Get("gl")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	src := NewSource(server.URL+"/rss?q={q}&hl={lang}&gl={country}", "fr", server.Client())
	got, err := src.Fetch(context.Background(), domain.SearchQuery{Text: `"AI" news`, Country: "ca"}, 5)
	require.NoError(t, err)

	assert.Equal(t, `"AI" news`, gotQuery)
	assert.Equal(t, "fr", gotLang)
	assert.Equal(t, "CA", gotCountry)

	require.Len(t, got, 2)
	assert.Equal(t, "Regulator opens AI consultation", got[0]["title"])
	assert.Equal(t, "https://news.example.org/ai-consultation", got[0]["link"])
	assert.Equal(t, "2024-01-15T10:30:00Z", got[0]["pubDate"])
	assert.Contains(t, got[0]["description"], "Draft rules published")
}

func TestFetchHonoursLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	got, err := NewSource(server.URL+"?q={q}", "", server.Client()).Fetch(context.Background(), domain.SearchQuery{Text: "x"}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchMalformedFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	_, err := NewSource(server.URL+"?q={q}", "", server.Client()).Fetch(context.Background(), domain.SearchQuery{Text: "x"}, 5)
	require.Error(t, err)
}

func TestFetchHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewSource(server.URL+"?q={q}", "", server.Client()).Fetch(context.Background(), domain.SearchQuery{Text: "x"}, 5)
	require.ErrorContains(t, err, "503")
}
