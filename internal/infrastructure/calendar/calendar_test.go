package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarPage = `<html><body>
<nav><a href="/about">About</a></nav>
<ul class="events">
  <li>
    <h3><a href="/events/ai-summit">AI Governance Summit</a></h3>
    <time datetime="2024-03-20">20 March</time>
    <span class="location">Brussels</span>
    <p class="description">Two days on &amp; around the AI Act.</p>
  </li>
  <li>
    <a href="https://other.example/webinar">Webinar: model audits</a>
    <time datetime="2024-04-02T15:00:00Z">2 April</time>
  </li>
  <li><a href="/events/ai-summit">AI Governance Summit (duplicate)</a><time datetime="2024-03-20"></time></li>
</ul>
</body></html>`

func TestEventsParsesListing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(calendarPage))
	}))
	defer server.Close()

	got, err := NewCrawler(0, nil).Events(context.Background(), []string{server.URL + "/calendar"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "AI Governance Summit", first["title"])
	assert.Equal(t, server.URL+"/events/ai-summit", first["url"])
	assert.Equal(t, "event", first["type"])
	assert.Equal(t, "2024-03-20", first["start"])
	assert.Equal(t, "Brussels", first["location"])
	assert.Equal(t, "Two days on & around the AI Act.", first["summary"])

	assert.Equal(t, "Webinar: model audits", got[1]["title"])
	assert.Equal(t, "https://other.example/webinar", got[1]["url"])
}

func TestEventsAllPagesFailing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	got, err := NewCrawler(0, nil).Events(context.Background(), []string{server.URL})
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestEventsNoCalendars(t *testing.T) {
	t.Parallel()

	got, err := NewCrawler(0, nil).Events(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
