package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchExtractsTextAndMeta(t *testing.T) {
	t.Parallel()

	paragraph := strings.Repeat("The agency published draft guidance for public comment. ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "ContentCurator")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title>Fallback title</title>
			<meta property="og:title" content="Draft guidance released">
			<meta property="article:published_time" content="2024-01-15T10:30:00Z">
			<meta name="author" content="Jo Reporter">
			</head><body><article><h1>Draft guidance released</h1><p>` + paragraph + `</p></article></body></html>`))
	}))
	defer server.Close()

	page, err := New(server.Client()).Fetch(context.Background(), server.URL+"/story")
	require.NoError(t, err)

	assert.NotEmpty(t, page.Title)
	assert.Equal(t, "2024-01-15T10:30:00Z", page.PublishedAt)
	assert.Contains(t, page.Text, "draft guidance for public comment")
	assert.NotEmpty(t, page.Authors)
}

func TestFetchFallsBackToTimeElement(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Short page</title></head>
			<body><time datetime="2024/02/01">Feb 1</time><p>Brief.</p></body></html>`))
	}))
	defer server.Close()

	page, err := New(server.Client()).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Short page", page.Title)
	assert.Equal(t, "2024-02-01", page.PublishedAt)
}

func TestFetchReportsHTTPFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := New(server.Client()).Fetch(context.Background(), server.URL)
	require.ErrorContains(t, err, "404")
}
