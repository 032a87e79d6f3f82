package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/source"
)

func TestPositionalDecodesItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "ai policy", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("num"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "engine", r.URL.Query().Get("cx"))
		_, _ = w.Write([]byte(`{"items":[{"title":"One","link":"https://a.example/1"}]}`))
	}))
	defer server.Close()

	conventions := Conventions(Settings{Endpoint: server.URL, APIKey: "secret", EngineID: "engine"}, server.Client())
	got, err := conventions[0].Search(context.Background(), "ai policy", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "One", got[0]["title"])
}

func TestShapeRejectionMapsToCallShape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "" {
			_, _ = w.Write([]byte(`{"web":{"results":[{"title":"Named","url":"https://b.example"}]}}`))
			return
		}
		http.Error(w, "unknown parameter", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	conventions := Conventions(Settings{Endpoint: server.URL}, server.Client())

	_, err := conventions[0].Search(context.Background(), "x", 5)
	require.ErrorIs(t, err, source.ErrCallShape)

	got, err := conventions[1].Search(context.Background(), "x", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Named", got[0]["title"])
}

func TestSingleInputPostsJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "summit", body["input"])
		assert.EqualValues(t, 3, body["max_results"])
		_, _ = w.Write([]byte(`[{"title":"Bare"}]`))
	}))
	defer server.Close()

	conventions := Conventions(Settings{Endpoint: server.URL, APIKey: "k"}, server.Client())
	got, err := conventions[2].Search(context.Background(), "summit", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestUnauthorizedIsNonRetriableMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	conventions := Conventions(Settings{Endpoint: server.URL}, server.Client())
	_, err := conventions[0].Search(context.Background(), "x", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, source.ErrCallShape)
	assert.Contains(t, err.Error(), "authentication")
}
