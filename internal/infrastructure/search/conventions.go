// Package search calls the primary HTTP search capability. The backend is
// reached through several request shapes; each shape is a separate
// ports.SearchConvention so the source client can try them in order.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/source"
)

// Settings describe how to reach the search backend.
type Settings struct {
	Endpoint string
	APIKey   string
	EngineID string
}

type backend struct {
	settings Settings
	client   *http.Client
}

func newBackend(settings Settings, client *http.Client) backend {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return backend{settings: settings, client: client}
}

// Positional sends `q`, `num` and `key` query parameters (CSE style).
type Positional struct{ backend }

// Named sends `query` and `count` parameters with a bearer token.
type Named struct{ backend }

// SingleInput posts a JSON body with one `input` field.
type SingleInput struct{ backend }

var (
	_ ports.SearchConvention = (*Positional)(nil)
	_ ports.SearchConvention = (*Named)(nil)
	_ ports.SearchConvention = (*SingleInput)(nil)
)

// Conventions returns every call convention in the order they should be tried.
func Conventions(settings Settings, client *http.Client) []ports.SearchConvention {
	b := newBackend(settings, client)
	return []ports.SearchConvention{&Positional{b}, &Named{b}, &SingleInput{b}}
}

func (p *Positional) Name() string { return "positional" }

func (p *Positional) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	if p.settings.APIKey != "" {
		params.Set("key", p.settings.APIKey)
	}
	if p.settings.EngineID != "" {
		params.Set("cx", p.settings.EngineID)
	}

	req, err := p.get(ctx, params)
	if err != nil {
		return nil, err
	}
	return p.do(req)
}

func (n *Named) Name() string { return "named" }

func (n *Named) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("count", strconv.Itoa(limit))

	req, err := n.get(ctx, params)
	if err != nil {
		return nil, err
	}
	n.authorize(req)
	return n.do(req)
}

func (s *SingleInput) Name() string { return "single-input" }

func (s *SingleInput) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	body, err := json.Marshal(map[string]any{"input": query, "max_results": limit})
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.settings.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)
	return s.do(req)
}

func (b backend) get(ctx context.Context, params url.Values) (*http.Request, error) {
	endpoint, err := url.Parse(b.settings.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint %s: %w", b.settings.Endpoint, err)
	}
	query := endpoint.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	return req, nil
}

func (b backend) authorize(req *http.Request) {
	if b.settings.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.settings.APIKey)
	}
}

func (b backend) do(req *http.Request) ([]domain.RawResult, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed,
		http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%s: %w", resp.Status, source.ErrCallShape)
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("search authentication failed: %s", resp.Status)
	case http.StatusForbidden:
		return nil, fmt.Errorf("search authorization denied: %s", resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	return decodeResults(raw)
}

// decodeResults accepts either a bare JSON array or an object that carries the
// hit list under one of the common container keys.
func decodeResults(raw []byte) ([]domain.RawResult, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []domain.RawResult
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode search list: %w", err)
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	for _, key := range []string{"items", "results", "organic_results", "data"} {
		if body, ok := envelope[key]; ok {
			return decodeList(body)
		}
	}

	if body, ok := envelope["web"]; ok {
		var web struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &web); err == nil && len(web.Results) > 0 {
			return decodeList(web.Results)
		}
	}

	return nil, nil
}

func decodeList(body json.RawMessage) ([]domain.RawResult, error) {
	var list []domain.RawResult
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return list, nil
}
