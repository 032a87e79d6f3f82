package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ContentCurator/internal/ports"
)

// ErrNoOutput is returned when the model answered without any content.
var ErrNoOutput = errors.New("agent returned no output")

// Settings defines how to contact an OpenAI-compatible chat completion API.
type Settings struct {
	Endpoint     string
	Model        string
	APIKey       string
	SystemPrompt string
}

// ChatAgent implements ports.Agent on top of a chat completion endpoint. The
// input state travels as JSON in the user message; the reply is normalized by
// NormalizePayload.
type ChatAgent struct {
	name       string
	settings   Settings
	resultKeys []string
	httpClient *http.Client
	now        func() time.Time
}

var _ ports.Agent = (*ChatAgent)(nil)

// Option customizes the agent.
type Option func(*ChatAgent)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *ChatAgent) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithResultKeys overrides the keys probed when normalizing replies.
func WithResultKeys(keys ...string) Option {
	return func(a *ChatAgent) {
		if len(keys) > 0 {
			a.resultKeys = keys
		}
	}
}

// NewChatAgent builds an agent; name is used for session identifiers.
func NewChatAgent(name string, settings Settings, opts ...Option) *ChatAgent {
	agent := &ChatAgent{
		name: strings.TrimSpace(name),
		settings: Settings{
			Endpoint:     strings.TrimSpace(settings.Endpoint),
			Model:        strings.TrimSpace(settings.Model),
			APIKey:       strings.TrimSpace(settings.APIKey),
			SystemPrompt: settings.SystemPrompt,
		},
		resultKeys: DefaultResultKeys,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(agent)
	}
	if agent.settings.Endpoint == "" {
		agent.settings.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	return agent
}

// Invoke sends state to the model and returns the normalized reply.
func (a *ChatAgent) Invoke(ctx context.Context, state map[string]any) (map[string]any, error) {
	if a == nil {
		return nil, fmt.Errorf("chat agent is nil")
	}
	if a.settings.APIKey == "" || a.settings.Model == "" {
		return nil, fmt.Errorf("%s: authentication not configured (missing api key or model)", a.name)
	}

	input := make(map[string]any, len(state)+2)
	for k, v := range state {
		input[k] = v
	}
	input["timestamp"] = a.now().Format(time.RFC3339)
	input["session_id"] = a.sessionID()

	userMessage, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal agent state: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: a.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: safePrompt(a.settings.SystemPrompt)},
			{Role: "user", Content: string(userMessage)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.settings.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", a.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", a.name, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s authentication failed: %s", a.name, snippet(raw))
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s authorization denied: %s", a.name, snippet(raw))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%s error %s: %s", a.name, resp.Status, snippet(raw))
	}

	var completion chatResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", a.name, err)
	}
	if completion.Error != nil && completion.Error.Message != "" {
		return nil, fmt.Errorf("%s error: %s", a.name, completion.Error.Message)
	}

	content := ""
	for _, choice := range completion.Choices {
		content = firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text)
		if content != "" {
			break
		}
	}
	if content == "" {
		return nil, fmt.Errorf("%s: %w", a.name, ErrNoOutput)
	}

	return NormalizePayload(content, a.resultKeys), nil
}

func (a *ChatAgent) sessionID() string {
	prefix := strings.ToLower(strings.ReplaceAll(a.name, " ", "_"))
	if prefix == "" {
		prefix = "agent"
	}
	return prefix + "_" + uuid.NewString()
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Delta   chatMessage `json:"delta"`
		Text    string      `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a content curation assistant. Reply with JSON."
	}
	return prompt
}

func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 512 {
		text = text[:512]
	}
	return text
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
