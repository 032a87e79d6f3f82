// Package social runs the social-watch step: an agent gathers recent posts
// from the configured accounts and the result is normalized and filtered.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Settings configures what the watcher asks the agent for.
type Settings struct {
	Accounts           map[string][]string
	Keywords           []string
	MaxPostsPerAccount int
	LookbackDays       int
	PriorityCategories []string
}

// Report is the social-watch step output.
type Report struct {
	Posts    []domain.SocialPost `json:"gathered_posts"`
	Analysis string              `json:"social_media_analysis,omitempty"`
	// Dropped counts posts removed by the recency and relevance filters.
	Dropped int `json:"dropped"`
}

// IsEmpty reports whether the agent produced anything usable.
func (r Report) IsEmpty() bool {
	return len(r.Posts) == 0 && strings.TrimSpace(r.Analysis) == ""
}

// Watcher drives the social-watch agent.
type Watcher struct {
	agent    ports.Agent
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewWatcher constructs a watcher.
func NewWatcher(agent ports.Agent, settings Settings, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if settings.LookbackDays <= 0 {
		settings.LookbackDays = 7
	}
	return &Watcher{
		agent:    agent,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Watch invokes the agent and returns the filtered posts.
func (w *Watcher) Watch(ctx context.Context) (Report, error) {
	now := w.now().UTC()
	state := map[string]any{
		"social_accounts":     w.settings.Accounts,
		"keywords":            w.settings.Keywords,
		"max_posts":           w.settings.MaxPostsPerAccount,
		"lookback_days":       w.settings.LookbackDays,
		"priority_categories": w.settings.PriorityCategories,
		"start_date":          now.AddDate(0, 0, -w.settings.LookbackDays).Format("2006-01-02"),
	}

	reply, err := w.agent.Invoke(ctx, state)
	if err != nil {
		return Report{}, fmt.Errorf("invoke social agent: %w", err)
	}

	rawPosts, analysis := parseReply(reply)
	report := Report{Analysis: analysis}

	posts := make([]domain.SocialPost, 0, len(rawPosts))
	for _, raw := range rawPosts {
		post := NormalizePost(raw, now)
		if !IsRecent(post.Timestamp, w.settings.LookbackDays, now) {
			continue
		}
		posts = append(posts, post)
	}
	report.Posts = FilterRelevant(posts, w.settings.Keywords, w.settings.PriorityCategories)
	report.Dropped = len(rawPosts) - len(report.Posts)

	w.logger.Info("social watch finished",
		"posts", len(report.Posts),
		"dropped", report.Dropped,
		"has_analysis", report.Analysis != "",
	)
	return report, nil
}

var postKeys = []string{"gathered_posts", "posts", "social_media_report"}

var analysisKeys = []string{"social_media_analysis", "analysis", "summary", "output", "result", "response"}

// parseReply pulls the post list and a free-text analysis out of an agent reply.
func parseReply(reply map[string]any) ([]map[string]any, string) {
	var posts []map[string]any
	var analysis string

	for _, key := range postKeys {
		value, ok := reply[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case map[string]any:
			posts = postList(v["posts"])
			if analysis == "" {
				analysis = text(v["analysis"])
			}
		case string:
			if decoded, ok := decodeJSON(v); ok {
				nested, _ := decoded.(map[string]any)
				if list := postList(decoded); list != nil {
					posts = list
				} else if nested != nil {
					posts = postList(nested["posts"])
					analysis = text(nested["analysis"])
				}
			} else if analysis == "" {
				analysis = strings.TrimSpace(v)
			}
		default:
			posts = postList(v)
		}
		if posts != nil {
			break
		}
	}

	if analysis == "" {
		for _, key := range analysisKeys {
			if s := text(reply[key]); s != "" {
				analysis = s
				break
			}
		}
	}
	return posts, analysis
}

func postList(value any) []map[string]any {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	posts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if post, ok := item.(map[string]any); ok {
			posts = append(posts, post)
		}
	}
	return posts
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

func decodeJSON(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || (raw[0] != '{' && raw[0] != '[') {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}
