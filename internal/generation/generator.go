// Package generation turns gathered news and social posts into publishable
// content and packages the run's output.
package generation

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

// Brand describes the voice the generated content is written in.
type Brand struct {
	Name     string
	Tagline  string
	Voice    map[string]string
	Audience map[string]string
}

// Settings configures the generator.
type Settings struct {
	Brand          Brand
	ContentType    string
	SummaryLength  string
	BlogPostLength string
	IncludeSEO     bool
	IncludeCTA     bool
}

// Input is what the upstream steps produced.
type Input struct {
	News     []domain.ContentRecord
	Posts    []domain.SocialPost
	Analysis string
}

// IsEmpty reports whether there is nothing to write about.
func (in Input) IsEmpty() bool {
	return len(in.News) == 0 && len(in.Posts) == 0 && strings.TrimSpace(in.Analysis) == ""
}

// Content is the content-generation step output.
type Content struct {
	Body        string    `json:"generated_content"`
	ContentType string    `json:"content_type"`
	Sources     int       `json:"sources"`
	Quality     Quality   `json:"quality"`
	GeneratedAt time.Time `json:"generated_at"`
}

// IsEmpty reports whether the agent returned no text.
func (c Content) IsEmpty() bool {
	return strings.TrimSpace(c.Body) == ""
}

// contentKeys are checked in order when reading the agent reply.
var contentKeys = []string{
	"generated_content",
	"blog_post",
	"final_content",
	"curated_content",
	"news_summaries",
	"output",
	"result",
	"response",
}

// Generator drives the content-generation agent.
type Generator struct {
	agent    ports.Agent
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewGenerator constructs a generator.
func NewGenerator(agent ports.Agent, settings Settings, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if settings.ContentType == "" {
		settings.ContentType = "blog_post"
	}
	return &Generator{agent: agent, settings: settings, logger: logger, now: time.Now}
}

// Generate asks the agent for content built from in.
func (g *Generator) Generate(ctx context.Context, in Input) (Content, error) {
	reply, err := g.agent.Invoke(ctx, g.state(in))
	if err != nil {
		return Content{}, fmt.Errorf("invoke content agent: %w", err)
	}

	body := extractBody(reply)
	content := Content{
		Body:        body,
		ContentType: g.settings.ContentType,
		Sources:     len(in.News) + len(in.Posts),
		Quality:     AssessQuality(body),
		GeneratedAt: g.now().UTC(),
	}
	if content.IsEmpty() {
		return content, nil
	}

	g.logger.Info("content generated",
		"content_type", content.ContentType,
		"words", content.Quality.WordCount,
		"warnings", len(content.Quality.Warnings),
	)
	return content, nil
}

func (g *Generator) state(in Input) map[string]any {
	posts := in.Posts
	if posts == nil {
		posts = []domain.SocialPost{}
	}
	return map[string]any{
		"gathered_news":         RenderDigest("Gathered News", in.News),
		"news_records":          in.News,
		"gathered_posts":        posts,
		"social_media_analysis": in.Analysis,
		"brand_name":            g.settings.Brand.Name,
		"brand_tagline":         g.settings.Brand.Tagline,
		"brand_voice":           g.settings.Brand.Voice,
		"target_audience":       g.settings.Brand.Audience,
		"content_type":          g.settings.ContentType,
		"summary_length":        g.settings.SummaryLength,
		"blog_post_length":      g.settings.BlogPostLength,
		"include_seo":           g.settings.IncludeSEO,
		"include_cta":           g.settings.IncludeCTA,
	}
}

func extractBody(reply map[string]any) string {
	for _, key := range contentKeys {
		value, ok := reply[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case map[string]any:
			for _, inner := range []string{"content", "body", "markdown", "text"} {
				if s, ok := v[inner].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
			if encoded, err := json.MarshalIndent(v, "", "  "); err == nil {
				return string(encoded)
			}
		default:
			if encoded, err := json.MarshalIndent(v, "", "  "); err == nil && string(encoded) != "[]" {
				return string(encoded)
			}
		}
	}
	return ""
}
