package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Bundle is what the packaging step receives. Nil fields mean the step that
// produces them failed or was skipped.
type Bundle struct {
	WorkflowID string
	News       []domain.ContentRecord
	Posts      []domain.SocialPost
	Analysis   string
	Content    *Content
}

// Package is the packaging step output.
type Package struct {
	Components    []string `json:"components"`
	Files         []string `json:"files"`
	RecordsStored int      `json:"records_stored"`
	Notified      bool     `json:"notified"`
}

// IsEmpty reports whether nothing was packaged.
func (p Package) IsEmpty() bool {
	return len(p.Components) == 0
}

// Packager writes the final artifacts and hands the run to the optional
// repository and notifier.
type Packager struct {
	artifacts  ports.ArtifactStore
	repository ports.RecordRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPackager constructs a packager. repository and notifier may be nil.
func NewPackager(artifacts ports.ArtifactStore, repository ports.RecordRepository, notifier ports.Notifier, logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Packager{
		artifacts:  artifacts,
		repository: repository,
		notifier:   notifier,
		logger:     logger,
	}
}

// Package writes final_content (or a news digest when nothing was generated),
// stores records and sends the notification. Only artifact write failures
// are returned; storage and notification failures are logged.
func (p *Packager) Package(ctx context.Context, bundle Bundle) (Package, error) {
	if p.artifacts == nil {
		return Package{}, errors.New("artifact store not configured")
	}

	out := Package{Components: []string{}, Files: []string{}}
	if len(bundle.News) > 0 {
		out.Components = append(out.Components, "news")
	}
	if len(bundle.Posts) > 0 || bundle.Analysis != "" {
		out.Components = append(out.Components, "social_media")
	}

	var message string
	switch {
	case bundle.Content != nil && !bundle.Content.IsEmpty():
		out.Components = append(out.Components, "content")
		path, err := p.artifacts.SaveContent("final_content", bundle.Content.Body)
		if err != nil {
			return Package{}, fmt.Errorf("save final content: %w", err)
		}
		out.Files = append(out.Files, path)
		message = bundle.Content.Body
	case len(bundle.News) > 0:
		digest := RenderDigest("News Digest", bundle.News)
		path, err := p.artifacts.SaveContent("news_digest", digest)
		if err != nil {
			return Package{}, fmt.Errorf("save news digest: %w", err)
		}
		out.Files = append(out.Files, path)
		message = digest
	}

	if len(bundle.News) > 0 && p.repository != nil {
		if err := p.repository.SaveRecords(ctx, bundle.WorkflowID, bundle.News); err != nil {
			p.logger.Warn("failed to store records", "workflow_id", bundle.WorkflowID, "error", err)
		} else {
			out.RecordsStored = len(bundle.News)
		}
	}

	if message != "" && p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, message); err != nil {
			p.logger.Warn("failed to send notification", "workflow_id", bundle.WorkflowID, "error", err)
		} else {
			out.Notified = true
		}
	}

	p.logger.Info("output packaged",
		"components", out.Components,
		"files", len(out.Files),
		"records_stored", out.RecordsStored,
	)
	return out, nil
}
