package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/generation"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/social"
)

// Step names in execution order.
const (
	StepNewsGathering     = "news_gathering"
	StepSocialMonitoring  = "social_media_monitoring"
	StepContentGeneration = "content_generation"
	StepFinalOutput       = "final_output"
)

const (
	reasonNoInput  = "No input data from previous steps"
	reasonNoOutput = "No output to package"
	reasonHalted   = "Workflow halted after an earlier failure"
)

// NewsGatherer runs the discovery pipeline.
type NewsGatherer func(ctx context.Context) ([]domain.ContentRecord, error)

// SocialWatcher runs the social-watch step.
type SocialWatcher interface {
	Watch(ctx context.Context) (social.Report, error)
}

// ContentGenerator runs the content-generation step.
type ContentGenerator interface {
	Generate(ctx context.Context, in generation.Input) (generation.Content, error)
}

// OutputPackager runs the packaging step.
type OutputPackager interface {
	Package(ctx context.Context, bundle generation.Bundle) (generation.Package, error)
}

// Deps are the collaborators of a workflow run. Social and Generator may be
// nil; their steps then fail and the run continues per policy.
type Deps struct {
	News       NewsGatherer
	Social     SocialWatcher
	Generator  ContentGenerator
	Packager   OutputPackager
	Artifacts  ports.ArtifactStore
	Repository ports.RecordRepository
	Policy     Policy
	Logger     *slog.Logger
	Sleeper    func(context.Context, time.Duration) error
	Now        func() time.Time
}

// Result is what a finished run hands back to the caller.
type Result struct {
	WorkflowID string
	Status     Status
	Summary    Summary
	Steps      []StepRecord
	News       []domain.ContentRecord
	Posts      []domain.SocialPost
	Content    *generation.Content
	Files      []string
	ReportPath string
	StatePath  string
	Errors     []ErrorEntry
}

// Workflow runs the four steps under a supervisor.
type Workflow struct {
	deps Deps
}

// New validates deps and builds a workflow.
func New(deps Deps) (*Workflow, error) {
	if deps.News == nil {
		return nil, errors.New("news gatherer is required")
	}
	if deps.Packager == nil {
		return nil, errors.New("packager is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Workflow{deps: deps}, nil
}

// DeriveStatus computes the overall status: success when content was
// generated, partial when only upstream steps succeeded, failed otherwise.
func DeriveStatus(generated, upstream bool) Status {
	switch {
	case generated:
		return StatusSuccess
	case upstream:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Run executes one workflow. The report and state are written even when the
// run fails; a non-nil error means the run was halted.
func (w *Workflow) Run(ctx context.Context) (Result, error) {
	logger := w.deps.Logger
	state := NewState(w.deps.Now)
	attempts := w.deps.Policy.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	state.AddStep(StepNewsGathering, "Discover and enrich recent news and events", attempts)
	state.AddStep(StepSocialMonitoring, "Collect recent posts from monitored accounts", attempts)
	state.AddStep(StepContentGeneration, "Generate content from gathered material", attempts)
	state.AddStep(StepFinalOutput, "Package and publish the run output", attempts)

	opts := []Option{WithLogger(logger), WithSleeper(w.deps.Sleeper)}
	if w.deps.Artifacts != nil {
		opts = append(opts, WithArtifacts(w.deps.Artifacts))
	}
	sup := NewSupervisor(state, w.deps.Policy, opts...)

	logger.Info("workflow started", "workflow_id", state.WorkflowID())
	state.StartWorkflow()

	result := Result{WorkflowID: state.WorkflowID()}
	fatal := w.execute(ctx, sup, &result)
	if fatal != nil {
		for _, step := range state.Steps() {
			if step.Status == StepPending {
				state.SkipStep(step.Name, reasonHalted)
			}
		}
	}

	status := StatusFailed
	if fatal == nil {
		status = DeriveStatus(stepSucceeded(state, StepContentGeneration),
			stepSucceeded(state, StepNewsGathering) || stepSucceeded(state, StepSocialMonitoring))
	}
	state.CompleteWorkflow(status)

	w.persist(ctx, state, &result)

	result.Status = status
	result.Summary = state.Summary()
	result.Steps = state.Steps()
	result.Errors = state.Errors()
	logger.Info("workflow finished",
		"workflow_id", result.WorkflowID,
		"status", status,
		"completed_steps", result.Summary.CompletedSteps,
		"failed_steps", result.Summary.FailedSteps,
	)
	if fatal != nil {
		return result, fmt.Errorf("workflow %s: %w", result.WorkflowID, fatal)
	}
	return result, nil
}

func (w *Workflow) execute(ctx context.Context, sup *Supervisor, result *Result) error {
	state := sup.State()

	news, _, err := ExecuteWithRetry(ctx, sup, StepNewsGathering, func(ctx context.Context) ([]domain.ContentRecord, error) {
		return w.deps.News(ctx)
	}, 0)
	if err != nil {
		return err
	}
	result.News = news

	report, _, err := ExecuteWithRetry(ctx, sup, StepSocialMonitoring, func(ctx context.Context) (social.Report, error) {
		if w.deps.Social == nil {
			return social.Report{}, errors.New("social watcher not configured")
		}
		return w.deps.Social.Watch(ctx)
	}, 0)
	if err != nil {
		return err
	}
	result.Posts = report.Posts

	input := generation.Input{News: news, Posts: report.Posts, Analysis: report.Analysis}
	if input.IsEmpty() {
		sup.logger.Warn("skipping step", "step", StepContentGeneration, "reason", reasonNoInput)
		state.SkipStep(StepContentGeneration, reasonNoInput)
	} else {
		content, ok, err := ExecuteWithRetry(ctx, sup, StepContentGeneration, func(ctx context.Context) (generation.Content, error) {
			if w.deps.Generator == nil {
				return generation.Content{}, errors.New("content generator not configured")
			}
			return w.deps.Generator.Generate(ctx, input)
		}, 0)
		if err != nil {
			return err
		}
		if ok {
			result.Content = &content
		}
	}

	if input.IsEmpty() && result.Content == nil {
		sup.logger.Warn("skipping step", "step", StepFinalOutput, "reason", reasonNoOutput)
		state.SkipStep(StepFinalOutput, reasonNoOutput)
		return nil
	}

	bundle := generation.Bundle{
		WorkflowID: result.WorkflowID,
		News:       news,
		Posts:      report.Posts,
		Analysis:   report.Analysis,
		Content:    result.Content,
	}
	pkg, ok, err := ExecuteWithRetry(ctx, sup, StepFinalOutput, func(ctx context.Context) (generation.Package, error) {
		return w.deps.Packager.Package(ctx, bundle)
	}, 0)
	if err != nil {
		return err
	}
	if ok {
		result.Files = append(result.Files, pkg.Files...)
	}
	return nil
}

// persist writes the report, the state and the run row. Failures are logged.
func (w *Workflow) persist(ctx context.Context, state *State, result *Result) {
	logger := w.deps.Logger

	if w.deps.Artifacts != nil {
		if path, err := w.deps.Artifacts.SaveReport(FormatReport(state)); err != nil {
			logger.Warn("failed to save workflow report", "error", err)
		} else {
			result.ReportPath = path
			result.Files = append(result.Files, path)
		}
		if path, err := w.deps.Artifacts.SaveState(state.WorkflowID(), state); err != nil {
			logger.Warn("failed to save workflow state", "error", err)
		} else {
			result.StatePath = path
			result.Files = append(result.Files, path)
		}
	}

	if w.deps.Repository == nil {
		return
	}
	payload, err := json.Marshal(state)
	if err != nil {
		logger.Warn("failed to encode workflow state", "error", err)
		return
	}
	summary := state.Summary()
	run := domain.RunSummary{
		WorkflowID: summary.WorkflowID,
		Status:     string(summary.Status),
		StartedAt:  summary.StartTime,
		EndedAt:    summary.EndTime,
		StateJSON:  payload,
	}
	// The run row is written even when ctx was cancelled mid-run.
	if err := w.deps.Repository.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to store workflow run", "workflow_id", run.WorkflowID, "error", err)
	}
}

func stepSucceeded(state *State, name string) bool {
	step, ok := state.Step(name)
	return ok && step.Status == StepSuccess
}
