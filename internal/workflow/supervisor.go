package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"ContentCurator/internal/ports"
)

// ErrEmptyResult marks a step that finished without a usable payload. It is
// retried like any other recoverable failure.
var ErrEmptyResult = errors.New("agent returned no valid results")

// nonRetriable lists error fragments that stop retries immediately.
var nonRetriable = []string{"authentication", "authorization", "invalid_api_key"}

// Payload lets typed step results report emptiness.
type Payload interface {
	IsEmpty() bool
}

// Policy is the supervisor's retry and failure policy.
type Policy struct {
	MaxRetries              int
	BaseDelay               time.Duration
	ContinueOnFailure       bool
	SaveIntermediateResults bool
}

// Supervisor executes steps with retries and records their progress in State.
type Supervisor struct {
	state     *State
	policy    Policy
	artifacts ports.ArtifactStore
	logger    *slog.Logger
	sleep     func(context.Context, time.Duration) error
}

// Option customizes the supervisor.
type Option func(*Supervisor)

// WithSleeper overrides how backoff waits are performed (useful for tests).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Supervisor) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithArtifacts enables intermediate result persistence.
func WithArtifacts(store ports.ArtifactStore) Option {
	return func(s *Supervisor) {
		s.artifacts = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSupervisor builds a supervisor bound to state.
func NewSupervisor(state *State, policy Policy, opts ...Option) *Supervisor {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 1
	}
	s := &Supervisor{
		state:  state,
		policy: policy,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the state the supervisor writes to.
func (s *Supervisor) State() *State {
	return s.state
}

// ExecuteWithRetry runs fn for step until it yields a non-empty result or the
// attempt budget is spent. maxRetries is the total number of attempts; zero
// uses the policy default.
//
// The boolean reports success. A non-nil error means the workflow must halt:
// either continue-on-failure is disabled or ctx was cancelled. With
// continue-on-failure enabled a failed step returns the zero value, false and
// a nil error.
func ExecuteWithRetry[T any](ctx context.Context, s *Supervisor, step string, fn func(context.Context) (T, error), maxRetries int) (T, bool, error) {
	var zero T
	if maxRetries <= 0 {
		maxRetries = s.policy.MaxRetries
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			s.state.FailStep(step, err.Error())
			return zero, false, fmt.Errorf("step %s: %w", step, err)
		}

		s.logger.Info("executing step", "step", step, "attempt", attempt, "max_attempts", maxRetries)
		s.state.StartStep(step, attempt)

		result, err := fn(ctx)
		if err == nil && !IsValid(result) {
			err = ErrEmptyResult
		}

		if err == nil {
			s.state.CompleteStep(step, result)
			s.logger.Info("step completed", "step", step, "attempt", attempt, "outcome", "success")
			if s.policy.SaveIntermediateResults {
				s.saveIntermediate(step, result)
			}
			return result, true, nil
		}

		message := fmt.Sprintf("%s failed: %v", step, err)
		s.logger.Error("step attempt failed", "step", step, "attempt", attempt, "max_attempts", maxRetries, "error", err)

		if attempt < maxRetries && IsRetriable(err) {
			s.state.RetryStep(step)
			delay := Backoff(s.policy.BaseDelay, attempt)
			s.logger.Warn("retrying step", "step", step, "next_attempt", attempt+1, "max_attempts", maxRetries, "delay", delay)
			if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
				s.state.FailStep(step, sleepErr.Error())
				return zero, false, fmt.Errorf("step %s: %w", step, sleepErr)
			}
			continue
		}

		s.state.FailStep(step, message)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, false, fmt.Errorf("step %s: %w", step, ctxErr)
		}
		if !s.policy.ContinueOnFailure {
			s.logger.Error("workflow terminated due to failure", "step", step)
			return zero, false, fmt.Errorf("step %s: %w", step, err)
		}
		s.logger.Warn("continuing workflow despite failure", "step", step)
		return zero, false, nil
	}

	return zero, false, nil
}

func (s *Supervisor) saveIntermediate(step string, result any) {
	if s.artifacts == nil {
		return
	}
	path, err := s.artifacts.SaveStepResult(step, result)
	if err != nil {
		s.logger.Warn("failed to save intermediate result", "step", step, "error", err)
		return
	}
	s.logger.Info("intermediate result saved", "step", step, "path", path)
}

// IsRetriable reports whether err may succeed on another attempt.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range nonRetriable {
		if strings.Contains(msg, fragment) {
			return false
		}
	}
	return true
}

// Backoff returns base × 2^(attempt-1).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}

// IsValid reports whether a step result counts as a usable payload: non-nil,
// and non-empty for text, mappings, sequences and Payload implementations.
func IsValid(result any) bool {
	if result == nil {
		return false
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return false
		}
	}
	if p, ok := result.(Payload); ok {
		return !p.IsEmpty()
	}
	if text, ok := result.(string); ok {
		return strings.TrimSpace(text) != ""
	}

	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return v.Len() > 0
	case reflect.Pointer:
		return IsValid(v.Elem().Interface())
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
