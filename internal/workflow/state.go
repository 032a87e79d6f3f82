package workflow

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// Status is the overall outcome of a workflow run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPartial Status = "partial"
)

// StepStatus is the state of one step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepRunning  StepStatus = "running"
	StepSuccess  StepStatus = "success"
	StepFailed   StepStatus = "failed"
	StepRetrying StepStatus = "retrying"
	StepSkipped  StepStatus = "skipped"
)

// StepRecord is the bookkeeping kept for one step.
type StepRecord struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	// Duration is in seconds.
	Duration *float64 `json:"duration"`
	Error    string   `json:"error,omitempty"`
	Result   any      `json:"result,omitempty"`
}

// ErrorEntry records a terminal step failure.
type ErrorEntry struct {
	Step      string    `json:"step"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata are the run counters.
type Metadata struct {
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
	TotalSteps      int        `json:"total_steps"`
	CompletedSteps  int        `json:"completed_steps"`
	FailedSteps     int        `json:"failed_steps"`
}

// Summary is the condensed view used by reports and the CLI.
type Summary struct {
	WorkflowID     string
	Status         Status
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalSteps     int
	CompletedSteps int
	FailedSteps    int
	SuccessRate    float64
}

// State tracks one workflow run. Steps keep their registration order.
type State struct {
	mu sync.Mutex

	workflowID string
	status     Status
	startTime  *time.Time
	endTime    *time.Time
	order      []string
	steps      map[string]*StepRecord
	results    map[string]any
	errors     []ErrorEntry
	metadata   Metadata
	now        func() time.Time
}

// NewState creates an empty state with a timestamp-derived identifier.
func NewState(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	created := now()
	return &State{
		workflowID: "workflow_" + created.Format("20060102_150405"),
		status:     StatusPending,
		steps:      map[string]*StepRecord{},
		results:    map[string]any{},
		metadata:   Metadata{CreatedAt: created},
		now:        now,
	}
}

// WorkflowID returns the run identifier.
func (s *State) WorkflowID() string {
	return s.workflowID
}

// AddStep registers a step in pending state.
func (s *State) AddStep(name, description string, maxAttempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.steps[name]; exists {
		return
	}
	s.steps[name] = &StepRecord{
		Name:        name,
		Description: description,
		Status:      StepPending,
		MaxAttempts: maxAttempts,
	}
	s.order = append(s.order, name)
	s.metadata.TotalSteps++
}

// StartWorkflow marks the run as running.
func (s *State) StartWorkflow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.startTime = &now
	s.status = StatusRunning
}

// CompleteWorkflow records the end of the run with its derived status.
func (s *State) CompleteWorkflow(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.endTime = &now
	s.status = status
	s.metadata.CompletedAt = &now
	if s.startTime != nil {
		seconds := now.Sub(*s.startTime).Seconds()
		s.metadata.DurationSeconds = &seconds
	}
}

// StartStep marks a step as running on the given attempt.
func (s *State) StartStep(name string, attempt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[name]
	if !ok {
		return
	}
	now := s.now()
	step.Status = StepRunning
	step.Attempts = attempt
	step.StartTime = &now
}

// CompleteStep marks a step as succeeded and stores its result.
func (s *State) CompleteStep(name string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[name]
	if !ok {
		return
	}
	s.finish(step)
	step.Status = StepSuccess
	step.Result = result
	s.results[name] = result
	s.metadata.CompletedSteps++
}

// FailStep marks a step as terminally failed.
func (s *State) FailStep(name, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[name]
	if !ok {
		return
	}
	s.finish(step)
	step.Status = StepFailed
	step.Error = message
	s.metadata.FailedSteps++
	s.errors = append(s.errors, ErrorEntry{Step: name, Error: message, Timestamp: s.now()})
}

// RetryStep marks a step as waiting for another attempt.
func (s *State) RetryStep(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step, ok := s.steps[name]; ok {
		step.Status = StepRetrying
	}
}

// SkipStep marks a step as skipped; reason is kept in the error field.
func (s *State) SkipStep(name, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step, ok := s.steps[name]; ok {
		step.Status = StepSkipped
		step.Error = reason
	}
}

func (s *State) finish(step *StepRecord) {
	now := s.now()
	step.EndTime = &now
	if step.StartTime != nil {
		seconds := now.Sub(*step.StartTime).Seconds()
		step.Duration = &seconds
	}
}

// Step returns a copy of the named step.
func (s *State) Step(name string) (StepRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.steps[name]
	if !ok {
		return StepRecord{}, false
	}
	return *step, true
}

// Steps returns copies of all steps in registration order.
func (s *State) Steps() []StepRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepRecord, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.steps[name])
	}
	return out
}

// Result returns the stored result of a succeeded step.
func (s *State) Result(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[name]
	return result, ok
}

// Errors returns the terminal failures in the order they happened.
func (s *State) Errors() []ErrorEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ErrorEntry(nil), s.errors...)
}

// Status returns the current workflow status.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Summary condenses the state. SuccessRate is completed/total × 100.
func (s *State) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		WorkflowID:     s.workflowID,
		Status:         s.status,
		TotalSteps:     s.metadata.TotalSteps,
		CompletedSteps: s.metadata.CompletedSteps,
		FailedSteps:    s.metadata.FailedSteps,
	}
	if s.startTime != nil {
		summary.StartTime = *s.startTime
	}
	if s.endTime != nil {
		summary.EndTime = *s.endTime
	}
	if s.startTime != nil && s.endTime != nil {
		summary.Duration = s.endTime.Sub(*s.startTime)
	}
	if summary.TotalSteps > 0 {
		summary.SuccessRate = float64(summary.CompletedSteps) / float64(summary.TotalSteps) * 100
	}
	return summary
}

// MarshalJSON writes the state with steps in registration order.
func (s *State) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := orderedSteps{order: s.order, steps: s.steps}
	return json.Marshal(struct {
		WorkflowID string       `json:"workflow_id"`
		Status     Status       `json:"status"`
		StartTime  *time.Time   `json:"start_time"`
		EndTime    *time.Time   `json:"end_time"`
		Metadata   Metadata     `json:"metadata"`
		Steps      orderedSteps `json:"steps"`
		Errors     []ErrorEntry `json:"errors"`
	}{
		WorkflowID: s.workflowID,
		Status:     s.status,
		StartTime:  s.startTime,
		EndTime:    s.endTime,
		Metadata:   s.metadata,
		Steps:      steps,
		Errors:     append([]ErrorEntry{}, s.errors...),
	})
}

type orderedSteps struct {
	order []string
	steps map[string]*StepRecord
}

func (o orderedSteps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(o.steps[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
