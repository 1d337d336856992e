package operations

import (
	"time"

	"aqiclean/internal/files"
	"aqiclean/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusNoData    RunStatus = "no_data"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState is the state of one pipeline run. Steps hand their outputs to
// later steps through it.
type RunState struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`
	Error error                 `json:"error,omitempty"`

	Discovery *files.DiscoveryResult   `json:"-"`
	Fragments [][]domain.LongRecord    `json:"-"`
	Merged    []domain.LongRecord      `json:"-"`
	Table     domain.ConsolidatedTable `json:"-"`
	Summary   domain.RunSummary        `json:"summary"`
}

// NewRunState creates a new run state
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		Summary:   domain.RunSummary{RunID: id},
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.finish(RunStatusCompleted)
}

// CompleteNoData marks a run that found nothing to consolidate
func (r *RunState) CompleteNoData() {
	r.Summary.NoData = true
	r.finish(RunStatusNoData)
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.Error = err
	r.finish(RunStatusFailed)
}

// Cancel marks the run as cancelled
func (r *RunState) Cancel(err error) {
	r.Error = err
	r.finish(RunStatusCancelled)
}

func (r *RunState) finish(status RunStatus) {
	now := time.Now()
	r.EndTime = &now
	r.Status = status
	r.Summary.Duration = now.Sub(r.StartTime)
}

// GetStep returns the state of a specific Step, creating it if needed
func (r *RunState) GetStep(stepID string) *StepState {
	if s, ok := r.Steps[stepID]; ok {
		return s
	}
	s := NewStepState(stepID, stepID)
	r.Steps[stepID] = s
	return s
}

// SetStep updates the state of a specific Step
func (r *RunState) SetStep(stepID string, state *StepState) {
	r.Steps[stepID] = state
}

// Succeeded reports whether the run ended without error
func (r *RunState) Succeeded() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusNoData
}
