package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepStateLifecycle(t *testing.T) {
	s := NewStepState(StepClean, "Clean and enrich")
	assert.Equal(t, StepStatusPending, s.Status)
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.Status)
	assert.NotNil(t, s.StartTime)

	time.Sleep(time.Millisecond)
	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.Status)
	assert.Positive(t, s.Duration())
}

func TestStepStateFailAndSkip(t *testing.T) {
	failed := NewStepState(StepPersist, "Persist output")
	failed.Start()
	err := errors.New("locked")
	failed.Fail(err)
	assert.Equal(t, StepStatusFailed, failed.Status)
	assert.Equal(t, err, failed.Error)

	skipped := NewStepState(StepMerge, "Merge and sort")
	skipped.Skip("step discover failed")
	assert.Equal(t, StepStatusSkipped, skipped.Status)
	assert.Equal(t, "step discover failed", skipped.Message)
	assert.Zero(t, skipped.Duration())
}

func TestBaseStage(t *testing.T) {
	b := NewBaseStage(StepDiscover, "Discover source workbooks")
	assert.Equal(t, StepDiscover, b.ID())
	assert.Equal(t, "Discover source workbooks", b.Name())

	var nilStage *BaseStage
	assert.Empty(t, nilStage.ID())
	assert.Empty(t, nilStage.Name())
}

func TestRunStateStatuses(t *testing.T) {
	tests := []struct {
		name      string
		finish    func(r *RunState)
		want      RunStatus
		succeeded bool
	}{
		{"completed", func(r *RunState) { r.Complete() }, RunStatusCompleted, true},
		{"no data", func(r *RunState) { r.CompleteNoData() }, RunStatusNoData, true},
		{"failed", func(r *RunState) { r.Fail(errors.New("x")) }, RunStatusFailed, false},
		{"cancelled", func(r *RunState) { r.Cancel(errors.New("x")) }, RunStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunState("run-1")
			r.Start()
			tt.finish(r)
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.succeeded, r.Succeeded())
			assert.NotNil(t, r.EndTime)
			assert.Equal(t, "run-1", r.Summary.RunID)
		})
	}
}

func TestRunStateGetStepCreatesMissing(t *testing.T) {
	r := NewRunState("run-1")
	s := r.GetStep(StepMerge)
	assert.Equal(t, StepStatusPending, s.Status)
	assert.Same(t, s, r.GetStep(StepMerge))
}
