package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/connection"
)

// Session is one benchmark session: Runs sequential executions of the
// catalogue against one backend.
type Session struct {
	ID      string                  `json:"id"` // ULID
	Backend connection.DatabaseType `json:"backend"`
	State   State                   `json:"state"`

	RunsRequested int `json:"runs_requested"`
	RunsCompleted int `json:"runs_completed"`

	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty"`

	// ResultPath is set once the result file has been written.
	ResultPath   string   `json:"result_path,omitempty"`
	Summary      *Summary `json:"summary,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// Summary holds the headline figures of a completed session.
type Summary struct {
	TotalTimeP50  time.Duration `json:"total_time_p50"`
	TotalTimeP99  time.Duration `json:"total_time_p99"`
	ThroughputP50 float64       `json:"throughput_p50_qps"`
	ThroughputP99 float64       `json:"throughput_p99_qps"`
	QueriesPerRun int           `json:"queries_per_run"`
	TotalTimesNs  []int64       `json:"total_times_ns"`
}

// NewSession creates a pending session.
func NewSession(id string, backend connection.DatabaseType, runs int, now time.Time) *Session {
	return &Session{
		ID:            id,
		Backend:       backend,
		State:         StatePending,
		RunsRequested: runs,
		CreatedAt:     now,
	}
}

// IsCompleted checks if the session is in a terminal state.
func (s *Session) IsCompleted() bool {
	return s.State.IsTerminal()
}

// SetState sets the state with validation.
// Returns an error if the transition is invalid.
func (s *Session) SetState(newState State) error {
	if !s.State.CanTransitionTo(newState) {
		return &InvalidStateTransitionError{
			From: s.State,
			To:   newState,
		}
	}
	s.State = newState
	return nil
}

// Start marks the session as preparing its first run.
func (s *Session) Start(now time.Time) error {
	if err := s.SetState(StatePreparing); err != nil {
		return err
	}
	s.StartedAt = &now
	return nil
}

// Finish moves the session into its terminal state. A nil err completes
// it; context errors map to cancelled or timeout; anything else fails it.
func (s *Session) Finish(err error, now time.Time) error {
	target := StateCompleted
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		target = StateTimeout
	case errors.Is(err, context.Canceled):
		target = StateCancelled
	default:
		target = StateFailed
	}

	if transitionErr := s.SetState(target); transitionErr != nil {
		return transitionErr
	}
	if err != nil {
		s.ErrorMessage = err.Error()
	}
	s.CompletedAt = &now
	s.CalculateDuration()
	return nil
}

// CalculateDuration calculates and sets the duration based on started_at and completed_at.
func (s *Session) CalculateDuration() {
	if s.StartedAt != nil && s.CompletedAt != nil {
		duration := s.CompletedAt.Sub(*s.StartedAt)
		s.Duration = &duration
	}
}

// InvalidStateTransitionError represents an invalid state transition.
type InvalidStateTransitionError struct {
	From State
	To   State
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}
