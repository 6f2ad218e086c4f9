// Package history provides the session history record.
package history

import (
	"errors"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/execution"
)

// ErrSessionNotFound is returned when no record matches an ID.
var ErrSessionNotFound = errors.New("session not found")

// Record represents one stored benchmark session, successful or not.
type Record struct {
	ID        string    `json:"id"`         // Session ID (ULID)
	CreatedAt time.Time `json:"created_at"` // When the record was created

	Backend string `json:"backend"`
	State   string `json:"state"`

	RunsRequested int `json:"runs_requested"`
	RunsCompleted int `json:"runs_completed"`

	// Timing
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`

	ResultPath string `json:"result_path,omitempty"`

	// Headline metrics, zero for sessions that did not complete
	TotalTimeP50  time.Duration `json:"total_time_p50"`
	TotalTimeP99  time.Duration `json:"total_time_p99"`
	ThroughputP50 float64       `json:"throughput_p50_qps"`
	ThroughputP99 float64       `json:"throughput_p99_qps"`
	QueriesPerRun int           `json:"queries_per_run"`

	// TotalTimes is the total_time_duration of every completed run in nanoseconds.
	TotalTimes []int64 `json:"total_times_ns,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// FromSession flattens a finished session into a record.
func FromSession(s *execution.Session) *Record {
	r := &Record{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Backend:       s.Backend.String(),
		State:         s.State.String(),
		RunsRequested: s.RunsRequested,
		RunsCompleted: s.RunsCompleted,
		ResultPath:    s.ResultPath,
		ErrorMessage:  s.ErrorMessage,
	}
	if s.StartedAt != nil {
		r.StartTime = *s.StartedAt
	}
	if s.Duration != nil {
		r.Duration = *s.Duration
	}
	if sum := s.Summary; sum != nil {
		r.TotalTimeP50 = sum.TotalTimeP50
		r.TotalTimeP99 = sum.TotalTimeP99
		r.ThroughputP50 = sum.ThroughputP50
		r.ThroughputP99 = sum.ThroughputP99
		r.QueriesPerRun = sum.QueriesPerRun
		r.TotalTimes = sum.TotalTimesNs
	}
	return r
}

// Succeeded reports whether the session wrote a result file.
func (r *Record) Succeeded() bool {
	return r.State == execution.StateCompleted.String()
}

// Filter narrows a history listing. Zero fields match everything.
type Filter struct {
	Backend string
	State   string
	Limit   int
}
