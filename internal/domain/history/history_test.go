package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/execution"
)

func TestFromSession_Completed(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := execution.NewSession("01HXYZ", connection.DatabaseTypeMongoDB, 2, start)
	require.NoError(t, s.Start(start))
	require.NoError(t, s.SetState(execution.StateRunning))
	s.RunsCompleted = 2
	s.ResultPath = "mongodb_bench_output.json"
	s.Summary = &execution.Summary{
		TotalTimeP50:  3 * time.Second,
		TotalTimeP99:  4 * time.Second,
		ThroughputP50: 7.3,
		ThroughputP99: 7.1,
		QueriesPerRun: 22,
		TotalTimesNs:  []int64{3e9, 4e9},
	}
	require.NoError(t, s.Finish(nil, start.Add(10*time.Second)))

	r := FromSession(s)
	assert.Equal(t, "01HXYZ", r.ID)
	assert.Equal(t, "mongodb", r.Backend)
	assert.Equal(t, "completed", r.State)
	assert.True(t, r.Succeeded())
	assert.Equal(t, 10*time.Second, r.Duration)
	assert.Equal(t, start, r.StartTime)
	assert.Equal(t, 3*time.Second, r.TotalTimeP50)
	assert.Equal(t, 7.1, r.ThroughputP99)
	assert.Equal(t, []int64{3e9, 4e9}, r.TotalTimes)
}

func TestFromSession_Failed(t *testing.T) {
	now := time.Now()
	s := execution.NewSession("01HABC", connection.DatabaseTypeArangoDB, 5, now)
	require.NoError(t, s.Start(now))
	require.NoError(t, s.Finish(errors.New("dial tcp: refused"), now))

	r := FromSession(s)
	assert.False(t, r.Succeeded())
	assert.Equal(t, "failed", r.State)
	assert.Equal(t, "dial tcp: refused", r.ErrorMessage)
	assert.Zero(t, r.TotalTimeP50)
	assert.Empty(t, r.TotalTimes)
}
