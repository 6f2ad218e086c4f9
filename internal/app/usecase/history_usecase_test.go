package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/history"
	"github.com/whhaicheng/deal-bench/internal/domain/result/resulttest"
)

func newRecord(at time.Time, backend, state string) *history.Record {
	return &history.Record{
		ID:        ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		CreatedAt: at,
		Backend:   backend,
		State:     state,
	}
}

func TestMemoryHistoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepository()
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	first := newRecord(base, "surrealdb", "completed")
	second := newRecord(base.Add(time.Minute), "mongodb", "failed")
	third := newRecord(base.Add(2*time.Minute), "surrealdb", "completed")
	for _, r := range []*history.Record{first, second, third} {
		require.NoError(t, repo.Save(ctx, r))
	}
	assert.Error(t, repo.Save(ctx, first))

	tests := []struct {
		name   string
		filter history.Filter
		want   []*history.Record
	}{
		{"newest first", history.Filter{}, []*history.Record{third, second, first}},
		{"by backend", history.Filter{Backend: "surrealdb"}, []*history.Record{third, first}},
		{"by state", history.Filter{State: "failed"}, []*history.Record{second}},
		{"limit", history.Filter{Limit: 1}, []*history.Record{third}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	require.NoError(t, repo.Delete(ctx, second.ID))
	_, err := repo.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, history.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, second.ID), history.ErrSessionNotFound)
}

func TestHistoryUseCase_Results(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryHistoryRepository()
	uc := NewHistoryUseCase(repo)
	now := time.Now()

	completed := newRecord(now, "dry", "completed")
	completed.ResultPath = writeResults(t, t.TempDir(), "dry_bench_output.json", resulttest.Full(2, 1e6))
	failed := newRecord(now.Add(time.Second), "dry", "failed")
	require.NoError(t, repo.Save(ctx, completed))
	require.NoError(t, repo.Save(ctx, failed))

	rec, file, err := uc.Results(ctx, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, completed, rec)
	assert.Equal(t, 2, file.Runs("q1"))

	_, _, err = uc.Results(ctx, failed.ID)
	assert.ErrorIs(t, err, ErrSessionIncomplete)

	_, _, err = uc.Results(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.ErrorIs(t, err, history.ErrSessionNotFound)

	records, err := uc.List(ctx, history.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
