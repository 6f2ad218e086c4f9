package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/whhaicheng/deal-bench/internal/app/repository"
	"github.com/whhaicheng/deal-bench/internal/domain/history"
	"github.com/whhaicheng/deal-bench/internal/domain/result"
)

// ErrSessionIncomplete is returned when a session wrote no result file.
var ErrSessionIncomplete = errors.New("session did not complete")

// HistoryUseCase provides session history operations.
type HistoryUseCase struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryUseCase creates a new history use case.
func NewHistoryUseCase(historyRepo repository.HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{
		historyRepo: historyRepo,
	}
}

// List returns recorded sessions, newest first.
func (uc *HistoryUseCase) List(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	records, err := uc.historyRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

// Get returns one session.
func (uc *HistoryUseCase) Get(ctx context.Context, id string) (*history.Record, error) {
	return uc.historyRepo.GetByID(ctx, id)
}

// Delete removes one session. The result file is left in place.
func (uc *HistoryUseCase) Delete(ctx context.Context, id string) error {
	return uc.historyRepo.Delete(ctx, id)
}

// Results reads the result file of a completed session.
func (uc *HistoryUseCase) Results(ctx context.Context, id string) (*history.Record, result.File, error) {
	record, err := uc.historyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !record.Succeeded() || record.ResultPath == "" {
		return record, nil, fmt.Errorf("%w: %s is %s", ErrSessionIncomplete, id, record.State)
	}

	file, err := readResultFile(record.ResultPath)
	if err != nil {
		return record, nil, err
	}
	return record, file, nil
}

func readResultFile(path string) (result.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	file, err := result.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}
