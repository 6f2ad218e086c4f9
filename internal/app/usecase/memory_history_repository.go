package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/whhaicheng/deal-bench/internal/domain/history"
)

// MemoryHistoryRepository keeps session records in memory. It serves
// sessions run with the history database disabled.
type MemoryHistoryRepository struct {
	records map[string]*history.Record
	mu      sync.RWMutex
}

// NewMemoryHistoryRepository creates an empty in-memory history.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		records: make(map[string]*history.Record),
	}
}

// Save stores a record.
func (r *MemoryHistoryRepository) Save(ctx context.Context, record *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; ok {
		return fmt.Errorf("session %s already recorded", record.ID)
	}
	r.records[record.ID] = record
	slog.Debug("MemoryHistoryRepository: Saved session", "id", record.ID, "state", record.State)
	return nil
}

// GetByID finds a record by its ID.
func (r *MemoryHistoryRepository) GetByID(ctx context.Context, id string) (*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", history.ErrSessionNotFound, id)
	}
	return record, nil
}

// List returns matching records, newest first.
func (r *MemoryHistoryRepository) List(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*history.Record
	for _, record := range r.records {
		if filter.Backend != "" && record.Backend != filter.Backend {
			continue
		}
		if filter.State != "" && record.State != filter.State {
			continue
		}
		out = append(out, record)
	}
	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Delete removes a record by its ID.
func (r *MemoryHistoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("%w: %s", history.ErrSessionNotFound, id)
	}
	delete(r.records, id)
	return nil
}
