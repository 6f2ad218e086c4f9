// Package repository defines the persistence interfaces of the use cases.
package repository

import (
	"context"

	"github.com/whhaicheng/deal-bench/internal/domain/history"
)

// HistoryRepository stores benchmark session records.
type HistoryRepository interface {
	// Save inserts a record. Saving an existing ID is an error.
	Save(ctx context.Context, record *history.Record) error

	// GetByID returns history.ErrSessionNotFound for unknown IDs.
	GetByID(ctx context.Context, id string) (*history.Record, error)

	// List returns matching records, newest first.
	List(ctx context.Context, filter history.Filter) ([]*history.Record, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error
}
