// Package repository provides SQLite repository implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/history"
)

// SQLiteHistoryRepository implements repository.HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

const selectSessions = `SELECT record_json FROM sessions`

// Save inserts a session record. The indexed columns are copied out of
// the record; record_json holds the full record.
func (r *SQLiteHistoryRepository) Save(ctx context.Context, record *history.Record) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var startTime interface{}
	if !record.StartTime.IsZero() {
		startTime = record.StartTime.UTC().Format(time.RFC3339Nano)
	}

	query := `
		INSERT INTO sessions (
			id, created_at, backend, state, runs_requested, runs_completed,
			start_time, duration_ns, result_path, total_time_p50_ns, throughput_p99,
			error_message, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.Backend,
		record.State,
		record.RunsRequested,
		record.RunsCompleted,
		startTime,
		int64(record.Duration),
		nullString(record.ResultPath),
		int64(record.TotalTimeP50),
		record.ThroughputP99,
		nullString(record.ErrorMessage),
		string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", record.ID, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 row affected, got %d", rowsAffected)
	}

	return nil
}

// GetByID retrieves a session record by ID.
func (r *SQLiteHistoryRepository) GetByID(ctx context.Context, id string) (*history.Record, error) {
	row := r.db.QueryRowContext(ctx, selectSessions+` WHERE id = ?`, id)

	var recordJSON string
	if err := row.Scan(&recordJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", history.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return decode(recordJSON)
}

// List retrieves session records, newest first. ULIDs sort by creation
// time, so the primary key orders the listing.
func (r *SQLiteHistoryRepository) List(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	query := selectSessions + ` WHERE 1=1`
	args := []interface{}{}

	if filter.Backend != "" {
		query += " AND backend = ?"
		args = append(args, filter.Backend)
	}
	if filter.State != "" {
		query += " AND state = ?"
		args = append(args, filter.State)
	}

	query += " ORDER BY id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []*history.Record
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		record, err := decode(recordJSON)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return records, nil
}

// Delete deletes a session record by ID.
func (r *SQLiteHistoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", history.ErrSessionNotFound, id)
	}

	return nil
}

func decode(recordJSON string) (*history.Record, error) {
	var record history.Record
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("unmarshal record JSON: %w", err)
	}
	return &record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
