// Package postgres runs the catalogue against PostgreSQL, storing every
// record as a JSONB document. It is the relational baseline of a comparison.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// statement is one SQL statement and its positional arguments.
type statement struct {
	query string
	args  []any
}

// Backend drives PostgreSQL through lib/pq.
type Backend struct {
	conn *connection.PostgreSQLConnection
	db   *sql.DB
}

// New creates a PostgreSQL backend.
func New(conn *connection.PostgreSQLConnection) *Backend {
	return &Backend{conn: conn}
}

// Factory creates backends from *connection.PostgreSQLConnection.
func Factory(conn connection.Connection) (backend.Backend, error) {
	c, ok := conn.(*connection.PostgreSQLConnection)
	if !ok {
		return nil, fmt.Errorf("postgres backend requires a postgresql connection, got %T", conn)
	}
	return New(c), nil
}

// Type returns DatabaseTypePostgreSQL.
func (b *Backend) Type() connection.DatabaseType {
	return connection.DatabaseTypePostgreSQL
}

// Connect opens the pool and pings the server.
func (b *Backend) Connect(ctx context.Context) error {
	db, err := sql.Open("postgres", b.conn.GetDSNWithPassword())
	if err != nil {
		return fmt.Errorf("open connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("ping: %w", err)
	}

	b.db = db
	return nil
}

// Reset drops and recreates the document tables.
func (b *Backend) Reset(ctx context.Context) error {
	if b.db == nil {
		return backend.ErrNotConnected
	}
	for _, t := range catalogue.Tables {
		if _, err := b.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+pq.QuoteIdentifier(string(t))+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
		if _, err := b.db.ExecContext(ctx, createTable(t)); err != nil {
			return fmt.Errorf("create %s: %w", t, err)
		}
	}
	return nil
}

func createTable(t catalogue.Table) string {
	return fmt.Sprintf("CREATE TABLE %s (id TEXT PRIMARY KEY, data JSONB NOT NULL)", pq.QuoteIdentifier(string(t)))
}

// Execute runs q.
func (b *Backend) Execute(ctx context.Context, q catalogue.Query, w *backend.Workload) error {
	if b.db == nil {
		return backend.ErrNotConnected
	}

	if q.Category == catalogue.CategoryInsert {
		return b.copyIn(ctx, q.Table, w)
	}

	stmts, err := statements(q, w)
	if err != nil {
		return err
	}

	info, _ := catalogue.CategoryOf(q.Category)
	switch {
	case q.Category == catalogue.CategoryTransactions:
		return b.transaction(ctx, stmts)
	case !info.Write:
		return b.drain(ctx, stmts[0])
	default:
		for _, s := range stmts {
			if _, err := b.db.ExecContext(ctx, s.query, s.args...); err != nil {
				return fmt.Errorf("%s: %w", q.ID, err)
			}
		}
		return nil
	}
}

// copyIn bulk loads a table with COPY.
func (b *Backend) copyIn(ctx context.Context, t catalogue.Table, w *backend.Workload) error {
	if w == nil {
		return fmt.Errorf("insert %s: no workload", t)
	}
	records, err := backend.Records(w.Dataset, t)
	if err != nil {
		return err
	}

	txn, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn(string(t), "id", "data"))
	if err != nil {
		return fmt.Errorf("prepare copy %s: %w", t, err)
	}

	for _, r := range records {
		doc, err := json.Marshal(r.Doc)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", t, r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, string(doc)); err != nil {
			return fmt.Errorf("copy %s %s: %w", t, r.ID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy %s: %w", t, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy %s: %w", t, err)
	}

	return txn.Commit()
}

// drain runs a read statement and consumes every row.
func (b *Backend) drain(ctx context.Context, s statement) error {
	rows, err := b.db.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(sql.RawBytes)
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (b *Backend) transaction(ctx context.Context, stmts []statement) error {
	txn, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer txn.Rollback()

	for _, s := range stmts {
		if _, err := txn.ExecContext(ctx, s.query, s.args...); err != nil {
			return err
		}
	}
	return txn.Commit()
}

// Version returns the server version string.
func (b *Backend) Version(ctx context.Context) (string, error) {
	if b.db == nil {
		return "", backend.ErrNotConnected
	}
	var version string
	if err := b.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

// Close closes the pool.
func (b *Backend) Close(context.Context) error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
