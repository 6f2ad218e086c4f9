// Package surrealdb runs the catalogue against SurrealDB over its RPC
// endpoint. References are record links and orders are graph edges.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

const statusOK = "OK"

// Backend drives SurrealDB through surrealdb.go.
type Backend struct {
	conn *connection.SurrealDBConnection
	db   *surrealdb.DB
}

// New creates a SurrealDB backend.
func New(conn *connection.SurrealDBConnection) *Backend {
	return &Backend{conn: conn}
}

// Factory creates backends from *connection.SurrealDBConnection.
func Factory(conn connection.Connection) (backend.Backend, error) {
	c, ok := conn.(*connection.SurrealDBConnection)
	if !ok {
		return nil, fmt.Errorf("surrealdb backend requires a surrealdb connection, got %T", conn)
	}
	return New(c), nil
}

// Type returns DatabaseTypeSurrealDB.
func (b *Backend) Type() connection.DatabaseType {
	return connection.DatabaseTypeSurrealDB
}

// Connect opens the RPC connection, signs in and selects the namespace
// and database.
func (b *Backend) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := surrealdb.New(b.conn.URL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if _, err := db.SignIn(&surrealdb.Auth{Username: b.conn.Username, Password: b.conn.Password}); err != nil {
		db.Close()
		return fmt.Errorf("sign in: %w", err)
	}
	if err := db.Use(b.conn.Namespace, b.conn.Database); err != nil {
		db.Close()
		return fmt.Errorf("use %s/%s: %w", b.conn.Namespace, b.conn.Database, err)
	}

	b.db = db
	return nil
}

// Reset removes the tables and defines them again.
func (b *Backend) Reset(ctx context.Context) error {
	if b.db == nil {
		return backend.ErrNotConnected
	}
	if err := b.run(ctx, statement{query: dropTables}); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := b.run(ctx, statement{query: schema}); err != nil {
		return fmt.Errorf("define tables: %w", err)
	}
	return nil
}

// Execute runs q.
func (b *Backend) Execute(ctx context.Context, q catalogue.Query, w *backend.Workload) error {
	if b.db == nil {
		return backend.ErrNotConnected
	}

	stmts, err := statements(q, w)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := b.run(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", q.ID, err)
		}
	}
	return nil
}

// run sends one request and fails on the first statement that did not
// succeed. The RPC client takes no context, so ctx is only checked
// before sending.
func (b *Backend) run(ctx context.Context, s statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	results, err := surrealdb.Query[any](b.db, s.query, s.vars)
	if err != nil {
		return err
	}
	if results == nil {
		return nil
	}
	for i, r := range *results {
		if r.Status != statusOK {
			return fmt.Errorf("statement %d: %s: %v", i+1, r.Status, r.Result)
		}
	}
	return nil
}

// Version returns the server version.
func (b *Backend) Version(ctx context.Context) (string, error) {
	if b.db == nil {
		return "", backend.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := b.db.Version()
	if err != nil {
		return "", err
	}
	return v.Version, nil
}

// Close closes the RPC connection.
func (b *Backend) Close(context.Context) error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
