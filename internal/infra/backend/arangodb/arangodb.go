// Package arangodb runs the catalogue against ArangoDB. Orders and
// product ownership are modelled as edges and traversed in AQL.
package arangodb

import (
	"context"
	"fmt"

	driver "github.com/arangodb/go-driver"
	"github.com/arangodb/go-driver/http"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// Backend drives ArangoDB through go-driver.
type Backend struct {
	conn   *connection.ArangoDBConnection
	client driver.Client
	db     driver.Database
}

// New creates an ArangoDB backend.
func New(conn *connection.ArangoDBConnection) *Backend {
	return &Backend{conn: conn}
}

// Factory creates backends from *connection.ArangoDBConnection.
func Factory(conn connection.Connection) (backend.Backend, error) {
	c, ok := conn.(*connection.ArangoDBConnection)
	if !ok {
		return nil, fmt.Errorf("arangodb backend requires an arangodb connection, got %T", conn)
	}
	return New(c), nil
}

// Type returns DatabaseTypeArangoDB.
func (b *Backend) Type() connection.DatabaseType {
	return connection.DatabaseTypeArangoDB
}

// Connect creates the HTTP client and checks the server answers.
func (b *Backend) Connect(ctx context.Context) error {
	conn, err := http.NewConnection(http.ConnectionConfig{Endpoints: b.conn.Endpoints})
	if err != nil {
		return fmt.Errorf("create connection: %w", err)
	}
	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(b.conn.Username, b.conn.Password),
	})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	if _, err := client.Version(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	b.client = client
	return nil
}

// Reset drops the benchmark database and recreates its collections.
func (b *Backend) Reset(ctx context.Context) error {
	if b.client == nil {
		return backend.ErrNotConnected
	}

	exists, err := b.client.DatabaseExists(ctx, b.conn.Database)
	if err != nil {
		return err
	}
	if exists {
		db, err := b.client.Database(ctx, b.conn.Database)
		if err != nil {
			return err
		}
		if err := db.Remove(ctx); err != nil {
			return fmt.Errorf("drop database: %w", err)
		}
	}

	db, err := b.client.CreateDatabase(ctx, b.conn.Database, nil)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	for _, t := range catalogue.Tables {
		if _, err := db.CreateCollection(ctx, string(t), nil); err != nil {
			return fmt.Errorf("create collection %s: %w", t, err)
		}
	}
	for _, name := range edgeCollections {
		opts := &driver.CreateCollectionOptions{Type: driver.CollectionTypeEdge}
		if _, err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("create edge collection %s: %w", name, err)
		}
	}

	b.db = db
	return nil
}

// Execute runs q.
func (b *Backend) Execute(ctx context.Context, q catalogue.Query, w *backend.Workload) error {
	if b.db == nil {
		return backend.ErrNotConnected
	}

	if q.Category == catalogue.CategoryInsert {
		return b.insert(ctx, q.Table, w)
	}
	if idx, ok := indexFields[q.ID]; ok {
		col, err := b.db.Collection(ctx, idx.collection)
		if err != nil {
			return err
		}
		_, _, err = col.EnsurePersistentIndex(ctx, idx.fields, &driver.EnsurePersistentIndexOptions{Name: q.Index})
		return err
	}

	p, err := plans(q, w)
	if err != nil {
		return err
	}
	if len(p.write) > 0 {
		return b.transaction(ctx, p)
	}
	for _, s := range p.statements {
		if err := b.run(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", q.ID, err)
		}
	}
	return nil
}

// run executes one statement and reads every returned document.
func (b *Backend) run(ctx context.Context, s statement) error {
	cursor, err := b.db.Query(ctx, s.query, s.bindVars)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for cursor.HasMore() {
		var doc interface{}
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return err
		}
	}
	return nil
}

// transaction runs the statements of p in one stream transaction.
func (b *Backend) transaction(ctx context.Context, p plan) error {
	tid, err := b.db.BeginTransaction(ctx, driver.TransactionCollections{Write: p.write}, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tctx := driver.WithTransactionID(ctx, tid)

	for _, s := range p.statements {
		if err := b.run(tctx, s); err != nil {
			if abortErr := b.db.AbortTransaction(ctx, tid, nil); abortErr != nil {
				return fmt.Errorf("%w (abort: %v)", err, abortErr)
			}
			return err
		}
	}
	return b.db.CommitTransaction(ctx, tid, nil)
}

// insert bulk loads a table and the edges its records imply.
func (b *Backend) insert(ctx context.Context, t catalogue.Table, w *backend.Workload) error {
	if w == nil {
		return fmt.Errorf("insert %s: no workload", t)
	}
	records, err := backend.Records(w.Dataset, t)
	if err != nil {
		return err
	}

	docs := make([]map[string]interface{}, len(records))
	for i, r := range records {
		if docs[i], err = document(r); err != nil {
			return err
		}
	}
	if err := b.createDocuments(ctx, string(t), docs); err != nil {
		return err
	}

	for col, edges := range edgesOf(records) {
		if err := b.createDocuments(ctx, col, edges); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) createDocuments(ctx context.Context, name string, docs []map[string]interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	col, err := b.db.Collection(ctx, name)
	if err != nil {
		return err
	}
	_, errs, err := col.CreateDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}
	if err := errs.FirstNonNil(); err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}
	return nil
}

// Version returns the server version.
func (b *Backend) Version(ctx context.Context) (string, error) {
	if b.client == nil {
		return "", backend.ErrNotConnected
	}
	info, err := b.client.Version(ctx)
	if err != nil {
		return "", err
	}
	return string(info.Version), nil
}

// Close drops the client. The HTTP connection holds no server session.
func (b *Backend) Close(context.Context) error {
	b.client = nil
	b.db = nil
	return nil
}
