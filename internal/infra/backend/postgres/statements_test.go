package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

func workload(t *testing.T) *backend.Workload {
	t.Helper()
	sizes := dataset.Sizes{Person: 5, Artist: 3, Product: 5, Order: 10, Review: 5}
	gen, err := dataset.NewGenerator(sizes, 42)
	require.NoError(t, err)
	d, err := gen.Generate()
	require.NoError(t, err)
	f, err := dataset.NewFixtures(d, 42)
	require.NoError(t, err)
	return &backend.Workload{Dataset: d, Fixtures: f}
}

func TestStatements_EveryQuery(t *testing.T) {
	w := workload(t)
	for _, q := range catalogue.Queries {
		if q.Category == catalogue.CategoryInsert {
			continue
		}
		t.Run(q.ID.String(), func(t *testing.T) {
			stmts, err := statements(q, w)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)
			for _, s := range stmts {
				assert.Equal(t, strings.Count(s.query, "$"), len(s.args), s.query)
			}
		})
	}
}

func TestStatements_Index(t *testing.T) {
	q, _ := catalogue.Lookup(catalogue.Q10Index)
	stmts, err := statements(q, nil)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].query, "CREATE INDEX product_price")
}

func TestStatements_UpdateOne(t *testing.T) {
	w := workload(t)
	q, _ := catalogue.Lookup(catalogue.Q9)

	stmts, err := statements(q, w)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, w.Fixtures.UpdatePersonID, stmts[0].args[1])

	var addr dataset.Address
	require.NoError(t, json.Unmarshal([]byte(stmts[0].args[0].(string)), &addr))
	assert.Equal(t, "Bromyard", addr.City)
}

func TestStatements_Transaction(t *testing.T) {
	w := workload(t)
	q, _ := catalogue.Lookup(catalogue.Q11)

	stmts, err := statements(q, w)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0].query, "INSERT INTO person")
	assert.Contains(t, stmts[1].query, `INSERT INTO "order"`)
	assert.Equal(t, w.Fixtures.OrderProduct.ID, stmts[2].args[0])
}

func TestStatements_NeedFixtures(t *testing.T) {
	q, _ := catalogue.Lookup(catalogue.Q7)
	_, err := statements(q, &backend.Workload{})
	assert.Error(t, err)
}

func TestCreateTable_QuotesReservedNames(t *testing.T) {
	assert.Equal(t, `CREATE TABLE "order" (id TEXT PRIMARY KEY, data JSONB NOT NULL)`, createTable(catalogue.TableOrder))
}

func TestBackend_NotConnected(t *testing.T) {
	b := New(&connection.PostgreSQLConnection{})
	q, _ := catalogue.Lookup(catalogue.Q1)

	assert.ErrorIs(t, b.Execute(context.Background(), q, nil), backend.ErrNotConnected)
	assert.ErrorIs(t, b.Reset(context.Background()), backend.ErrNotConnected)
	assert.NoError(t, b.Close(context.Background()))
}

func TestFactory(t *testing.T) {
	b, err := Factory(&connection.PostgreSQLConnection{})
	require.NoError(t, err)
	assert.Equal(t, connection.DatabaseTypePostgreSQL, b.Type())

	_, err = Factory(&connection.MongoDBConnection{})
	assert.Error(t, err)
}
