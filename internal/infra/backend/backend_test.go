package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/dry"
)

func TestRegistry(t *testing.T) {
	r := backend.NewRegistry()
	d := dry.New()
	r.Register(connection.DatabaseTypeDry, dry.Factory(d))
	r.Register(connection.DatabaseTypeArangoDB, func(connection.Connection) (backend.Backend, error) {
		return nil, errors.New("not used")
	})

	assert.Equal(t, []connection.DatabaseType{connection.DatabaseTypeArangoDB, connection.DatabaseTypeDry}, r.List())

	b, err := r.New(connection.DatabaseTypeDry, nil)
	require.NoError(t, err)
	assert.Same(t, d, b)

	_, err = r.New(connection.DatabaseTypeMongoDB, nil)
	assert.ErrorIs(t, err, connection.ErrUnknownBackend)

	_, err = r.New(connection.DatabaseTypeArangoDB, &connection.ArangoDBConnection{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arangodb connection")
}

func TestPing(t *testing.T) {
	d := dry.New()
	result := backend.Ping(context.Background(), d)
	assert.True(t, result.Success)
	assert.Equal(t, dry.Version, result.DatabaseVersion)
	assert.Empty(t, result.Error)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result = backend.Ping(ctx, dry.New())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestUnsupported(t *testing.T) {
	q, err := catalogue.Lookup(catalogue.Q6)
	require.NoError(t, err)

	err = backend.Unsupported(connection.DatabaseTypeDry, q)
	assert.ErrorIs(t, err, backend.ErrUnsupportedQuery)
	assert.Contains(t, err.Error(), "q6")
}

func TestRecords(t *testing.T) {
	d := &dataset.Dataset{
		Persons: []dataset.Person{{ID: "p1"}, {ID: "p2"}},
		Artists: []dataset.Artist{{ID: "a1"}},
	}

	records, err := backend.Records(d, catalogue.TablePerson)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p2", records[1].ID)
	assert.IsType(t, dataset.Person{}, records[1].Doc)

	records, err = backend.Records(d, catalogue.TableArtist)
	require.NoError(t, err)
	assert.IsType(t, dataset.Artist{}, records[0].Doc)

	records, err = backend.Records(d, catalogue.TableReview)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = backend.Records(d, catalogue.Table("nope"))
	assert.Error(t, err)

	_, err = backend.Records(nil, catalogue.TablePerson)
	assert.Error(t, err)
}
