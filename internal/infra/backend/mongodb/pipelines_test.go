package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

func stageNames(p []bson.D) []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage[0].Key
	}
	return names
}

func TestAggregations(t *testing.T) {
	aggs := aggregations()

	tests := []struct {
		id         catalogue.QueryID
		collection string
		stages     []string
	}{
		{catalogue.Q1, "review", []string{"$lookup", "$lookup", "$project"}},
		{catalogue.Q2, "order", []string{"$lookup", "$lookup", "$project"}},
		{catalogue.Q3, "order", []string{"$lookup", "$project"}},
		{catalogue.Q5, "order", []string{"$match", "$count"}},
		{catalogue.Q6, "order", []string{"$match", "$lookup", "$match", "$count"}},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			agg, ok := aggs[tt.id]
			require.True(t, ok)
			assert.Equal(t, tt.collection, agg.collection)
			assert.Equal(t, tt.stages, stageNames(agg.pipeline))
		})
	}
}

func TestLookup(t *testing.T) {
	stage := lookup("artist", "artist", "artist", contactProjection())
	spec := stage[0].Value.(bson.D).Map()

	assert.Equal(t, "artist", spec["from"])
	assert.Equal(t, "_id", spec["foreignField"])
	inner := spec["pipeline"].([]bson.D)
	require.Len(t, inner, 1)
	assert.Equal(t, "$project", inner[0][0].Key)
}

func TestCountFilter(t *testing.T) {
	f := countFilter().Map()
	assert.Equal(t, bson.D{{Key: "$in", Value: backend.CountStatuses}}, f["order_status"])
	assert.Equal(t, bson.D{{Key: "$lt", Value: backend.CountBefore}}, f["order_date"])
}

func TestIndexSpecs(t *testing.T) {
	specs := indexSpecs()
	for _, q := range catalogue.ByCategory(catalogue.CategoryIndex) {
		spec, ok := specs[q.ID]
		require.True(t, ok, q.ID)
		assert.NotEmpty(t, spec.keys)
	}
	assert.Equal(t, "order", specs[catalogue.Q5Index].collection)
	assert.Len(t, specs[catalogue.Q5Index].keys, 2)
}

func TestBackend_NotConnected(t *testing.T) {
	b := New(&connection.MongoDBConnection{})
	q, _ := catalogue.Lookup(catalogue.Q1)

	assert.ErrorIs(t, b.Execute(context.Background(), q, nil), backend.ErrNotConnected)
	assert.ErrorIs(t, b.Reset(context.Background()), backend.ErrNotConnected)
	_, err := b.Version(context.Background())
	assert.ErrorIs(t, err, backend.ErrNotConnected)
	assert.NoError(t, b.Close(context.Background()))
}

func TestFactory(t *testing.T) {
	b, err := Factory(&connection.MongoDBConnection{})
	require.NoError(t, err)
	assert.Equal(t, connection.DatabaseTypeMongoDB, b.Type())

	_, err = Factory(&connection.ArangoDBConnection{})
	assert.Error(t, err)
}
