package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// aggregation is a read that runs as an aggregation pipeline.
type aggregation struct {
	collection string
	pipeline   mongo.Pipeline
}

// lookup joins the document of from whose _id equals localField.
func lookup(from, localField, as string, inner ...bson.D) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "pipeline", Value: inner},
		{Key: "as", Value: as},
	}}}
}

// project keeps fields and drops _id.
func project(fields ...string) bson.D {
	spec := bson.D{{Key: "_id", Value: 0}}
	for _, f := range fields {
		spec = append(spec, bson.E{Key: f, Value: 1})
	}
	return bson.D{{Key: "$project", Value: spec}}
}

func contactProjection() bson.D {
	return project("name", "email", "phone")
}

// countFilter matches the orders Q5 and Q6 count.
func countFilter() bson.D {
	return bson.D{
		{Key: "order_status", Value: bson.D{{Key: "$in", Value: backend.CountStatuses}}},
		{Key: "order_date", Value: bson.D{{Key: "$lt", Value: backend.CountBefore}}},
	}
}

// aggregations returns the pipeline of every aggregation read.
func aggregations() map[catalogue.QueryID]aggregation {
	return map[catalogue.QueryID]aggregation{
		catalogue.Q1: {collection: "review", pipeline: mongo.Pipeline{
			lookup("person", "person", "person", contactProjection()),
			lookup("product", "product", "product", project("name", "category", "image_url")),
			project("rating", "review_text", "review_date", "person", "product"),
		}},
		catalogue.Q2: {collection: "order", pipeline: mongo.Pipeline{
			lookup("person", "person", "person", contactProjection()),
			lookup("product", "product", "product", project("category", "description", "image_url")),
			project("price", "order_date", "product_name", "person", "product"),
		}},
		catalogue.Q3: {collection: "order", pipeline: mongo.Pipeline{
			lookup("product", "product", "product",
				lookup("artist", "artist", "artist", contactProjection()),
				project("category", "description", "image_url", "artist"),
			),
			project("price", "order_date", "product_name", "product"),
		}},
		catalogue.Q5: {collection: "order", pipeline: mongo.Pipeline{
			{{Key: "$match", Value: countFilter()}},
			{{Key: "$count", Value: "count"}},
		}},
		catalogue.Q6: {collection: "order", pipeline: mongo.Pipeline{
			{{Key: "$match", Value: countFilter()}},
			lookup("product", "product", "product",
				lookup("artist", "artist", "artist", project("address.country")),
				project("artist"),
			),
			{{Key: "$match", Value: bson.D{{Key: "product.artist.address.country", Value: backend.FilterCountry}}}},
			{{Key: "$count", Value: "count"}},
		}},
	}
}

// indexSpec is the collection and key pattern of one index operation.
type indexSpec struct {
	collection string
	keys       bson.D
}

// indexSpecs returns the index each index operation creates.
func indexSpecs() map[catalogue.QueryID]indexSpec {
	return map[catalogue.QueryID]indexSpec{
		catalogue.Q4Index:  {"person", bson.D{{Key: "address.country", Value: 1}}},
		catalogue.Q5Index:  {"order", bson.D{{Key: "order_status", Value: 1}, {Key: "order_date", Value: 1}}},
		catalogue.Q8Index:  {"product", bson.D{{Key: "category", Value: 1}}},
		catalogue.Q10Index: {"product", bson.D{{Key: "price", Value: 1}}},
	}
}
