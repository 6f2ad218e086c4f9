// Package mongodb runs the catalogue against MongoDB. Relationships are
// resolved with $lookup pipelines and transactions need a replica set.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// Backend drives MongoDB through the official driver.
type Backend struct {
	conn   *connection.MongoDBConnection
	client *mongo.Client
	db     *mongo.Database
}

// New creates a MongoDB backend.
func New(conn *connection.MongoDBConnection) *Backend {
	return &Backend{conn: conn}
}

// Factory creates backends from *connection.MongoDBConnection.
func Factory(conn connection.Connection) (backend.Backend, error) {
	c, ok := conn.(*connection.MongoDBConnection)
	if !ok {
		return nil, fmt.Errorf("mongodb backend requires a mongodb connection, got %T", conn)
	}
	return New(c), nil
}

// Type returns DatabaseTypeMongoDB.
func (b *Backend) Type() connection.DatabaseType {
	return connection.DatabaseTypeMongoDB
}

// Connect connects the client and pings the primary.
func (b *Backend) Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(b.conn.GetDSNWithPassword()).
		SetConnectTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return fmt.Errorf("ping: %w", err)
	}

	b.client = client
	b.db = client.Database(b.conn.Database)
	return nil
}

// Reset drops the benchmark database and recreates its collections.
func (b *Backend) Reset(ctx context.Context) error {
	if b.db == nil {
		return backend.ErrNotConnected
	}
	if err := b.db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	for _, t := range catalogue.Tables {
		if err := b.db.CreateCollection(ctx, string(t)); err != nil {
			return fmt.Errorf("create collection %s: %w", t, err)
		}
	}
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
	if spec, ok := indexSpecs()[q.ID]; ok {
		_, err := b.db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    spec.keys,
			Options: options.Index().SetName(q.Index),
		})
		return err
	}
	if agg, ok := aggregations()[q.ID]; ok {
		cursor, err := b.db.Collection(agg.collection).Aggregate(ctx, agg.pipeline)
		if err != nil {
			return err
		}
		var docs []bson.M
		return cursor.All(ctx, &docs)
	}

	switch q.ID {
	case catalogue.Q4, catalogue.Q13:
		return b.find(ctx, q.ID)
	case catalogue.Q10:
		_, err := b.db.Collection("product").UpdateMany(ctx,
			bson.D{{Key: "price", Value: bson.D{{Key: "$lt", Value: backend.DiscountBelow}}}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "discount", Value: backend.Discount}}}})
		return err
	case catalogue.Q8:
		return b.deleteByCategory(ctx)
	}

	if w == nil || w.Fixtures == nil {
		return fmt.Errorf("%s: workload has no fixtures", q.ID)
	}
	f := w.Fixtures

	switch q.ID {
	case catalogue.Q9:
		_, err := b.db.Collection("person").UpdateOne(ctx,
			bson.D{{Key: "_id", Value: f.UpdatePersonID}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "address", Value: f.UpdatedAddress}}}})
		return err
	case catalogue.Q7:
		_, err := b.db.Collection("review").DeleteOne(ctx, bson.D{{Key: "_id", Value: f.DeleteReviewID}})
		return err
	case catalogue.Q11:
		return b.transaction(ctx, func(sc mongo.SessionContext) error { return b.newOrder(sc, f) })
	case catalogue.Q12:
		return b.transaction(ctx, func(sc mongo.SessionContext) error { return b.newArtistProduct(sc, f) })
	}

	return backend.Unsupported(connection.DatabaseTypeMongoDB, q)
}

func (b *Backend) insert(ctx context.Context, t catalogue.Table, w *backend.Workload) error {
	if w == nil {
		return fmt.Errorf("insert %s: no workload", t)
	}
	records, err := backend.Records(w.Dataset, t)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r.Doc
	}
	_, err = b.db.Collection(string(t)).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

func (b *Backend) find(ctx context.Context, id catalogue.QueryID) error {
	filter := bson.D{}
	opts := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 0},
		{Key: "name", Value: 1},
		{Key: "email", Value: 1},
	})
	if id == catalogue.Q4 {
		filter = bson.D{{Key: "address.country", Value: backend.FilterCountry}}
	} else {
		opts.SetSort(bson.D{{Key: "name", Value: 1}})
	}

	cursor, err := b.db.Collection("person").Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	var docs []bson.M
	return cursor.All(ctx, &docs)
}

func (b *Backend) deleteByCategory(ctx context.Context) error {
	ids, err := b.db.Collection("product").Distinct(ctx, "_id", bson.D{{Key: "category", Value: backend.DeleteCategory}})
	if err != nil {
		return err
	}
	_, err = b.db.Collection("review").DeleteMany(ctx, bson.D{{Key: "product", Value: bson.D{{Key: "$in", Value: ids}}}})
	return err
}

func (b *Backend) transaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := b.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// newOrder creates a customer, orders a product and decrements its stock.
func (b *Backend) newOrder(sc mongo.SessionContext, f *dataset.Fixtures) error {
	if _, err := b.db.Collection("person").InsertOne(sc, f.NewPerson); err != nil {
		return err
	}

	var product dataset.Product
	err := b.db.Collection("product").FindOne(sc, bson.D{{Key: "_id", Value: f.OrderProduct.ID}}).Decode(&product)
	if err != nil {
		return fmt.Errorf("find product %s: %w", f.OrderProduct.ID, err)
	}

	status := "pending"
	order := dataset.Order{
		ID:              f.NewOrderID,
		Person:          f.NewPerson.ID,
		Product:         product.ID,
		ProductName:     product.Name,
		Currency:        product.Currency,
		Discount:        product.Discount,
		Price:           product.Price,
		Quantity:        1,
		OrderDate:       time.Now().UTC(),
		ShippingAddress: f.NewPerson.Address,
		PaymentMethod:   "PayPal",
		OrderStatus:     &status,
	}
	if _, err := b.db.Collection("order").InsertOne(sc, order); err != nil {
		return err
	}

	_, err = b.db.Collection("product").UpdateOne(sc,
		bson.D{{Key: "_id", Value: product.ID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: -1}}}})
	return err
}

// newArtistProduct creates an artist and their first product.
func (b *Backend) newArtistProduct(sc mongo.SessionContext, f *dataset.Fixtures) error {
	if _, err := b.db.Collection("artist").InsertOne(sc, f.NewArtist); err != nil {
		return err
	}
	product := f.NewProduct
	product.CreationHistory.CreatedAt = time.Now().UTC()
	_, err := b.db.Collection("product").InsertOne(sc, product)
	return err
}

// Version returns the server version from buildInfo.
func (b *Backend) Version(ctx context.Context) (string, error) {
	if b.client == nil {
		return "", backend.ErrNotConnected
	}
	var info struct {
		Version string `bson:"version"`
	}
	err := b.client.Database("admin").RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info)
	if err != nil {
		return "", err
	}
	return info.Version, nil
}

// Close disconnects the client.
func (b *Backend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	err := b.client.Disconnect(ctx)
	b.client = nil
	b.db = nil
	return err
}
