package surrealdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// statement is one SurrealQL request and its variables. A request may
// hold several statements separated by semicolons.
type statement struct {
	query string
	vars  map[string]interface{}
}

// schema defines the tables. Orders are edges from a person to a product.
const schema = `DEFINE TABLE person SCHEMALESS;
DEFINE TABLE artist SCHEMALESS;
DEFINE TABLE product SCHEMALESS;
DEFINE TABLE order SCHEMALESS TYPE RELATION IN person OUT product;
DEFINE TABLE review SCHEMALESS;`

const dropTables = `REMOVE TABLE IF EXISTS person;
REMOVE TABLE IF EXISTS artist;
REMOVE TABLE IF EXISTS product;
REMOVE TABLE IF EXISTS order;
REMOVE TABLE IF EXISTS review;`

var indexes = map[catalogue.QueryID]string{
	catalogue.Q4Index:  `DEFINE INDEX person_country ON TABLE person COLUMNS address.country`,
	catalogue.Q5Index:  `DEFINE INDEX order_count ON TABLE order COLUMNS order_status, order_date`,
	catalogue.Q8Index:  `DEFINE INDEX product_category ON TABLE product COLUMNS category`,
	catalogue.Q10Index: `DEFINE INDEX product_price ON TABLE product COLUMNS price`,
}

var reads = map[catalogue.QueryID]string{
	catalogue.Q1: `SELECT rating, review_text, review_date,
		person.name, person.email, person.phone,
		product.name, product.category, product.image_url
	FROM review`,
	catalogue.Q2: `SELECT price, order_date, product_name,
		in.name, in.email, in.phone,
		out.category, out.description, out.image_url
	FROM order`,
	catalogue.Q3: `SELECT price, order_date, product_name,
		out.category, out.description, out.image_url,
		out.artist.name, out.artist.email, out.artist.phone
	FROM order`,
	catalogue.Q4:  `SELECT name, email FROM person WHERE address.country = $country`,
	catalogue.Q13: `SELECT name, email FROM person ORDER BY name`,
	catalogue.Q5: `SELECT count() FROM order
	WHERE order_status IN $statuses AND order_date < $before
	GROUP ALL`,
	catalogue.Q6: `SELECT count() FROM order
	WHERE order_status IN $statuses AND order_date < $before
	AND out.artist.address.country = $country
	GROUP ALL`,
}

const (
	insertRecords = `INSERT INTO %s $records RETURN NONE`

	insertRelations = `INSERT RELATION INTO order $records RETURN NONE`

	deleteReview = `DELETE $review RETURN NONE`

	deleteByCategory = `DELETE review WHERE product.category = $category RETURN NONE`

	updateAddress = `UPDATE $person SET address = $address RETURN NONE`

	updateDiscount = `UPDATE product SET discount = $discount WHERE price < $below RETURN NONE`
)

const newOrder = `BEGIN TRANSACTION;
CREATE $person CONTENT $person_doc RETURN NONE;
LET $p = (SELECT * FROM ONLY $product);
INSERT RELATION INTO order {
	id: $order, in: $person, out: $product,
	currency: $p.currency, discount: $p.discount, price: $p.price, product_name: $p.name,
	quantity: 1, order_date: time::now(), order_status: "pending", payment_method: "PayPal",
	shipping_address: $person_doc.address
} RETURN NONE;
UPDATE $product SET quantity -= 1 RETURN NONE;
COMMIT TRANSACTION;`

const newArtistProduct = `BEGIN TRANSACTION;
CREATE $artist CONTENT $artist_doc RETURN NONE;
CREATE $product CONTENT $product_doc RETURN NONE;
UPDATE $product SET creation_history.created_at = time::now() RETURN NONE;
COMMIT TRANSACTION;`

// statements returns the SurrealQL of one catalogue operation.
func statements(q catalogue.Query, w *backend.Workload) ([]statement, error) {
	if q.Category == catalogue.CategoryInsert {
		if w == nil {
			return nil, fmt.Errorf("insert %s: no workload", q.Table)
		}
		return insert(q.Table, w.Dataset)
	}
	if query, ok := indexes[q.ID]; ok {
		return []statement{{query: query}}, nil
	}
	if query, ok := reads[q.ID]; ok {
		return []statement{{query, readVars(q.ID)}}, nil
	}

	switch q.ID {
	case catalogue.Q8:
		return []statement{{deleteByCategory, map[string]interface{}{"category": backend.DeleteCategory}}}, nil
	case catalogue.Q10:
		return []statement{{updateDiscount, map[string]interface{}{
			"discount": backend.Discount, "below": backend.DiscountBelow,
		}}}, nil
	}

	if w == nil || w.Fixtures == nil {
		return nil, fmt.Errorf("%s: workload has no fixtures", q.ID)
	}
	f := w.Fixtures

	switch q.ID {
	case catalogue.Q7:
		return []statement{{deleteReview, map[string]interface{}{
			"review": models.NewRecordID("review", f.DeleteReviewID),
		}}}, nil

	case catalogue.Q9:
		addr, err := toMap(f.UpdatedAddress)
		if err != nil {
			return nil, err
		}
		return []statement{{updateAddress, map[string]interface{}{
			"person":  models.NewRecordID("person", f.UpdatePersonID),
			"address": addr,
		}}}, nil

	case catalogue.Q11:
		person, err := content(f.NewPerson)
		if err != nil {
			return nil, err
		}
		return []statement{{newOrder, map[string]interface{}{
			"person":     models.NewRecordID("person", f.NewPerson.ID),
			"person_doc": person,
			"product":    models.NewRecordID("product", f.OrderProduct.ID),
			"order":      models.NewRecordID("order", f.NewOrderID),
		}}}, nil

	case catalogue.Q12:
		artist, err := content(f.NewArtist)
		if err != nil {
			return nil, err
		}
		product, err := content(f.NewProduct)
		if err != nil {
			return nil, err
		}
		product["artist"] = models.NewRecordID("artist", f.NewArtist.ID)
		return []statement{{newArtistProduct, map[string]interface{}{
			"artist":      models.NewRecordID("artist", f.NewArtist.ID),
			"artist_doc":  artist,
			"product":     models.NewRecordID("product", f.NewProduct.ID),
			"product_doc": product,
		}}}, nil
	}

	return nil, backend.Unsupported(connection.DatabaseTypeSurrealDB, q)
}

func readVars(id catalogue.QueryID) map[string]interface{} {
	switch id {
	case catalogue.Q4:
		return map[string]interface{}{"country": backend.FilterCountry}
	case catalogue.Q5:
		return map[string]interface{}{"statuses": backend.CountStatuses, "before": datetime(backend.CountBefore)}
	case catalogue.Q6:
		return map[string]interface{}{
			"statuses": backend.CountStatuses,
			"before":   datetime(backend.CountBefore),
			"country":  backend.FilterCountry,
		}
	default:
		return nil
	}
}

// insert loads one table in a single request. Orders are inserted as
// relations.
func insert(t catalogue.Table, d *dataset.Dataset) ([]statement, error) {
	records, err := backend.Records(d, t)
	if err != nil {
		return nil, err
	}
	docs := make([]map[string]interface{}, len(records))
	for i, r := range records {
		if docs[i], err = document(t, r); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf(insertRecords, t)
	if t == catalogue.TableOrder {
		query = insertRelations
	}
	return []statement{{query, map[string]interface{}{"records": docs}}}, nil
}

// document converts a record to SurrealDB content: the id and every
// reference become record ids and timestamps become datetimes.
func document(t catalogue.Table, r backend.Record) (map[string]interface{}, error) {
	doc, err := content(r.Doc)
	if err != nil {
		return nil, err
	}
	doc["id"] = models.NewRecordID(string(t), r.ID)

	switch v := r.Doc.(type) {
	case dataset.Product:
		doc["artist"] = models.NewRecordID("artist", v.Artist)
		if history, ok := doc["creation_history"].(map[string]interface{}); ok {
			history["created_at"] = datetime(v.CreationHistory.CreatedAt)
		}
	case dataset.Order:
		delete(doc, "person")
		delete(doc, "product")
		doc["in"] = models.NewRecordID("person", v.Person)
		doc["out"] = models.NewRecordID("product", v.Product)
		doc["order_date"] = datetime(v.OrderDate)
	case dataset.Review:
		doc["person"] = models.NewRecordID("person", v.Person)
		doc["product"] = models.NewRecordID("product", v.Product)
		doc["artist"] = models.NewRecordID("artist", v.Artist)
		doc["review_date"] = datetime(v.ReviewDate)
	}
	return doc, nil
}

// content returns v as a map without its id field, for CREATE ... CONTENT.
func content(v any) (map[string]interface{}, error) {
	doc, err := toMap(v)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	return doc, nil
}

func datetime(t time.Time) models.CustomDateTime {
	return models.CustomDateTime{Time: t}
}

// toMap converts v through its JSON form, keeping integers integral.
func toMap(v any) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return normalize(m).(map[string]interface{}), nil
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]interface{}:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []interface{}:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}
