package arangodb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/domain/dataset"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// Edge collections. Orders and products are reached from their owners
// by graph traversal.
const (
	personToOrder   = "person_to_order"
	productToOrder  = "product_to_order"
	artistToProduct = "artist_to_product"
)

var edgeCollections = []string{personToOrder, productToOrder, artistToProduct}

// statement is one AQL query and its bind variables.
type statement struct {
	query    string
	bindVars map[string]interface{}
}

// plan is the AQL of one operation. A plan with write collections runs
// inside a stream transaction.
type plan struct {
	statements []statement
	write      []string
	read       bool
}

// indexFields maps each index operation to its collection and fields.
var indexFields = map[catalogue.QueryID]struct {
	collection string
	fields     []string
}{
	catalogue.Q4Index:  {"person", []string{"address.country"}},
	catalogue.Q5Index:  {"order", []string{"order_status", "order_date"}},
	catalogue.Q8Index:  {"product", []string{"category"}},
	catalogue.Q10Index: {"product", []string{"price"}},
}

const (
	q1 = `FOR r IN review
	LET person = DOCUMENT("person", r.person)
	LET product = DOCUMENT("product", r.product)
	RETURN {
		rating: r.rating, review_text: r.review_text, review_date: r.review_date,
		person_name: person.name, person_email: person.email, person_phone: person.phone,
		product_name: product.name, product_category: product.category, product_image_url: product.image_url
	}`

	q2 = `FOR o IN order
	LET person = FIRST(FOR v IN 1..1 INBOUND o person_to_order RETURN v)
	LET product = FIRST(FOR v IN 1..1 INBOUND o product_to_order RETURN v)
	RETURN {
		price: o.price, order_date: o.order_date, product_name: o.product_name,
		person_name: person.name, person_email: person.email, person_phone: person.phone,
		product_category: product.category, product_description: product.description, product_image_url: product.image_url
	}`

	q3 = `FOR o IN order
	LET product = FIRST(FOR v IN 1..1 INBOUND o product_to_order RETURN v)
	LET artist = FIRST(FOR v IN 1..1 INBOUND product artist_to_product RETURN v)
	RETURN {
		price: o.price, order_date: o.order_date, product_name: o.product_name,
		product_category: product.category, product_description: product.description, product_image_url: product.image_url,
		artist_name: artist.name, artist_email: artist.email, artist_phone: artist.phone
	}`

	q4 = `FOR p IN person
	FILTER p.address.country == @country
	RETURN { name: p.name, email: p.email }`

	q13 = `FOR p IN person
	SORT p.name
	RETURN { name: p.name, email: p.email }`

	q5 = `FOR o IN order
	FILTER o.order_status IN @statuses AND o.order_date < @before
	COLLECT WITH COUNT INTO length
	RETURN length`

	q6 = `FOR o IN order
	FILTER o.order_status IN @statuses AND o.order_date < @before
	LET product = FIRST(FOR v IN 1..1 INBOUND o product_to_order RETURN v)
	LET artist = FIRST(FOR v IN 1..1 INBOUND product artist_to_product RETURN v)
	FILTER artist.address.country == @country
	COLLECT WITH COUNT INTO length
	RETURN length`

	q7 = `REMOVE { _key: @key } IN review`

	q8 = `FOR r IN review
	LET product = DOCUMENT("product", r.product)
	FILTER product.category == @category
	REMOVE r IN review`

	q9 = `UPDATE { _key: @key } WITH { address: @address } IN person OPTIONS { mergeObjects: false }`

	q10 = `FOR p IN product
	FILTER p.price < @below
	UPDATE p WITH { discount: @discount } IN product`

	insertDoc = `INSERT @doc INTO @@collection`

	insertEdge = `INSERT { _from: @from, _to: @to } INTO @@collection`

	insertOrder = `LET p = DOCUMENT("product", @product)
	INSERT MERGE(@order, {
		product_name: p.name, currency: p.currency, discount: p.discount, price: p.price,
		order_date: DATE_ISO8601(DATE_NOW())
	}) INTO order`

	decrementQuantity = `FOR p IN product
	FILTER p._key == @product
	UPDATE p WITH { quantity: p.quantity - 1 } IN product`

	insertProduct = `INSERT MERGE_RECURSIVE(@doc, { creation_history: { created_at: DATE_ISO8601(DATE_NOW()) } }) INTO product`
)

// plans returns the AQL of every non-insert, non-index operation.
func plans(q catalogue.Query, w *backend.Workload) (plan, error) {
	before := backend.CountBefore.Format(time.RFC3339)

	switch q.ID {
	case catalogue.Q1:
		return readPlan(q1, nil), nil
	case catalogue.Q2:
		return readPlan(q2, nil), nil
	case catalogue.Q3:
		return readPlan(q3, nil), nil
	case catalogue.Q4:
		return readPlan(q4, map[string]interface{}{"country": backend.FilterCountry}), nil
	case catalogue.Q13:
		return readPlan(q13, nil), nil
	case catalogue.Q5:
		return readPlan(q5, map[string]interface{}{"statuses": backend.CountStatuses, "before": before}), nil
	case catalogue.Q6:
		return readPlan(q6, map[string]interface{}{
			"statuses": backend.CountStatuses, "before": before, "country": backend.FilterCountry,
		}), nil
	case catalogue.Q8:
		return writePlan(q8, map[string]interface{}{"category": backend.DeleteCategory}), nil
	case catalogue.Q10:
		return writePlan(q10, map[string]interface{}{"below": backend.DiscountBelow, "discount": backend.Discount}), nil
	}

	if w == nil || w.Fixtures == nil {
		return plan{}, fmt.Errorf("%s: workload has no fixtures", q.ID)
	}
	f := w.Fixtures

	switch q.ID {
	case catalogue.Q7:
		return writePlan(q7, map[string]interface{}{"key": f.DeleteReviewID}), nil

	case catalogue.Q9:
		addr, err := toMap(f.UpdatedAddress)
		if err != nil {
			return plan{}, err
		}
		return writePlan(q9, map[string]interface{}{"key": f.UpdatePersonID, "address": addr}), nil

	case catalogue.Q11:
		person, err := document(backend.Record{ID: f.NewPerson.ID, Doc: f.NewPerson})
		if err != nil {
			return plan{}, err
		}
		addr, err := toMap(f.NewPerson.Address)
		if err != nil {
			return plan{}, err
		}
		order := map[string]interface{}{
			"_key":             f.NewOrderID,
			"person":           f.NewPerson.ID,
			"product":          f.OrderProduct.ID,
			"quantity":         1,
			"shipping_address": addr,
			"payment_method":   "PayPal",
			"order_status":     "pending",
		}
		return plan{
			write: []string{"person", "order", "product", personToOrder, productToOrder},
			statements: []statement{
				{insertDoc, map[string]interface{}{"doc": person, "@collection": "person"}},
				{insertOrder, map[string]interface{}{"order": order, "product": f.OrderProduct.ID}},
				edge(personToOrder, "person", f.NewPerson.ID, "order", f.NewOrderID),
				edge(productToOrder, "product", f.OrderProduct.ID, "order", f.NewOrderID),
				{decrementQuantity, map[string]interface{}{"product": f.OrderProduct.ID}},
			},
		}, nil

	case catalogue.Q12:
		artist, err := document(backend.Record{ID: f.NewArtist.ID, Doc: f.NewArtist})
		if err != nil {
			return plan{}, err
		}
		product, err := document(backend.Record{ID: f.NewProduct.ID, Doc: f.NewProduct})
		if err != nil {
			return plan{}, err
		}
		return plan{
			write: []string{"artist", "product", artistToProduct},
			statements: []statement{
				{insertDoc, map[string]interface{}{"doc": artist, "@collection": "artist"}},
				{insertProduct, map[string]interface{}{"doc": product}},
				edge(artistToProduct, "artist", f.NewArtist.ID, "product", f.NewProduct.ID),
			},
		}, nil
	}

	return plan{}, backend.Unsupported(connection.DatabaseTypeArangoDB, q)
}

func readPlan(query string, bindVars map[string]interface{}) plan {
	return plan{statements: []statement{{query, bindVars}}, read: true}
}

func writePlan(query string, bindVars map[string]interface{}) plan {
	return plan{statements: []statement{{query, bindVars}}}
}

func edge(collection, fromCol, fromKey, toCol, toKey string) statement {
	return statement{insertEdge, map[string]interface{}{
		"@collection": collection,
		"from":        fromCol + "/" + fromKey,
		"to":          toCol + "/" + toKey,
	}}
}

// document converts a record to an ArangoDB document keyed by its id.
func document(r backend.Record) (map[string]interface{}, error) {
	doc, err := toMap(r.Doc)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	doc["_key"] = r.ID
	return doc, nil
}

func toMap(v any) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// edgesOf returns the edges created alongside products and orders,
// keyed by edge collection.
func edgesOf(records []backend.Record) map[string][]map[string]interface{} {
	edges := make(map[string][]map[string]interface{})
	add := func(col, from, to string) {
		edges[col] = append(edges[col], map[string]interface{}{"_from": from, "_to": to})
	}

	for _, r := range records {
		switch doc := r.Doc.(type) {
		case dataset.Product:
			add(artistToProduct, "artist/"+doc.Artist, "product/"+doc.ID)
		case dataset.Order:
			add(personToOrder, "person/"+doc.Person, "order/"+doc.ID)
			add(productToOrder, "product/"+doc.Product, "order/"+doc.ID)
		}
	}
	return edges
}
