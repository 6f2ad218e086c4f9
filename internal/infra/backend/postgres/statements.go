package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

var indexes = map[catalogue.QueryID]string{
	catalogue.Q4Index:  `CREATE INDEX person_country ON person ((data->'address'->>'country'))`,
	catalogue.Q5Index:  `CREATE INDEX order_count ON "order" ((data->>'order_status'), (data->>'order_date'))`,
	catalogue.Q8Index:  `CREATE INDEX product_category ON product ((data->>'category'))`,
	catalogue.Q10Index: `CREATE INDEX product_price ON product (((data->>'price')::numeric))`,
}

var reads = map[catalogue.QueryID]string{
	catalogue.Q1: `SELECT r.data->'rating', r.data->>'review_text', r.data->>'review_date',
		p.data->>'name', p.data->>'email', p.data->>'phone',
		pr.data->>'name', pr.data->>'category', pr.data->>'image_url'
	FROM review r
	LEFT JOIN person p ON p.id = r.data->>'person'
	LEFT JOIN product pr ON pr.id = r.data->>'product'`,
	catalogue.Q2: `SELECT o.data->'price', o.data->>'order_date', o.data->>'product_name',
		p.data->>'name', p.data->>'email', p.data->>'phone',
		pr.data->>'category', pr.data->>'description', pr.data->>'image_url'
	FROM "order" o
	LEFT JOIN person p ON p.id = o.data->>'person'
	LEFT JOIN product pr ON pr.id = o.data->>'product'`,
	catalogue.Q3: `SELECT o.data->'price', o.data->>'order_date', o.data->>'product_name',
		pr.data->>'category', pr.data->>'description', pr.data->>'image_url',
		a.data->>'name', a.data->>'email', a.data->>'phone'
	FROM "order" o
	LEFT JOIN product pr ON pr.id = o.data->>'product'
	LEFT JOIN artist a ON a.id = pr.data->>'artist'`,
	catalogue.Q4: `SELECT data->>'name', data->>'email' FROM person
	WHERE data->'address'->>'country' = $1`,
	catalogue.Q13: `SELECT data->>'name', data->>'email' FROM person ORDER BY data->>'name'`,
	catalogue.Q5: `SELECT count(*) FROM "order"
	WHERE data->>'order_status' = ANY($1)
	AND (data->>'order_date')::timestamptz < $2`,
	catalogue.Q6: `SELECT count(*) FROM "order" o
	JOIN product pr ON pr.id = o.data->>'product'
	JOIN artist a ON a.id = pr.data->>'artist'
	WHERE o.data->>'order_status' = ANY($1)
	AND (o.data->>'order_date')::timestamptz < $2
	AND a.data->'address'->>'country' = $3`,
}

const (
	updateAddress = `UPDATE person SET data = jsonb_set(data, '{address}', $1::jsonb) WHERE id = $2`

	updateDiscount = `UPDATE product SET data = jsonb_set(data, '{discount}', to_jsonb($1::numeric))
	WHERE (data->>'price')::numeric < $2`

	deleteReview = `DELETE FROM review WHERE id = $1`

	deleteByCategory = `DELETE FROM review WHERE data->>'product' IN (SELECT id FROM product WHERE data->>'category' = $1)`

	insertDocument = `INSERT INTO %s (id, data) VALUES ($1, $2::jsonb)`

	insertOrderFromProduct = `INSERT INTO "order" (id, data)
	SELECT $1, jsonb_build_object(
		'person', $2::text,
		'product', p.id,
		'product_name', p.data->'name',
		'currency', p.data->'currency',
		'discount', p.data->'discount',
		'price', p.data->'price',
		'quantity', 1,
		'order_date', now(),
		'shipping_address', $3::jsonb,
		'payment_method', 'PayPal',
		'order_status', 'pending')
	FROM product p WHERE p.id = $4`

	decrementQuantity = `UPDATE product
	SET data = jsonb_set(data, '{quantity}', to_jsonb((data->>'quantity')::int - 1))
	WHERE id = $1`
)

// statements returns the SQL of every non-insert operation.
func statements(q catalogue.Query, w *backend.Workload) ([]statement, error) {
	if sql, ok := indexes[q.ID]; ok {
		return []statement{{query: sql}}, nil
	}
	if sql, ok := reads[q.ID]; ok {
		return []statement{{query: sql, args: readArgs(q.ID)}}, nil
	}

	switch q.ID {
	case catalogue.Q10:
		return []statement{{query: updateDiscount, args: []any{backend.Discount, backend.DiscountBelow}}}, nil
	case catalogue.Q8:
		return []statement{{query: deleteByCategory, args: []any{backend.DeleteCategory}}}, nil
	}

	if w == nil || w.Fixtures == nil {
		return nil, fmt.Errorf("%s: workload has no fixtures", q.ID)
	}
	f := w.Fixtures

	switch q.ID {
	case catalogue.Q9:
		addr, err := json.Marshal(f.UpdatedAddress)
		if err != nil {
			return nil, err
		}
		return []statement{{query: updateAddress, args: []any{string(addr), f.UpdatePersonID}}}, nil

	case catalogue.Q7:
		return []statement{{query: deleteReview, args: []any{f.DeleteReviewID}}}, nil

	case catalogue.Q11:
		person, err := json.Marshal(f.NewPerson)
		if err != nil {
			return nil, err
		}
		addr, err := json.Marshal(f.NewPerson.Address)
		if err != nil {
			return nil, err
		}
		return []statement{
			{query: fmt.Sprintf(insertDocument, "person"), args: []any{f.NewPerson.ID, string(person)}},
			{query: insertOrderFromProduct, args: []any{f.NewOrderID, f.NewPerson.ID, string(addr), f.OrderProduct.ID}},
			{query: decrementQuantity, args: []any{f.OrderProduct.ID}},
		}, nil

	case catalogue.Q12:
		artist, err := json.Marshal(f.NewArtist)
		if err != nil {
			return nil, err
		}
		product, err := json.Marshal(f.NewProduct)
		if err != nil {
			return nil, err
		}
		return []statement{
			{query: fmt.Sprintf(insertDocument, "artist"), args: []any{f.NewArtist.ID, string(artist)}},
			{query: fmt.Sprintf(insertDocument, "product"), args: []any{f.NewProduct.ID, string(product)}},
		}, nil
	}

	return nil, backend.Unsupported(connection.DatabaseTypePostgreSQL, q)
}

func readArgs(id catalogue.QueryID) []any {
	switch id {
	case catalogue.Q4:
		return []any{backend.FilterCountry}
	case catalogue.Q5:
		return []any{pq.Array(backend.CountStatuses), backend.CountBefore}
	case catalogue.Q6:
		return []any{pq.Array(backend.CountStatuses), backend.CountBefore, backend.FilterCountry}
	default:
		return nil
	}
}
