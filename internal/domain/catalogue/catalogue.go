// Package catalogue defines the fixed benchmark suite: every operation key,
// its category, the order in which a run executes it and the order in
// which a report presents it.
package catalogue

import (
	"errors"
	"fmt"

	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
)

var (
	// ErrUnknownQuery is returned for keys outside the catalogue.
	ErrUnknownQuery = errors.New("unknown query")
)

// QueryID is the persisted key of one timed operation.
type QueryID string

const (
	InsertPerson  QueryID = "insert_person"
	InsertArtist  QueryID = "insert_artist"
	InsertProduct QueryID = "insert_product"
	InsertOrder   QueryID = "insert_order"
	InsertReview  QueryID = "insert_review"

	Q4Index  QueryID = "q4_index"
	Q5Index  QueryID = "q5_index"
	Q8Index  QueryID = "q8_index"
	Q10Index QueryID = "q10_index"

	Q1  QueryID = "q1"
	Q2  QueryID = "q2"
	Q3  QueryID = "q3"
	Q4  QueryID = "q4"
	Q5  QueryID = "q5"
	Q6  QueryID = "q6"
	Q7  QueryID = "q7"
	Q8  QueryID = "q8"
	Q9  QueryID = "q9"
	Q10 QueryID = "q10"
	Q11 QueryID = "q11"
	Q12 QueryID = "q12"
	Q13 QueryID = "q13"
)

// String returns the key.
func (q QueryID) String() string {
	return string(q)
}

// Derived per-run keys.
const (
	TotalReadDuration  = "total_read_duration"
	TotalWriteDuration = "total_write_duration"
	TotalTimeDuration  = "total_time_duration"
	TotalQueriesCount  = "total_queries_count"
	TotalThroughputQPS = "total_throughput_qps"
	WallTimeDuration   = "wall_time_duration"
)

// Category groups operations for per-category durations.
type Category string

const (
	CategoryInsert            Category = "insert"
	CategoryIndex             Category = "index"
	CategoryReadFilter        Category = "read_filter"
	CategoryReadRelationships Category = "read_relationships"
	CategoryReadAggregation   Category = "read_aggregation"
	CategoryUpdate            Category = "update"
	CategoryDelete            Category = "delete"
	CategoryTransactions      Category = "transactions"
)

// CategoryInfo describes the derived keys and report title of a category.
type CategoryInfo struct {
	Category    Category
	Title       string
	DurationKey string
	// CountKey is empty for read sub-categories, which share ReadQueryCountKey.
	CountKey string
	Write    bool
}

// ReadQueryCountKey counts every read sub-category together.
const ReadQueryCountKey = "read_query_count"

// Categories lists every category in execution order.
var Categories = []CategoryInfo{
	{CategoryInsert, "Insert", "insert_duration", "insert_query_count", true},
	{CategoryIndex, "Index", "index_duration", "index_query_count", true},
	{CategoryReadFilter, "Filter and order", "read_filter_duration", "", false},
	{CategoryReadRelationships, "Relationships", "read_relationships_duration", "", false},
	{CategoryReadAggregation, "Aggregation", "read_aggregation_duration", "", false},
	{CategoryUpdate, "Update", "update_duration", "update_query_count", true},
	{CategoryDelete, "Delete", "delete_duration", "delete_query_count", true},
	{CategoryTransactions, "Transaction", "transactions_duration", "transactions_count", true},
}

// CategoryOf returns the info for a category.
func CategoryOf(c Category) (CategoryInfo, bool) {
	for _, info := range Categories {
		if info.Category == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Table names one dataset collection.
type Table string

const (
	TablePerson  Table = "person"
	TableArtist  Table = "artist"
	TableProduct Table = "product"
	TableOrder   Table = "order"
	TableReview  Table = "review"
)

// Tables lists the tables in insert order. Artists precede products,
// which precede orders and reviews.
var Tables = []Table{TablePerson, TableArtist, TableProduct, TableOrder, TableReview}

// Query describes one timed operation.
type Query struct {
	ID       QueryID
	Category Category
	Title    string
	// Description says what the query returns or changes.
	Description string
	// Unit overrides the report unit for this query, empty means the report default.
	Unit percentile.Unit
	Note string
	// Table is set for insert operations.
	Table Table
	// Index names the index created by an index operation.
	Index string
}

// Queries lists every operation in execution order.
var Queries = []Query{
	{ID: InsertPerson, Category: CategoryInsert, Title: "Insert person", Table: TablePerson,
		Description: "Bulk insert of every person record"},
	{ID: InsertArtist, Category: CategoryInsert, Title: "Insert artist", Table: TableArtist,
		Description: "Bulk insert of every artist record"},
	{ID: InsertProduct, Category: CategoryInsert, Title: "Insert product", Table: TableProduct,
		Description: "Bulk insert of every product record, each linked to an artist"},
	{ID: InsertOrder, Category: CategoryInsert, Title: "Insert order", Table: TableOrder,
		Description: "Insert of every order, relating a person to a product"},
	{ID: InsertReview, Category: CategoryInsert, Title: "Insert review", Table: TableReview,
		Description: "Bulk insert of every review record"},

	{ID: Q4Index, Category: CategoryIndex, Title: "Index person_country", Index: "person_country",
		Description: "Index on person address.country"},
	{ID: Q5Index, Category: CategoryIndex, Title: "Index order_count", Index: "order_count",
		Description: "Composite index on order order_status and order_date"},
	{ID: Q8Index, Category: CategoryIndex, Title: "Index product_category", Index: "product_category",
		Description: "Index on review product category"},
	{ID: Q10Index, Category: CategoryIndex, Title: "Index product_price", Index: "product_price",
		Description: "Index on product price"},

	{ID: Q4, Category: CategoryReadFilter, Title: "Q4: Projection with filter",
		Description: "Name and email for all customers in England"},
	{ID: Q13, Category: CategoryReadFilter, Title: "Q13: Projection with order by",
		Description: "Name and email for all customers ordered by name"},

	{ID: Q1, Category: CategoryReadRelationships, Title: "Q1: lookup vs record links",
		Description: "Review fields with the reviewing person and reviewed product"},
	{ID: Q2, Category: CategoryReadRelationships, Title: "Q2: lookup vs graph - one connection",
		Description: "Order fields with the ordering person and ordered product"},
	{ID: Q3, Category: CategoryReadRelationships, Title: "Q3: lookup vs graph (and link) - two connections",
		Description: "Order fields with the product and the product's artist"},

	{ID: Q5, Category: CategoryReadAggregation, Title: "Q5: Count with filter",
		Description: "Count of delivered, processing or shipped orders placed before April 2023"},
	{ID: Q6, Category: CategoryReadAggregation, Title: "Q6: Count with relationship",
		Description: "Q5 restricted to products whose artist lives in England"},

	{ID: Q9, Category: CategoryUpdate, Title: "Update one", Unit: percentile.Microseconds,
		Description: "Q9: Update the address of one customer"},
	{ID: Q10, Category: CategoryUpdate, Title: "Update many",
		Description: "Q10: Set a 20% discount on every product priced under 1000",
		Note:        "Runs after the product_price index has been created."},

	{ID: Q7, Category: CategoryDelete, Title: "Delete one", Unit: percentile.Microseconds,
		Description: "Q7: Delete one review by id"},
	{ID: Q8, Category: CategoryDelete, Title: "Delete many",
		Description: "Q8: Delete every review of a charcoal product",
		Note:        "Runs after the product_category index has been created."},

	{ID: Q11, Category: CategoryTransactions, Title: "Transaction insert & update", Unit: percentile.Microseconds,
		Description: "Q11: A new customer places an order; product quantity is decremented"},
	{ID: Q12, Category: CategoryTransactions, Title: "Transaction insert x 2", Unit: percentile.Microseconds,
		Description: "Q12: A new artist creates their first product"},
}

// ReportOrder lists the per-query report sections in presentation order.
var ReportOrder = []QueryID{
	InsertPerson, InsertArtist, InsertProduct, InsertOrder, InsertReview,
	Q9, Q10, Q7, Q8, Q11, Q12,
	Q4Index, Q5Index, Q8Index, Q10Index,
	Q1, Q2, Q3, Q4, Q13, Q5, Q6,
}

// Lookup returns the query for id.
func Lookup(id QueryID) (Query, error) {
	for _, q := range Queries {
		if q.ID == id {
			return q, nil
		}
	}
	return Query{}, fmt.Errorf("%w: %s", ErrUnknownQuery, id)
}

// ByCategory returns the queries of one category in execution order.
func ByCategory(c Category) []Query {
	var out []Query
	for _, q := range Queries {
		if q.Category == c {
			out = append(out, q)
		}
	}
	return out
}

// ReadQueryCount returns the number of read operations per run.
func ReadQueryCount() int {
	n := 0
	for _, info := range Categories {
		if !info.Write {
			n += len(ByCategory(info.Category))
		}
	}
	return n
}

// TotalQueryCount returns the number of timed operations per run.
func TotalQueryCount() int {
	return len(Queries)
}
