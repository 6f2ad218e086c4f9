// Package dataset provides the synthetic e-commerce records loaded into
// every backend before a run: people, artists, products, orders and reviews.
package dataset

import (
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
)

// Countries are the address countries records are drawn from.
var Countries = []string{"England", "Scotland", "Wales", "Northern Ireland"}

// ProductCategories are the product categories records are drawn from.
var ProductCategories = []string{
	"oil paint", "watercolor", "acrylic paint", "charcoal", "pencil",
	"ink", "pastel", "collage", "digital art", "mixed media",
}

// PaymentMethods are the order payment methods.
var PaymentMethods = []string{"credit card", "debit card", "PayPal"}

// OrderStatuses are the non-null order statuses.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered"}

// Address is a postal address with coordinates.
type Address struct {
	AddressLine1 string     `json:"address_line_1" bson:"address_line_1"`
	AddressLine2 *string    `json:"address_line_2" bson:"address_line_2"`
	City         string     `json:"city" bson:"city"`
	Country      string     `json:"country" bson:"country"`
	PostCode     string     `json:"post_code" bson:"post_code"`
	Coordinates  [2]float64 `json:"coordinates" bson:"coordinates"`
}

// Person is a customer.
type Person struct {
	ID          string  `json:"id" bson:"_id"`
	FirstName   string  `json:"first_name" bson:"first_name"`
	LastName    string  `json:"last_name" bson:"last_name"`
	Name        string  `json:"name" bson:"name"`
	CompanyName *string `json:"company_name" bson:"company_name"`
	Email       string  `json:"email" bson:"email"`
	Phone       string  `json:"phone" bson:"phone"`
	Address     Address `json:"address" bson:"address"`
}

// Artist creates products. Artists share the person shape.
type Artist Person

// CreationHistory records when a product was listed and in what quantity.
type CreationHistory struct {
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Quantity  int       `json:"quantity" bson:"quantity"`
}

// Product is an artwork for sale.
type Product struct {
	ID              string          `json:"id" bson:"_id"`
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description" bson:"description"`
	Category        string          `json:"category" bson:"category"`
	Price           float64         `json:"price" bson:"price"`
	Currency        string          `json:"currency" bson:"currency"`
	Discount        *float64        `json:"discount" bson:"discount"`
	Quantity        int             `json:"quantity" bson:"quantity"`
	ImageURL        string          `json:"image_url" bson:"image_url"`
	Artist          string          `json:"artist" bson:"artist"`
	CreationHistory CreationHistory `json:"creation_history" bson:"creation_history"`
}

// Order relates a person to a product.
type Order struct {
	ID              string    `json:"id" bson:"_id"`
	Person          string    `json:"person" bson:"person"`
	Product         string    `json:"product" bson:"product"`
	ProductName     string    `json:"product_name" bson:"product_name"`
	Currency        string    `json:"currency" bson:"currency"`
	Discount        *float64  `json:"discount" bson:"discount"`
	Price           float64   `json:"price" bson:"price"`
	Quantity        int       `json:"quantity" bson:"quantity"`
	OrderDate       time.Time `json:"order_date" bson:"order_date"`
	ShippingAddress Address   `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   string    `json:"payment_method" bson:"payment_method"`
	OrderStatus     *string   `json:"order_status" bson:"order_status"`
}

// Review is a person's rating of a product.
type Review struct {
	ID         string    `json:"id" bson:"_id"`
	Person     string    `json:"person" bson:"person"`
	Product    string    `json:"product" bson:"product"`
	Artist     string    `json:"artist" bson:"artist"`
	Rating     int       `json:"rating" bson:"rating"`
	ReviewText string    `json:"review_text" bson:"review_text"`
	ReviewDate time.Time `json:"review_date" bson:"review_date"`
}

// Sizes is the number of records per table.
type Sizes struct {
	Person  int `json:"person" mapstructure:"person"`
	Artist  int `json:"artist" mapstructure:"artist"`
	Product int `json:"product" mapstructure:"product"`
	Order   int `json:"order" mapstructure:"order"`
	Review  int `json:"review" mapstructure:"review"`
}

// DefaultSizes returns the standard table sizes.
func DefaultSizes() Sizes {
	return Sizes{Person: 1000, Artist: 500, Product: 1000, Order: 10000, Review: 2000}
}

// Of returns the size of one table.
func (s Sizes) Of(t catalogue.Table) int {
	switch t {
	case catalogue.TablePerson:
		return s.Person
	case catalogue.TableArtist:
		return s.Artist
	case catalogue.TableProduct:
		return s.Product
	case catalogue.TableOrder:
		return s.Order
	case catalogue.TableReview:
		return s.Review
	default:
		return 0
	}
}

// Validate checks every table has at least one record.
func (s Sizes) Validate() error {
	for _, t := range catalogue.Tables {
		if s.Of(t) < 1 {
			return fmt.Errorf("table %s must have at least 1 record", t)
		}
	}
	return nil
}

// Dataset is one generated set of records.
type Dataset struct {
	Persons  []Person
	Artists  []Artist
	Products []Product
	Orders   []Order
	Reviews  []Review
}

// Len returns the number of records in table t.
func (d *Dataset) Len(t catalogue.Table) int {
	switch t {
	case catalogue.TablePerson:
		return len(d.Persons)
	case catalogue.TableArtist:
		return len(d.Artists)
	case catalogue.TableProduct:
		return len(d.Products)
	case catalogue.TableOrder:
		return len(d.Orders)
	case catalogue.TableReview:
		return len(d.Reviews)
	default:
		return 0
	}
}

// ProductByID returns the product with id.
func (d *Dataset) ProductByID(id string) (Product, bool) {
	for _, p := range d.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// PersonByID returns the person with id.
func (d *Dataset) PersonByID(id string) (Person, bool) {
	for _, p := range d.Persons {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}
