package dataset

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Per-table seed offsets keep each table's stream independent of the
// others' sizes.
const (
	personSeed  = 10
	artistSeed  = 20
	productSeed = 30
	orderSeed   = 40
	reviewSeed  = 50
)

var (
	yearStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd   = time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
)

// fakerReader adapts a faker to io.Reader for uuid generation.
type fakerReader struct {
	f *gofakeit.Faker
}

func (r fakerReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.f.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// IDs returns n deterministic version 4 UUIDs for seed.
func IDs(n int, seed uint64) ([]string, error) {
	r := fakerReader{f: gofakeit.New(seed)}
	out := make([]string, n)
	for i := range out {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("generate uuid: %w", err)
		}
		out[i] = id.String()
	}
	return out, nil
}

// Generator builds datasets from a base seed.
type Generator struct {
	seed  uint64
	sizes Sizes
}

// NewGenerator creates a generator for the given sizes.
func NewGenerator(sizes Sizes, seed uint64) (*Generator, error) {
	if err := sizes.Validate(); err != nil {
		return nil, err
	}
	return &Generator{seed: seed, sizes: sizes}, nil
}

// Generate builds the full dataset. The same seed and sizes always
// produce the same records.
func (g *Generator) Generate() (*Dataset, error) {
	persons, err := g.persons()
	if err != nil {
		return nil, err
	}
	artists, err := g.artists()
	if err != nil {
		return nil, err
	}
	products, err := g.products(artists)
	if err != nil {
		return nil, err
	}
	orders, err := g.orders(persons, products)
	if err != nil {
		return nil, err
	}
	reviews, err := g.reviews(persons, products, artists)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Persons:  persons,
		Artists:  artists,
		Products: products,
		Orders:   orders,
		Reviews:  reviews,
	}, nil
}

func (g *Generator) faker(offset uint64) *gofakeit.Faker {
	return gofakeit.New(g.seed + offset)
}

func (g *Generator) persons() ([]Person, error) {
	ids, err := IDs(g.sizes.Person, g.seed+personSeed)
	if err != nil {
		return nil, err
	}
	f := g.faker(personSeed)
	out := make([]Person, len(ids))
	for i, id := range ids {
		out[i] = newPerson(f, id, 0.1)
	}
	return out, nil
}

func (g *Generator) artists() ([]Artist, error) {
	ids, err := IDs(g.sizes.Artist, g.seed+artistSeed)
	if err != nil {
		return nil, err
	}
	f := g.faker(artistSeed)
	out := make([]Artist, len(ids))
	for i, id := range ids {
		out[i] = Artist(newPerson(f, id, 0.5))
	}
	return out, nil
}

func newPerson(f *gofakeit.Faker, id string, companyChance float64) Person {
	first := f.FirstName()
	last := f.LastName()
	var company *string
	if f.Float64() < companyChance {
		c := f.Company()
		company = &c
	}
	return Person{
		ID:          id,
		FirstName:   first,
		LastName:    last,
		Name:        first + " " + last,
		CompanyName: company,
		Email:       f.Email(),
		Phone:       f.Phone(),
		Address:     newAddress(f),
	}
}

func newAddress(f *gofakeit.Faker) Address {
	var line2 *string
	if f.Float64() < 0.1 {
		l := f.RandomString([]string{"apt. 10", "Suite. 23"})
		line2 = &l
	}
	return Address{
		AddressLine1: f.Street(),
		AddressLine2: line2,
		City:         f.City(),
		Country:      f.RandomString(Countries),
		PostCode:     f.Zip(),
		Coordinates:  [2]float64{f.Latitude(), f.Longitude()},
	}
}

func words(f *gofakeit.Faker, n int) string {
	ws := make([]string, n)
	for i := range ws {
		ws[i] = f.Word()
	}
	return strings.Join(ws, " ")
}

func (g *Generator) products(artists []Artist) ([]Product, error) {
	ids, err := IDs(g.sizes.Product, g.seed+productSeed)
	if err != nil {
		return nil, err
	}
	f := g.faker(productSeed)
	out := make([]Product, len(ids))
	for i, id := range ids {
		var discount *float64
		if f.Float64() < 0.2 {
			d := float64(f.Number(2, 8)) / 10
			discount = &d
		}
		quantity := f.Number(1, 20)
		category := f.RandomString(ProductCategories)
		out[i] = Product{
			ID:          id,
			Name:        words(f, 2),
			Description: words(f, f.Number(8, 25)),
			Category:    category,
			Price:       f.Price(500, 25000),
			Currency:    "£",
			Discount:    discount,
			Quantity:    f.Number(0, 20),
			ImageURL:    "https://source.unsplash.com/1920x1080?" + strings.ReplaceAll(category, " ", "-"),
			Artist:      artists[f.Number(0, len(artists)-1)].ID,
			CreationHistory: CreationHistory{
				CreatedAt: f.DateRange(yearStart, yearEnd).UTC(),
				Quantity:  quantity,
			},
		}
	}
	return out, nil
}

func (g *Generator) orders(persons []Person, products []Product) ([]Order, error) {
	ids, err := IDs(g.sizes.Order, g.seed+orderSeed)
	if err != nil {
		return nil, err
	}
	f := g.faker(orderSeed)
	out := make([]Order, len(ids))
	for i, id := range ids {
		person := persons[f.Number(0, len(persons)-1)]
		product := products[f.Number(0, len(products)-1)]
		var status *string
		if f.Float64() >= 0.1 {
			s := f.RandomString(OrderStatuses)
			status = &s
		}
		out[i] = Order{
			ID:              id,
			Person:          person.ID,
			Product:         product.ID,
			ProductName:     product.Name,
			Currency:        product.Currency,
			Discount:        product.Discount,
			Price:           product.Price,
			Quantity:        f.Number(1, 3),
			OrderDate:       f.DateRange(yearStart, yearEnd).UTC(),
			ShippingAddress: person.Address,
			PaymentMethod:   f.RandomString(PaymentMethods),
			OrderStatus:     status,
		}
	}
	return out, nil
}

func (g *Generator) reviews(persons []Person, products []Product, artists []Artist) ([]Review, error) {
	ids, err := IDs(g.sizes.Review, g.seed+reviewSeed)
	if err != nil {
		return nil, err
	}
	f := g.faker(reviewSeed)
	out := make([]Review, len(ids))
	for i, id := range ids {
		out[i] = Review{
			ID:         id,
			Person:     persons[f.Number(0, len(persons)-1)].ID,
			Product:    products[f.Number(0, len(products)-1)].ID,
			Artist:     artists[f.Number(0, len(artists)-1)].ID,
			Rating:     f.Number(1, 5),
			ReviewText: words(f, f.Number(8, 50)),
			ReviewDate: f.DateRange(yearStart, yearEnd).UTC(),
		}
	}
	return out, nil
}
