package dataset

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

// Fixture seeds pick the records single-row statements target.
const (
	updatePersonSeed = 10
	deleteReviewSeed = 50
	newRecordSeed    = 60
)

// Fixtures are the bound parameters of the single-row and transactional
// statements. They are derived from a dataset, so every backend receives
// the same values.
type Fixtures struct {
	// UpdatePersonID is the person whose address Q9 replaces.
	UpdatePersonID string
	// UpdatedAddress is the address Q9 writes.
	UpdatedAddress Address
	// DeleteReviewID is the review Q7 removes.
	DeleteReviewID string
	// NewPerson is the customer Q11 creates.
	NewPerson Person
	// NewOrderID is the order Q11 relates.
	NewOrderID string
	// OrderProduct is the product Q11 orders.
	OrderProduct Product
	// NewArtist and NewProduct are created by Q12.
	NewArtist  Artist
	NewProduct Product
}

// NewFixtures derives the statement parameters from d.
func NewFixtures(d *Dataset, seed uint64) (*Fixtures, error) {
	if len(d.Persons) == 0 || len(d.Reviews) == 0 || len(d.Products) == 0 {
		return nil, fmt.Errorf("dataset must contain persons, reviews and products")
	}

	person := pick(len(d.Persons), seed+updatePersonSeed)
	review := pick(len(d.Reviews), seed+deleteReviewSeed)
	product := pick(len(d.Products), seed+newRecordSeed)

	ids, err := IDs(4, seed+newRecordSeed)
	if err != nil {
		return nil, err
	}

	artistCompany := "Atkins(ws) (ATK)"
	return &Fixtures{
		UpdatePersonID: d.Persons[person].ID,
		UpdatedAddress: Address{
			AddressLine1: "497 Ballycander",
			City:         "Bromyard",
			Country:      "Wales",
			PostCode:     "ZX8N 4VJ",
			Coordinates:  [2]float64{68.772592, -35.491877},
		},
		DeleteReviewID: d.Reviews[review].ID,
		NewPerson: Person{
			ID:        ids[0],
			FirstName: "Karyl",
			LastName:  "Langley",
			Name:      "Karyl Langley",
			Email:     "dee1961@gmail.com",
			Phone:     "+44 47 3516 5895",
			Address: Address{
				AddressLine1: "510 Henalta",
				City:         "Lyme Regis",
				Country:      "Northern Ireland",
				PostCode:     "TO6Q 8CM",
				Coordinates:  [2]float64{-34.345071, 118.564172},
			},
		},
		NewOrderID:   ids[1],
		OrderProduct: d.Products[product],
		NewArtist: Artist{
			ID:          ids[2],
			FirstName:   "Anderson",
			LastName:    "West",
			Name:        "Anderson West",
			CompanyName: &artistCompany,
			Email:       "six1933@gmail.com",
			Phone:       "056 5881 1126",
			Address: Address{
				AddressLine1: "639 Connaugh",
				City:         "Ripon",
				Country:      "Scotland",
				PostCode:     "CG3U 4TH",
				Coordinates:  [2]float64{4.273648, -112.907273},
			},
		},
		NewProduct: Product{
			ID:          ids[3],
			Name:        "managed edt allocated pda",
			Description: "counseling greek pan works interest xhtml wrong available specific next tower webcam peace magic",
			Category:    "watercolor",
			Price:       15735.96,
			Currency:    "£",
			Quantity:    1,
			ImageURL:    "https://source.unsplash.com/1920x1080?watercolor",
			Artist:      ids[2],
			CreationHistory: CreationHistory{
				Quantity: 1,
			},
		},
	}, nil
}

// pick returns a deterministic index in [0, n).
func pick(n int, seed uint64) int {
	return gofakeit.New(seed).Number(0, n-1)
}
