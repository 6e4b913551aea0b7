package repositories

import (
	"errors"

	"kedai/internal/models"
	"kedai/internal/query"
)

// ErrNotFound is returned by every repository when a lookup misses.
var ErrNotFound = errors.New("record not found")

// ProductRepository defines the interface for product data access.
//
// Create assigns the next id (max existing + 1) atomically with the insert,
// so concurrent creations either serialize or fail loudly on the unique
// primary key instead of silently colliding. Ids are not reused after
// deletion while the store is non-empty.
type ProductRepository interface {
	FindMany(filter query.Filter, opts query.Options) ([]models.Product, error)
	SampleRandom(filter query.Filter, size int) ([]models.Product, error)
	FindByID(id int) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id int) (*models.Product, error)
	MaxID() (int, error)
}
