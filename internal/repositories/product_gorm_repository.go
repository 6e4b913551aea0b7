package repositories

import (
	"errors"
	"fmt"

	"kedai/internal/models"
	"kedai/internal/query"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindMany retrieves the products matching the filter, paginated and sorted
// per the options.
func (r *GORMProductRepository) FindMany(filter query.Filter, opts query.Options) ([]models.Product, error) {
	products := []models.Product{}
	tx := filter.Apply(r.db.Model(&models.Product{}))
	if err := opts.Apply(tx).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SampleRandom returns up to size products drawn uniformly at random from the
// filtered set, ignoring pagination and sort.
func (r *GORMProductRepository) SampleRandom(filter query.Filter, size int) ([]models.Product, error) {
	products := []models.Product{}
	tx := filter.Apply(r.db.Model(&models.Product{}))
	if err := tx.Order("RANDOM()").Limit(size).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to sample products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product by its numeric id.
func (r *GORMProductRepository) FindByID(id int) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// Create validates the product and inserts it with id = max existing + 1.
// The id is assigned inside the insert transaction; a residual collision
// under concurrency hits the unique primary key and fails loudly.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("product validation failed: %w", err)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxID int
		if err := tx.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return fmt.Errorf("failed to compute next product id: %w", err)
		}
		product.ID = maxID + 1
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
}

// Update validates and persists an already-merged product record.
func (r *GORMProductRepository) Update(product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("product validation failed: %w", err)
	}
	res := r.db.Save(product) // Save overwrites all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product by id and returns the removed record.
func (r *GORMProductRepository) Delete(id int) (*models.Product, error) {
	var deleted models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get product %d: %w", id, err)
		}
		if err := tx.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete product %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// MaxID returns the highest assigned product id, 0 when the store is empty.
func (r *GORMProductRepository) MaxID() (int, error) {
	var maxID int
	if err := r.db.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("failed to compute max product id: %w", err)
	}
	return maxID, nil
}
