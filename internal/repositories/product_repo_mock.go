package repositories

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"kedai/internal/models"
	"kedai/internal/query"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It backs the dev mode (no database configured) and repository-contract
// tests.
type MockProductRepository struct {
	products map[int]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[int]models.Product),
	}
}

// FindMany returns the matching products, sorted and paginated per the
// options. Natural order is ascending id, the closest analogue of insertion
// order for a map-backed store.
func (r *MockProductRepository) FindMany(filter query.Filter, opts query.Options) ([]models.Product, error) {
	r.mu.RLock()
	matched := r.match(filter)
	r.mu.RUnlock()

	sortProducts(matched, opts.Sort, opts.SortDesc)

	if opts.Skip >= len(matched) {
		return []models.Product{}, nil
	}
	matched = matched[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// SampleRandom draws up to size products uniformly at random from the
// filtered set.
func (r *MockProductRepository) SampleRandom(filter query.Filter, size int) ([]models.Product, error) {
	r.mu.RLock()
	matched := r.match(filter)
	r.mu.RUnlock()

	rand.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})
	if size > 0 && size < len(matched) {
		matched = matched[:size]
	}
	return matched, nil
}

// FindByID returns a product by its id.
func (r *MockProductRepository) FindByID(id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// Create validates the product and inserts it under id = max existing + 1.
// The whole assignment runs under the write lock, so ids never collide.
func (r *MockProductRepository) Create(product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("product validation failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	maxID := 0
	for id := range r.products {
		if id > maxID {
			maxID = id
		}
	}
	product.ID = maxID + 1
	r.products[product.ID] = *product
	return nil
}

// Update validates and overwrites an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("product validation failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its id and returns the removed record.
func (r *MockProductRepository) Delete(id int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.products, id)
	return &product, nil
}

// MaxID returns the highest assigned id, 0 when empty.
func (r *MockProductRepository) MaxID() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	maxID := 0
	for id := range r.products {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

// match collects the products satisfying the filter. Caller holds the lock.
func (r *MockProductRepository) match(filter query.Filter) []models.Product {
	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(&p, filter) {
			matched = append(matched, p)
		}
	}
	return matched
}

func matchesFilter(p *models.Product, f query.Filter) bool {
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.SubCategory != nil && p.SubCategory != *f.SubCategory {
		return false
	}
	if f.IsFeatured != nil && (p.IsFeatured == nil || *p.IsFeatured != *f.IsFeatured) {
		return false
	}
	if f.IsFlash != nil && (p.IsFlash == nil || *p.IsFlash != *f.IsFlash) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// sortProducts orders a slice by a canonical sortable field name. Unknown or
// empty fields fall back to ascending id.
func sortProducts(products []models.Product, field string, desc bool) {
	less := func(a, b *models.Product) bool { return a.ID < b.ID }
	switch field {
	case "title":
		less = func(a, b *models.Product) bool { return a.Title < b.Title }
	case "price":
		less = func(a, b *models.Product) bool { return a.Price < b.Price }
	case "discountPrice":
		less = func(a, b *models.Product) bool {
			av, bv := 0.0, 0.0
			if a.DiscountPrice != nil {
				av = *a.DiscountPrice
			}
			if b.DiscountPrice != nil {
				bv = *b.DiscountPrice
			}
			return av < bv
		}
	case "ratingCount":
		less = func(a, b *models.Product) bool { return a.RatingCount < b.RatingCount }
	case "avgRate":
		less = func(a, b *models.Product) bool { return a.AvgRate < b.AvgRate }
	case "createdAt":
		less = func(a, b *models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(&products[j], &products[i])
		}
		return less(&products[i], &products[j])
	})
}
