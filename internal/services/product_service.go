package services

import (
	"errors"
	"log"
	"strconv"

	"kedai/internal/envelope"
	"kedai/internal/models"
	"kedai/internal/query"
	"kedai/internal/repositories"
	"kedai/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
)

// ProductService handles business logic related to products. Every operation
// returns either a Success envelope or an envelope Error; no raw values or
// unclassified failures cross this boundary.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client // nil disables catalog events
	pageSize int
}

// NewProductService creates a new ProductService. pageSize is the default
// list page size; <= 0 falls back to the normalizer's default.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client, pageSize int) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
		pageSize: pageSize,
	}
}

// ListProducts normalizes the raw query parameters and fetches the matching
// page, or a uniform random sample when random=true.
func (s *ProductService) ListProducts(rawQuery map[string]string) (*envelope.Success, error) {
	filter, opts := query.Normalize(rawQuery, s.pageSize)

	var (
		products []models.Product
		err      error
	)
	if opts.Random {
		products, err = s.repo.SampleRandom(filter, opts.Limit)
	} else {
		products, err = s.repo.FindMany(filter, opts)
	}
	if err != nil {
		return nil, envelope.NewError(envelope.CodeProductsFetchError, fiber.StatusInternalServerError,
			"could not retrieve products").WithDetails(err.Error())
	}

	return envelope.OK(envelope.CodeProductsFetched, fiber.StatusOK, "products retrieved successfully", products), nil
}

// GetProduct looks a product up by its numeric id. A non-numeric id is
// treated as a lookup miss, not a format error.
func (s *ProductService) GetProduct(id string) (*envelope.Success, error) {
	if id == "" {
		return nil, envelope.NewError(envelope.CodeMissingProductID, fiber.StatusBadRequest, "product id is required")
	}
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, productNotFound(id)
	}

	product, err := s.repo.FindByID(numericID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, envelope.NewError(envelope.CodeProductFetchError, fiber.StatusInternalServerError,
			"could not retrieve product").WithDetails(err.Error())
	}

	return envelope.OK(envelope.CodeProductFetched, fiber.StatusOK, "product retrieved successfully", product), nil
}

// CreateProduct persists a new product. The id is assigned by the repository
// as max existing + 1 atomically with the insert. A schema-validation failure
// currently surfaces as PRODUCT_CREATE_ERROR (500), indistinguishable from an
// infrastructure failure.
func (s *ProductService) CreateProduct(product *models.Product) (*envelope.Success, error) {
	if product == nil {
		return nil, envelope.NewError(envelope.CodeMissingProductData, fiber.StatusBadRequest, "product data is required")
	}

	if err := s.repo.Create(product); err != nil {
		return nil, envelope.NewError(envelope.CodeProductCreateError, fiber.StatusInternalServerError,
			"could not create product").WithDetails(err.Error())
	}

	s.publishEvent("product.created", product)
	return envelope.OK(envelope.CodeProductCreated, fiber.StatusCreated, "product created successfully", product), nil
}

// UpdateProduct merges the patch onto the stored record, field by field, and
// persists the result.
func (s *ProductService) UpdateProduct(id string, patch *models.ProductPatch) (*envelope.Success, error) {
	if id == "" {
		return nil, envelope.NewError(envelope.CodeMissingProductID, fiber.StatusBadRequest, "product id is required")
	}
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, envelope.NewError(envelope.CodeInvalidProductID, fiber.StatusBadRequest, "product id must be numeric")
	}
	if patch == nil || patch.IsEmpty() {
		return nil, envelope.NewError(envelope.CodeMissingUpdateData, fiber.StatusBadRequest, "update data is required")
	}

	product, err := s.repo.FindByID(numericID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, envelope.NewError(envelope.CodeProductUpdateError, fiber.StatusInternalServerError,
			"could not update product").WithDetails(err.Error())
	}

	patch.ApplyTo(product)
	if err := s.repo.Update(product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, envelope.NewError(envelope.CodeProductUpdateError, fiber.StatusInternalServerError,
			"could not update product").WithDetails(err.Error())
	}

	s.publishEvent("product.updated", product)
	return envelope.OK(envelope.CodeProductUpdated, fiber.StatusOK, "product updated successfully", product), nil
}

// DeleteProduct removes a product and returns the removed record.
func (s *ProductService) DeleteProduct(id string) (*envelope.Success, error) {
	if id == "" {
		return nil, envelope.NewError(envelope.CodeMissingProductID, fiber.StatusBadRequest, "product id is required")
	}
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, envelope.NewError(envelope.CodeInvalidProductID, fiber.StatusBadRequest, "product id must be numeric")
	}

	deleted, err := s.repo.Delete(numericID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, envelope.NewError(envelope.CodeProductDeleteError, fiber.StatusInternalServerError,
			"could not delete product").WithDetails(err.Error())
	}

	s.publishEvent("product.deleted", deleted)
	return envelope.OK(envelope.CodeProductDeleted, fiber.StatusOK, "product deleted successfully", deleted), nil
}

// publishEvent emits a catalog event. Events are best-effort: failures are
// logged and never surfaced to the caller.
func (s *ProductService) publishEvent(event string, product *models.Product) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishCatalogEvent(event, product); err != nil {
		log.Printf("Failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}

func productNotFound(id string) *envelope.Error {
	return envelope.NewError(envelope.CodeProductNotFound, fiber.StatusNotFound, "product with id "+id+" not found")
}
