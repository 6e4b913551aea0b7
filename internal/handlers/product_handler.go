package handlers

import (
	"log"

	"kedai/internal/envelope"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Reads are
// public; the write routes run behind the given guard handlers.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, writeGuards ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/:id", h.HandleGet)

	writeRoutes := productRoutes.Group("", writeGuards...)
	writeRoutes.Post("/", h.HandleCreate)
	writeRoutes.Put("/:id", h.HandleUpdate)
	writeRoutes.Delete("/:id", h.HandleDelete)
}

// HandleList retrieves products matching the raw query parameters. The
// service normalizes them; unrecognized or malformed parameters are ignored.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	success, err := h.service.ListProducts(c.Queries())
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return respondError(c, err)
	}
	return respond(c, success)
}

// HandleGet retrieves a single product by its id.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	success, err := h.service.GetProduct(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, success)
}

// HandleCreate creates a new product from the request body.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return respondError(c, envelope.NewError(envelope.CodeMissingProductData, fiber.StatusBadRequest,
			"product data is required"))
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product body: %v", err)
		return respondError(c, envelope.NewError(envelope.CodeMissingProductData, fiber.StatusBadRequest,
			"product data is required").WithDetails(err.Error()))
	}

	success, err := h.service.CreateProduct(&product)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err)
	}
	return respond(c, success)
}

// HandleUpdate applies a partial update to an existing product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&patch); err != nil {
			log.Printf("Error parsing product patch: %v", err)
			return respondError(c, envelope.NewError(envelope.CodeMissingUpdateData, fiber.StatusBadRequest,
				"update data is required").WithDetails(err.Error()))
		}
	}

	success, err := h.service.UpdateProduct(c.Params("id"), &patch)
	if err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respond(c, success)
}

// HandleDelete removes a product and returns the removed record.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	success, err := h.service.DeleteProduct(c.Params("id"))
	if err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respond(c, success)
}
