package handlers

import (
	"kedai/internal/envelope"

	"github.com/gofiber/fiber/v2"
)

// respond renders a Success envelope with its own status code.
func respond(c *fiber.Ctx, s *envelope.Success) error {
	return c.Status(s.StatusCode).JSON(s)
}

// respondError renders a classified error envelope; anything unclassified
// becomes a generic 500 with no internal detail leaked.
func respondError(c *fiber.Ctx, err error) error {
	e := envelope.AsError(err)
	return c.Status(e.StatusCode).JSON(e)
}
