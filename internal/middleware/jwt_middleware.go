package middleware

import (
	"log"
	"strings"

	"kedai/internal/envelope"
	"kedai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie is the cookie the login handler places the token in.
const TokenCookie = "token"

// AuthRequired is a Fiber middleware that checks for a valid token, taken
// from the Authorization header or the token cookie, and stores the claims
// in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Cookies(TokenCookie)
		}
		if tokenString == "" {
			return unauthorized(c, "authentication token is required")
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("Token validation failed: %v", err)
			return unauthorized(c, "invalid or expired token")
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireRole guards a route group behind a role. It must run after
// AuthRequired.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*services.TokenClaims)
		if !ok {
			return unauthorized(c, "authentication token is required")
		}
		if claims.Role != role {
			e := envelope.NewError(envelope.CodeForbidden, fiber.StatusForbidden, "insufficient permissions")
			return c.Status(e.StatusCode).JSON(e)
		}
		return c.Next()
	}
}

// bearerToken extracts the token from a "Bearer <token>" Authorization header.
func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	e := envelope.NewError(envelope.CodeUnauthorized, fiber.StatusUnauthorized, message)
	return c.Status(e.StatusCode).JSON(e)
}
