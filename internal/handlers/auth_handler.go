package handlers

import (
	"log"
	"time"

	"kedai/internal/config"
	"kedai/internal/envelope"
	"kedai/internal/middleware"
	"kedai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister handles new user registration. The response carries the new
// user id only; the password hash is never echoed.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return respondError(c, envelope.NewError(envelope.CodeInvalidEmail, fiber.StatusBadRequest,
			"a valid email is required").WithDetails(err.Error()))
	}

	success, err := h.authService.Register(&req)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		return respondError(c, err)
	}
	return respond(c, success)
}

// HandleLogin handles user login. On success the issued token is also placed
// in an HTTP-only cookie: SameSite=None, secure in production, expiring with
// the token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return respondError(c, envelope.NewError(envelope.CodeInvalidEmail, fiber.StatusBadRequest,
			"a valid email is required").WithDetails(err.Error()))
	}

	success, err := h.authService.Login(&req)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return respondError(c, err)
	}

	data, _ := success.Data.(fiber.Map)
	token, _ := data["token"].(string)
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteNoneMode,
		MaxAge:   int(h.authService.TokenTTL().Seconds()),
		Expires:  time.Now().Add(h.authService.TokenTTL()),
	})

	return respond(c, success)
}
