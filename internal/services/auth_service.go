package services

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"kedai/internal/envelope"
	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is the payload accepted by Register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// LoginRequest is the payload accepted by Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenClaims is the payload embedded in an issued token and echoed back as
// the user object on login.
type TokenClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	userRepo    repositories.UserRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
}

// NewAuthService creates a new AuthService. expiry <= 0 defaults to 7 days.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, expiry time.Duration) *AuthService {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: expiry,
	}
}

// Register creates a new user. The password is hashed as part of the
// repository create path and the response carries the new id only.
func (s *AuthService) Register(req *RegisterRequest) (*envelope.Success, error) {
	if req == nil || req.Email == "" || !isASCII(req.Email) {
		return nil, envelope.NewError(envelope.CodeInvalidEmail, fiber.StatusBadRequest, "a valid email is required")
	}

	existing, err := s.userRepo.FindByEmail(req.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, envelope.NewError(envelope.CodeUserCreateError, fiber.StatusInternalServerError,
			"could not register user").WithDetails(err.Error())
	}
	if existing != nil {
		return nil, envelope.NewError(envelope.CodeEmailExists, fiber.StatusBadRequest, "email is already registered")
	}

	user := &models.User{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, envelope.NewError(envelope.CodeUserCreateError, fiber.StatusInternalServerError,
			"could not register user").WithDetails(err.Error())
	}

	return envelope.OK(envelope.CodeUserCreated, fiber.StatusCreated, "user registered successfully",
		fiber.Map{"userId": user.ID}), nil
}

// Login verifies the credentials and issues a signed token carrying the user
// claims, valid for the configured expiry.
func (s *AuthService) Login(req *LoginRequest) (*envelope.Success, error) {
	if req == nil {
		return nil, envelope.NewError(envelope.CodeInvalidEmail, fiber.StatusBadRequest, "a valid email is required")
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, envelope.NewError(envelope.CodeUserNotFound, fiber.StatusNotFound, "user not found")
		}
		return nil, envelope.NewError(envelope.CodeInternalError, fiber.StatusInternalServerError,
			"could not log in").WithDetails(err.Error())
	}

	if !user.CheckPassword(req.Password) {
		return nil, envelope.NewError(envelope.CodeInvalidPassword, fiber.StatusUnauthorized, "invalid password")
	}

	claims := TokenClaims{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}
	token, err := s.signToken(claims)
	if err != nil {
		return nil, envelope.NewError(envelope.CodeInternalError, fiber.StatusInternalServerError,
			"could not issue token").WithDetails(err.Error())
	}

	return envelope.OK(envelope.CodeUserLogin, fiber.StatusOK, "login successful",
		fiber.Map{"token": token, "user": claims}), nil
}

// TokenTTL is the lifetime of issued tokens; the boundary layer uses it for
// the cookie max-age.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenExpiry
}

// signToken issues an HS256 token with the user claims and expiry.
func (s *AuthService) signToken(claims TokenClaims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       claims.ID,
		"email":    claims.Email,
		"fullName": claims.FullName,
		"role":     claims.Role,
		"exp":      now.Add(s.tokenExpiry).Unix(),
		"iat":      now.Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and validates a token, returning its claims. Only
// HMAC-signed tokens are accepted.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims := &TokenClaims{}
	claims.ID, _ = mapClaims["id"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.FullName, _ = mapClaims["fullName"].(string)
	claims.Role, _ = mapClaims["role"].(string)
	return claims, nil
}

// isASCII reports whether the string contains only ASCII characters.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
