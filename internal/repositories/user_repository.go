package repositories

import "kedai/internal/models"

// UserRepository defines the interface for user data access. Email lookups
// are case-insensitive (emails are stored lowercased) and always return the
// stored password hash; hiding it from responses is the serializer's job.
type UserRepository interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
}
