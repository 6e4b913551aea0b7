package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. The password is stored only as a
// bcrypt hash and is never serialized into a response.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	FullName  string    `json:"fullName" validate:"required,min=3,max=50"`
	Role      string    `json:"role" gorm:"type:varchar(16)" validate:"omitempty,oneof=user admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize prepares a user for persistence: assigns an ID when missing,
// lowercases the email (uniqueness is case-insensitive) and defaults the role.
// Validation runs against the plain-text password, so it must be called
// before HashPassword.
func (u *User) Normalize() error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
	return validate.Struct(u)
}

// HashPassword replaces the plain-text password with its bcrypt hash.
func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether the candidate matches the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// BeforeCreate hashes the password as part of the create path, so no code
// path can persist a plain-text password through GORM.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.Normalize(); err != nil {
		return err
	}
	return u.HashPassword()
}
