package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is the side of the marketplace a user acts on
type Role string

// Role constants
const (
	RoleProvider  Role = "provider"
	RolePerformer Role = "performer"
)

// Valid reports whether r is a known marketplace role
func (r Role) Valid() bool {
	return r == RoleProvider || r == RolePerformer
}

// CreateUserRequest registers an account on one side of the marketplace.
// Role decides which routes the issued token can reach.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=provider performer"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest changes the caller's password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// User is the public view of an account. The password hash never leaves the db package.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	PasswordSet bool      `json:"password_set"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginResponse is returned by register and login
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
