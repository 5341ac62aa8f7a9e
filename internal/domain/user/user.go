package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Role controls what a user may access.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// User is an operator account for the backend.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}
