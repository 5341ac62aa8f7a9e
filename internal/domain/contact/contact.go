package contact

import (
	"context"

	"github.com/go-faster/errors"
)

// Errors returned by contact lookups and writes.
var (
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicateEmail = errors.New("contact email already in use")
)

// Contact is a person at an organization that orders are placed for.
type Contact struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	OrganizationID int64

	// OrganizationName is populated on reads for display purposes.
	OrganizationName string
}

// Repository defines persistence operations for contacts.
type Repository interface {
	List(ctx context.Context) ([]Contact, error)
	GetByID(ctx context.Context, id int64) (*Contact, error)
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
