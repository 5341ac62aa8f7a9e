package organization

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested organization does not exist.
var ErrNotFound = errors.New("organization not found")

// Organization is a customer company that contacts belong to.
type Organization struct {
	ID      int64
	Name    string
	Address string
	GSTNo   string
}

// Repository defines persistence operations for organizations.
type Repository interface {
	List(ctx context.Context) ([]Organization, error)
	GetByID(ctx context.Context, id int64) (*Organization, error)
	Create(ctx context.Context, o *Organization) error
	Update(ctx context.Context, o *Organization) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
