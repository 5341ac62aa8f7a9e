package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Errors surfaced by order persistence.
var (
	ErrNotFound = errors.New("order not found")
	// ErrOrderNumberConflict is returned when the generated order number
	// violates the uniqueness constraint. The whole creation is rolled back
	// and the caller may retry with fresh inputs.
	ErrOrderNumberConflict = errors.New("order number conflict")
)

// CartLine is a single requested item before normalization. Qty of zero means
// unspecified and defaults to 1. Extras holds the decoded JSON value as sent
// by the client: an object, an array, a scalar, or nil.
type CartLine struct {
	ProductID     int64  `json:"product_id"`
	SizeName      string `json:"size_name"`
	Qty           int    `json:"qty"`
	Extras        any    `json:"extras"`
	Customization string `json:"customization"`
}

// Order is a committed customer order. An order and its items are created
// together in one transaction and are immutable afterwards.
type Order struct {
	ID        int64
	OrderNo   string
	ContactID int64
	CreatedAt time.Time
	Items     []Item
}

// Item is a priced order line. UnitPrice is the post-offer price; LineTotal
// is exactly Qty times UnitPrice.
type Item struct {
	ID            int64
	OrderID       int64
	ProductID     int64
	ProductName   string
	SizeName      string
	Qty           int
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
	Extras        any
	Customization string
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateWithItems persists the order row and every item as a single
	// atomic unit: either all rows commit or none do. A duplicate order
	// number surfaces as ErrOrderNumberConflict.
	CreateWithItems(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Count(ctx context.Context) (int64, error)
}
