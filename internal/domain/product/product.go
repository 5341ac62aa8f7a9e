package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Errors returned by product lookups and writes.
var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateSKU  = errors.New("product sku already in use")
	ErrDuplicateSize = errors.New("size price already defined for this product")
)

// Product represents a catalog item available for ordering. BasePrice applies
// when no size-specific price exists; OfferPercent is a percentage discount
// applied to the resolved unit price.
type Product struct {
	ID           int64
	Name         string
	SKU          string
	BasePrice    decimal.Decimal
	OfferPercent decimal.Decimal
}

// SizePrice is a price override bound to a specific (product, size) pair. It
// takes precedence over the product's base price on an exact size match.
type SizePrice struct {
	ID        int64
	ProductID int64
	SizeName  string
	Price     decimal.Decimal
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// ListSizePrices returns all size overrides for a product.
	ListSizePrices(ctx context.Context, productID int64) ([]SizePrice, error)
	// GetSizePrice returns the override for (productID, sizeName), or
	// (nil, nil) when no override exists. A missing size is the expected
	// fallback path, not an error.
	GetSizePrice(ctx context.Context, productID int64, sizeName string) (*SizePrice, error)
	CreateSizePrice(ctx context.Context, sp *SizePrice) error
}
