// Package pricing resolves unit prices for ordered items: a size-specific
// price override when one exists, the product base price otherwise, with the
// product's percentage offer applied on top in exact decimal arithmetic.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

var hundred = decimal.NewFromInt(100)

// SizePriceLookup is the read-side dependency for size override lookups. It
// returns (nil, nil) when no override exists for the pair.
type SizePriceLookup interface {
	GetSizePrice(ctx context.Context, productID int64, sizeName string) (*product.SizePrice, error)
}

// ResolveUnitPrice returns the applicable pre-offer unit price for a product
// and requested size. An exact (product, size) override wins; a missing
// override falls back to the base price and is never an error.
func ResolveUnitPrice(ctx context.Context, sizes SizePriceLookup, p *product.Product, sizeName string) (decimal.Decimal, error) {
	sp, err := sizes.GetSizePrice(ctx, p.ID, sizeName)
	if err != nil {
		return decimal.Zero, err
	}
	if sp != nil {
		return sp.Price, nil
	}
	return p.BasePrice, nil
}

// ApplyOffer discounts unitPrice by offerPercent:
//
//	discounted = unitPrice * (1 - offerPercent/100)
//
// Non-positive percentages return the price unchanged. Percentages above 100
// are clamped to 100 so the result never goes negative; offer data is not
// validated upstream, so the guard lives here.
func ApplyOffer(unitPrice, offerPercent decimal.Decimal) decimal.Decimal {
	if offerPercent.LessThanOrEqual(decimal.Zero) {
		return unitPrice
	}
	if offerPercent.GreaterThan(hundred) {
		offerPercent = hundred
	}
	factor := decimal.NewFromInt(1).Sub(offerPercent.Div(hundred))
	return unitPrice.Mul(factor)
}
