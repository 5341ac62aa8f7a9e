package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/vkarpenko/mini-crm/internal/domain/pricing"
	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

// Sentinel errors for order creation input validation.
var (
	ErrContactRequired = errors.New("contact is required")
	ErrEmptyItems      = errors.New("items required")
)

// ProductNotFoundError indicates a requested product does not exist. The
// whole order creation aborts; nothing is persisted.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a cart line carries a negative quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must not be negative for product %d", e.ProductID)
}

// ResultLine is one priced line of a created order.
type ResultLine struct {
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         int             `json:"qty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CreateOrderResult is the outcome of a successful order creation.
type CreateOrderResult struct {
	OrderNo    string          `json:"order_no"`
	Items      []ResultLine    `json:"items"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// Service assembles priced orders: it normalizes the cart, resolves unit
// prices, applies product offers, and persists the order atomically.
type Service struct {
	products product.Repository
	orders   Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
	}
}

// CreateOrder builds and persists an order for the given contact.
//
// The cart is normalized first (duplicate lines merged). Each normalized line
// is then priced: product lookup, size-price resolution, percentage offer,
// and line total = qty x post-offer unit price. The order row and all item
// rows are written in one transaction; any failure leaves nothing behind.
func (s *Service) CreateOrder(ctx context.Context, contactID int64, lines []CartLine) (*CreateOrderResult, error) {
	if contactID == 0 {
		return nil, ErrContactRequired
	}
	if len(lines) == 0 {
		return nil, ErrEmptyItems
	}
	for _, line := range lines {
		if line.Qty < 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
	}

	normalized := NormalizeCart(lines)

	o := &Order{
		OrderNo:   NewOrderNumber(time.Now()),
		ContactID: contactID,
	}

	total := decimal.Zero
	resultLines := make([]ResultLine, 0, len(normalized))

	for _, line := range normalized {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, errors.Wrapf(err, "get product %d", line.ProductID)
		}

		unitPrice, err := pricing.ResolveUnitPrice(ctx, s.products, p, line.SizeName)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve price for product %d", line.ProductID)
		}

		unitPrice = pricing.ApplyOffer(unitPrice, p.OfferPercent).Round(2)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Qty)))

		o.Items = append(o.Items, Item{
			ProductID:     p.ID,
			ProductName:   p.Name,
			SizeName:      line.SizeName,
			Qty:           line.Qty,
			UnitPrice:     unitPrice,
			LineTotal:     lineTotal,
			Extras:        line.Extras,
			Customization: line.Customization,
		})

		total = total.Add(lineTotal)
		resultLines = append(resultLines, ResultLine{
			ProductName: p.Name,
			UnitPrice:   unitPrice,
			Qty:         line.Qty,
			LineTotal:   lineTotal,
		})
	}

	if err := s.orders.CreateWithItems(ctx, o); err != nil {
		if errors.Is(err, ErrOrderNumberConflict) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create order")
	}

	return &CreateOrderResult{
		OrderNo:    o.OrderNo,
		Items:      resultLines,
		OrderTotal: total,
	}, nil
}
