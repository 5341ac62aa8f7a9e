package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[int64]*product.Product
	sizes  map[int64]map[string]decimal.Decimal
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ int64) error            { return nil }
func (m *mockProductRepo) Count(_ context.Context) (int64, error)             { return 0, nil }

func (m *mockProductRepo) ListSizePrices(_ context.Context, _ int64) ([]product.SizePrice, error) {
	return nil, nil
}

func (m *mockProductRepo) GetSizePrice(_ context.Context, productID int64, sizeName string) (*product.SizePrice, error) {
	price, ok := m.sizes[productID][sizeName]
	if !ok {
		return nil, nil
	}
	return &product.SizePrice{ProductID: productID, SizeName: sizeName, Price: price}, nil
}

func (m *mockProductRepo) CreateSizePrice(_ context.Context, _ *product.SizePrice) error { return nil }

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, o *Order) error {
	if m.err != nil {
		return m.err
	}
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error)          { return nil, nil }
func (m *mockOrderRepo) GetByID(_ context.Context, _ int64) (*Order, error) { return nil, ErrNotFound }
func (m *mockOrderRepo) Count(_ context.Context) (int64, error)           { return 0, nil }

// --- Helpers ---

func newTestProduct(id int64, name, basePrice, offerPercent string) *product.Product {
	return &product.Product{
		ID:           id,
		Name:         name,
		SKU:          name,
		BasePrice:    decimal.RequireFromString(basePrice),
		OfferPercent: decimal.RequireFromString(offerPercent),
	}
}

func newProductRepo(products ...*product.Product) *mockProductRepo {
	byID := make(map[int64]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID, sizes: make(map[int64]map[string]decimal.Decimal)}
}

// --- Tests ---

func TestCreateOrder_MissingContact(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := NewService(newProductRepo(), orders)

	_, err := svc.CreateOrder(context.Background(), 0, []CartLine{{ProductID: 1, Qty: 1}})

	require.ErrorIs(t, err, ErrContactRequired)
	assert.Nil(t, orders.lastOrder)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := NewService(newProductRepo(), orders)

	_, err := svc.CreateOrder(context.Background(), 7, nil)

	require.ErrorIs(t, err, ErrEmptyItems)
	assert.Nil(t, orders.lastOrder)
}

func TestCreateOrder_NegativeQuantity(t *testing.T) {
	svc := NewService(newProductRepo(newTestProduct(1, "Tee", "10.00", "0")), &mockOrderRepo{})

	_, err := svc.CreateOrder(context.Background(), 7, []CartLine{{ProductID: 1, Qty: -2}})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(1), iqErr.ProductID)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := NewService(newProductRepo(), orders)

	_, err := svc.CreateOrder(context.Background(), 7, []CartLine{{ProductID: 99, Qty: 1}})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, int64(99), pnfErr.ProductID)
	assert.Nil(t, orders.lastOrder)
}

func TestCreateOrder_OfferApplied(t *testing.T) {
	// base 100.00, no size price, 10% offer, qty 2
	// -> unit 90.00, line total 180.00, order total 180.00.
	products := newProductRepo(newTestProduct(1, "Hoodie", "100.00", "10"))
	orders := &mockOrderRepo{}
	svc := NewService(products, orders)

	result, err := svc.CreateOrder(context.Background(), 7, []CartLine{
		{ProductID: 1, SizeName: "M", Qty: 2},
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.True(t, decimal.RequireFromString("90.00").Equal(result.Items[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("180.00").Equal(result.Items[0].LineTotal))
	assert.True(t, decimal.RequireFromString("180.00").Equal(result.OrderTotal))

	require.NotNil(t, orders.lastOrder)
	require.Len(t, orders.lastOrder.Items, 1)
	// Only the post-offer unit price is persisted.
	assert.True(t, decimal.RequireFromString("90.00").Equal(orders.lastOrder.Items[0].UnitPrice))
}

func TestCreateOrder_SizePriceOverride(t *testing.T) {
	products := newProductRepo(newTestProduct(1, "Tee", "100.00", "0"))
	products.sizes[1] = map[string]decimal.Decimal{"M": decimal.RequireFromString("120.00")}
	svc := NewService(products, &mockOrderRepo{})

	result, err := svc.CreateOrder(context.Background(), 7, []CartLine{
		{ProductID: 1, SizeName: "M", Qty: 1},
		{ProductID: 1, SizeName: "L", Qty: 1},
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.True(t, decimal.RequireFromString("120.00").Equal(result.Items[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("100.00").Equal(result.Items[1].UnitPrice))
}

func TestCreateOrder_MergesCartBeforePricing(t *testing.T) {
	products := newProductRepo(
		newTestProduct(1, "Tee", "50.00", "0"),
		newTestProduct(2, "Cap", "20.00", "0"),
	)
	orders := &mockOrderRepo{}
	svc := NewService(products, orders)

	result, err := svc.CreateOrder(context.Background(), 7, []CartLine{
		{ProductID: 1, SizeName: "M", Qty: 1, Customization: "None"},
		{ProductID: 1, SizeName: "M", Qty: 2, Customization: "None"},
		{ProductID: 1, SizeName: "L", Qty: 1},
		{ProductID: 2, SizeName: "M", Qty: 1},
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, 3, result.Items[0].Qty)
	assert.True(t, decimal.RequireFromString("150.00").Equal(result.Items[0].LineTotal))
	assert.True(t, decimal.RequireFromString("220.00").Equal(result.OrderTotal))
}

func TestCreateOrder_TotalIsSumOfLineTotals(t *testing.T) {
	products := newProductRepo(
		newTestProduct(1, "Tee", "33.33", "15"),
		newTestProduct(2, "Cap", "19.99", "0"),
		newTestProduct(3, "Mug", "7.77", "50"),
	)
	svc := NewService(products, &mockOrderRepo{})

	result, err := svc.CreateOrder(context.Background(), 7, []CartLine{
		{ProductID: 1, Qty: 3},
		{ProductID: 2, Qty: 2},
		{ProductID: 3, Qty: 5},
	})

	require.NoError(t, err)
	sum := decimal.Zero
	for _, item := range result.Items {
		assert.True(t, item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))).Equal(item.LineTotal))
		sum = sum.Add(item.LineTotal)
	}
	assert.True(t, sum.Equal(result.OrderTotal))
}

func TestCreateOrder_OrderNumberConflict(t *testing.T) {
	products := newProductRepo(newTestProduct(1, "Tee", "10.00", "0"))
	svc := NewService(products, &mockOrderRepo{err: ErrOrderNumberConflict})

	_, err := svc.CreateOrder(context.Background(), 7, []CartLine{{ProductID: 1, Qty: 1}})

	require.ErrorIs(t, err, ErrOrderNumberConflict)
}

func TestCreateOrder_PersistError(t *testing.T) {
	products := newProductRepo(newTestProduct(1, "Tee", "10.00", "0"))
	svc := NewService(products, &mockOrderRepo{err: errors.New("db write failed")})

	_, err := svc.CreateOrder(context.Background(), 7, []CartLine{{ProductID: 1, Qty: 1}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestCreateOrder_OrderNumberAssigned(t *testing.T) {
	products := newProductRepo(newTestProduct(1, "Tee", "10.00", "0"))
	orders := &mockOrderRepo{}
	svc := NewService(products, orders)

	result, err := svc.CreateOrder(context.Background(), 7, []CartLine{{ProductID: 1, Qty: 1}})

	require.NoError(t, err)
	assert.Regexp(t, orderNoPattern, result.OrderNo)
	assert.Equal(t, result.OrderNo, orders.lastOrder.OrderNo)
	assert.Equal(t, int64(7), orders.lastOrder.ContactID)
}
