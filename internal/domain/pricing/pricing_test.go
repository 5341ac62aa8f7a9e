package pricing

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

type mockSizePrices struct {
	byKey map[int64]map[string]decimal.Decimal
	err   error
}

func (m *mockSizePrices) GetSizePrice(_ context.Context, productID int64, sizeName string) (*product.SizePrice, error) {
	if m.err != nil {
		return nil, m.err
	}
	price, ok := m.byKey[productID][sizeName]
	if !ok {
		return nil, nil
	}
	return &product.SizePrice{ProductID: productID, SizeName: sizeName, Price: price}, nil
}

func TestResolveUnitPrice_SizeOverride(t *testing.T) {
	p := &product.Product{ID: 1, Name: "Tee", BasePrice: decimal.RequireFromString("100.00")}
	sizes := &mockSizePrices{byKey: map[int64]map[string]decimal.Decimal{
		1: {"M": decimal.RequireFromString("120.00")},
	}}

	price, err := ResolveUnitPrice(context.Background(), sizes, p, "M")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("120.00").Equal(price))
}

func TestResolveUnitPrice_FallbackToBasePrice(t *testing.T) {
	p := &product.Product{ID: 1, Name: "Tee", BasePrice: decimal.RequireFromString("100.00")}
	sizes := &mockSizePrices{byKey: map[int64]map[string]decimal.Decimal{
		1: {"M": decimal.RequireFromString("120.00")},
	}}

	// No override for "L": expected fallback, not an error.
	price, err := ResolveUnitPrice(context.Background(), sizes, p, "L")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.00").Equal(price))
}

func TestResolveUnitPrice_SizeMatchIsExactString(t *testing.T) {
	p := &product.Product{ID: 1, BasePrice: decimal.RequireFromString("50.00")}
	sizes := &mockSizePrices{byKey: map[int64]map[string]decimal.Decimal{
		1: {"M": decimal.RequireFromString("60.00")},
	}}

	price, err := ResolveUnitPrice(context.Background(), sizes, p, "m")
	require.NoError(t, err)
	assert.True(t, p.BasePrice.Equal(price))
}

func TestResolveUnitPrice_LookupError(t *testing.T) {
	p := &product.Product{ID: 1, BasePrice: decimal.RequireFromString("50.00")}
	sizes := &mockSizePrices{err: errors.New("db down")}

	_, err := ResolveUnitPrice(context.Background(), sizes, p, "M")
	require.Error(t, err)
}

func TestApplyOffer(t *testing.T) {
	price := decimal.RequireFromString("100.00")

	tests := []struct {
		name    string
		percent string
		want    string
	}{
		{"zero percent returns price unchanged", "0", "100.00"},
		{"ten percent", "10", "90.00"},
		{"fractional percent stays exact", "12.5", "87.50"},
		{"full discount", "100", "0.00"},
		{"negative treated as no discount", "-5", "100.00"},
		{"above hundred clamped, never negative", "150", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyOffer(price, decimal.RequireFromString(tt.percent))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestApplyOffer_ExactDecimalArithmetic(t *testing.T) {
	// 33.33 * (1 - 15/100) = 28.3305 with no binary float drift.
	got := ApplyOffer(decimal.RequireFromString("33.33"), decimal.RequireFromString("15"))
	assert.True(t, decimal.RequireFromString("28.3305").Equal(got), "got %s", got)
}
