package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/mini-crm/internal/auth"
	"github.com/vkarpenko/mini-crm/internal/domain/contact"
	"github.com/vkarpenko/mini-crm/internal/domain/order"
	"github.com/vkarpenko/mini-crm/internal/domain/organization"
	"github.com/vkarpenko/mini-crm/internal/domain/product"
	"github.com/vkarpenko/mini-crm/internal/domain/user"
)

// --- Mock repositories ---

type mockOrgRepo struct {
	orgs []organization.Organization
}

func (m *mockOrgRepo) List(_ context.Context) ([]organization.Organization, error) {
	return m.orgs, nil
}

func (m *mockOrgRepo) GetByID(_ context.Context, id int64) (*organization.Organization, error) {
	for _, o := range m.orgs {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, organization.ErrNotFound
}

func (m *mockOrgRepo) Create(_ context.Context, o *organization.Organization) error {
	o.ID = int64(len(m.orgs) + 1)
	m.orgs = append(m.orgs, *o)
	return nil
}

func (m *mockOrgRepo) Update(_ context.Context, _ *organization.Organization) error { return nil }
func (m *mockOrgRepo) Delete(_ context.Context, _ int64) error                      { return nil }
func (m *mockOrgRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.orgs)), nil
}

type mockContactRepo struct{}

func (m *mockContactRepo) List(_ context.Context) ([]contact.Contact, error) { return nil, nil }
func (m *mockContactRepo) GetByID(_ context.Context, _ int64) (*contact.Contact, error) {
	return nil, contact.ErrNotFound
}
func (m *mockContactRepo) Create(_ context.Context, c *contact.Contact) error {
	c.ID = 1
	return nil
}
func (m *mockContactRepo) Update(_ context.Context, _ *contact.Contact) error { return nil }
func (m *mockContactRepo) Delete(_ context.Context, _ int64) error            { return nil }
func (m *mockContactRepo) Count(_ context.Context) (int64, error)             { return 1, nil }

type mockProductRepo struct {
	byID  map[int64]*product.Product
	sizes map[int64]map[string]decimal.Decimal
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	p.ID = int64(len(m.byID) + 1)
	m.byID[p.ID] = p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ int64) error            { return nil }
func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

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

func (m *mockProductRepo) CreateSizePrice(_ context.Context, sp *product.SizePrice) error {
	sp.ID = 1
	return nil
}

type mockOrderRepo struct {
	created []*order.Order
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, o *order.Order) error {
	o.ID = int64(len(m.created) + 1)
	m.created = append(m.created, o)
	return nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]order.Order, error) { return nil, nil }
func (m *mockOrderRepo) GetByID(_ context.Context, _ int64) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (m *mockOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.created)), nil
}

type mockUserRepo struct {
	users map[string]*user.User
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

// --- Test fixture ---

type fixture struct {
	handler  http.Handler
	tokens   *auth.Tokens
	products *mockProductRepo
	orders   *mockOrderRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)

	products := &mockProductRepo{
		byID: map[int64]*product.Product{
			1: {
				ID:           1,
				Name:         "Hoodie",
				SKU:          "HD-1",
				BasePrice:    decimal.RequireFromString("100.00"),
				OfferPercent: decimal.RequireFromString("10"),
			},
		},
		sizes: map[int64]map[string]decimal.Decimal{},
	}
	orders := &mockOrderRepo{}
	users := &mockUserRepo{
		users: map[string]*user.User{
			"admin": {ID: 1, Username: "admin", PasswordHash: adminHash, Role: user.RoleAdmin},
		},
	}

	tokens := auth.NewTokens("test-secret", time.Hour)
	h := New(
		&mockOrgRepo{},
		&mockContactRepo{},
		products,
		orders,
		users,
		order.NewService(products, orders),
		tokens,
	)

	return &fixture{
		handler:  h.Routes(),
		tokens:   tokens,
		products: products,
		orders:   orders,
	}
}

func (f *fixture) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) adminToken(t *testing.T) string {
	t.Helper()
	token, err := f.tokens.Issue(&user.User{ID: 1, Username: "admin", Role: user.RoleAdmin})
	require.NoError(t, err)
	return token
}

func (f *fixture) managerToken(t *testing.T) string {
	t.Helper()
	token, err := f.tokens.Issue(&user.User{ID: 2, Username: "bob", Role: user.RoleManager})
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

// --- Tests ---

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin-pass",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "admin", resp.User.Username)

	_, err := f.tokens.Verify(resp.AccessToken)
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": "nope",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, kindUnauthorized, decodeError(t, rec).Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ghost",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodGet, "/products", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminStats_ForbiddenForManager(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/admin/stats", f.managerToken(t), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, kindForbidden, decodeError(t, rec).Code)
}

func TestAdminStats_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/admin/stats", f.adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.TotalProducts)
	assert.Equal(t, int64(1), resp.TotalContacts)
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/orders", f.adminToken(t), map[string]any{
		"contact": 1,
		"items": []map[string]any{
			{"product_id": 1, "size_name": "M", "qty": 2},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		OrderNo    string `json:"order_no"`
		OrderTotal string `json:"order_total"`
		Items      []struct {
			ProductName string `json:"product_name"`
			UnitPrice   string `json:"unit_price"`
			Qty         int    `json:"qty"`
			LineTotal   string `json:"line_total"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, resp.OrderNo)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Hoodie", resp.Items[0].ProductName)
	assert.Equal(t, "90", resp.Items[0].UnitPrice)
	assert.Equal(t, 2, resp.Items[0].Qty)
	assert.Equal(t, "180", resp.Items[0].LineTotal)
	assert.Equal(t, "180", resp.OrderTotal)

	require.Len(t, f.orders.created, 1)
}

func TestCreateOrder_MergesDuplicateLines(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/orders", f.adminToken(t), map[string]any{
		"contact": 1,
		"items": []map[string]any{
			{"product_id": 1, "size_name": "M", "qty": 1, "customization": "None"},
			{"product_id": 1, "size_name": "M", "qty": 2, "customization": "None"},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, f.orders.created, 1)
	require.Len(t, f.orders.created[0].Items, 1)
	assert.Equal(t, 3, f.orders.created[0].Items[0].Qty)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/orders", f.adminToken(t), map[string]any{
		"contact": 1,
		"items":   []any{},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, kindValidation, decodeError(t, rec).Code)
	assert.Empty(t, f.orders.created)
}

func TestCreateOrder_MissingContact(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/orders", f.adminToken(t), map[string]any{
		"items": []map[string]any{{"product_id": 1, "qty": 1}},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, kindValidation, decodeError(t, rec).Code)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/orders", f.adminToken(t), map[string]any{
		"contact": 1,
		"items":   []map[string]any{{"product_id": 999, "qty": 1}},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, kindNotFound, decodeError(t, rec).Code)
	assert.Empty(t, f.orders.created)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/products", f.adminToken(t), map[string]any{
		"name": "Tee",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, kindValidation, decodeError(t, rec).Code)
}

func TestCreateProduct_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/products", f.adminToken(t), map[string]any{
		"name":       "Tee",
		"sku":        "TEE-1",
		"base_price": "49.90",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID  int64  `json:"id"`
		SKU string `json:"sku"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "TEE-1", resp.SKU)
}

func TestGetOrganization_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/organizations/42", f.adminToken(t), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, kindNotFound, decodeError(t, rec).Code)
}

func TestIDParam_Invalid(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/organizations/abc", f.adminToken(t), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, kindValidation, decodeError(t, rec).Code)
}
