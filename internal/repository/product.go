package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkarpenko/mini-crm/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const listProductsSQL = `SELECT id, name, sku, base_price, offer_percent
	FROM products ORDER BY id`

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.BasePrice, &p.OfferPercent); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

const getProductSQL = `SELECT id, name, sku, base_price, offer_percent
	FROM products WHERE id = $1`

// GetByID returns a single product, or product.ErrNotFound when no row
// matches.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	err := r.pool.QueryRow(ctx, getProductSQL, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.BasePrice, &p.OfferPercent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

const createProductSQL = `INSERT INTO products (name, sku, base_price, offer_percent)
	VALUES ($1, $2, $3, $4) RETURNING id`

// Create inserts a product and fills in its generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.SKU, p.BasePrice, p.OfferPercent,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err, "products_sku_key") {
			return product.ErrDuplicateSKU
		}
		return fmt.Errorf("creating product %q: %w", p.SKU, err)
	}
	return nil
}

const updateProductSQL = `UPDATE products
	SET name = $2, sku = $3, base_price = $4, offer_percent = $5
	WHERE id = $1`

// Update overwrites a product's mutable fields.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.SKU, p.BasePrice, p.OfferPercent,
	)
	if err != nil {
		if isUniqueViolation(err, "products_sku_key") {
			return product.ErrDuplicateSKU
		}
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product and, via cascade, its size prices.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

const listSizePricesSQL = `SELECT id, product_id, size_name, price
	FROM size_prices WHERE product_id = $1 ORDER BY size_name`

// ListSizePrices returns all size overrides for a product.
func (r *ProductRepository) ListSizePrices(ctx context.Context, productID int64) ([]product.SizePrice, error) {
	rows, err := r.pool.Query(ctx, listSizePricesSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing size prices for product %d: %w", productID, err)
	}
	defer rows.Close()

	var sizes []product.SizePrice
	for rows.Next() {
		var sp product.SizePrice
		if err := rows.Scan(&sp.ID, &sp.ProductID, &sp.SizeName, &sp.Price); err != nil {
			return nil, fmt.Errorf("scanning size price: %w", err)
		}
		sizes = append(sizes, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing size prices for product %d: %w", productID, err)
	}
	return sizes, nil
}

const getSizePriceSQL = `SELECT id, product_id, size_name, price
	FROM size_prices WHERE product_id = $1 AND size_name = $2`

// GetSizePrice returns the override for (productID, sizeName), or (nil, nil)
// when no override exists. The missing-row case is the expected base-price
// fallback, not an error.
func (r *ProductRepository) GetSizePrice(ctx context.Context, productID int64, sizeName string) (*product.SizePrice, error) {
	var sp product.SizePrice
	err := r.pool.QueryRow(ctx, getSizePriceSQL, productID, sizeName).
		Scan(&sp.ID, &sp.ProductID, &sp.SizeName, &sp.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting size price (%d, %q): %w", productID, sizeName, err)
	}
	return &sp, nil
}

const upsertProductSQL = `INSERT INTO products (name, sku, base_price, offer_percent)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (sku) DO UPDATE
	SET name = EXCLUDED.name,
		base_price = EXCLUDED.base_price,
		offer_percent = EXCLUDED.offer_percent
	RETURNING id`

// UpsertBySKU inserts a product or, when the SKU already exists, overwrites
// its name and prices. Used by the seed and ingest tools; the API handlers
// use Create/Update instead.
func (r *ProductRepository) UpsertBySKU(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, upsertProductSQL,
		p.Name, p.SKU, p.BasePrice, p.OfferPercent,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.SKU, err)
	}
	return nil
}

const createSizePriceSQL = `INSERT INTO size_prices (product_id, size_name, price)
	VALUES ($1, $2, $3) RETURNING id`

// CreateSizePrice inserts a size override for a product. The unique
// constraint on (product_id, size_name) allows at most one override per pair.
func (r *ProductRepository) CreateSizePrice(ctx context.Context, sp *product.SizePrice) error {
	err := r.pool.QueryRow(ctx, createSizePriceSQL,
		sp.ProductID, sp.SizeName, sp.Price,
	).Scan(&sp.ID)
	if err != nil {
		if isUniqueViolation(err, "size_prices_product_id_size_name_key") {
			return product.ErrDuplicateSize
		}
		return fmt.Errorf("creating size price (%d, %q): %w", sp.ProductID, sp.SizeName, err)
	}
	return nil
}

const upsertSizePriceSQL = `INSERT INTO size_prices (product_id, size_name, price)
	VALUES ($1, $2, $3)
	ON CONFLICT (product_id, size_name) DO UPDATE SET price = EXCLUDED.price
	RETURNING id`

// UpsertSizePrice inserts or overwrites the override for (product_id,
// size_name). Used by the seed and ingest tools.
func (r *ProductRepository) UpsertSizePrice(ctx context.Context, sp *product.SizePrice) error {
	err := r.pool.QueryRow(ctx, upsertSizePriceSQL,
		sp.ProductID, sp.SizeName, sp.Price,
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("upserting size price (%d, %q): %w", sp.ProductID, sp.SizeName, err)
	}
	return nil
}
