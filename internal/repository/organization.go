package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkarpenko/mini-crm/internal/domain/organization"
)

var _ organization.Repository = (*OrganizationRepository)(nil)

// OrganizationRepository implements organization.Repository backed by
// PostgreSQL.
type OrganizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository returns an OrganizationRepository that uses the
// given pool.
func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

const listOrganizationsSQL = `SELECT id, name, address, gst_no
	FROM organizations ORDER BY id`

// List returns all organizations ordered by ID.
func (r *OrganizationRepository) List(ctx context.Context) ([]organization.Organization, error) {
	rows, err := r.pool.Query(ctx, listOrganizationsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []organization.Organization
	for rows.Next() {
		var o organization.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.GSTNo); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	return orgs, nil
}

const getOrganizationSQL = `SELECT id, name, address, gst_no
	FROM organizations WHERE id = $1`

// GetByID returns a single organization, or organization.ErrNotFound.
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*organization.Organization, error) {
	var o organization.Organization
	err := r.pool.QueryRow(ctx, getOrganizationSQL, id).
		Scan(&o.ID, &o.Name, &o.Address, &o.GSTNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, fmt.Errorf("getting organization %d: %w", id, err)
	}
	return &o, nil
}

const createOrganizationSQL = `INSERT INTO organizations (name, address, gst_no)
	VALUES ($1, $2, $3) RETURNING id`

// Create inserts an organization and fills in its generated ID.
func (r *OrganizationRepository) Create(ctx context.Context, o *organization.Organization) error {
	err := r.pool.QueryRow(ctx, createOrganizationSQL, o.Name, o.Address, o.GSTNo).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("creating organization %q: %w", o.Name, err)
	}
	return nil
}

const updateOrganizationSQL = `UPDATE organizations
	SET name = $2, address = $3, gst_no = $4
	WHERE id = $1`

// Update overwrites an organization's fields.
func (r *OrganizationRepository) Update(ctx context.Context, o *organization.Organization) error {
	tag, err := r.pool.Exec(ctx, updateOrganizationSQL, o.ID, o.Name, o.Address, o.GSTNo)
	if err != nil {
		return fmt.Errorf("updating organization %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

// Delete removes an organization and, via cascade, its contacts.
func (r *OrganizationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting organization %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

// Count returns the number of organizations.
func (r *OrganizationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM organizations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting organizations: %w", err)
	}
	return n, nil
}
