package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkarpenko/mini-crm/internal/domain/contact"
)

var _ contact.Repository = (*ContactRepository)(nil)

// ContactRepository implements contact.Repository backed by PostgreSQL.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a ContactRepository that uses the given pool.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

const listContactsSQL = `SELECT c.id, c.first_name, c.last_name, c.email, c.phone,
		c.organization_id, o.name
	FROM contacts c
	JOIN organizations o ON o.id = c.organization_id
	ORDER BY c.id`

// List returns all contacts with their organization names.
func (r *ContactRepository) List(ctx context.Context) ([]contact.Contact, error) {
	rows, err := r.pool.Query(ctx, listContactsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []contact.Contact
	for rows.Next() {
		var c contact.Contact
		err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.OrganizationID, &c.OrganizationName)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}

const getContactSQL = `SELECT c.id, c.first_name, c.last_name, c.email, c.phone,
		c.organization_id, o.name
	FROM contacts c
	JOIN organizations o ON o.id = c.organization_id
	WHERE c.id = $1`

// GetByID returns a single contact, or contact.ErrNotFound.
func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*contact.Contact, error) {
	var c contact.Contact
	err := r.pool.QueryRow(ctx, getContactSQL, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.OrganizationID, &c.OrganizationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, fmt.Errorf("getting contact %d: %w", id, err)
	}
	return &c, nil
}

const createContactSQL = `INSERT INTO contacts (first_name, last_name, email, phone, organization_id)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`

// Create inserts a contact and fills in its generated ID. A duplicate email
// maps to contact.ErrDuplicateEmail.
func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	err := r.pool.QueryRow(ctx, createContactSQL,
		c.FirstName, c.LastName, c.Email, c.Phone, c.OrganizationID,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err, "contacts_email_key") {
			return contact.ErrDuplicateEmail
		}
		return fmt.Errorf("creating contact %q: %w", c.Email, err)
	}
	return nil
}

const updateContactSQL = `UPDATE contacts
	SET first_name = $2, last_name = $3, email = $4, phone = $5, organization_id = $6
	WHERE id = $1`

// Update overwrites a contact's fields.
func (r *ContactRepository) Update(ctx context.Context, c *contact.Contact) error {
	tag, err := r.pool.Exec(ctx, updateContactSQL,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.OrganizationID,
	)
	if err != nil {
		if isUniqueViolation(err, "contacts_email_key") {
			return contact.ErrDuplicateEmail
		}
		return fmt.Errorf("updating contact %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// Delete removes a contact.
func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting contact %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// Count returns the number of contacts.
func (r *ContactRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return n, nil
}
