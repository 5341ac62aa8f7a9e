package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkarpenko/mini-crm/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const getUserByUsernameSQL = `SELECT id, username, email, password_hash, role, created_at
	FROM users WHERE username = $1`

// GetByUsername returns the user with the given username, or
// user.ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, getUserByUsernameSQL, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return &u, nil
}

const upsertUserSQL = `INSERT INTO users (username, email, password_hash, role)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (username) DO UPDATE
	SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
	RETURNING id`

// Create inserts or updates a user account keyed by username.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, upsertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}
