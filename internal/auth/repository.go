package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/access"
	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository handles user and tenant persistence for authentication.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, owner_id, email, username, password, full_name, role, active, page_access, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.OwnerID, &u.Email, &u.Username, &u.Password, &u.FullName,
		&u.Role, &u.Active, &u.PageAccess, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateTenant inserts a tenant record.
func (r *Repository) CreateTenant(ctx context.Context, name string) (*models.Tenant, error) {
	const q = `INSERT INTO tenants (name) VALUES ($1) RETURNING id, name, created_at, updated_at`
	var t models.Tenant
	err := r.pool.QueryRow(ctx, q, name).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateUser inserts a user. The caller supplies the page-access set; new
// users normally get access.DefaultSet().
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (owner_id, email, username, password, full_name, role, active, page_access)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.OwnerID, u.Email, u.Username, u.Password,
		u.FullName, u.Role, u.Active, u.PageAccess).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail returns the user with the given email. Login is by email, which
// is unique across tenants.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// PageAccess loads the page-access set for a user. Satisfies
// middleware.AccessSource for the RequirePage guard.
func (r *Repository) PageAccess(ctx context.Context, userID uuid.UUID) (access.Set, error) {
	const q = `SELECT page_access FROM users WHERE id = $1 AND active`
	var m map[string]bool
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return access.FromMap(m), nil
}
