package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/access"
	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned when no user in the tenant matches.
var ErrNotFound = errors.New("user not found")

// Repository handles tenant-scoped user administration.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByOwner returns all users belonging to the tenant, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT id, owner_id, email, username, full_name, role, active, page_access, created_at
		FROM users WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.UserPublic{}
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.OwnerID, &u.Email, &u.Username, &u.FullName,
			&u.Role, &u.Active, &u.PageAccess, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetByOwnerAndID returns one user in the tenant. A user from another tenant
// is reported as not found.
func (r *Repository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.UserPublic, error) {
	const q = `SELECT id, owner_id, email, username, full_name, role, active, page_access, created_at
		FROM users WHERE owner_id = $1 AND id = $2`
	var u models.UserPublic
	err := r.pool.QueryRow(ctx, q, ownerID, id).Scan(&u.ID, &u.OwnerID, &u.Email, &u.Username,
		&u.FullName, &u.Role, &u.Active, &u.PageAccess, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePageAccess replaces the page-access set of a user in the tenant.
func (r *Repository) UpdatePageAccess(ctx context.Context, ownerID, id uuid.UUID, set access.Set) error {
	const q = `UPDATE users SET page_access = $1, updated_at = NOW() WHERE owner_id = $2 AND id = $3`
	tag, err := r.pool.Exec(ctx, q, set.ToMap(), ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive activates or deactivates a user in the tenant.
func (r *Repository) SetActive(ctx context.Context, ownerID, id uuid.UUID, active bool) error {
	const q = `UPDATE users SET active = $1, updated_at = NOW() WHERE owner_id = $2 AND id = $3`
	tag, err := r.pool.Exec(ctx, q, active, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BackfillPageAccess grants the default set to tenant users created before
// the access model existed. Only rows missing the dashboard marker key are
// touched, so re-running is a no-op on migrated records. Returns the number
// of updated rows.
func (r *Repository) BackfillPageAccess(ctx context.Context, ownerID uuid.UUID) (int, error) {
	const q = `UPDATE users SET page_access = $1, updated_at = NOW()
		WHERE owner_id = $2 AND NOT (page_access ? 'dashboard')`
	tag, err := r.pool.Exec(ctx, q, access.DefaultSet().ToMap(), ownerID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
