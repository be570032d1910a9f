package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned for missing or cross-tenant events.
var ErrNotFound = errors.New("event not found")

// Repository handles event persistence. Every query takes the owner id so
// cross-tenant records are indistinguishable from absent ones.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (owner_id, title, description, location, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.OwnerID, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByOwnerAndID returns one event in the tenant.
func (r *Repository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, owner_id, title, description, location, starts_at, ends_at, created_by, created_at, updated_at
		FROM events WHERE owner_id = $1 AND id = $2`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, ownerID, id).Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description,
		&e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByID returns an event regardless of tenant. Used only by the public
// registration endpoint, which has no token to scope by.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, owner_id, title, description, location, starts_at, ends_at, created_by, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description,
		&e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByOwner returns all of the tenant's events, most recent first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT id, owner_id, title, description, location, starts_at, ends_at, created_by, created_at, updated_at
		FROM events WHERE owner_id = $1 ORDER BY starts_at DESC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.Location,
			&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update updates event fields within the tenant.
func (r *Repository) Update(ctx context.Context, ownerID, id uuid.UUID, title, description, location string, startsAt, endsAt *time.Time) error {
	const q = `UPDATE events SET title = $1, description = $2, location = $3,
		starts_at = COALESCE($4, starts_at), ends_at = COALESCE($5, ends_at), updated_at = NOW()
		WHERE owner_id = $6 AND id = $7`
	tag, err := r.pool.Exec(ctx, q, title, description, location, startsAt, endsAt, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event within the tenant.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const q = `DELETE FROM events WHERE owner_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
