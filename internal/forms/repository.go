package forms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned for missing or cross-tenant forms.
var ErrNotFound = errors.New("form not found")

// Repository handles registration form persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a forms repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a form template.
func (r *Repository) Create(ctx context.Context, f *models.Form) error {
	const q = `INSERT INTO forms (owner_id, event_id, title, fields)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, f.OwnerID, f.EventID, f.Title, f.Fields).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// ListByOwner returns the tenant's form templates, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Form, error) {
	const q = `SELECT id, owner_id, event_id, title, fields, created_at, updated_at
		FROM forms WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Form{}
	for rows.Next() {
		var f models.Form
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.EventID, &f.Title, &f.Fields,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// GetByOwnerAndID returns one form in the tenant.
func (r *Repository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Form, error) {
	const q = `SELECT id, owner_id, event_id, title, fields, created_at, updated_at
		FROM forms WHERE owner_id = $1 AND id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, q, ownerID, id))
}

// GetByEvent returns the registration form for an event. Used by the public
// registration endpoint, so there is no owner filter; the form's own owner id
// is what stamps the resulting visitor.
func (r *Repository) GetByEvent(ctx context.Context, eventID uuid.UUID) (*models.Form, error) {
	const q = `SELECT id, owner_id, event_id, title, fields, created_at, updated_at
		FROM forms WHERE event_id = $1 ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, q, eventID))
}

func (r *Repository) scanOne(row pgx.Row) (*models.Form, error) {
	var f models.Form
	err := row.Scan(&f.ID, &f.OwnerID, &f.EventID, &f.Title, &f.Fields, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Update replaces a form's title and fields within the tenant.
func (r *Repository) Update(ctx context.Context, ownerID, id uuid.UUID, title string, fields []models.FormField) error {
	const q = `UPDATE forms SET title = $1, fields = $2, updated_at = NOW() WHERE owner_id = $3 AND id = $4`
	tag, err := r.pool.Exec(ctx, q, title, fields, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a form within the tenant.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const q = `DELETE FROM forms WHERE owner_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
