package badges

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned for missing or cross-tenant badges.
var ErrNotFound = errors.New("badge not found")

// Repository handles badges persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a badges repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const badgeColumns = `id, owner_id, event_id, badge_name, image_key, image_url, created_at, updated_at`

func scanBadge(row pgx.Row) (*models.Badge, error) {
	var b models.Badge
	var imageKey, imageURL *string
	err := row.Scan(&b.ID, &b.OwnerID, &b.EventID, &b.BadgeName, &imageKey, &imageURL, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if imageKey != nil {
		b.ImageKey = *imageKey
	}
	if imageURL != nil {
		b.ImageURL = *imageURL
	}
	return &b, nil
}

// Create inserts a badge with its initial artwork reference.
func (r *Repository) Create(ctx context.Context, b *models.Badge) error {
	const q = `INSERT INTO badges (owner_id, event_id, badge_name, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, b.OwnerID, b.EventID, b.BadgeName, b.ImageURL).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// ListByOwner returns all of the tenant's badges, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Badge, error) {
	const q = `SELECT ` + badgeColumns + ` FROM badges WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

// GetByOwnerAndID returns one badge in the tenant.
func (r *Repository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Badge, error) {
	const q = `SELECT ` + badgeColumns + ` FROM badges WHERE owner_id = $1 AND id = $2`
	return scanBadge(r.pool.QueryRow(ctx, q, ownerID, id))
}

// Update renames a badge.
func (r *Repository) Update(ctx context.Context, ownerID, id uuid.UUID, badgeName string) (*models.Badge, error) {
	const q = `UPDATE badges SET badge_name = $3, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + badgeColumns
	return scanBadge(r.pool.QueryRow(ctx, q, ownerID, id, badgeName))
}

// SetImage records the artwork object key and URL after an upload.
func (r *Repository) SetImage(ctx context.Context, ownerID, id uuid.UUID, imageKey, imageURL string) (*models.Badge, error) {
	const q = `UPDATE badges SET image_key = $3, image_url = $4, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + badgeColumns
	return scanBadge(r.pool.QueryRow(ctx, q, ownerID, id, imageKey, imageURL))
}

// Delete removes a badge in the tenant.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM badges WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
