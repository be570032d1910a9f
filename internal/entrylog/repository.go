package entrylog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// Repository reads the tenant's entry log: visitors whose attendance was
// recorded manually or by QR scan. Entry types are canonical at write time,
// so the filter is a plain two-value match.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an entry log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of checked-in visitors plus the total count, most
// recent check-in first.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Visitor, int, error) {
	const where = ` WHERE owner_id = $1 AND status = $2 AND entry_type IN ($3, $4)`

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM visitors`+where,
		ownerID, models.StatusVisited, models.EntryManual, models.EntryQR).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	const q = `SELECT id, owner_id, event_id, full_name, email, phone_number, company, location,
		designation, status, entry_type, checked_in_at, form_responses, source, created_at, updated_at
		FROM visitors` + where + ` ORDER BY checked_in_at DESC LIMIT $5 OFFSET $6`
	rows, err := r.pool.Query(ctx, q, ownerID, models.StatusVisited, models.EntryManual, models.EntryQR, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list := []models.Visitor{}
	for rows.Next() {
		var v models.Visitor
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.EventID, &v.FullName, &v.Email, &v.PhoneNumber,
			&v.Company, &v.Location, &v.Designation, &v.Status, &v.EntryType, &v.CheckedInAt,
			&v.FormResponses, &v.Source, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, v)
	}
	return list, total, rows.Err()
}
