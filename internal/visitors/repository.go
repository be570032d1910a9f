package visitors

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned for missing or cross-tenant visitors.
var ErrNotFound = errors.New("visitor not found")

// Repository handles visitor persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a visitors repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const visitorColumns = `id, owner_id, event_id, full_name, email, phone_number, company, location,
	designation, status, entry_type, checked_in_at, form_responses, source, created_at, updated_at`

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(&v.ID, &v.OwnerID, &v.EventID, &v.FullName, &v.Email, &v.PhoneNumber,
		&v.Company, &v.Location, &v.Designation, &v.Status, &v.EntryType, &v.CheckedInAt,
		&v.FormResponses, &v.Source, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a visitor record.
func (r *Repository) Create(ctx context.Context, v *models.Visitor) error {
	const q = `INSERT INTO visitors (owner_id, event_id, full_name, email, phone_number, company,
		location, designation, status, form_responses, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	if v.Status == "" {
		v.Status = models.StatusRegistration
	}
	if v.Source == "" {
		v.Source = "registration"
	}
	return r.pool.QueryRow(ctx, q, v.OwnerID, v.EventID, v.FullName, v.Email, v.PhoneNumber,
		v.Company, v.Location, v.Designation, v.Status, v.FormResponses, v.Source).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// GetByOwnerAndID returns one visitor in the tenant.
func (r *Repository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Visitor, error) {
	const q = `SELECT ` + visitorColumns + ` FROM visitors WHERE owner_id = $1 AND id = $2`
	return scanVisitor(r.pool.QueryRow(ctx, q, ownerID, id))
}

// List returns one page of the tenant's visitors plus the total count. search
// matches name, email, company and location case-insensitively; the owner
// condition is always conjuncted and never derived from request input.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]models.Visitor, int, error) {
	where := ` WHERE owner_id = $1`
	args := []interface{}{ownerID}
	if search != "" {
		where += ` AND (full_name ILIKE $2 OR email ILIKE $2 OR company ILIKE $2 OR location ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM visitors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + visitorColumns + ` FROM visitors` + where + ` ORDER BY created_at DESC`
	args = append(args, limit, offset)
	q += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
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

// CheckIn marks a visitor as visited with the canonical entry type. The
// transition is idempotent: an already-visited visitor keeps its original
// entry type and check-in time.
func (r *Repository) CheckIn(ctx context.Context, ownerID, id uuid.UUID, entryType models.EntryType) (*models.Visitor, error) {
	const q = `UPDATE visitors
		SET status = $1, entry_type = $2, checked_in_at = NOW(), updated_at = NOW()
		WHERE owner_id = $3 AND id = $4 AND status <> $1
		RETURNING ` + visitorColumns
	v, err := scanVisitor(r.pool.QueryRow(ctx, q, models.StatusVisited, entryType, ownerID, id))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	// No row updated: either already visited (fine) or genuinely absent.
	return r.GetByOwnerAndID(ctx, ownerID, id)
}
