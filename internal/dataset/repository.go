package dataset

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// ErrNotFound is returned when no dataset record matches.
var ErrNotFound = errors.New("dataset record not found")

// Repository handles the tenant visitor dataset: reusable visitor profiles
// keyed on email within a tenant.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dataset repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const datasetColumns = `id, owner_id, full_name, email, phone_number, company, location, designation, created_at, updated_at`

func scanRecord(row pgx.Row) (*models.DatasetRecord, error) {
	var rec models.DatasetRecord
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.FullName, &rec.Email, &rec.PhoneNumber,
		&rec.Company, &rec.Location, &rec.Designation, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Upsert inserts a record or, when the tenant already has one for the email,
// updates it in place. Matching is case-insensitive on email.
func (r *Repository) Upsert(ctx context.Context, rec *models.DatasetRecord) error {
	const q = `INSERT INTO visitor_dataset (owner_id, full_name, email, phone_number, company, location, designation)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7)
		ON CONFLICT (owner_id, email) WHERE email <> '' DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone_number = EXCLUDED.phone_number,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			designation = EXCLUDED.designation,
			updated_at = NOW()
		RETURNING id, email, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, rec.OwnerID, rec.FullName, rec.Email, rec.PhoneNumber,
		rec.Company, rec.Location, rec.Designation).
		Scan(&rec.ID, &rec.Email, &rec.CreatedAt, &rec.UpdatedAt)
}

// UpsertBatch writes many records inside one transaction, used by bulk import.
// Records with an email are upserted on (owner, email); records without one
// (phone-only contact sheets) never match the partial conflict key and are
// inserted as independent rows. Returns the number of rows written.
func (r *Repository) UpsertBatch(ctx context.Context, ownerID uuid.UUID, recs []models.DatasetRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO visitor_dataset (owner_id, full_name, email, phone_number, company, location, designation)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7)
		ON CONFLICT (owner_id, email) WHERE email <> '' DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone_number = EXCLUDED.phone_number,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			designation = EXCLUDED.designation,
			updated_at = NOW()`
	written := 0
	for _, rec := range recs {
		if _, err := tx.Exec(ctx, q, ownerID, rec.FullName, rec.Email, rec.PhoneNumber,
			rec.Company, rec.Location, rec.Designation); err != nil {
			return 0, err
		}
		written++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

// GetByEmail returns the tenant's record for an email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, ownerID uuid.UUID, email string) (*models.DatasetRecord, error) {
	const q = `SELECT ` + datasetColumns + ` FROM visitor_dataset WHERE owner_id = $1 AND email = LOWER($2)`
	return scanRecord(r.pool.QueryRow(ctx, q, ownerID, strings.TrimSpace(email)))
}

// List returns one page of the tenant's dataset plus the total count. search
// filters on name, email, company and location.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, search string, limit, offset int) ([]models.DatasetRecord, int, error) {
	where := ` WHERE owner_id = $1`
	args := []interface{}{ownerID}
	if search != "" {
		where += ` AND (full_name ILIKE $2 OR email ILIKE $2 OR company ILIKE $2 OR location ILIKE $2)`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM visitor_dataset`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + datasetColumns + ` FROM visitor_dataset` + where +
		` ORDER BY updated_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list := []models.DatasetRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}
