package messages

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// Message log statuses and types.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"

	TypeBadgeConfirmation = "badge_confirmation"
)

// ErrNotFound is returned for missing or cross-tenant message logs.
var ErrNotFound = errors.New("message log not found")

// Repository handles message_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a message logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a message log in queued state.
func (r *Repository) Create(ctx context.Context, m *models.MessageLog) error {
	const q = `INSERT INTO message_logs (owner_id, event_id, visitor_id, message_type, recipient_email, subject, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	if m.Status == "" {
		m.Status = StatusQueued
	}
	return r.pool.QueryRow(ctx, q, m.OwnerID, m.EventID, m.VisitorID, m.MessageType,
		m.RecipientEmail, m.Subject, m.Status).
		Scan(&m.ID, &m.CreatedAt)
}

// ListByOwner returns the tenant's message logs, optionally filtered by event,
// newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, eventID *uuid.UUID, limit, offset int) ([]models.MessageLog, int, error) {
	where := ` WHERE owner_id = $1`
	args := []interface{}{ownerID}
	if eventID != nil {
		where += ` AND event_id = $2`
		args = append(args, *eventID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM message_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT id, owner_id, event_id, visitor_id, message_type, recipient_email, subject, status, sent_at, error_message, created_at
		FROM message_logs` + where + ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list := []models.MessageLog{}
	for rows.Next() {
		var m models.MessageLog
		var subject, errMsg *string
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.EventID, &m.VisitorID, &m.MessageType,
			&m.RecipientEmail, &subject, &m.Status, &m.SentAt, &errMsg, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		if subject != nil {
			m.Subject = *subject
		}
		if errMsg != nil {
			m.ErrorMessage = *errMsg
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// GetByOwnerAndID returns one message log in the tenant.
func (r *Repository) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.MessageLog, error) {
	const q = `SELECT id, owner_id, event_id, visitor_id, message_type, recipient_email, subject, status, sent_at, error_message, created_at
		FROM message_logs WHERE owner_id = $1 AND id = $2`
	var m models.MessageLog
	var subject, errMsg *string
	err := r.pool.QueryRow(ctx, q, ownerID, id).Scan(&m.ID, &m.OwnerID, &m.EventID, &m.VisitorID,
		&m.MessageType, &m.RecipientEmail, &subject, &m.Status, &m.SentAt, &errMsg, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if subject != nil {
		m.Subject = *subject
	}
	if errMsg != nil {
		m.ErrorMessage = *errMsg
	}
	return &m, nil
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE message_logs SET status = $1, sent_at = $2, error_message = NULL WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, StatusSent, time.Now(), id)
	return err
}

// MarkFailed records a delivery failure.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `UPDATE message_logs SET status = $1, error_message = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, StatusFailed, reason, id)
	return err
}
