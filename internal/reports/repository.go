package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitrack/backend/internal/models"
)

// Summary is the tenant-wide attendance report.
type Summary struct {
	TotalVisitors int          `json:"totalVisitors"`
	Registered    int          `json:"registered"`
	Visited       int          `json:"visited"`
	ManualEntries int          `json:"manualEntries"`
	QREntries     int          `json:"qrEntries"`
	TotalEvents   int          `json:"totalEvents"`
	DatasetSize   int          `json:"datasetSize"`
	Events        []EventStats `json:"events"`
}

// EventStats is per-event attendance.
type EventStats struct {
	EventID    uuid.UUID `json:"eventId"`
	Title      string    `json:"title"`
	Registered int       `json:"registered"`
	Visited    int       `json:"visited"`
}

// Repository computes report aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summary builds the tenant report in two queries: one over visitors, events
// and the dataset, one per-event breakdown.
func (r *Repository) Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error) {
	const totalsQ = `SELECT
		(SELECT COUNT(*) FROM visitors WHERE owner_id = $1),
		(SELECT COUNT(*) FROM visitors WHERE owner_id = $1 AND status = $2),
		(SELECT COUNT(*) FROM visitors WHERE owner_id = $1 AND status = $3),
		(SELECT COUNT(*) FROM visitors WHERE owner_id = $1 AND status = $3 AND entry_type = $4),
		(SELECT COUNT(*) FROM visitors WHERE owner_id = $1 AND status = $3 AND entry_type = $5),
		(SELECT COUNT(*) FROM events WHERE owner_id = $1),
		(SELECT COUNT(*) FROM visitor_dataset WHERE owner_id = $1)`

	var s Summary
	err := r.pool.QueryRow(ctx, totalsQ, ownerID,
		models.StatusRegistration, models.StatusVisited, models.EntryManual, models.EntryQR).
		Scan(&s.TotalVisitors, &s.Registered, &s.Visited, &s.ManualEntries, &s.QREntries,
			&s.TotalEvents, &s.DatasetSize)
	if err != nil {
		return nil, err
	}

	const eventsQ = `SELECT e.id, e.title,
		COUNT(v.id) FILTER (WHERE v.status = $2),
		COUNT(v.id) FILTER (WHERE v.status = $3)
		FROM events e
		LEFT JOIN visitors v ON v.event_id = e.id
		WHERE e.owner_id = $1
		GROUP BY e.id, e.title
		ORDER BY e.starts_at DESC`
	rows, err := r.pool.Query(ctx, eventsQ, ownerID, models.StatusRegistration, models.StatusVisited)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	s.Events = []EventStats{}
	for rows.Next() {
		var es EventStats
		if err := rows.Scan(&es.EventID, &es.Title, &es.Registered, &es.Visited); err != nil {
			return nil, err
		}
		s.Events = append(s.Events, es)
	}
	return &s, rows.Err()
}
