package messages

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/pkg/pagination"
	"github.com/visitrack/backend/pkg/queue"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles message log HTTP endpoints.
type Handler struct {
	repo   *Repository
	jobs   *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a messages handler. jobs may be nil when the email worker
// is not configured; Resend then reports the queue as unavailable.
func NewHandler(repo *Repository, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jobs: jobs, logger: logger}
}

// List handles GET /api/messages?page=&limit=&eventId=.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	var eventID *uuid.UUID
	if raw := c.Query("eventId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid eventId")
			return
		}
		eventID = &id
	}
	p := pagination.FromQuery(c)
	list, total, err := h.repo.ListByOwner(c.Request.Context(), ownerID, eventID, p.Limit, p.Offset())
	if err != nil {
		h.logger.Error("list message logs failed", zap.Error(err))
		response.Internal(c, "failed to list messages")
		return
	}
	response.OK(c, pagination.NewResult(list, total, p))
}

// ResendRequest is the body for POST /api/messages/resend.
type ResendRequest struct {
	MessageID string `json:"messageId" binding:"required,uuid"`
}

// Resend handles POST /api/messages/resend: re-enqueues a previously logged
// badge email.
func (h *Handler) Resend(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "messageId required")
		return
	}
	if h.jobs == nil {
		response.Internal(c, "email queue not configured")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	m, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, uuid.MustParse(req.MessageID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "message not found")
			return
		}
		h.logger.Error("load message failed", zap.Error(err))
		response.Internal(c, "failed to load message")
		return
	}
	if m.VisitorID == nil || m.EventID == nil {
		response.BadRequest(c, "message is not resendable")
		return
	}
	err = h.jobs.EnqueueBadgeEmail(c.Request.Context(), queue.BadgeEmailPayload{
		MessageLogID:   m.ID,
		OwnerID:        m.OwnerID,
		VisitorID:      *m.VisitorID,
		EventID:        *m.EventID,
		RecipientEmail: m.RecipientEmail,
	})
	if err != nil {
		h.logger.Error("enqueue resend failed", zap.Error(err))
		response.Internal(c, "failed to queue message")
		return
	}
	response.OK(c, gin.H{"queued": true})
}
