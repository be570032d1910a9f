package events

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/response"
)

// Store is the event persistence the handler depends on. Repository
// implements it; tests substitute stubs.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Event, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, title, description, location string, startsAt, endsAt *time.Time) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   Store
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// CreateRequest is the body for POST /api/events.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"startsAt" binding:"required"`
	EndsAt      *time.Time `json:"endsAt"`
}

// Create handles POST /api/events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e := &models.Event{
		OwnerID:     c.MustGet(middleware.ContextOwnerID).(uuid.UUID),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   c.MustGet(middleware.ContextUserID).(uuid.UUID),
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /api/events.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	list, err := h.repo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	e, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, e)
}

// UpdateRequest is the body for PUT /api/events/:id.
type UpdateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// Update handles PUT /api/events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	err = h.repo.Update(c.Request.Context(), ownerID, id, req.Title, req.Description, req.Location, req.StartsAt, req.EndsAt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("update event failed", zap.Error(err))
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, gin.H{"id": id})
}

// Delete handles DELETE /api/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	if err := h.repo.Delete(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("delete event failed", zap.Error(err))
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}
