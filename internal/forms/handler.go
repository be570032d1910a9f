package forms

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/events"
	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles form builder HTTP endpoints.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	logger    *zap.Logger
}

// NewHandler creates a forms handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, logger: logger}
}

// CreateRequest is the body for POST /api/forms.
type CreateRequest struct {
	EventID string             `json:"eventId" binding:"required,uuid"`
	Title   string             `json:"title" binding:"required"`
	Fields  []models.FormField `json:"fields" binding:"required"`
}

// Create handles POST /api/forms. The referenced event must belong to the
// token's tenant.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := validateFields(req.Fields); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	eventID := uuid.MustParse(req.EventID)
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)

	if _, err := h.eventRepo.GetByOwnerAndID(c.Request.Context(), ownerID, eventID); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("verify event failed", zap.Error(err))
		response.Internal(c, "failed to verify event")
		return
	}

	f := &models.Form{
		OwnerID: ownerID,
		EventID: eventID,
		Title:   req.Title,
		Fields:  req.Fields,
	}
	if err := h.repo.Create(c.Request.Context(), f); err != nil {
		h.logger.Error("create form failed", zap.Error(err))
		response.Internal(c, "failed to create form")
		return
	}
	response.Created(c, f)
}

// List handles GET /api/forms.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	list, err := h.repo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("list forms failed", zap.Error(err))
		response.Internal(c, "failed to list forms")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/forms/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	f, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("get form failed", zap.Error(err))
		response.Internal(c, "failed to load form")
		return
	}
	response.OK(c, f)
}

// UpdateRequest is the body for PUT /api/forms/:id.
type UpdateRequest struct {
	Title  string             `json:"title" binding:"required"`
	Fields []models.FormField `json:"fields" binding:"required"`
}

// Update handles PUT /api/forms/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := validateFields(req.Fields); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	if err := h.repo.Update(c.Request.Context(), ownerID, id, req.Title, req.Fields); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("update form failed", zap.Error(err))
		response.Internal(c, "failed to update form")
		return
	}
	response.OK(c, gin.H{"id": id})
}

// Delete handles DELETE /api/forms/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	if err := h.repo.Delete(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("delete form failed", zap.Error(err))
		response.Internal(c, "failed to delete form")
		return
	}
	response.NoContent(c)
}

func validateFields(fields []models.FormField) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.ID == "" || f.Label == "" {
			return errors.New("every field needs an id and a label")
		}
		switch f.Type {
		case "text", "email", "number", "textarea", "select":
		default:
			return errors.New("unsupported field type: " + f.Type)
		}
		if _, dup := seen[f.ID]; dup {
			return errors.New("duplicate field id: " + f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}
