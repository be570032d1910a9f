package badges

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/events"
	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/response"
	"github.com/visitrack/backend/pkg/storage"
)

// Handler handles badge HTTP endpoints.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	s3        *storage.S3
	logger    *zap.Logger
}

// NewHandler creates a badges handler. s3 may be nil when object storage is not
// configured; artwork endpoints then report storage as unavailable.
func NewHandler(repo *Repository, eventRepo *events.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, s3: s3, logger: logger}
}

// CreateRequest is the body for POST /api/badges. BadgeImage is the artwork
// reference (a URL or a previously uploaded object locator); a later upload via
// the image endpoint replaces it with managed storage.
type CreateRequest struct {
	EventID    string `json:"eventId" binding:"required,uuid"`
	BadgeName  string `json:"badgeName" binding:"required"`
	BadgeImage string `json:"badgeImage" binding:"required"`
}

// Create handles POST /api/badges. The referenced event must belong to the
// caller's tenant.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	eventID := uuid.MustParse(req.EventID)
	if _, err := h.eventRepo.GetByOwnerAndID(c.Request.Context(), ownerID, eventID); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("load event failed", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}
	b := &models.Badge{OwnerID: ownerID, EventID: eventID, BadgeName: req.BadgeName, ImageURL: req.BadgeImage}
	if err := h.repo.Create(c.Request.Context(), b); err != nil {
		h.logger.Error("create badge failed", zap.Error(err))
		response.Internal(c, "failed to create badge")
		return
	}
	response.Created(c, b)
}

// List handles GET /api/badges.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	list, err := h.repo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("list badges failed", zap.Error(err))
		response.Internal(c, "failed to list badges")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/badges/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid badge id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	b, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "badge not found")
			return
		}
		h.logger.Error("get badge failed", zap.Error(err))
		response.Internal(c, "failed to load badge")
		return
	}
	response.OK(c, b)
}

// UpdateRequest is the body for PUT /api/badges/:id.
type UpdateRequest struct {
	BadgeName string `json:"badgeName" binding:"required"`
}

// Update handles PUT /api/badges/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid badge id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "badgeName required")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	b, err := h.repo.Update(c.Request.Context(), ownerID, id, req.BadgeName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "badge not found")
			return
		}
		h.logger.Error("update badge failed", zap.Error(err))
		response.Internal(c, "failed to update badge")
		return
	}
	response.OK(c, b)
}

// Delete handles DELETE /api/badges/:id. Stored artwork is removed best-effort
// after the row.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid badge id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	b, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "badge not found")
			return
		}
		h.logger.Error("get badge failed", zap.Error(err))
		response.Internal(c, "failed to load badge")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.logger.Error("delete badge failed", zap.Error(err))
		response.Internal(c, "failed to delete badge")
		return
	}
	if h.s3 != nil && b.ImageKey != "" {
		if err := h.s3.Delete(c.Request.Context(), b.ImageKey); err != nil {
			h.logger.Warn("delete badge artwork failed", zap.Error(err), zap.String("key", b.ImageKey))
		}
	}
	response.OK(c, gin.H{"deleted": true})
}

// UploadImage handles POST /api/badges/:id/image (multipart field "image").
func (h *Handler) UploadImage(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "object storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid badge id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	if _, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "badge not found")
			return
		}
		h.logger.Error("get badge failed", zap.Error(err))
		response.Internal(c, "failed to load badge")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file required")
		return
	}
	if fileHeader.Size > storage.MaxBadgeFileSize {
		response.BadRequest(c, "image exceeds maximum size of 5MB")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateBadgeFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported image type: jpeg, png or webp required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer file.Close()

	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}
	key := storage.BadgeKey(ownerID.String(), id.String(), fileHeader.Filename)
	url, err := h.s3.Upload(c.Request.Context(), key, contentType, file)
	if err != nil {
		h.logger.Error("upload badge artwork failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to store image")
		return
	}
	b, err := h.repo.SetImage(c.Request.Context(), ownerID, id, key, url)
	if err != nil {
		h.logger.Error("record badge artwork failed", zap.Error(err))
		response.Internal(c, "failed to record image")
		return
	}
	response.OK(c, b)
}

// ImageURL handles GET /api/badges/:id/image-url: returns a time-limited
// download URL for the artwork.
func (h *Handler) ImageURL(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "object storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid badge id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	b, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "badge not found")
			return
		}
		h.logger.Error("get badge failed", zap.Error(err))
		response.Internal(c, "failed to load badge")
		return
	}
	if b.ImageKey == "" {
		response.NotFound(c, "badge has no artwork")
		return
	}
	url, err := h.s3.PresignGet(c.Request.Context(), b.ImageKey)
	if err != nil {
		h.logger.Error("presign badge artwork failed", zap.Error(err))
		response.Internal(c, "failed to sign image url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
