package entrylog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/pkg/pagination"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles GET /api/entry-log.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an entry log handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/entry-log?page=&limit=.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	p := pagination.FromQuery(c)
	list, total, err := h.repo.List(c.Request.Context(), ownerID, p.Limit, p.Offset())
	if err != nil {
		h.logger.Error("list entry log failed", zap.Error(err))
		response.Internal(c, "failed to load entry log")
		return
	}
	response.OK(c, pagination.NewResult(list, total, p))
}
