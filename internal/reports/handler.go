package reports

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles GET /api/reports/summary.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a reports handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Summary handles GET /api/reports/summary.
func (h *Handler) Summary(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	s, err := h.repo.Summary(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("build report failed", zap.Error(err))
		response.Internal(c, "failed to build report")
		return
	}
	response.OK(c, s)
}
