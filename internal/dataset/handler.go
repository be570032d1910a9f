package dataset

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/pagination"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles visitor dataset HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a dataset handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /api/visitor-dataset. With ?email= it returns the single matching
// record; with ?all=true it returns a paginated, searchable listing.
func (h *Handler) Get(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)

	if email := c.Query("email"); email != "" {
		rec, err := h.repo.GetByEmail(c.Request.Context(), ownerID, email)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				response.NotFound(c, "no dataset record for email")
				return
			}
			h.logger.Error("dataset lookup failed", zap.Error(err))
			response.Internal(c, "failed to look up dataset")
			return
		}
		response.OK(c, rec)
		return
	}

	if c.Query("all") != "true" {
		response.BadRequest(c, "email or all=true required")
		return
	}
	p := pagination.FromQuery(c)
	list, total, err := h.repo.List(c.Request.Context(), ownerID, c.Query("search"), p.Limit, p.Offset())
	if err != nil {
		h.logger.Error("list dataset failed", zap.Error(err))
		response.Internal(c, "failed to list dataset")
		return
	}
	response.OK(c, pagination.NewResult(list, total, p))
}

// UpsertRequest is the body for POST /api/visitor-dataset.
type UpsertRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Designation string `json:"designation"`
}

// Upsert handles POST /api/visitor-dataset: creates the record or updates the
// tenant's existing one for the same email.
func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	rec := &models.DatasetRecord{
		OwnerID:     ownerID,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Company:     req.Company,
		Location:    req.Location,
		Designation: req.Designation,
	}
	if err := h.repo.Upsert(c.Request.Context(), rec); err != nil {
		h.logger.Error("dataset upsert failed", zap.Error(err))
		response.Internal(c, "failed to save dataset record")
		return
	}
	response.OK(c, rec)
}
