package users

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/access"
	"github.com/visitrack/backend/internal/auth"
	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/response"
	"github.com/visitrack/backend/pkg/utils"
)

// Handler handles tenant user administration endpoints.
type Handler struct {
	repo     *Repository
	authRepo auth.Store
	logger   *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, authRepo auth.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, authRepo: authRepo, logger: logger}
}

func ownerID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
}

// List handles GET /api/users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListByOwner(c.Request.Context(), ownerID(c))
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// CreateRequest is the body for POST /api/users. New users start with the
// full default page-access set unless pageAccess narrows it.
type CreateRequest struct {
	Email      string          `json:"email" binding:"required,email"`
	Username   string          `json:"username" binding:"required"`
	Password   string          `json:"password" binding:"required,min=6"`
	FullName   string          `json:"fullName" binding:"required"`
	Role       string          `json:"role"`
	PageAccess map[string]bool `json:"pageAccess"`
}

// Create handles POST /api/users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleStaff
	switch req.Role {
	case "", "staff":
	case "admin":
		role = models.RoleAdmin
	default:
		response.BadRequest(c, "invalid role")
		return
	}

	if _, err := h.authRepo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	set := access.DefaultSet()
	if req.PageAccess != nil {
		set = set.Apply(pageOverrides(req.PageAccess))
	}

	user := &models.User{
		OwnerID:    ownerID(c),
		Email:      req.Email,
		Username:   req.Username,
		Password:   hash,
		FullName:   req.FullName,
		Role:       role,
		Active:     true,
		PageAccess: set.ToMap(),
	}
	if err := h.authRepo.CreateUser(c.Request.Context(), user); err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, user.ToPublic())
}

// PageAccessRequest is the body for PUT /api/users/:id/page-access.
type PageAccessRequest struct {
	PageAccess map[string]bool `json:"pageAccess" binding:"required"`
}

// UpdatePageAccess handles PUT /api/users/:id/page-access. The request
// replaces the user's set; unknown page keys are rejected.
func (h *Handler) UpdatePageAccess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req PageAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "pageAccess required")
		return
	}
	for key := range req.PageAccess {
		if !access.Valid(access.Page(key)) {
			response.BadRequest(c, "unknown page key: "+key)
			return
		}
	}

	set := access.Set{}.Apply(pageOverrides(req.PageAccess))
	if err := h.repo.UpdatePageAccess(c.Request.Context(), ownerID(c), id, set); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("update page access failed", zap.Error(err))
		response.Internal(c, "failed to update page access")
		return
	}
	response.OK(c, gin.H{"pageAccess": set.ToMap()})
}

// ActiveRequest is the body for PUT /api/users/:id/active.
type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive handles PUT /api/users/:id/active.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "active required")
		return
	}
	if err := h.repo.SetActive(c.Request.Context(), ownerID(c), id, *req.Active); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("set active failed", zap.Error(err))
		response.Internal(c, "failed to update user")
		return
	}
	response.OK(c, gin.H{"active": *req.Active})
}

// Profile handles GET /api/profile: the authenticated user's own record.
func (h *Handler) Profile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	user, err := h.authRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("load profile failed", zap.Error(err))
		response.Internal(c, "failed to load profile")
		return
	}
	response.OK(c, user.ToPublic())
}

// BackfillPageAccess handles POST /api/users/backfill-page-access. Idempotent:
// already-migrated records are untouched.
func (h *Handler) BackfillPageAccess(c *gin.Context) {
	updated, err := h.repo.BackfillPageAccess(c.Request.Context(), ownerID(c))
	if err != nil {
		h.logger.Error("backfill failed", zap.Error(err))
		response.Internal(c, "failed to backfill page access")
		return
	}
	response.OK(c, gin.H{"updated": updated})
}

func pageOverrides(m map[string]bool) map[access.Page]bool {
	out := make(map[access.Page]bool, len(m))
	for k, v := range m {
		out[access.Page(k)] = v
	}
	return out
}
