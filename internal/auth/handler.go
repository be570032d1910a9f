package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/access"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/response"
	"github.com/visitrack/backend/pkg/utils"
)

// Store is the user and tenant persistence the auth handlers depend on.
// Repository implements it; tests substitute stubs.
type Store interface {
	CreateTenant(ctx context.Context, name string) (*models.Tenant, error)
	CreateUser(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RegisterRequest is the body for POST /api/register: tenant signup creating
// the organization and its owner admin.
type RegisterRequest struct {
	CompanyName string `json:"companyName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	FullName    string `json:"fullName" binding:"required"`
}

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response. GlobalVariables carries what the UI
// routing guards need: tenant identity and the page-access set.
type TokenResponse struct {
	Token           string            `json:"token"`
	User            models.UserPublic `json:"user"`
	GlobalVariables GlobalVariables   `json:"globalVariables"`
}

// GlobalVariables is the UI bootstrap payload returned at login.
type GlobalVariables struct {
	OwnerID    string          `json:"ownerId"`
	PageAccess map[string]bool `json:"pageAccess"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   Store
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo Store, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /api/register. Creates a tenant and its owner admin
// user with the full default page-access set.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	tenant, err := h.repo.CreateTenant(c.Request.Context(), req.CompanyName)
	if err != nil {
		h.logger.Error("create tenant failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	user := &models.User{
		OwnerID:    tenant.ID,
		Email:      req.Email,
		Username:   req.Username,
		Password:   hash,
		FullName:   req.FullName,
		Role:       models.RoleAdmin,
		Active:     true,
		PageAccess: access.DefaultSet().ToMap(),
	}
	if err := h.repo.CreateUser(c.Request.Context(), user); err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	h.respondWithToken(c, user, true)
}

// Login handles POST /api/login. Bad email, bad password and deactivated
// account all return the same 401 so the cases are indistinguishable.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("lookup user failed", zap.Error(err))
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !user.Active || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	h.respondWithToken(c, user, false)
}

func (h *Handler) respondWithToken(c *gin.Context, user *models.User, created bool) {
	token, err := h.jwt.Generate(user.ID, user.OwnerID, user.Email, user.Username,
		string(user.Role), user.FullName)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}

	body := TokenResponse{
		Token: token,
		User:  user.ToPublic(),
		GlobalVariables: GlobalVariables{
			OwnerID:    user.OwnerID.String(),
			PageAccess: user.PageAccess,
		},
	}
	if created {
		response.Created(c, body)
		return
	}
	response.OK(c, body)
}
