package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/visitrack/backend/internal/auth"
	"github.com/visitrack/backend/pkg/response"
)

const (
	// ContextUserID is the key for the authenticated user ID in gin context.
	ContextUserID = "user_id"
	// ContextOwnerID is the key for the tenant (owner) ID in gin context.
	// Handlers must scope every storage call by this value; it comes from the
	// verified token only, never from request input.
	ContextOwnerID = "owner_id"
	// ContextUserRole is the key for the user role in gin context.
	ContextUserRole = "user_role"
	// ContextUsername is the key for the username in gin context.
	ContextUsername = "username"
)

// JWT returns a middleware that validates the bearer token and injects the
// tenant identity into the request context. This is the single authorization
// gate: no handler re-parses the token.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextOwnerID, claims.OwnerID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// RequireRole returns a middleware that allows only the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
