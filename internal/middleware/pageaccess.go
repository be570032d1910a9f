package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/visitrack/backend/internal/access"
	"github.com/visitrack/backend/pkg/response"
)

// AccessSource loads a user's page-access set. Implemented by auth.Repository.
type AccessSource interface {
	PageAccess(ctx context.Context, userID uuid.UUID) (access.Set, error)
}

// RequirePage returns a middleware that allows only users whose page-access
// set grants the given page. Call after JWT. A missing key denies, the same
// as an explicit false.
func RequirePage(src AccessSource, page access.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, ok := c.Get(ContextUserID)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		userID, _ := userVal.(uuid.UUID)
		set, err := src.PageAccess(c.Request.Context(), userID)
		if err != nil {
			response.Unauthorized(c, "account not found or deactivated")
			c.Abort()
			return
		}
		if !set.Allows(page) {
			response.Forbidden(c, "no access to "+string(page))
			c.Abort()
			return
		}
		c.Next()
	}
}
