package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitrack/backend/internal/auth"
)

func jwtTestRouter(svc *auth.JWTService) (*gin.Engine, *gin.Context) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var captured gin.Context
	router.GET("/me", JWT(svc), func(c *gin.Context) {
		captured = *c.Copy()
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestJWTMiddlewareInjectsIdentity(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	ownerID := uuid.New()
	token, err := svc.Generate(userID, ownerID, "a@b.com", "alice", "admin", "Alice A")
	require.NoError(t, err)

	router, captured := jwtTestRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, captured.MustGet(ContextUserID))
	assert.Equal(t, ownerID, captured.MustGet(ContextOwnerID))
	assert.Equal(t, "admin", captured.MustGet(ContextUserRole))
	assert.Equal(t, "alice", captured.MustGet(ContextUsername))
}

func TestJWTMiddlewareRejects(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	other, err := auth.NewJWTService("other-secret", 1).
		Generate(uuid.New(), uuid.New(), "a@b.com", "alice", "admin", "Alice A")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"malformed token", "Bearer not-a-token"},
		{"wrong signature", "Bearer " + other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := jwtTestRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
