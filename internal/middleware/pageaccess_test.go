package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/visitrack/backend/internal/access"
)

type stubAccessSource struct {
	set access.Set
	err error
}

func (s stubAccessSource) PageAccess(ctx context.Context, userID uuid.UUID) (access.Set, error) {
	return s.set, s.err
}

func requirePageStatus(t *testing.T, src AccessSource, page access.Page, userID interface{}) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	router := gin.New()
	router.GET("/guarded",
		func(c *gin.Context) {
			if userID != nil {
				c.Set(ContextUserID, userID)
			}
		},
		RequirePage(src, page),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	req := httptest.NewRequest("GET", "/guarded", nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRequirePageAllows(t *testing.T) {
	src := stubAccessSource{set: access.Set{access.PageReports: true}}
	code := requirePageStatus(t, src, access.PageReports, uuid.New())
	assert.Equal(t, http.StatusOK, code)
}

func TestRequirePageDeniesAbsentKey(t *testing.T) {
	src := stubAccessSource{set: access.Set{access.PageDashboard: true}}
	code := requirePageStatus(t, src, access.PageReports, uuid.New())
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRequirePageDeniesExplicitFalse(t *testing.T) {
	src := stubAccessSource{set: access.Set{access.PageReports: false}}
	code := requirePageStatus(t, src, access.PageReports, uuid.New())
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRequirePageWithoutUserContext(t *testing.T) {
	src := stubAccessSource{set: access.DefaultSet()}
	code := requirePageStatus(t, src, access.PageReports, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRequirePageSourceError(t *testing.T) {
	src := stubAccessSource{err: errors.New("no such user")}
	code := requirePageStatus(t, src, access.PageReports, uuid.New())
	assert.Equal(t, http.StatusUnauthorized, code)
}
