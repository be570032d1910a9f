package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/utils"
)

type stubStore struct {
	users map[string]*models.User
}

func (s *stubStore) CreateTenant(ctx context.Context, name string) (*models.Tenant, error) {
	return &models.Tenant{ID: uuid.New(), Name: name}, nil
}

func (s *stubStore) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	s.users[u.Email] = u
	return nil
}

func (s *stubStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func loginRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)

	store := &stubStore{users: map[string]*models.User{
		"alice@acme.test": {
			ID:       uuid.New(),
			OwnerID:  uuid.New(),
			Email:    "alice@acme.test",
			Username: "alice",
			Password: hash,
			Role:     models.RoleAdmin,
			Active:   true,
		},
		"gone@acme.test": {
			ID:       uuid.New(),
			OwnerID:  uuid.New(),
			Email:    "gone@acme.test",
			Username: "gone",
			Password: hash,
			Role:     models.RoleStaff,
			Active:   false,
		},
	}}

	h := NewHandler(store, NewJWTService("test-secret", 1), nil)
	router := gin.New()
	router.POST("/api/login", h.Login)
	return router
}

func doLogin(router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginSucceedsForActiveUser(t *testing.T) {
	router := loginRouter(t)

	w := doLogin(router, "alice@acme.test", "correct-horse")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Contains(t, w.Body.String(), `"ownerId"`)
}

// Unknown email, wrong password and a deactivated account must be
// indistinguishable to the caller: same status, same body.
func TestLoginFailureIsUniform(t *testing.T) {
	router := loginRouter(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@acme.test", "correct-horse"},
		{"wrong password", "alice@acme.test", "wrong-horse"},
		{"deactivated account", "gone@acme.test", "correct-horse"},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doLogin(router, tc.email, tc.password)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			bodies = append(bodies, w.Body.String())
		})
	}

	require.Len(t, bodies, 3)
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
}
