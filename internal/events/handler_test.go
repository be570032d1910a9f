package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
)

// stubStore holds events for a single owner; lookups under any other owner
// behave like the row does not exist.
type stubStore struct {
	events map[uuid.UUID]*models.Event
}

func (s *stubStore) Create(ctx context.Context, e *models.Event) error {
	e.ID = uuid.New()
	s.events[e.ID] = e
	return nil
}

func (s *stubStore) GetByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok || e.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *stubStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error) {
	list := []models.Event{}
	for _, e := range s.events {
		if e.OwnerID == ownerID {
			list = append(list, *e)
		}
	}
	return list, nil
}

func (s *stubStore) Update(ctx context.Context, ownerID, id uuid.UUID, title, description, location string, startsAt, endsAt *time.Time) error {
	e, ok := s.events[id]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	e.Title = title
	return nil
}

func (s *stubStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	e, ok := s.events[id]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// eventsRouter serves the event routes with the given identity injected, the
// way the JWT middleware would after validating a token.
func eventsRouter(store *stubStore, ownerID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextOwnerID, ownerID)
		c.Set(middleware.ContextUserID, uuid.New())
		c.Next()
	})
	router.GET("/api/events", h.List)
	router.GET("/api/events/:id", h.GetByID)
	router.DELETE("/api/events/:id", h.Delete)
	return router
}

func TestTenantCannotReadAnotherTenantsEvent(t *testing.T) {
	ownerA := uuid.New()
	ownerB := uuid.New()
	event := &models.Event{
		ID:       uuid.New(),
		OwnerID:  ownerA,
		Title:    "Annual Expo",
		StartsAt: time.Now().Add(24 * time.Hour),
	}
	store := &stubStore{events: map[uuid.UUID]*models.Event{event.ID: event}}

	// The owning tenant sees the record.
	w := httptest.NewRecorder()
	eventsRouter(store, ownerA).ServeHTTP(w, httptest.NewRequest("GET", "/api/events/"+event.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Annual Expo")

	// Another tenant gets a 404 on the same id, not a 403 leaking existence.
	w = httptest.NewRecorder()
	eventsRouter(store, ownerB).ServeHTTP(w, httptest.NewRequest("GET", "/api/events/"+event.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantCannotDeleteAnotherTenantsEvent(t *testing.T) {
	ownerA := uuid.New()
	ownerB := uuid.New()
	event := &models.Event{ID: uuid.New(), OwnerID: ownerA, Title: "Trade Fair"}
	store := &stubStore{events: map[uuid.UUID]*models.Event{event.ID: event}}

	w := httptest.NewRecorder()
	eventsRouter(store, ownerB).ServeHTTP(w, httptest.NewRequest("DELETE", "/api/events/"+event.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The record survives and stays listed for its owner.
	w = httptest.NewRecorder()
	eventsRouter(store, ownerA).ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Trade Fair")
}

func TestListIsScopedToOwner(t *testing.T) {
	ownerA := uuid.New()
	ownerB := uuid.New()
	store := &stubStore{events: map[uuid.UUID]*models.Event{}}
	a := &models.Event{ID: uuid.New(), OwnerID: ownerA, Title: "Supplier Summit"}
	b := &models.Event{ID: uuid.New(), OwnerID: ownerB, Title: "Career Day"}
	store.events[a.ID] = a
	store.events[b.ID] = b

	w := httptest.NewRecorder()
	eventsRouter(store, ownerA).ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Supplier Summit")
	assert.NotContains(t, w.Body.String(), "Career Day")
}
