package badges

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func postBadge(t *testing.T, body string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	router := gin.New()
	router.POST("/api/badges", h.Create)
	req := httptest.NewRequest("POST", "/api/badges", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w.Code
}

func TestCreateRejectsIncompleteBody(t *testing.T) {
	eventID := uuid.New().String()

	cases := []struct {
		name string
		body string
	}{
		{"missing badgeImage", `{"eventId":"` + eventID + `","badgeName":"VIP"}`},
		{"missing badgeName", `{"eventId":"` + eventID + `","badgeImage":"https://cdn.example.com/vip.png"}`},
		{"missing eventId", `{"badgeName":"VIP","badgeImage":"https://cdn.example.com/vip.png"}`},
		{"non-uuid eventId", `{"eventId":"42","badgeName":"VIP","badgeImage":"https://cdn.example.com/vip.png"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, postBadge(t, tc.body))
		})
	}
}
