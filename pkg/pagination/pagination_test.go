package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryParams(t *testing.T, rawQuery string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromQuery(c)
}

func TestFromQueryDefaults(t *testing.T) {
	p := queryParams(t, "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestFromQueryClamps(t *testing.T) {
	p := queryParams(t, "page=0&limit=-5")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = queryParams(t, "page=abc&limit=xyz")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = queryParams(t, "page=3&limit=500")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestOffset(t *testing.T) {
	p := Params{Page: 4, Limit: 25}
	assert.Equal(t, 75, p.Offset())
}

func TestNewResult(t *testing.T) {
	res := NewResult([]int{1, 2, 3}, 23, Params{Page: 2, Limit: 10})
	assert.Equal(t, 23, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNextPage)
	assert.True(t, res.HasPrevPage)
}

func TestNewResultOutOfRangePage(t *testing.T) {
	// a page past the end carries an empty data set, not an error
	res := NewResult([]int{}, 23, Params{Page: 9, Limit: 10})
	assert.Equal(t, 3, res.TotalPages)
	assert.False(t, res.HasNextPage)
	assert.True(t, res.HasPrevPage)
	assert.Equal(t, []int{}, res.Data)
}

func TestNewResultEmpty(t *testing.T) {
	res := NewResult([]int{}, 0, Params{Page: 1, Limit: 10})
	assert.Equal(t, 0, res.TotalPages)
	assert.False(t, res.HasNextPage)
	assert.False(t, res.HasPrevPage)
}
