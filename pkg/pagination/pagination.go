// Package pagination maps page/limit request parameters to SQL offset/limit
// pairs and builds the list response envelope. Out-of-range pages yield an
// empty result set, never an error.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the page size used when the client sends none.
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Params is a validated page/limit pair.
type Params struct {
	Page  int
	Limit int
}

// FromQuery reads page and limit from the query string, clamping to sane
// bounds. Non-numeric or non-positive values fall back to defaults.
func FromQuery(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Result is the paginated list envelope.
type Result struct {
	Data        interface{} `json:"data"`
	Total       int         `json:"total"`
	Page        int         `json:"page"`
	Limit       int         `json:"limit"`
	TotalPages  int         `json:"totalPages"`
	HasNextPage bool        `json:"hasNextPage"`
	HasPrevPage bool        `json:"hasPrevPage"`
}

// NewResult builds the envelope for one page of data given the total row count.
// data should never be nil; pass an empty slice so the JSON field is [].
func NewResult(data interface{}, total int, p Params) Result {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Result{
		Data:        data,
		Total:       total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  totalPages,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1 && total > 0,
	}
}
