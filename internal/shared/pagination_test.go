package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 3, p.TotalPages)

	defaulted := NewPagination(0, 0, 5)
	assert.Equal(t, 1, defaulted.Page)
	assert.Equal(t, 20, defaulted.PerPage)
	assert.Equal(t, 1, defaulted.TotalPages)

	empty := NewPagination(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestPageFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3&perPage=50", nil)
	page, perPage := PageFromRequest(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, perPage)

	r = httptest.NewRequest("GET", "/?page=-1&perPage=9999", nil)
	page, perPage = PageFromRequest(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage, "perPage above the cap falls back to default")

	r = httptest.NewRequest("GET", "/", nil)
	page, perPage = PageFromRequest(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, perPage)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 0, Offset(0, 20))
	assert.Equal(t, 40, Offset(3, 20))
}
