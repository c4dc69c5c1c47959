// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	cursor := EncodeCursor(42)
	require.NotEmpty(t, cursor)

	value := DecodeCursor(cursor)
	// JSON round-trips numbers as float64.
	assert.Equal(t, float64(42), value)

	cursor = EncodeCursor("premium-listing")
	assert.Equal(t, "premium-listing", DecodeCursor(cursor))
}

func TestDecodeCursorMalformed(t *testing.T) {
	assert.Nil(t, DecodeCursor(""))
	assert.Nil(t, DecodeCursor("!!!not-base64!!!"))
	// Valid base64 but not the cursor payload shape.
	assert.Nil(t, DecodeCursor("bm90LWpzb24="))
}

func TestResolveSortColumn(t *testing.T) {
	allowed := map[string]string{
		"order":      "display_order",
		"created_at": "created_at",
	}

	column, err := ResolveSortColumn("services", "order", allowed)
	require.NoError(t, err)
	assert.Equal(t, `"services"."display_order"`, column)

	_, err = ResolveSortColumn("services", "password_hash", allowed)
	assert.ErrorIs(t, err, ErrInvalidSortField)

	// Raw SQL in sortBy never reaches the query builder.
	_, err = ResolveSortColumn("services", "name; DROP TABLE services", allowed)
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestGetCursorParamsDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/services", nil)

	params := GetCursorParams(c, "order")
	assert.Equal(t, DefaultLimit, params.Limit)
	assert.Equal(t, "order", params.SortBy)
	assert.Equal(t, "ASC", params.SortOrder)
	assert.Empty(t, params.Cursor)
}

func TestGetCursorParamsBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/services?limit=5000&sortOrder=desc&sortBy=name", nil)

	params := GetCursorParams(c, "order")
	assert.Equal(t, DefaultLimit, params.Limit)
	assert.Equal(t, "name", params.SortBy)
	assert.Equal(t, "DESC", params.SortOrder)
}

func TestSlicePage(t *testing.T) {
	params := CursorParams{Limit: 20}

	// Exactly limit rows: no next page.
	n, info := SlicePage(20, params)
	assert.Equal(t, 20, n)
	assert.False(t, info.HasNextPage)
	assert.False(t, info.HasPreviousPage)

	// limit+1 probe row present: next page exists, row is trimmed.
	n, info = SlicePage(21, params)
	assert.Equal(t, 20, n)
	assert.True(t, info.HasNextPage)

	// A supplied cursor means we resumed from somewhere.
	params.Cursor = EncodeCursor(7)
	_, info = SlicePage(3, params)
	assert.True(t, info.HasPreviousPage)
	assert.False(t, info.HasNextPage)
}
