// internal/utils/pagination.go
package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrInvalidSortField is returned when sortBy is not in the entity's
// allow-list. It must surface as a validation error, never reach the query.
var ErrInvalidSortField = errors.New("invalid sort field")

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// CursorParams carries the common list-endpoint query parameters. Cursors are
// opaque base64 tokens; offset pagination drifts under concurrent writes and
// is not offered.
type CursorParams struct {
	Cursor    string `json:"cursor,omitempty"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
	Search    string `json:"search,omitempty"`
}

type PageInfo struct {
	Limit           int    `json:"limit"`
	HasNextPage     bool   `json:"has_next_page"`
	HasPreviousPage bool   `json:"has_previous_page"`
	NextCursor      string `json:"next_cursor,omitempty"`
}

type cursorPayload struct {
	Value interface{} `json:"value"`
}

func GetCursorParams(c *gin.Context, defaultSort string) CursorParams {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	sortOrder := strings.ToUpper(c.DefaultQuery("sortOrder", "ASC"))
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	return CursorParams{
		Cursor:    c.Query("cursor"),
		Limit:     limit,
		SortBy:    c.DefaultQuery("sortBy", defaultSort),
		SortOrder: sortOrder,
		Search:    c.Query("search"),
	}
}

// EncodeCursor wraps the last-seen sort value into an opaque token:
// base64(JSON {"value": v}).
func EncodeCursor(value interface{}) string {
	payload, err := json.Marshal(cursorPayload{Value: value})
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(payload)
}

// DecodeCursor recovers the sort value from a cursor token. Malformed tokens
// degrade to a nil value rather than failing the request; a nil value applies
// no resume constraint, which is first-page behavior.
func DecodeCursor(cursor string) interface{} {
	if cursor == "" {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	return payload.Value
}

// ResolveSortColumn maps an API sort key to a table-qualified, quoted database
// column through the entity's allow-list. User input never reaches the query
// builder as a raw identifier.
func ResolveSortColumn(table, sortBy string, allowed map[string]string) (string, error) {
	column, ok := allowed[sortBy]
	if !ok {
		return "", ErrInvalidSortField
	}
	return pq.QuoteIdentifier(table) + "." + pq.QuoteIdentifier(column), nil
}

// ApplyCursor adds the resume predicate and the stable ordering for a page
// query. The inequality is strict so the previous page's last row never
// repeats; created_at DESC breaks ties when sort values collide. The column
// must come from ResolveSortColumn.
func ApplyCursor(db *gorm.DB, table, column string, params CursorParams) *gorm.DB {
	if value := DecodeCursor(params.Cursor); value != nil {
		op := "> ?"
		if params.SortOrder == "DESC" {
			op = "< ?"
		}
		db = db.Where(column+" "+op, value)
	}

	tiebreak := pq.QuoteIdentifier(table) + ".created_at DESC"
	return db.Order(column + " " + params.SortOrder + ", " + tiebreak)
}

// SlicePage trims the limit+1 probe row and reports page metadata. The caller
// fetched limit+1 rows; n is how many came back.
func SlicePage(n int, params CursorParams) (int, PageInfo) {
	info := PageInfo{
		Limit:           params.Limit,
		HasNextPage:     n > params.Limit,
		HasPreviousPage: params.Cursor != "",
	}

	if info.HasNextPage {
		return params.Limit, info
	}
	return n, info
}
