package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"DUPLICATE_REFERENCE", http.StatusConflict},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"INVALID_STATE_TRANSITION", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"BATCH_REQUIRED", http.StatusUnprocessableEntity},
		{"CROSS_BRANCH_VIOLATION", http.StatusUnprocessableEntity},
		{"MISSING_CONTROL_NUMBER", http.StatusUnprocessableEntity},
		{"INVALID_SOURCE_STATE", http.StatusUnprocessableEntity},
		{"OVER_RETURN", http.StatusUnprocessableEntity},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		// constructor validation codes fall through to 400
		{"INVALID_CURRENCY", http.StatusBadRequest},
		{"INVALID_AMOUNT", http.StatusBadRequest},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.code), tc.code)
	}
}

func TestListRequestToFilter(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		filter := ListRequest{}.ToFilter()

		assert.Equal(t, 1, filter.Page)
		assert.Equal(t, 20, filter.PageSize)
		assert.Equal(t, "created_at", filter.OrderBy)
		assert.Equal(t, "desc", filter.OrderDir)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		filter := ListRequest{Page: 3, PageSize: 50, OrderBy: "issued_at", OrderDir: "asc", Search: "harina"}.ToFilter()

		assert.Equal(t, 3, filter.Page)
		assert.Equal(t, 50, filter.PageSize)
		assert.Equal(t, "issued_at", filter.OrderBy)
		assert.Equal(t, "asc", filter.OrderDir)
		assert.Equal(t, "harina", filter.Search)
	})
}
