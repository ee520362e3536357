package dto

import "net/http"

// Transport-level error codes. Domain codes pass through unchanged; these
// cover failures that never reach the application layer.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain rejection codes to HTTP status codes.
// Duplicate documents and references are conflicts; state-machine and stock
// rejections are unprocessable; input rejections are bad requests.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound: http.StatusNotFound,

	"ALREADY_EXISTS":      http.StatusConflict,
	"DUPLICATE_REFERENCE": http.StatusConflict,

	"INVALID_STATE_TRANSITION": http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":       http.StatusUnprocessableEntity,
	"BATCH_REQUIRED":           http.StatusUnprocessableEntity,
	"CROSS_BRANCH_VIOLATION":   http.StatusUnprocessableEntity,
	"MISSING_CONTROL_NUMBER":   http.StatusUnprocessableEntity,
	"INVALID_SOURCE_STATE":     http.StatusUnprocessableEntity,
	"OVER_RETURN":              http.StatusUnprocessableEntity,
	"ORDER_PARTNER_MISMATCH":   http.StatusUnprocessableEntity,
	"CURRENCY_MISMATCH":        http.StatusUnprocessableEntity,
	"ACCOUNT_INACTIVE":         http.StatusUnprocessableEntity,

	"INVALID_INPUT":   http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeInternal: http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for a rejection code. Unmapped codes
// come from aggregate constructors validating input, so they answer 400.
func HTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}
