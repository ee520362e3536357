package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCurrencyValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	type payload struct {
		Currency string `json:"currency" binding:"required,currency"`
	}

	router := gin.New()
	router.POST("/echo", func(c *gin.Context) {
		var req payload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, req.Currency)
	})

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"accepts uppercase code", `{"currency":"USD"}`, http.StatusOK},
		{"rejects lowercase", `{"currency":"usd"}`, http.StatusBadRequest},
		{"rejects wrong length", `{"currency":"USDT"}`, http.StatusBadRequest},
		{"rejects digits", `{"currency":"US1"}`, http.StatusBadRequest},
		{"rejects missing", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
