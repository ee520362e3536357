package handler

import (
	treasuryapp "github.com/backoffice/backend/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// StatementHandler exposes partner account statements
type StatementHandler struct {
	BaseHandler
	statements *treasuryapp.StatementService
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(statements *treasuryapp.StatementService) *StatementHandler {
	return &StatementHandler{statements: statements}
}

// GetAccountStatement handles GET /partners/:id/statement
func (h *StatementHandler) GetAccountStatement(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.statements.GetAccountStatement(c.Request.Context(), a.TenantID, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
