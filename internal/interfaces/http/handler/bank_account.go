package handler

import (
	treasuryapp "github.com/backoffice/backend/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// BankAccountHandler exposes the bank account registry
type BankAccountHandler struct {
	BaseHandler
	accounts *treasuryapp.BankAccountService
}

// NewBankAccountHandler creates a new BankAccountHandler
func NewBankAccountHandler(accounts *treasuryapp.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{accounts: accounts}
}

// CreateBankAccount handles POST /bank-accounts
func (h *BankAccountHandler) CreateBankAccount(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	var req treasuryapp.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid bank account payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID

	resp, err := h.accounts.CreateBankAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetBankAccount handles GET /bank-accounts/:id
func (h *BankAccountHandler) GetBankAccount(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.accounts.GetBankAccount(c.Request.Context(), a.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBankAccounts handles GET /bank-accounts
func (h *BankAccountHandler) ListBankAccounts(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	filter := list.ToFilter()
	if value := c.Query("active"); value != "" {
		filter.Filters["active"] = value
	}

	page, err := h.accounts.ListBankAccounts(c.Request.Context(), a.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// DeactivateBankAccount handles POST /bank-accounts/:id/deactivate
func (h *BankAccountHandler) DeactivateBankAccount(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.accounts.DeactivateBankAccount(c.Request.Context(), a.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
