package handler

import (
	billingapp "github.com/backoffice/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// CreditNoteHandler exposes credit note issuance and lookup
type CreditNoteHandler struct {
	BaseHandler
	notes *billingapp.CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler
func NewCreditNoteHandler(notes *billingapp.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{notes: notes}
}

// CreateCreditNote handles POST /credit-notes
func (h *CreditNoteHandler) CreateCreditNote(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	var req billingapp.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid credit note payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID
	req.BranchID = a.BranchID
	req.ActorID = a.UserID

	resp, err := h.notes.CreateCreditNote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCreditNote handles GET /credit-notes/:id
func (h *CreditNoteHandler) GetCreditNote(c *gin.Context) {
	if _, ok := requestActor(c); !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.notes.GetCreditNote(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListInvoiceCreditNotes handles GET /invoices/:id/credit-notes
func (h *CreditNoteHandler) ListInvoiceCreditNotes(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.notes.ListInvoiceCreditNotes(c.Request.Context(), a.TenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListPartnerCreditNotes handles GET /partners/:id/credit-notes
func (h *CreditNoteHandler) ListPartnerCreditNotes(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.notes.ListPartnerCreditNotes(c.Request.Context(), a.TenantID, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
