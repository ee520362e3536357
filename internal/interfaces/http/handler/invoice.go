package handler

import (
	billingapp "github.com/backoffice/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler exposes the invoice lifecycle
type InvoiceHandler struct {
	BaseHandler
	invoices *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	if a.BranchID == nil {
		h.BadRequest(c, "Request carries no branch context")
		return
	}

	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid invoice payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID
	req.BranchID = *a.BranchID
	req.ActorID = a.UserID

	resp, err := h.invoices.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// PostInvoice handles POST /invoices/:id/post
func (h *InvoiceHandler) PostInvoice(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoices.PostInvoice(c.Request.Context(), a.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// VoidInvoice handles POST /invoices/:id/void
func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req billingapp.VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid void payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID
	req.BranchID = a.BranchID
	req.ActorID = a.UserID
	req.InvoiceID = id

	resp, err := h.invoices.VoidInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoices.GetInvoice(c.Request.Context(), a.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetInvoiceByCode handles GET /invoices/by-code/:code
func (h *InvoiceHandler) GetInvoiceByCode(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	resp, err := h.invoices.GetInvoiceByCode(c.Request.Context(), a.TenantID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	filter := list.ToFilter()
	for _, key := range []string{"status", "type", "partner_id"} {
		if value := c.Query(key); value != "" {
			filter.Filters[key] = value
		}
	}

	page, err := h.invoices.ListInvoices(c.Request.Context(), a.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// ListPartnerInvoices handles GET /partners/:id/invoices
func (h *InvoiceHandler) ListPartnerInvoices(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.invoices.ListPartnerInvoices(c.Request.Context(), a.TenantID, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
