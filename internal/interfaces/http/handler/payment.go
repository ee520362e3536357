package handler

import (
	treasuryapp "github.com/backoffice/backend/internal/application/treasury"
	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes payment registration and lookup
type PaymentHandler struct {
	BaseHandler
	payments *treasuryapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *treasuryapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterPayment handles POST /payments
func (h *PaymentHandler) RegisterPayment(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	if a.BranchID == nil {
		h.BadRequest(c, "Request carries no branch context")
		return
	}

	var req treasuryapp.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid payment payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID
	req.BranchID = *a.BranchID
	req.ActorID = a.UserID

	resp, err := h.payments.RegisterPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	if _, ok := requestActor(c); !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	filter := list.ToFilter()
	for _, key := range []string{"type", "method"} {
		if value := c.Query(key); value != "" {
			filter.Filters[key] = value
		}
	}

	page, err := h.payments.ListPayments(c.Request.Context(), a.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// ListPartnerPayments handles GET /partners/:id/payments
func (h *PaymentHandler) ListPartnerPayments(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	partnerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.payments.ListPartnerPayments(c.Request.Context(), a.TenantID, partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
