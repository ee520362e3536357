package handler

import (
	billingapp "github.com/backoffice/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// OrderHandler exposes the sales order lifecycle
type OrderHandler struct {
	BaseHandler
	orders *billingapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *billingapp.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	if a.BranchID == nil {
		h.BadRequest(c, "Request carries no branch context")
		return
	}

	var req billingapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid order payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID
	req.BranchID = *a.BranchID
	req.ActorID = a.UserID

	resp, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.ConfirmOrder(c.Request.Context(), a.TenantID, id, a.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid cancel payload: "+err.Error())
		return
	}

	resp, err := h.orders.CancelOrder(c.Request.Context(), a.TenantID, id, a.UserID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.GetOrder(c.Request.Context(), a.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	filter := list.ToFilter()
	for _, key := range []string{"status", "partner_id"} {
		if value := c.Query(key); value != "" {
			filter.Filters[key] = value
		}
	}

	page, err := h.orders.ListOrders(c.Request.Context(), a.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}
