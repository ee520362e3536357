package handler

import (
	inventoryapp "github.com/backoffice/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler exposes stock moves and stock queries
type InventoryHandler struct {
	BaseHandler
	moves *inventoryapp.MoveService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(moves *inventoryapp.MoveService) *InventoryHandler {
	return &InventoryHandler{moves: moves}
}

// CreateMove handles POST /inventory/moves
func (h *InventoryHandler) CreateMove(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}

	var req inventoryapp.CreateMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid move payload: "+err.Error())
		return
	}
	req.TenantID = a.TenantID
	req.BranchID = a.BranchID
	req.ActorID = a.UserID

	resp, err := h.moves.CreateMove(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetMove handles GET /inventory/moves/:id
func (h *InventoryHandler) GetMove(c *gin.Context) {
	if _, ok := requestActor(c); !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.moves.GetMove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMoves handles GET /inventory/moves
func (h *InventoryHandler) ListMoves(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	page, err := h.moves.ListMoves(c.Request.Context(), a.TenantID, list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// GetWarehouseStock handles GET /inventory/warehouses/:id/stock
func (h *InventoryHandler) GetWarehouseStock(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	warehouseID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	list, ok := h.bindList(c)
	if !ok {
		return
	}

	page, err := h.moves.GetStock(c.Request.Context(), a.TenantID, warehouseID, list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// GetProductStock handles GET /inventory/products/:id/stock
func (h *InventoryHandler) GetProductStock(c *gin.Context) {
	a, ok := requestActor(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	lines, err := h.moves.GetProductStock(c.Request.Context(), a.TenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}
