package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/middleware"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/service"
)

// OrderHandler serves checkout and order administration
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status
type UpdateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ValidateContact handles POST /orders/validate
func (h *OrderHandler) ValidateContact(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reasons := h.orders.ValidateContact(&req)
	tag := middleware.LanguageFrom(c)
	errs := make(map[string]string, len(reasons))
	for field, reason := range reasons {
		errs[field] = reason.Localize(tag)
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req service.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.orders.ListOrders(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetOrder handles GET /orders/:id; id may also be an order number
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if user, ok := middleware.GetUserFromContext(c); ok {
		ctx = service.WithActor(ctx, user.Email)
	}

	order, err := h.orders.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// History handles GET /orders/:id/history
func (h *OrderHandler) History(c *gin.Context) {
	events, err := h.orders.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
