package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/ticketmart/internal/server/http/dto"
)

// OrderHandler manages reservation and order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TicketID) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "ticketId is required"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), CurrentUserID(c), strings.TrimSpace(req.TicketID), quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Approve handles POST /api/orders/:id/approve.
func (h *OrderHandler) Approve(c *gin.Context) {
	order, err := h.facade.ApproveOrder(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Reject handles POST /api/orders/:id/reject. The body is optional.
func (h *OrderHandler) Reject(c *gin.Context) {
	var req dto.RejectOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed reject payload"})
			return
		}
	}

	order, err := h.facade.RejectOrder(c.Request.Context(), c.Param("id"), CurrentUserID(c), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Pay handles POST /api/orders/:id/pay.
func (h *OrderHandler) Pay(c *gin.Context) {
	var req dto.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PaymentRef) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "paymentRef is required"})
		return
	}

	order, err := h.facade.PayOrder(c.Request.Context(), c.Param("id"), CurrentUserID(c), req.PaymentRef)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// ByPaymentRef handles GET /api/payments/:ref/order.
func (h *OrderHandler) ByPaymentRef(c *gin.Context) {
	order, err := h.facade.OrderByPaymentRef(c.Request.Context(), c.Param("ref"), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// ListPurchases handles GET /api/user/orders.
func (h *OrderHandler) ListPurchases(c *gin.Context) {
	orders, err := h.facade.BuyerOrders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOrders(c, orders)
}

// ListSales handles GET /api/user/sales.
func (h *OrderHandler) ListSales(c *gin.Context) {
	orders, err := h.facade.SellerOrders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOrders(c, orders)
}
