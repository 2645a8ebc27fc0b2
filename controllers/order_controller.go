package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/bistro-orders-api/services"
)

// UpdateStatusRequest represents the request body for changing an order status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderController serves the order endpoints
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates an order controller
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder handles POST /api/v1/orders - places an order with its items
func (oc *OrderController) CreateOrder(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	// Clients order for themselves when userId is omitted
	if req.UserID == 0 && !caller.IsAdmin() {
		req.UserID = caller.UserID
	}

	order, err := oc.orders.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "ORDER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusCreated, order)
}

// ListUserOrders handles GET /api/v1/users/:id/orders - a user's orders, newest first
func (oc *OrderController) ListUserOrders(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	orders, err := oc.orders.ListForUser(c.Request.Context(), caller, userID)
	if err != nil {
		respondError(c, err, "USER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.Get(c.Request.Context(), caller, orderID)
	if err != nil {
		respondError(c, err, "ORDER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, order)
}

// ListOrders handles GET /api/v1/orders - every order, for admins
func (oc *OrderController) ListOrders(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondBindError(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		respondBindError(c, err)
		return
	}

	orders, err := oc.orders.List(c.Request.Context(), services.ListOrdersFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err, "ORDER_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(orders),
		},
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - admin status change
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, err, "ORDER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - the owner withdraws an order
func (oc *OrderController) CancelOrder(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.Cancel(c.Request.Context(), caller, orderID)
	if err != nil {
		respondError(c, err, "ORDER_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, order)
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
