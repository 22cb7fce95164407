package handler

import (
	"net/http"

	"bakery-backend/internal/middleware"
	"bakery-backend/internal/model"
	"bakery-backend/internal/service"
	"bakery-backend/pkg/pagination"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	admin := middleware.RequireRole(model.RoleAdmin)

	orders := router.Group("/api/orders")
	{
		orders.POST("", authed, h.PlaceOrder)
		orders.GET("", admin, h.ListOrders)
		orders.PATCH("/:id/status", admin, h.UpdateStatus)
	}

	router.GET("/api/my-orders", authed, h.MyOrders)
}

// userID extracts the authenticated user's id placed by the auth middleware.
func userID(c *gin.Context) string {
	id, _ := c.Get("userID")
	s, _ := id.(string)
	return s
}

// PlaceOrder places a storefront order and clears the user's cart
// @Summary      Place order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.PlaceOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// MyOrders returns the authenticated user's orders
// @Summary      List my orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/my-orders [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.orderService.GetUserOrders(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, orders))
}

// ListOrders returns all orders for the back office
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page number (default: 1)"
// @Param        limit  query  int  false  "Items per page (default: 20)"
// @Success      200  {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)

	orders, total, err := h.orderService.GetOrders(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, orders, params.Page, params.Limit, total))
}

// UpdateStatus advances the fulfilment status of an order
// @Summary      Update order status
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                            true  "Order ID"
// @Param        payload  body  service.UpdateOrderStatusRequest  true  "New status"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}
