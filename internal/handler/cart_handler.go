package handler

import (
	"net/http"

	"bakery-backend/internal/middleware"
	"bakery-backend/internal/model"
	"bakery-backend/internal/service"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)

	cart := router.Group("/api/cart")
	{
		cart.GET("", authed, h.GetCart)
		cart.POST("/add", authed, h.AddToCart)
		cart.POST("/update", authed, h.UpdateCart)
	}
}

// GetCart returns the authenticated user's cart
// @Summary      Get cart
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// AddToCart increments the quantity of a product in the cart
// @Summary      Add to cart
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CartItemRequest  true  "Product to add"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/cart/add [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req service.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cart, err := h.cartService.AddToCart(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// UpdateCart sets the quantity of a product; zero removes it
// @Summary      Update cart
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.UpdateCartRequest  true  "Product and quantity"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/cart/update [post]
func (h *CartHandler) UpdateCart(c *gin.Context) {
	var req service.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cart, err := h.cartService.UpdateCart(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}
