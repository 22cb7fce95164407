package handler

import (
	"net/http"

	"bakery-backend/internal/middleware"
	"bakery-backend/internal/model"
	"bakery-backend/internal/service"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireRole(model.RoleAdmin, model.RoleStaff), h.Me)
	}
}

// Register creates a new account
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.RegisterRequest  true  "Registration payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Login verifies credentials and issues an access/refresh token pair
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.LoginRequest  true  "Credentials"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tokens, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, tokens.AccessToken, tokens.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// Refresh rotates the refresh token and issues a new pair
// @Summary      Refresh tokens
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		// Fallback for clients that keep the token themselves
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Refresh token is missing"))
			return
		}
		refreshToken = body.RefreshToken
	}

	tokens, err := h.userService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		middleware.ClearTokenCookies(c)
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid refresh token"))
		return
	}

	middleware.SetTokenCookies(c, tokens.AccessToken, tokens.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokens))
}

// Logout revokes the refresh token and clears auth cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")
	_ = h.userService.Logout(c.Request.Context(), refreshToken)
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// Me returns the authenticated user's profile
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
