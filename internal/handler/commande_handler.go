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

type CommandeHandler struct {
	commandeService service.CommandeService
}

func NewCommandeHandler(commandeService service.CommandeService) *CommandeHandler {
	return &CommandeHandler{commandeService: commandeService}
}

func (h *CommandeHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)

	commandes := router.Group("/api/commandes")
	{
		commandes.GET("", staff, h.ListCommandes)
		commandes.POST("", staff, h.CreateCommande)
		commandes.PATCH("/:id/status", staff, h.UpdateStatus)
		commandes.PATCH("/:id/avance", staff, h.UpdateAvance)
		commandes.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteCommande)
	}

	// Public: customers track their order with the short code.
	router.GET("/api/track/:code", h.TrackCommande)
}

// ListCommandes returns paginated commandes, optionally filtered by status
// @Summary      List commandes
// @Tags         commandes
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        status  query  string  false  "Filter by status"
// @Success      200  {object}  response.Response
// @Router       /api/commandes [get]
func (h *CommandeHandler) ListCommandes(c *gin.Context) {
	params := pagination.Parse(c)

	commandes, total, err := h.commandeService.GetCommandes(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, commandes, params.Page, params.Limit, total))
}

// CreateCommande opens a counter order and returns its tracking code
// @Summary      Create commande
// @Tags         commandes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCommandeRequest  true  "Commande payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/commandes [post]
func (h *CommandeHandler) CreateCommande(c *gin.Context) {
	var req service.CreateCommandeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commande, err := h.commandeService.CreateCommande(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, commande))
}

// TrackCommande looks a commande up by its tracking code
// @Summary      Track commande
// @Tags         commandes
// @Produce      json
// @Param        code  path  string  true  "Tracking code"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/track/{code} [get]
func (h *CommandeHandler) TrackCommande(c *gin.Context) {
	commande, err := h.commandeService.GetCommandeByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, commande))
}

// UpdateStatus moves a commande along the preparation pipeline
// @Summary      Update commande status
// @Tags         commandes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                               true  "Commande ID"
// @Param        payload  body  service.UpdateCommandeStatusRequest  true  "New status"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/commandes/{id}/status [patch]
func (h *CommandeHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateCommandeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commande, err := h.commandeService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, commande))
}

// UpdateAvance records a new deposit and recomputes the remaining balance
// @Summary      Update commande deposit
// @Tags         commandes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                               true  "Commande ID"
// @Param        payload  body  service.UpdateCommandeAvanceRequest  true  "New deposit"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/commandes/{id}/avance [patch]
func (h *CommandeHandler) UpdateAvance(c *gin.Context) {
	var req service.UpdateCommandeAvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commande, err := h.commandeService.UpdateAvance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, commande))
}

// DeleteCommande removes a commande
// @Summary      Delete commande
// @Tags         commandes
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Commande ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/commandes/{id} [delete]
func (h *CommandeHandler) DeleteCommande(c *gin.Context) {
	if err := h.commandeService.DeleteCommande(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Commande deleted successfully"}))
}
