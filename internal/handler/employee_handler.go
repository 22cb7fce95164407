package handler

import (
	"net/http"

	"bakery-backend/internal/middleware"
	"bakery-backend/internal/model"
	"bakery-backend/internal/service"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeService service.EmployeeService
}

func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)

	employees := router.Group("/api/employees")
	{
		employees.GET("", admin, h.ListEmployees)
		employees.POST("", admin, h.CreateEmployee)
		employees.DELETE("/:id", admin, h.DeleteEmployee)
	}
}

// ListEmployees returns all employees
// @Summary      List employees
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.employeeService.GetEmployees(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, employees))
}

// CreateEmployee registers a new employee
// @Summary      Create employee
// @Tags         employees
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateEmployeeRequest  true  "Employee payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, employee))
}

// DeleteEmployee removes an employee record
// @Summary      Delete employee
// @Tags         employees
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Employee ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Employee deleted successfully"}))
}
