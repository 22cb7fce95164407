package handler

import (
	"net/http"

	"bakery-backend/internal/middleware"
	"bakery-backend/internal/model"
	"bakery-backend/internal/service"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	write := middleware.RequireRole(model.RoleAdmin)

	products := router.Group("/api/products")
	{
		// Catalog reads are public so the storefront can browse.
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", write, h.CreateProduct)
		products.DELETE("/:id", write, h.DeleteProduct)
	}
}

// ListProducts returns the catalog, optionally filtered by category
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category  query  string  false  "Filter by category"
// @Success      200  {object}  response.Response
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.GetProducts(c.Request.Context(), c.Query("category"), requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// GetProduct returns one product
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProductByID(c.Request.Context(), c.Param("id"), requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// CreateProduct adds a product with an optional photo
// @Summary      Create product
// @Tags         products
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        name      formData  string  true   "Product name"
// @Param        price     formData  string  true   "Price"
// @Param        category  formData  string  true   "Category"
// @Param        image     formData  file    false  "Photo"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	uploads, open, err := formUploads(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid upload: "+err.Error()))
		return
	}
	defer closeAll(open)

	req := service.CreateProductRequest{
		Name:     c.PostForm("name"),
		Price:    c.PostForm("price"),
		Category: c.PostForm("category"),
	}
	if len(uploads) > 0 {
		req.Image = &uploads[0]
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// DeleteProduct removes a product and its stored photo
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Product deleted successfully"}))
}
