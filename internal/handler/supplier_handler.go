package handler

import (
	"net/http"
	"time"

	"bakery-backend/internal/middleware"
	"bakery-backend/internal/model"
	"bakery-backend/internal/service"
	"bakery-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequireRole(model.RoleAdmin, model.RoleStaff)
	write := middleware.RequireRole(model.RoleAdmin)

	suppliers := router.Group("/api/suppliers")
	{
		suppliers.GET("", read, h.ListSuppliers)
		suppliers.POST("", write, h.CreateSupplier)
		suppliers.GET("/:id", read, h.GetSupplier)
		suppliers.PUT("/:id", write, h.UpdateSupplier)
		suppliers.PATCH("/:id/hidden", write, h.ToggleHidden)
		suppliers.DELETE("/:id", write, h.DeleteSupplier)

		suppliers.POST("/:id/vouchers", write, h.AddVoucher)
		suppliers.GET("/:id/vouchers/:voucherID", read, h.GetVoucher)
		suppliers.POST("/:id/vouchers/:voucherID/images", write, h.AddVoucherImages)
		suppliers.DELETE("/:id/vouchers/:voucherID/images/:filename", write, h.DeleteVoucherImage)

		suppliers.POST("/:id/payments", write, h.RecordPayment)
		suppliers.GET("/:id/stats/weekly", read, h.WeeklyStats)
	}
}

// ListSuppliers returns all suppliers with their vouchers and payments
// @Summary      List suppliers
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.supplierService.GetSuppliers(c.Request.Context(), requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, suppliers))
}

// CreateSupplier creates a supplier, opening one voucher per uploaded image
// @Summary      Create supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        full_name    formData  string  true   "Supplier name"
// @Param        phone        formData  string  false  "Phone"
// @Param        category     formData  string  true   "packaging, fruits, vegetables, meat, dairy or other"
// @Param        amount       formData  string  false  "Amount applied to each created voucher"
// @Param        description  formData  string  false  "Description shared by created vouchers"
// @Param        images       formData  file    false  "Voucher scans (repeatable)"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	uploads, open, err := formUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid upload: "+err.Error()))
		return
	}
	defer closeAll(open)

	req := service.CreateSupplierRequest{
		FullName:    c.PostForm("full_name"),
		Phone:       c.PostForm("phone"),
		Category:    c.PostForm("category"),
		IsHidden:    c.PostForm("is_hidden") == "true",
		Amount:      c.PostForm("amount"),
		Description: c.PostForm("description"),
		Images:      uploads,
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), req, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// GetSupplier returns one supplier with the full voucher/payment history
// @Summary      Get supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierService.GetSupplierByID(c.Request.Context(), c.Param("id"), requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// UpdateSupplier updates profile fields; attached images append new vouchers
// @Summary      Update supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id  path  string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/suppliers/{id} [put]
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	uploads, open, err := formUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid upload: "+err.Error()))
		return
	}
	defer closeAll(open)

	req := service.UpdateSupplierRequest{
		Amount:      c.PostForm("amount"),
		Description: c.PostForm("description"),
		Images:      uploads,
	}
	if v, ok := c.GetPostForm("full_name"); ok {
		req.FullName = &v
	}
	if v, ok := c.GetPostForm("phone"); ok {
		req.Phone = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		req.Category = &v
	}
	if v, ok := c.GetPostForm("is_hidden"); ok {
		hidden := v == "true"
		req.IsHidden = &hidden
	}

	supplier, err := h.supplierService.UpdateSupplier(c.Request.Context(), c.Param("id"), req, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

type toggleHiddenRequest struct {
	IsHidden bool `json:"is_hidden"`
}

// ToggleHidden shows or hides a supplier in listings
// @Summary      Toggle supplier visibility
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string               true  "Supplier ID"
// @Param        payload  body  toggleHiddenRequest  true  "Visibility flag"
// @Success      200  {object}  response.Response
// @Router       /api/suppliers/{id}/hidden [patch]
func (h *SupplierHandler) ToggleHidden(c *gin.Context) {
	var req toggleHiddenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.ToggleHidden(c.Request.Context(), c.Param("id"), req.IsHidden)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// DeleteSupplier removes a supplier and its stored voucher scans
// @Summary      Delete supplier
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/suppliers/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.supplierService.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Supplier deleted successfully"}))
}

// AddVoucher records a new purchase voucher for a supplier
// @Summary      Add voucher
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id           path      string  true   "Supplier ID"
// @Param        amount       formData  string  false  "Voucher amount"
// @Param        date         formData  string  false  "RFC3339 date, defaults to now"
// @Param        description  formData  string  false  "Description"
// @Param        images       formData  file    false  "Voucher scans (repeatable)"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/suppliers/{id}/vouchers [post]
func (h *SupplierHandler) AddVoucher(c *gin.Context) {
	uploads, open, err := formUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid upload: "+err.Error()))
		return
	}
	defer closeAll(open)

	req := service.AddVoucherRequest{
		Amount:      c.PostForm("amount"),
		Date:        c.PostForm("date"),
		Description: c.PostForm("description"),
		Images:      uploads,
	}

	supplier, err := h.supplierService.AddVoucher(c.Request.Context(), c.Param("id"), req, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// GetVoucher returns a single voucher
// @Summary      Get voucher
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id         path  string  true  "Supplier ID"
// @Param        voucherID  path  string  true  "Voucher ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/suppliers/{id}/vouchers/{voucherID} [get]
func (h *SupplierHandler) GetVoucher(c *gin.Context) {
	voucher, err := h.supplierService.GetVoucher(c.Request.Context(), c.Param("id"), c.Param("voucherID"), requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, voucher))
}

// AddVoucherImages attaches more scans to an existing voucher
// @Summary      Add voucher images
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id         path      string  true  "Supplier ID"
// @Param        voucherID  path      string  true  "Voucher ID"
// @Param        images     formData  file    true  "Scans (repeatable)"
// @Success      200  {object}  response.Response
// @Router       /api/suppliers/{id}/vouchers/{voucherID}/images [post]
func (h *SupplierHandler) AddVoucherImages(c *gin.Context) {
	uploads, open, err := formUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid upload: "+err.Error()))
		return
	}
	defer closeAll(open)

	supplier, err := h.supplierService.AddVoucherImages(c.Request.Context(), c.Param("id"), c.Param("voucherID"), uploads, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// DeleteVoucherImage detaches a scan from a voucher and removes the file
// @Summary      Delete voucher image
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id         path  string  true  "Supplier ID"
// @Param        voucherID  path  string  true  "Voucher ID"
// @Param        filename   path  string  true  "Stored filename"
// @Success      200  {object}  response.Response
// @Router       /api/suppliers/{id}/vouchers/{voucherID}/images/{filename} [delete]
func (h *SupplierHandler) DeleteVoucherImage(c *gin.Context) {
	err := h.supplierService.DeleteVoucherImage(c.Request.Context(), c.Param("id"), c.Param("voucherID"), c.Param("filename"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Image deleted successfully"}))
}

// RecordPayment applies a payment to a specific voucher or sweeps oldest-first
// @Summary      Record payment
// @Tags         suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Supplier ID"
// @Param        payload  body  service.RecordPaymentRequest  true  "Payment payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/suppliers/{id}/payments [post]
func (h *SupplierHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.RecordPayment(c.Request.Context(), c.Param("id"), req, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// WeeklyStats returns purchase/payment sums over the trailing seven days
// @Summary      Weekly supplier stats
// @Tags         suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Router       /api/suppliers/{id}/stats/weekly [get]
func (h *SupplierHandler) WeeklyStats(c *gin.Context) {
	stats, err := h.supplierService.GetWeeklyStats(c.Request.Context(), c.Param("id"), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
