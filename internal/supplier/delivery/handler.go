package delivery

import (
	"net/http"

	authdelivery "smartrfq/internal/auth/delivery"
	supplierdomain "smartrfq/internal/supplier/domain"
	supplierdto "smartrfq/internal/supplier/dto"
	"smartrfq/internal/supplier/usecase"
	"smartrfq/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	supplierUsecase usecase.SupplierUsecase
}

func NewSupplierHandler(supplierUsecase usecase.SupplierUsecase) *SupplierHandler {
	return &SupplierHandler{supplierUsecase: supplierUsecase}
}

// ListSuppliers serves both the org-wide list and a project's list. An
// optional ?q= ranks the result by fuzzy match.
// GET /api/suppliers
// GET /api/projects/:id/suppliers
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.supplierUsecase.SearchSuppliers(c.GetString(authdelivery.OrgIDKey), c.Param("id"), c.Query("q"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, supplierdto.SuppliersResponse{Suppliers: suppliers})
}

// POST /api/suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req supplierdto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := h.supplierUsecase.CreateSupplier(c.GetString(authdelivery.OrgIDKey), &req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// PATCH /api/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var patch supplierdomain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := h.supplierUsecase.UpdateSupplier(c.GetString(authdelivery.OrgIDKey), c.Param("id"), &patch)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// DELETE /api/suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.supplierUsecase.DeleteSupplier(c.GetString(authdelivery.OrgIDKey), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "supplier deleted"})
}
