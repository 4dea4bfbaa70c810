package dto

import supplierdomain "smartrfq/internal/supplier/domain"

type CreateSupplierRequest struct {
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address"`
	Tags      []string `json:"tags"`
	Notes     string   `json:"notes"`
}

type SuppliersResponse struct {
	Suppliers []*supplierdomain.Supplier `json:"suppliers"`
}
