package usecase

import (
	supplierdomain "smartrfq/internal/supplier/domain"
	supplierdto "smartrfq/internal/supplier/dto"
)

type SupplierUsecase interface {
	// ListSuppliers lists a project's suppliers, or every supplier of the
	// organization when projectID is empty.
	ListSuppliers(orgID, projectID string) ([]*supplierdomain.Supplier, error)
	// SearchSuppliers ranks the same list by a typo-tolerant match on name,
	// email and tags.
	SearchSuppliers(orgID, projectID, query string) ([]*supplierdomain.Supplier, error)
	GetSupplier(orgID, id string) (*supplierdomain.Supplier, error)
	// CreateSupplier is idempotent per (project, email): a second create
	// refreshes and returns the existing record.
	CreateSupplier(orgID string, req *supplierdto.CreateSupplierRequest) (*supplierdomain.Supplier, error)
	UpdateSupplier(orgID, id string, patch *supplierdomain.Patch) (*supplierdomain.Supplier, error)
	DeleteSupplier(orgID, id string) error
	// MatchSender finds the supplier records that an address belongs to.
	MatchSender(email string) ([]*supplierdomain.Supplier, error)
}
