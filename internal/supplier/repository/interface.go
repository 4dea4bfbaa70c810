package repository

import supplierdomain "smartrfq/internal/supplier/domain"

type SupplierRepository interface {
	Create(supplier *supplierdomain.Supplier) error
	FindByID(orgID, id string) (*supplierdomain.Supplier, error)
	FindByOrg(orgID string) ([]*supplierdomain.Supplier, error)
	FindByProject(orgID, projectID string) ([]*supplierdomain.Supplier, error)
	// FindByEmail returns every supplier record of the org with that address.
	FindByEmail(orgID, email string) ([]*supplierdomain.Supplier, error)
	// FindByEmailAnyOrg serves inbound mail, which arrives without an org.
	FindByEmailAnyOrg(email string) ([]*supplierdomain.Supplier, error)
	Update(supplier *supplierdomain.Supplier) error
	Delete(orgID, id string) error
}
