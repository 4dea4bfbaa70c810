package repository

import quotationdomain "smartrfq/internal/quotation/domain"

type QuotationRepository interface {
	Create(q *quotationdomain.Quotation) error
	FindByProject(orgID, projectID string) ([]*quotationdomain.Quotation, error)
	// FindHistory returns every quote of one item by one supplier.
	FindHistory(orgID, itemID, supplierID string) ([]quotationdomain.Quotation, error)
	// ExistsForEmail reports whether a quote for item was already taken from
	// the email.
	ExistsForEmail(emailID, itemID string) (bool, error)
}
