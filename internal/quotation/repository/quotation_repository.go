package repository

import (
	quotationdomain "smartrfq/internal/quotation/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type quotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(q *quotationdomain.Quotation) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return r.db.Create(q).Error
}

func (r *quotationRepository) FindByProject(orgID, projectID string) ([]*quotationdomain.Quotation, error) {
	var quotes []*quotationdomain.Quotation
	err := r.db.Where("org_id = ? AND project_id = ?", orgID, projectID).
		Order("quoted_at DESC").Find(&quotes).Error
	return quotes, err
}

func (r *quotationRepository) FindHistory(orgID, itemID, supplierID string) ([]quotationdomain.Quotation, error) {
	var quotes []quotationdomain.Quotation
	err := r.db.Where("org_id = ? AND rfq_item_id = ? AND supplier_id = ?", orgID, itemID, supplierID).
		Order("quoted_at DESC").Find(&quotes).Error
	return quotes, err
}

func (r *quotationRepository) ExistsForEmail(emailID, itemID string) (bool, error) {
	var count int64
	err := r.db.Model(&quotationdomain.Quotation{}).
		Where("email_id = ? AND rfq_item_id = ?", emailID, itemID).
		Count(&count).Error
	return count > 0, err
}
