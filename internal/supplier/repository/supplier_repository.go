package repository

import (
	"errors"
	"strings"
	"time"

	supplierdomain "smartrfq/internal/supplier/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(supplier *supplierdomain.Supplier) error {
	if supplier.ID == "" {
		supplier.ID = uuid.New().String()
	}
	now := time.Now()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	return r.db.Create(supplier).Error
}

func (r *supplierRepository) FindByID(orgID, id string) (*supplierdomain.Supplier, error) {
	var supplier supplierdomain.Supplier
	err := r.db.Where("org_id = ? AND id = ?", orgID, id).First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) FindByOrg(orgID string) ([]*supplierdomain.Supplier, error) {
	var suppliers []*supplierdomain.Supplier
	err := r.db.Where("org_id = ?", orgID).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepository) FindByProject(orgID, projectID string) ([]*supplierdomain.Supplier, error) {
	var suppliers []*supplierdomain.Supplier
	err := r.db.Where("org_id = ? AND project_id = ?", orgID, projectID).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepository) FindByEmail(orgID, email string) ([]*supplierdomain.Supplier, error) {
	var suppliers []*supplierdomain.Supplier
	err := r.db.Where("org_id = ? AND LOWER(email) = ?", orgID, strings.ToLower(email)).
		Order("updated_at DESC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepository) FindByEmailAnyOrg(email string) ([]*supplierdomain.Supplier, error) {
	var suppliers []*supplierdomain.Supplier
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("updated_at DESC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepository) Update(supplier *supplierdomain.Supplier) error {
	supplier.UpdatedAt = time.Now()
	return r.db.Save(supplier).Error
}

func (r *supplierRepository) Delete(orgID, id string) error {
	return r.db.Where("org_id = ? AND id = ?", orgID, id).Delete(&supplierdomain.Supplier{}).Error
}
