package repository

import (
	"errors"
	"time"

	rfqdomain "smartrfq/internal/rfq/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *rfqdomain.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	file.CreatedAt = time.Now()
	return r.db.Create(file).Error
}

func (r *fileRepository) FindByID(orgID, id string) (*rfqdomain.File, error) {
	var file rfqdomain.File
	err := r.db.Where("org_id = ? AND id = ?", orgID, id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) FindByProject(orgID, projectID string) ([]*rfqdomain.File, error) {
	var files []*rfqdomain.File
	err := r.db.Where("org_id = ? AND project_id = ?", orgID, projectID).
		Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *fileRepository) Update(file *rfqdomain.File) error {
	return r.db.Save(file).Error
}

func (r *fileRepository) Delete(orgID, id string) error {
	return r.db.Where("org_id = ? AND id = ?", orgID, id).Delete(&rfqdomain.File{}).Error
}
