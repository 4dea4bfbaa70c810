package repository

import (
	"time"

	emaildomain "smartrfq/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type importRepository struct {
	db *gorm.DB
}

func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) Exists(messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&emaildomain.ImportRecord{}).Where("message_id = ?", messageID).Count(&count).Error
	return count > 0, err
}

// Create ignores a record whose Message-ID is already present.
func (r *importRepository) Create(record *emaildomain.ImportRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.ImportedAt.IsZero() {
		record.ImportedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoNothing: true,
	}).Create(record).Error
}
