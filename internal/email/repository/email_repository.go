package repository

import (
	"errors"

	emaildomain "smartrfq/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) Create(email *emaildomain.Email) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	return r.db.Create(email).Error
}

func (r *emailRepository) FindByID(orgID, id string) (*emaildomain.Email, error) {
	var email emaildomain.Email
	err := r.db.Where("org_id = ? AND id = ?", orgID, id).First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) FindByConversation(orgID, conversationID string) ([]*emaildomain.Email, error) {
	var emails []*emaildomain.Email
	err := r.db.Where("org_id = ? AND conversation_id = ?", orgID, conversationID).
		Order("sent_at ASC").Find(&emails).Error
	return emails, err
}

func (r *emailRepository) Update(email *emaildomain.Email) error {
	return r.db.Save(email).Error
}
