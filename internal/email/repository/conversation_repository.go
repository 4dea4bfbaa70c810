package repository

import (
	"errors"
	"time"

	emaildomain "smartrfq/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *emaildomain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	return r.db.Create(conv).Error
}

func (r *conversationRepository) first(query *gorm.DB) (*emaildomain.Conversation, error) {
	var conv emaildomain.Conversation
	if err := query.First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByID(orgID, id string) (*emaildomain.Conversation, error) {
	return r.first(r.db.Where("org_id = ? AND id = ?", orgID, id))
}

func (r *conversationRepository) FindByProject(orgID, projectID string) ([]*emaildomain.Conversation, error) {
	var convs []*emaildomain.Conversation
	err := r.db.Where("org_id = ? AND project_id = ?", orgID, projectID).
		Order("last_message_at DESC").Find(&convs).Error
	return convs, err
}

func (r *conversationRepository) LatestForSupplier(orgID, supplierID string) (*emaildomain.Conversation, error) {
	return r.first(r.db.Where("org_id = ? AND supplier_id = ?", orgID, supplierID).Order("last_message_at DESC"))
}

func (r *conversationRepository) Update(conv *emaildomain.Conversation) error {
	return r.db.Save(conv).Error
}
