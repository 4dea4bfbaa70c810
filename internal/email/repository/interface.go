package repository

import emaildomain "smartrfq/internal/email/domain"

type ConversationRepository interface {
	Create(conv *emaildomain.Conversation) error
	FindByID(orgID, id string) (*emaildomain.Conversation, error)
	FindByProject(orgID, projectID string) ([]*emaildomain.Conversation, error)
	// LatestForSupplier returns the supplier's most recently active
	// conversation in the org.
	LatestForSupplier(orgID, supplierID string) (*emaildomain.Conversation, error)
	Update(conv *emaildomain.Conversation) error
}

type EmailRepository interface {
	Create(email *emaildomain.Email) error
	FindByID(orgID, id string) (*emaildomain.Email, error)
	// FindByConversation returns the thread oldest first.
	FindByConversation(orgID, conversationID string) ([]*emaildomain.Email, error)
	Update(email *emaildomain.Email) error
}

// ImportRepository remembers inbound Message-IDs that were already imported.
type ImportRepository interface {
	Exists(messageID string) (bool, error)
	Create(record *emaildomain.ImportRecord) error
}
