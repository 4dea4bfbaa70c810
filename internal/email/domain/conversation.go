package domain

import "time"

// Conversation is the thread between a project and one supplier.
type Conversation struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	OrgID         string    `json:"org_id" gorm:"index;not null"`
	ProjectID     string    `json:"project_id" gorm:"index;not null"`
	SupplierID    string    `json:"supplier_id" gorm:"index;not null"`
	Subject       string    `json:"subject"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
	MessageCount  int       `json:"message_count"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c Conversation) EntityID() string { return c.ID }

const previewLength = 120

// Touch records e as the newest message of the conversation.
func (c *Conversation) Touch(e *Email) {
	preview := []rune(e.Body)
	if len(preview) > previewLength {
		preview = append(preview[:previewLength], '…')
	}
	c.LastMessage = string(preview)
	c.LastMessageAt = e.SentAt
	c.MessageCount++
	if e.Status == StatusReceived {
		c.UnreadCount++
	}
}
