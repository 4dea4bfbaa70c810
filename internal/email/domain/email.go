package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusReceived Status = "received"
	StatusFailed   Status = "failed"
)

type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type Email struct {
	ID             string                          `json:"id" gorm:"primaryKey"`
	OrgID          string                          `json:"org_id" gorm:"index;not null"`
	ConversationID string                          `json:"conversation_id" gorm:"index;not null"`
	From           Participant                     `json:"from" gorm:"embedded;embeddedPrefix:from_"`
	To             Participant                     `json:"to" gorm:"embedded;embeddedPrefix:to_"`
	Subject        string                          `json:"subject"`
	Body           string                          `json:"body"`
	SentAt         time.Time                       `json:"sent_at" gorm:"index"`
	Status         Status                          `json:"status"`
	Attachments    datatypes.JSONSlice[Attachment] `json:"attachments"`
	MessageID      string                          `json:"message_id,omitempty" gorm:"index"`
}

func (e Email) EntityID() string { return e.ID }

// Clone returns a copy that shares no attachment slice with e.
func (e Email) Clone() Email {
	if e.Attachments != nil {
		e.Attachments = append(make(datatypes.JSONSlice[Attachment], 0, len(e.Attachments)), e.Attachments...)
	}
	return e
}

// ImportRecord remembers which inbound message ids have already been imported,
// so a mailbox poll never creates the same email twice.
type ImportRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	OrgID      string    `json:"org_id" gorm:"index;not null"`
	MessageID  string    `json:"message_id" gorm:"uniqueIndex;not null"`
	EmailID    string    `json:"email_id"`
	ImportedAt time.Time `json:"imported_at"`
}
