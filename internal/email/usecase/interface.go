package usecase

import (
	"context"
	"io"

	emaildomain "smartrfq/internal/email/domain"
	emaildto "smartrfq/internal/email/dto"
	projectdomain "smartrfq/internal/project/domain"
	rfqdomain "smartrfq/internal/rfq/domain"
	supplierdomain "smartrfq/internal/supplier/domain"
	"smartrfq/pkg/mailparse"
)

type ProjectLookup interface {
	GetProject(orgID, id string) (*projectdomain.Project, error)
}

type SupplierLookup interface {
	GetSupplier(orgID, id string) (*supplierdomain.Supplier, error)
	MatchSender(email string) ([]*supplierdomain.Supplier, error)
}

type ItemLister interface {
	ListItems(orgID, projectID string) ([]*rfqdomain.Part, error)
}

// Queue accepts extraction jobs without blocking.
type Queue interface {
	QueueJob(job ExtractionJob) bool
}

// Upload is an attachment received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type SendEmailInput struct {
	Subject     string
	Body        string
	Attachments []Upload
}

type EmailUsecase interface {
	ListConversations(orgID, projectID string) ([]*emaildomain.Conversation, error)
	GetConversation(orgID, id string) (*emaildomain.Conversation, error)
	// StartConversation opens a thread with a supplier and sends the RFQ
	// mail listing the selected items, every project item when none are
	// selected.
	StartConversation(ctx context.Context, orgID, projectID, senderName string, req *emaildto.StartConversationRequest) (*emaildto.StartConversationResponse, error)
	ListEmails(orgID, conversationID string) ([]*emaildomain.Email, error)
	SendEmail(ctx context.Context, orgID, conversationID, senderName string, in SendEmailInput) (*emaildomain.Email, error)
	MarkRead(orgID, conversationID string) (*emaildomain.Conversation, error)
	// ImportInbound appends a supplier reply to the sender's latest
	// conversation. It returns nil without error when the message was
	// already imported or no conversation matches the sender.
	ImportInbound(ctx context.Context, msg *mailparse.Message) (*emaildomain.Email, error)
	// HandleInbound is ImportInbound for the mailbox poller.
	HandleInbound(ctx context.Context, msg *mailparse.Message) error
}
