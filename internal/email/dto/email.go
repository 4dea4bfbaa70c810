package dto

import (
	"mime/multipart"

	emaildomain "smartrfq/internal/email/domain"
)

type StartConversationRequest struct {
	SupplierID string   `json:"supplier_id" binding:"required"`
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	ItemIDs    []string `json:"item_ids"`
}

type StartConversationResponse struct {
	Conversation *emaildomain.Conversation `json:"conversation"`
	Email        *emaildomain.Email        `json:"email"`
}

type ConversationsResponse struct {
	Conversations []*emaildomain.Conversation `json:"conversations"`
}

type EmailsResponse struct {
	Emails []*emaildomain.Email `json:"emails"`
}

type SendEmailRequest struct {
	Subject string                  `form:"subject"`
	Body    string                  `form:"body"`
	Files   []*multipart.FileHeader `form:"files"`
}
