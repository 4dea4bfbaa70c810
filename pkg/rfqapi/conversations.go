package rfqapi

import (
	"context"
	"net/http"
	"net/url"

	emaildomain "smartrfq/internal/email/domain"
	emaildto "smartrfq/internal/email/dto"
)

func conversationPath(id, sub string) string {
	return "/api/conversations/" + url.PathEscape(id) + sub
}

func (c *Client) ListConversations(ctx context.Context, projectID string) ([]emaildomain.Conversation, error) {
	return getList[emaildomain.Conversation](ctx, c, "ListConversations", projectPath(projectID, "/conversations"), "conversations", nil)
}

func (c *Client) StartConversation(ctx context.Context, projectID string, req emaildto.StartConversationRequest) (*emaildto.StartConversationResponse, error) {
	return sendJSON[emaildto.StartConversationResponse](ctx, c, "StartConversation", http.MethodPost, projectPath(projectID, "/conversations"), "result", req)
}

func (c *Client) ListEmails(ctx context.Context, conversationID string) ([]emaildomain.Email, error) {
	return getList[emaildomain.Email](ctx, c, "ListEmails", conversationPath(conversationID, "/emails"), "emails", nil)
}

// SendEmail posts a reply into a conversation with optional attachments.
func (c *Client) SendEmail(ctx context.Context, conversationID, subject, body string, attachments []Upload) (*emaildomain.Email, error) {
	r, err := multipartRequest(http.MethodPost, conversationPath(conversationID, "/emails"),
		map[string]string{"subject": subject, "body": body}, "files", attachments)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, "SendEmail", r)
	if err != nil {
		return nil, err
	}
	return decodeOne[emaildomain.Email](raw, "email")
}

func (c *Client) MarkConversationRead(ctx context.Context, conversationID string) error {
	return c.send(ctx, "MarkConversationRead", http.MethodPatch, conversationPath(conversationID, "/read"), nil)
}
