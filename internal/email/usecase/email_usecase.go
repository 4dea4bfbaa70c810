package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	emaildomain "smartrfq/internal/email/domain"
	emaildto "smartrfq/internal/email/dto"
	"smartrfq/internal/email/repository"
	projectdomain "smartrfq/internal/project/domain"
	rfqdomain "smartrfq/internal/rfq/domain"
	supplierdomain "smartrfq/internal/supplier/domain"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/extract"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/mailer"
	"smartrfq/pkg/mailparse"
	"smartrfq/pkg/storage"

	"github.com/google/uuid"
)

// maxUpload caps each outgoing attachment.
const maxUpload = 20 << 20

type Deps struct {
	Conversations repository.ConversationRepository
	Emails        repository.EmailRepository
	Imports       repository.ImportRepository
	Projects      ProjectLookup
	Suppliers     SupplierLookup
	Items         ItemLister
	Files         storage.Store
	Mailer        mailer.Sender
	Queue         Queue
	// Mailbox is the address suppliers reply to.
	Mailbox string
	Log     *logger.Logger
}

type emailUsecase struct {
	Deps
	log *logger.Logger
}

func NewEmailUsecase(deps Deps) EmailUsecase {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &emailUsecase{Deps: deps, log: log.With("usecase", "Email")}
}

func (u *emailUsecase) ListConversations(orgID, projectID string) ([]*emaildomain.Conversation, error) {
	if _, err := u.Projects.GetProject(orgID, projectID); err != nil {
		return nil, err
	}
	return u.Conversations.FindByProject(orgID, projectID)
}

func (u *emailUsecase) GetConversation(orgID, id string) (*emaildomain.Conversation, error) {
	conv, err := u.Conversations.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation %s: %w", id, apierr.ErrNotFound)
	}
	return conv, nil
}

func (u *emailUsecase) StartConversation(ctx context.Context, orgID, projectID, senderName string, req *emaildto.StartConversationRequest) (*emaildto.StartConversationResponse, error) {
	project, err := u.Projects.GetProject(orgID, projectID)
	if err != nil {
		return nil, err
	}
	supplier, err := u.Suppliers.GetSupplier(orgID, req.SupplierID)
	if err != nil {
		return nil, err
	}
	items, err := u.selectItems(orgID, projectID, req.ItemIDs)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "RFQ: " + project.Name
	}
	conv := &emaildomain.Conversation{
		OrgID:      orgID,
		ProjectID:  projectID,
		SupplierID: supplier.ID,
		Subject:    subject,
		Status:     "active",
	}
	if err := u.Conversations.Create(conv); err != nil {
		return nil, err
	}

	email := u.outbound(ctx, conv, supplier, senderName, subject, RFQBody(project, req.Message, items), "", nil)
	if err := u.Emails.Create(email); err != nil {
		return nil, err
	}
	conv.Touch(email)
	if err := u.Conversations.Update(conv); err != nil {
		return nil, err
	}
	u.log.Info("conversation started", "conversation_id", conv.ID, "supplier_id", supplier.ID, "items", len(items), "status", email.Status)
	return &emaildto.StartConversationResponse{Conversation: conv, Email: email}, nil
}

func (u *emailUsecase) selectItems(orgID, projectID string, ids []string) ([]*rfqdomain.Part, error) {
	all, err := u.Items.ListItems(orgID, projectID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]*rfqdomain.Part, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}
	selected := make([]*rfqdomain.Part, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: item %s is not part of project %s", apierr.ErrInvalid, id, projectID)
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// RFQBody renders the request-for-quotation mail. Every item is introduced
// by its [ITEM-n] token so replies can be parsed back.
func RFQBody(project *projectdomain.Project, message string, items []*rfqdomain.Part) string {
	var b strings.Builder
	if m := strings.TrimSpace(message); m != "" {
		b.WriteString(m)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Please quote the following items for %s:\n\n", project.Name)
	for _, p := range items {
		b.WriteString(extract.FormatItemToken(p.ItemNumber))
		b.WriteString(" ")
		b.WriteString(p.Name)
		if p.PartNumber != "" {
			fmt.Fprintf(&b, " (P/N %s)", p.PartNumber)
		}
		unit := p.Unit
		if unit == "" {
			unit = "pcs"
		}
		fmt.Fprintf(&b, ", qty: %d %s", p.Quantity, unit)
		if p.Material != "" {
			fmt.Fprintf(&b, "; material %s", p.Material)
		}
		if p.SurfaceFinish != "" {
			fmt.Fprintf(&b, "; finish %s", p.SurfaceFinish)
		}
		if p.Tolerance != "" {
			fmt.Fprintf(&b, "; tolerance %s", p.Tolerance)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nPlease reply with one line per item in the form:\n")
	b.WriteString(extract.FormatItemToken(1))
	b.WriteString(" description: <text>, price: <unit price>, qty: <quantity>\n")
	return b.String()
}

// outbound sends a message and returns the email record for it. A delivery
// failure is recorded in the email status rather than returned.
func (u *emailUsecase) outbound(ctx context.Context, conv *emaildomain.Conversation, supplier *supplierdomain.Supplier, senderName, subject, body, inReplyTo string, files []mailer.Attachment) *emaildomain.Email {
	email := &emaildomain.Email{
		ID:             uuid.New().String(),
		OrgID:          conv.OrgID,
		ConversationID: conv.ID,
		From:           emaildomain.Participant{Name: senderName, Email: u.Mailbox},
		To:             emaildomain.Participant{Name: supplier.Name, Email: supplier.Email},
		Subject:        subject,
		Body:           body,
		SentAt:         time.Now(),
		Status:         emaildomain.StatusSent,
	}
	id, err := u.Mailer.Send(ctx, &mailer.Message{
		From:        mailer.Address{Name: senderName, Email: u.Mailbox},
		To:          mailer.Address{Name: supplier.Name, Email: supplier.Email},
		Subject:     subject,
		Body:        body,
		InReplyTo:   inReplyTo,
		Attachments: files,
	})
	if err != nil {
		u.log.Warn("outbound mail failed", "conversation_id", conv.ID, "error", err)
		email.Status = emaildomain.StatusFailed
		return email
	}
	email.MessageID = id
	return email
}

func (u *emailUsecase) ListEmails(orgID, conversationID string) ([]*emaildomain.Email, error) {
	if _, err := u.GetConversation(orgID, conversationID); err != nil {
		return nil, err
	}
	return u.Emails.FindByConversation(orgID, conversationID)
}

func (u *emailUsecase) SendEmail(ctx context.Context, orgID, conversationID, senderName string, in SendEmailInput) (*emaildomain.Email, error) {
	conv, err := u.GetConversation(orgID, conversationID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Body) == "" && len(in.Attachments) == 0 {
		return nil, fmt.Errorf("%w: message body is empty", apierr.ErrInvalid)
	}
	supplier, err := u.Suppliers.GetSupplier(orgID, conv.SupplierID)
	if err != nil {
		return nil, err
	}
	thread, err := u.Emails.FindByConversation(orgID, conversationID)
	if err != nil {
		return nil, err
	}
	inReplyTo := ""
	for i := len(thread) - 1; i >= 0; i-- {
		if thread[i].MessageID != "" {
			inReplyTo = thread[i].MessageID
			break
		}
	}

	files, stored, err := u.storeAttachments(ctx, conv, in.Attachments)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = "Re: " + conv.Subject
	}
	email := u.outbound(ctx, conv, supplier, senderName, subject, in.Body, inReplyTo, files)
	email.Attachments = stored
	if err := u.Emails.Create(email); err != nil {
		return nil, err
	}
	conv.Touch(email)
	if err := u.Conversations.Update(conv); err != nil {
		return nil, err
	}
	return email, nil
}

func (u *emailUsecase) storeAttachments(ctx context.Context, conv *emaildomain.Conversation, uploads []Upload) ([]mailer.Attachment, []emaildomain.Attachment, error) {
	var (
		files  []mailer.Attachment
		stored []emaildomain.Attachment
	)
	for _, up := range uploads {
		data, err := io.ReadAll(io.LimitReader(up.Data, maxUpload+1))
		if err != nil {
			return nil, nil, fmt.Errorf("read attachment %s: %w", up.Filename, err)
		}
		if len(data) > maxUpload {
			return nil, nil, fmt.Errorf("%w: attachment %s is too large", apierr.ErrInvalid, up.Filename)
		}
		att, err := u.put(ctx, conv, up.Filename, up.ContentType, data)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, mailer.Attachment{Name: up.Filename, ContentType: up.ContentType, Data: data})
		stored = append(stored, att)
	}
	return files, stored, nil
}

func (u *emailUsecase) put(ctx context.Context, conv *emaildomain.Conversation, name, contentType string, data []byte) (emaildomain.Attachment, error) {
	key := storage.Key(conv.OrgID, conv.ProjectID, name)
	size, err := u.Files.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return emaildomain.Attachment{}, fmt.Errorf("store attachment %s: %w", name, err)
	}
	return emaildomain.Attachment{
		ID:          uuid.New().String(),
		Name:        name,
		Size:        size,
		URL:         u.Files.URL(key),
		ContentType: contentType,
	}, nil
}

func (u *emailUsecase) MarkRead(orgID, conversationID string) (*emaildomain.Conversation, error) {
	conv, err := u.GetConversation(orgID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UnreadCount == 0 {
		return conv, nil
	}
	conv.UnreadCount = 0
	if err := u.Conversations.Update(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (u *emailUsecase) ImportInbound(ctx context.Context, msg *mailparse.Message) (*emaildomain.Email, error) {
	if msg.MessageID != "" {
		seen, err := u.Imports.Exists(msg.MessageID)
		if err != nil {
			return nil, err
		}
		if seen {
			u.log.Debug("inbound message already imported", "message_id", msg.MessageID)
			return nil, nil
		}
	}

	conv, err := u.conversationFor(msg.From.Email)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		u.log.Info("inbound message from unknown sender ignored", "message_id", msg.MessageID)
		return nil, nil
	}

	var attachments []emaildomain.Attachment
	for _, a := range msg.Attachments {
		att, err := u.put(ctx, conv, a.Name, a.ContentType, a.Data)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}

	to := emaildomain.Participant{Email: u.Mailbox}
	if len(msg.To) > 0 {
		to = emaildomain.Participant{Name: msg.To[0].Name, Email: msg.To[0].Email}
	}
	email := &emaildomain.Email{
		OrgID:          conv.OrgID,
		ConversationID: conv.ID,
		From:           emaildomain.Participant{Name: msg.From.Name, Email: msg.From.Email},
		To:             to,
		Subject:        msg.Subject,
		Body:           msg.Text,
		SentAt:         msg.Date,
		Status:         emaildomain.StatusReceived,
		Attachments:    attachments,
		MessageID:      msg.MessageID,
	}
	if err := u.Emails.Create(email); err != nil {
		return nil, err
	}
	conv.Touch(email)
	if err := u.Conversations.Update(conv); err != nil {
		return nil, err
	}
	if msg.MessageID != "" {
		if err := u.Imports.Create(&emaildomain.ImportRecord{OrgID: conv.OrgID, MessageID: msg.MessageID, EmailID: email.ID}); err != nil {
			return nil, err
		}
	}

	if u.Queue != nil && !u.Queue.QueueJob(ExtractionJob{OrgID: conv.OrgID, EmailID: email.ID}) {
		u.log.Warn("extraction queue full, reply not queued", "email_id", email.ID)
	}
	u.log.Info("inbound reply imported", "conversation_id", conv.ID, "email_id", email.ID)
	return email, nil
}

// conversationFor picks the most recently active conversation of any
// supplier record the sender address belongs to.
func (u *emailUsecase) conversationFor(sender string) (*emaildomain.Conversation, error) {
	suppliers, err := u.Suppliers.MatchSender(sender)
	if err != nil {
		return nil, err
	}
	var latest *emaildomain.Conversation
	for _, s := range suppliers {
		conv, err := u.Conversations.LatestForSupplier(s.OrgID, s.ID)
		if err != nil {
			return nil, err
		}
		if conv != nil && (latest == nil || conv.LastMessageAt.After(latest.LastMessageAt)) {
			latest = conv
		}
	}
	return latest, nil
}

func (u *emailUsecase) HandleInbound(ctx context.Context, msg *mailparse.Message) error {
	_, err := u.ImportInbound(ctx, msg)
	return err
}
