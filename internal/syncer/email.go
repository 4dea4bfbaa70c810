package syncer

import (
	"context"
	"fmt"

	emaildomain "smartrfq/internal/email/domain"
	emaildto "smartrfq/internal/email/dto"
	quotationdomain "smartrfq/internal/quotation/domain"
	quotationdto "smartrfq/internal/quotation/dto"
	"smartrfq/internal/store"
	"smartrfq/pkg/rfqapi"
)

type EmailAPI interface {
	ListConversations(ctx context.Context, projectID string) ([]emaildomain.Conversation, error)
	StartConversation(ctx context.Context, projectID string, req emaildto.StartConversationRequest) (*emaildto.StartConversationResponse, error)
	ListEmails(ctx context.Context, conversationID string) ([]emaildomain.Email, error)
	SendEmail(ctx context.Context, conversationID, subject, body string, attachments []rfqapi.Upload) (*emaildomain.Email, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
	ExtractQuotations(ctx context.Context, conversationID string) (*quotationdto.ExtractResponse, error)
	QuotationHistory(ctx context.Context, itemID, supplierID string) ([]quotationdomain.HistoryEntry, error)
}

type EmailSync struct {
	hook
	api           EmailAPI
	store         *store.EmailStore
	conversations flights
	emails        flights
}

func NewEmailSync(api EmailAPI, st *store.EmailStore, deps Deps) *EmailSync {
	return &EmailSync{hook: newHook("emails", deps), api: api, store: st}
}

func (s *EmailSync) LoadConversations(ctx context.Context, projectID string) ([]emaildomain.Conversation, error) {
	if s.store.Has(projectID) {
		s.cacheHit()
		return s.store.List(projectID), nil
	}
	return s.RefreshConversations(ctx, projectID)
}

func (s *EmailSync) RefreshConversations(ctx context.Context, projectID string) ([]emaildomain.Conversation, error) {
	if !s.conversations.acquire(projectID) {
		return nil, ErrInProgress
	}
	defer s.conversations.release(projectID)

	epoch := s.store.Epoch()
	gen := s.store.BeginLoad(projectID)
	s.store.SetLoading(true)
	done := s.fetchStarted()
	convs, err := s.api.ListConversations(ctx, projectID)
	done()
	if err != nil {
		return nil, s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load conversations", err)
	}
	current := false
	s.store.Apply(epoch, func() { current = s.store.SetAllIfCurrent(projectID, gen, convs) })
	if !current {
		s.stale(projectID)
	}
	return s.store.List(projectID), nil
}

func (s *EmailSync) LoadEmails(ctx context.Context, conversationID string) ([]emaildomain.Email, error) {
	if s.store.HasEmails(conversationID) {
		s.cacheHit()
		return s.store.Emails(conversationID), nil
	}
	return s.RefreshEmails(ctx, conversationID)
}

func (s *EmailSync) RefreshEmails(ctx context.Context, conversationID string) ([]emaildomain.Email, error) {
	if !s.emails.acquire(conversationID) {
		return nil, ErrInProgress
	}
	defer s.emails.release(conversationID)

	epoch := s.store.Epoch()
	gen := s.store.BeginEmailsLoad(conversationID)
	s.store.SetLoading(true)
	done := s.fetchStarted()
	emails, err := s.api.ListEmails(ctx, conversationID)
	done()
	if err != nil {
		return nil, s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load emails", err)
	}
	current := false
	s.store.Apply(epoch, func() { current = s.store.SetEmailsIfCurrent(conversationID, gen, emails) })
	if !current {
		s.stale(conversationID)
	}
	return s.store.Emails(conversationID), nil
}

// Start opens a conversation with a supplier and records the RFQ email the
// server sent to open it.
func (s *EmailSync) Start(ctx context.Context, projectID string, req emaildto.StartConversationRequest) (*emaildto.StartConversationResponse, error) {
	epoch := s.store.Epoch()
	res, err := s.api.StartConversation(ctx, projectID, req)
	if err != nil {
		return nil, s.fail(nil, "Failed to start conversation", err)
	}
	if res.Conversation != nil {
		s.commit(s.store, epoch, projectID, func() {
			s.store.Add(*res.Conversation)
			if res.Email != nil {
				s.store.SetEmails(res.Conversation.ID, []emaildomain.Email{*res.Email})
			}
		})
	}
	s.success("RFQ sent", req.Subject)
	return res, nil
}

func (s *EmailSync) Send(ctx context.Context, conversationID, subject, body string, attachments []rfqapi.Upload) (*emaildomain.Email, error) {
	epoch := s.store.Epoch()
	e, err := s.api.SendEmail(ctx, conversationID, subject, body, attachments)
	if err != nil {
		return nil, s.fail(nil, "Failed to send email", err)
	}
	s.commit(s.store, epoch, conversationID, func() { s.store.AddEmail(*e) })
	s.success("Email sent", subject)
	return e, nil
}

func (s *EmailSync) MarkRead(ctx context.Context, conversationID string) error {
	epoch := s.store.Epoch()
	if err := s.api.MarkConversationRead(ctx, conversationID); err != nil {
		return s.fail(nil, "Failed to mark conversation read", err)
	}
	s.commit(s.store, epoch, conversationID, func() { s.store.MarkRead(conversationID) })
	return nil
}

// Extract asks the server to parse the conversation's replies into quotations.
func (s *EmailSync) Extract(ctx context.Context, conversationID string) (*quotationdto.ExtractResponse, error) {
	res, err := s.api.ExtractQuotations(ctx, conversationID)
	if err != nil {
		return nil, s.fail(nil, "Failed to extract quotations", err)
	}
	msg := fmt.Sprintf("%d quotations extracted", len(res.Quotations))
	if len(res.Unmatched) > 0 {
		msg += fmt.Sprintf(", %d item numbers unmatched", len(res.Unmatched))
	}
	s.success("Extraction finished", msg)
	return res, nil
}

func (s *EmailSync) History(ctx context.Context, itemID, supplierID string) ([]quotationdomain.HistoryEntry, error) {
	h, err := s.api.QuotationHistory(ctx, itemID, supplierID)
	if err != nil {
		return nil, s.fail(nil, "Failed to load quotation history", err)
	}
	return h, nil
}
