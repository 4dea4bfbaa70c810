package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	emaildomain "smartrfq/internal/email/domain"
	emailrepo "smartrfq/internal/email/repository"
	quotationdomain "smartrfq/internal/quotation/domain"
	quotationdto "smartrfq/internal/quotation/dto"
	"smartrfq/internal/quotation/repository"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqusecase "smartrfq/internal/rfq/usecase"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/extract"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/metrics"
)

const defaultCurrency = "USD"

type Deps struct {
	Quotations    repository.QuotationRepository
	Conversations emailrepo.ConversationRepository
	Emails        emailrepo.EmailRepository
	Items         Items
	Suppliers     SupplierLookup
	Notifier      Notifier
	Metrics       *metrics.Pipeline
	Log           *logger.Logger
}

type quotationUsecase struct {
	Deps
	log *logger.Logger
}

func NewQuotationUsecase(deps Deps) QuotationUsecase {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &quotationUsecase{Deps: deps, log: log.With("usecase", "Quotation")}
}

func (u *quotationUsecase) ListQuotations(orgID, projectID string) ([]*quotationdomain.Quotation, error) {
	return u.Quotations.FindByProject(orgID, projectID)
}

func (u *quotationUsecase) CreateQuotation(orgID, projectID string, req *quotationdto.CreateQuotationRequest) (*quotationdomain.Quotation, error) {
	items, err := u.Items.ListItems(orgID, projectID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, it := range items {
		if it.ID == req.RFQItemID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: item %s is not part of project %s", apierr.ErrInvalid, req.RFQItemID, projectID)
	}
	if _, err := u.Suppliers.GetSupplier(orgID, req.SupplierID); err != nil {
		return nil, err
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price must not be negative", apierr.ErrInvalid)
	}

	q := &quotationdomain.Quotation{
		OrgID:      orgID,
		ProjectID:  projectID,
		RFQItemID:  req.RFQItemID,
		SupplierID: req.SupplierID,
		EmailID:    req.EmailID,
		UnitPrice:  req.UnitPrice,
		Currency:   strings.ToUpper(strings.TrimSpace(req.Currency)),
		LeadTime:   req.LeadTime,
		Remarks:    req.Remarks,
		QuotedAt:   time.Now(),
	}
	if q.Currency == "" {
		q.Currency = defaultCurrency
	}
	if req.QuotedAt != nil {
		q.QuotedAt = *req.QuotedAt
	}
	if err := u.Quotations.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (u *quotationUsecase) History(orgID, itemID, supplierID string) ([]quotationdomain.HistoryEntry, error) {
	if itemID == "" || supplierID == "" {
		return nil, fmt.Errorf("%w: item_id and supplier_id are required", apierr.ErrInvalid)
	}
	quotes, err := u.Quotations.FindHistory(orgID, itemID, supplierID)
	if err != nil {
		return nil, err
	}
	return quotationdomain.BuildHistory(quotes), nil
}

func (u *quotationUsecase) conversation(orgID, id string) (*emaildomain.Conversation, error) {
	conv, err := u.Conversations.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation %s: %w", id, apierr.ErrNotFound)
	}
	return conv, nil
}

func (u *quotationUsecase) ExtractFromConversation(ctx context.Context, orgID, conversationID string) (*quotationdto.ExtractResponse, error) {
	conv, err := u.conversation(orgID, conversationID)
	if err != nil {
		return nil, err
	}
	emails, err := u.Emails.FindByConversation(orgID, conversationID)
	if err != nil {
		return nil, err
	}

	res := &quotationdto.ExtractResponse{Quotations: []*quotationdomain.Quotation{}, Unmatched: []int{}}
	unmatched := map[int]bool{}
	for _, email := range emails {
		if email.Status != emaildomain.StatusReceived {
			continue
		}
		quotes, missing, err := u.extract(conv, email)
		if err != nil {
			return nil, err
		}
		res.Quotations = append(res.Quotations, quotes...)
		for _, n := range missing {
			unmatched[n] = true
		}
	}
	for n := range unmatched {
		res.Unmatched = append(res.Unmatched, n)
	}
	sort.Ints(res.Unmatched)

	u.announce(ctx, conv, len(res.Quotations))
	return res, nil
}

func (u *quotationUsecase) ExtractFromEmail(ctx context.Context, orgID, emailID string) (int, error) {
	email, err := u.Emails.FindByID(orgID, emailID)
	if err != nil {
		return 0, err
	}
	if email == nil {
		return 0, fmt.Errorf("email %s: %w", emailID, apierr.ErrNotFound)
	}
	conv, err := u.conversation(orgID, email.ConversationID)
	if err != nil {
		return 0, err
	}
	quotes, missing, err := u.extract(conv, email)
	if err != nil {
		return 0, err
	}
	if len(missing) > 0 {
		u.log.Info("reply quotes unknown item numbers", "email_id", emailID, "item_numbers", missing)
	}
	u.announce(ctx, conv, len(quotes))
	return len(quotes), nil
}

// extract stores one quotation per priced item of email that matches an RFQ
// item of the conversation's project. Item numbers without a matching item
// are returned separately. Items already quoted from this email are skipped.
func (u *quotationUsecase) extract(conv *emaildomain.Conversation, email *emaildomain.Email) ([]*quotationdomain.Quotation, []int, error) {
	found := extract.ExtractItems(email.Body)
	if len(found) == 0 {
		return nil, nil, nil
	}
	numbers := make([]int, 0, len(found))
	for _, it := range found {
		numbers = append(numbers, it.Number)
	}
	parts, err := u.Items.ItemsByNumber(conv.OrgID, conv.ProjectID, numbers)
	if err != nil {
		return nil, nil, err
	}

	var (
		quotes  []*quotationdomain.Quotation
		missing []int
	)
	for _, it := range found {
		part, ok := parts[it.Number]
		if !ok {
			missing = append(missing, it.Number)
			continue
		}
		if it.UnitPrice == nil {
			continue
		}
		exists, err := u.Quotations.ExistsForEmail(email.ID, part.ID)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			continue
		}
		q := newExtracted(conv, email, part, it)
		if err := u.Quotations.Create(q); err != nil {
			return nil, nil, err
		}
		quotes = append(quotes, q)
	}
	if u.Metrics != nil && len(quotes) > 0 {
		u.Metrics.QuotationsExtracted.Add(float64(len(quotes)))
	}
	return quotes, missing, nil
}

func newExtracted(conv *emaildomain.Conversation, email *emaildomain.Email, part *rfqdomain.Part, it extract.Item) *quotationdomain.Quotation {
	q := &quotationdomain.Quotation{
		OrgID:      conv.OrgID,
		ProjectID:  conv.ProjectID,
		RFQItemID:  part.ID,
		SupplierID: conv.SupplierID,
		EmailID:    email.ID,
		UnitPrice:  *it.UnitPrice,
		Currency:   defaultCurrency,
		QuotedAt:   email.SentAt,
	}
	if it.Description != nil {
		q.Remarks = *it.Description
	}
	if it.Quantity != nil && *it.Quantity != part.Quantity {
		q.Remarks = strings.TrimSpace(fmt.Sprintf("%s (quoted qty %d)", q.Remarks, *it.Quantity))
	}
	return q
}

func (u *quotationUsecase) announce(ctx context.Context, conv *emaildomain.Conversation, count int) {
	if count == 0 || u.Notifier == nil {
		return
	}
	name := ""
	if s, err := u.Suppliers.GetSupplier(conv.OrgID, conv.SupplierID); err == nil {
		name = s.Name
	}
	if err := u.Notifier.QuotationsReceived(ctx, conv.OrgID, conv.ProjectID, conv.ID, name, count); err != nil {
		u.log.Warn("quotation push failed", "conversation_id", conv.ID, "error", err)
	}
}

func (u *quotationUsecase) ImportImage(ctx context.Context, orgID, projectID, supplierID string, upload rfqusecase.Upload) (*rfqdomain.File, error) {
	if supplierID == "" {
		return nil, fmt.Errorf("%w: supplier_id is required", apierr.ErrInvalid)
	}
	if _, err := u.Suppliers.GetSupplier(orgID, supplierID); err != nil {
		return nil, err
	}
	if ct := upload.ContentType; ct != "" && !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		return nil, fmt.Errorf("%w: unsupported quotation file type %s", apierr.ErrInvalid, ct)
	}
	return u.Items.UploadFile(ctx, orgID, projectID, upload, rfqdomain.FileProcessing)
}
