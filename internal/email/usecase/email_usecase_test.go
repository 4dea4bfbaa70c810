package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	emaildomain "smartrfq/internal/email/domain"
	emaildto "smartrfq/internal/email/dto"
	"smartrfq/internal/email/repository"
	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	projectrepo "smartrfq/internal/project/repository"
	projectusecase "smartrfq/internal/project/usecase"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	rfqrepo "smartrfq/internal/rfq/repository"
	rfqusecase "smartrfq/internal/rfq/usecase"
	supplierdomain "smartrfq/internal/supplier/domain"
	supplierdto "smartrfq/internal/supplier/dto"
	supplierrepo "smartrfq/internal/supplier/repository"
	supplierusecase "smartrfq/internal/supplier/usecase"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/database"
	"smartrfq/pkg/mailer"
	"smartrfq/pkg/mailparse"
	"smartrfq/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []*mailer.Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg *mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("relay refused")
	}
	m.sent = append(m.sent, msg)
	return "out-" + string(rune('0'+len(m.sent))) + "@acme.test", nil
}

type fakeQueue struct {
	jobs []ExtractionJob
}

func (q *fakeQueue) QueueJob(job ExtractionJob) bool {
	q.jobs = append(q.jobs, job)
	return true
}

type fixture struct {
	uc       EmailUsecase
	mail     *fakeMailer
	queue    *fakeQueue
	project  *projectdomain.Project
	supplier *supplierdomain.Supplier
	items    []*rfqdomain.Part
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&projectdomain.Project{},
		&rfqdomain.Part{},
		&rfqdomain.ItemCounter{},
		&rfqdomain.File{},
		&supplierdomain.Supplier{},
		&emaildomain.Conversation{},
		&emaildomain.Email{},
		&emaildomain.ImportRecord{},
	))

	files, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	projects := projectusecase.NewProjectUsecase(projectrepo.NewProjectRepository(db))
	suppliers := supplierusecase.NewSupplierUsecase(supplierrepo.NewSupplierRepository(db))
	rfq := rfqusecase.NewRFQUsecase(rfqrepo.NewPartRepository(db), rfqrepo.NewFileRepository(db), projects, files, nil)

	p, err := projects.CreateProject("org_a", &projectdto.CreateProjectRequest{Name: "Gearbox"})
	require.NoError(t, err)
	s, err := suppliers.CreateSupplier("org_a", &supplierdto.CreateSupplierRequest{Name: "Precision Co", Email: "sales@precision.test", ProjectID: p.ID})
	require.NoError(t, err)
	items, err := rfq.CreateItems("org_a", p.ID, []rfqdto.CreateItemRequest{
		{Name: "Shaft", PartNumber: "SH-1", Quantity: 4, Material: "4140"},
		{Name: "Bearing", Quantity: 8},
	})
	require.NoError(t, err)

	f := &fixture{mail: &fakeMailer{}, queue: &fakeQueue{}, project: p, supplier: s, items: items}
	f.uc = NewEmailUsecase(Deps{
		Conversations: repository.NewConversationRepository(db),
		Emails:        repository.NewEmailRepository(db),
		Imports:       repository.NewImportRepository(db),
		Projects:      projects,
		Suppliers:     suppliers,
		Items:         rfq,
		Files:         files,
		Mailer:        f.mail,
		Queue:         f.queue,
		Mailbox:       "rfq@acme.test",
	})
	return f
}

func (f *fixture) start(t *testing.T, itemIDs ...string) *emaildto.StartConversationResponse {
	t.Helper()
	res, err := f.uc.StartConversation(context.Background(), "org_a", f.project.ID, "Buyer", &emaildto.StartConversationRequest{
		SupplierID: f.supplier.ID,
		Message:    "Hello",
		ItemIDs:    itemIDs,
	})
	require.NoError(t, err)
	return res
}

func TestStartConversation_SendsRFQListingItems(t *testing.T) {
	f := newFixture(t)
	res := f.start(t)

	assert.Equal(t, "RFQ: Gearbox", res.Conversation.Subject)
	assert.Equal(t, 1, res.Conversation.MessageCount)
	assert.Equal(t, 0, res.Conversation.UnreadCount)
	assert.Equal(t, emaildomain.StatusSent, res.Email.Status)
	assert.NotEmpty(t, res.Email.MessageID)

	require.Len(t, f.mail.sent, 1)
	body := f.mail.sent[0].Body
	assert.True(t, strings.HasPrefix(body, "Hello\n\n"))
	assert.Contains(t, body, "[ITEM-1] Shaft (P/N SH-1), qty: 4 pcs; material 4140")
	assert.Contains(t, body, "[ITEM-2] Bearing, qty: 8 pcs")
	assert.Equal(t, "sales@precision.test", f.mail.sent[0].To.Email)
	assert.Equal(t, "rfq@acme.test", f.mail.sent[0].From.Email)
}

func TestStartConversation_SelectedItemsAndValidation(t *testing.T) {
	f := newFixture(t)
	f.start(t, f.items[1].ID)
	assert.NotContains(t, f.mail.sent[0].Body, "[ITEM-1] Shaft")

	_, err := f.uc.StartConversation(context.Background(), "org_a", f.project.ID, "Buyer", &emaildto.StartConversationRequest{
		SupplierID: f.supplier.ID,
		ItemIDs:    []string{"nope"},
	})
	assert.ErrorIs(t, err, apierr.ErrInvalid)

	_, err = f.uc.StartConversation(context.Background(), "org_b", f.project.ID, "Buyer", &emaildto.StartConversationRequest{SupplierID: f.supplier.ID})
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestSendEmail_FailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	res := f.start(t)

	f.mail.fail = true
	email, err := f.uc.SendEmail(context.Background(), "org_a", res.Conversation.ID, "Buyer", SendEmailInput{
		Body:        "Any update?",
		Attachments: []Upload{{Filename: "drawing-notes.txt", ContentType: "text/plain", Data: strings.NewReader("tolerance 0.01")}},
	})
	require.NoError(t, err)
	assert.Equal(t, emaildomain.StatusFailed, email.Status)
	assert.Equal(t, "Re: RFQ: Gearbox", email.Subject)
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, int64(14), email.Attachments[0].Size)

	emails, err := f.uc.ListEmails("org_a", res.Conversation.ID)
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	_, err = f.uc.SendEmail(context.Background(), "org_a", res.Conversation.ID, "Buyer", SendEmailInput{Body: "  "})
	assert.ErrorIs(t, err, apierr.ErrInvalid)
}

func TestSendEmail_RepliesInThread(t *testing.T) {
	f := newFixture(t)
	res := f.start(t)

	_, err := f.uc.SendEmail(context.Background(), "org_a", res.Conversation.ID, "Buyer", SendEmailInput{Body: "Reminder"})
	require.NoError(t, err)
	require.Len(t, f.mail.sent, 2)
	assert.Equal(t, res.Email.MessageID, f.mail.sent[1].InReplyTo)
}

func TestImportInbound_AppendsAndQueues(t *testing.T) {
	f := newFixture(t)
	res := f.start(t)

	msg := &mailparse.Message{
		MessageID: "reply-1@precision.test",
		From:      mailparse.Address{Name: "Sales", Email: "sales@precision.test"},
		Subject:   "Re: RFQ: Gearbox",
		Date:      time.Now().Add(time.Minute),
		Text:      "[ITEM-1] description: shaft, price: $12.50, qty: 4",
		Attachments: []mailparse.Attachment{
			{Name: "quote.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		},
	}
	email, err := f.uc.ImportInbound(context.Background(), msg)
	require.NoError(t, err)
	require.NotNil(t, email)
	assert.Equal(t, res.Conversation.ID, email.ConversationID)
	assert.Equal(t, emaildomain.StatusReceived, email.Status)
	require.Len(t, email.Attachments, 1)

	conv, err := f.uc.GetConversation("org_a", res.Conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadCount)
	assert.Equal(t, 2, conv.MessageCount)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, ExtractionJob{OrgID: "org_a", EmailID: email.ID}, f.queue.jobs[0])

	again, err := f.uc.ImportInbound(context.Background(), msg)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, f.queue.jobs, 1)

	read, err := f.uc.MarkRead("org_a", res.Conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, read.UnreadCount)
}

func TestImportInbound_UnknownSenderIgnored(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	email, err := f.uc.ImportInbound(context.Background(), &mailparse.Message{
		MessageID: "spam@else.test",
		From:      mailparse.Address{Email: "someone@else.test"},
		Date:      time.Now(),
		Text:      "hi",
	})
	require.NoError(t, err)
	assert.Nil(t, email)
	assert.Empty(t, f.queue.jobs)
}
