package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	emaildomain "smartrfq/internal/email/domain"
	emailrepo "smartrfq/internal/email/repository"
	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	projectrepo "smartrfq/internal/project/repository"
	projectusecase "smartrfq/internal/project/usecase"
	quotationdomain "smartrfq/internal/quotation/domain"
	quotationdto "smartrfq/internal/quotation/dto"
	"smartrfq/internal/quotation/repository"
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
	"smartrfq/pkg/metrics"
	"smartrfq/pkg/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushRecord struct {
	orgID, supplier string
	count           int
}

type fakeNotifier struct {
	pushes []pushRecord
}

func (n *fakeNotifier) QuotationsReceived(_ context.Context, orgID, _, _, supplierName string, count int) error {
	n.pushes = append(n.pushes, pushRecord{orgID: orgID, supplier: supplierName, count: count})
	return nil
}

type fixture struct {
	uc       QuotationUsecase
	notifier *fakeNotifier
	metrics  *metrics.Pipeline
	convs    emailrepo.ConversationRepository
	emails   emailrepo.EmailRepository
	project  *projectdomain.Project
	supplier *supplierdomain.Supplier
	items    []*rfqdomain.Part
	conv     *emaildomain.Conversation
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
		&quotationdomain.Quotation{},
	))
	files, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	projects := projectusecase.NewProjectUsecase(projectrepo.NewProjectRepository(db))
	suppliers := supplierusecase.NewSupplierUsecase(supplierrepo.NewSupplierRepository(db))
	rfq := rfqusecase.NewRFQUsecase(rfqrepo.NewPartRepository(db), rfqrepo.NewFileRepository(db), projects, files, nil)

	f := &fixture{
		notifier: &fakeNotifier{},
		metrics:  metrics.NewPipeline(prometheus.NewRegistry()),
		convs:    emailrepo.NewConversationRepository(db),
		emails:   emailrepo.NewEmailRepository(db),
	}
	f.project, err = projects.CreateProject("org_a", &projectdto.CreateProjectRequest{Name: "Gearbox"})
	require.NoError(t, err)
	f.supplier, err = suppliers.CreateSupplier("org_a", &supplierdto.CreateSupplierRequest{Name: "Precision Co", Email: "sales@precision.test"})
	require.NoError(t, err)
	f.items, err = rfq.CreateItems("org_a", f.project.ID, []rfqdto.CreateItemRequest{
		{Name: "Shaft", Quantity: 4},
		{Name: "Bearing", Quantity: 8},
	})
	require.NoError(t, err)

	f.conv = &emaildomain.Conversation{OrgID: "org_a", ProjectID: f.project.ID, SupplierID: f.supplier.ID, Subject: "RFQ"}
	require.NoError(t, f.convs.Create(f.conv))

	f.uc = NewQuotationUsecase(Deps{
		Quotations:    repository.NewQuotationRepository(db),
		Conversations: f.convs,
		Emails:        f.emails,
		Items:         rfq,
		Suppliers:     suppliers,
		Notifier:      f.notifier,
		Metrics:       f.metrics,
	})
	return f
}

func (f *fixture) email(t *testing.T, status emaildomain.Status, body string, at time.Time) *emaildomain.Email {
	t.Helper()
	e := &emaildomain.Email{OrgID: "org_a", ConversationID: f.conv.ID, Body: body, Status: status, SentAt: at}
	require.NoError(t, f.emails.Create(e))
	return e
}

func TestExtractFromConversation_MatchesItemNumbers(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.email(t, emaildomain.StatusSent, "[ITEM-1] Shaft, price: 1", at.Add(-time.Hour))
	f.email(t, emaildomain.StatusReceived, strings.Join([]string{
		"[ITEM-1] description: turned shaft, price: $12.50, qty: 4",
		"[ITEM-2] description: bearing, qty: 8",
		"[ITEM-7] description: unknown, price: 3",
	}, "\n"), at)

	res, err := f.uc.ExtractFromConversation(context.Background(), "org_a", f.conv.ID)
	require.NoError(t, err)
	require.Len(t, res.Quotations, 1)
	q := res.Quotations[0]
	assert.Equal(t, f.items[0].ID, q.RFQItemID)
	assert.Equal(t, 12.5, q.UnitPrice)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "turned shaft", q.Remarks)
	assert.True(t, q.QuotedAt.Equal(at))
	assert.Equal(t, []int{7}, res.Unmatched)

	require.Len(t, f.notifier.pushes, 1)
	assert.Equal(t, pushRecord{orgID: "org_a", supplier: "Precision Co", count: 1}, f.notifier.pushes[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QuotationsExtracted))

	again, err := f.uc.ExtractFromConversation(context.Background(), "org_a", f.conv.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Quotations)
	assert.Len(t, f.notifier.pushes, 1)
}

func TestExtractFromEmail_QuantityMismatchNoted(t *testing.T) {
	f := newFixture(t)
	e := f.email(t, emaildomain.StatusReceived, "[ITEM-2] description: bearing, price: 2.25, qty: 10", time.Now())

	n, err := f.uc.ExtractFromEmail(context.Background(), "org_a", e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	quotes, err := f.uc.ListQuotations("org_a", f.project.ID)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "bearing (quoted qty 10)", quotes[0].Remarks)

	_, err = f.uc.ExtractFromEmail(context.Background(), "org_b", e.ID)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestHistory_ComputesDeltas(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, price := range []float64{10, 12, 9} {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		_, err := f.uc.CreateQuotation("org_a", f.project.ID, &quotationdto.CreateQuotationRequest{
			RFQItemID:  f.items[0].ID,
			SupplierID: f.supplier.ID,
			UnitPrice:  price,
			Currency:   "eur",
			QuotedAt:   &at,
		})
		require.NoError(t, err)
	}

	history, err := f.uc.History("org_a", f.items[0].ID, f.supplier.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 9.0, history[0].UnitPrice)
	assert.Equal(t, -3.0, history[0].PriceChange)
	assert.Equal(t, -25.0, history[0].PercentChange)
	assert.Equal(t, "EUR", history[0].Currency)
	assert.Equal(t, 0.0, history[2].PriceChange)

	_, err = f.uc.History("org_a", "", f.supplier.ID)
	assert.ErrorIs(t, err, apierr.ErrInvalid)
}

func TestCreateQuotation_Validates(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateQuotation("org_a", f.project.ID, &quotationdto.CreateQuotationRequest{RFQItemID: "nope", SupplierID: f.supplier.ID, UnitPrice: 1})
	assert.ErrorIs(t, err, apierr.ErrInvalid)

	_, err = f.uc.CreateQuotation("org_a", f.project.ID, &quotationdto.CreateQuotationRequest{RFQItemID: f.items[0].ID, SupplierID: "nope", UnitPrice: 1})
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestImportImage_StoresProcessingFile(t *testing.T) {
	f := newFixture(t)
	file, err := f.uc.ImportImage(context.Background(), "org_a", f.project.ID, f.supplier.ID, rfqusecase.Upload{
		Filename:    "quote.jpg",
		ContentType: "image/jpeg",
		Data:        strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, rfqdomain.FileProcessing, file.Status)

	_, err = f.uc.ImportImage(context.Background(), "org_a", f.project.ID, f.supplier.ID, rfqusecase.Upload{
		Filename: "quote.exe", ContentType: "application/octet-stream", Data: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, apierr.ErrInvalid)
}
