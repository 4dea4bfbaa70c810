package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	authdomain "smartrfq/internal/auth/domain"
	authRepo "smartrfq/internal/auth/repository"
	authUsecase "smartrfq/internal/auth/usecase"
	emaildomain "smartrfq/internal/email/domain"
	emailRepo "smartrfq/internal/email/repository"
	emailUsecase "smartrfq/internal/email/usecase"
	"smartrfq/internal/notification"
	projectdomain "smartrfq/internal/project/domain"
	projectRepo "smartrfq/internal/project/repository"
	projectUsecase "smartrfq/internal/project/usecase"
	quotationdomain "smartrfq/internal/quotation/domain"
	quotationRepo "smartrfq/internal/quotation/repository"
	quotationUsecase "smartrfq/internal/quotation/usecase"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqRepo "smartrfq/internal/rfq/repository"
	rfqUsecase "smartrfq/internal/rfq/usecase"
	supplierdomain "smartrfq/internal/supplier/domain"
	supplierRepo "smartrfq/internal/supplier/repository"
	supplierUsecase "smartrfq/internal/supplier/usecase"
	"smartrfq/pkg/config"
	"smartrfq/pkg/fcm"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/mailbox"
	"smartrfq/pkg/mailer"
	"smartrfq/pkg/metrics"
	"smartrfq/pkg/storage"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the server owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.DeviceToken{},
		&projectdomain.Project{},
		&supplierdomain.Supplier{},
		&rfqdomain.Part{},
		&rfqdomain.ItemCounter{},
		&rfqdomain.File{},
		&emaildomain.Conversation{},
		&emaildomain.Email{},
		&emaildomain.ImportRecord{},
		&quotationdomain.Quotation{},
	)
}

// Options carries the collaborators that differ between production and
// tests. Zero values are filled from the config.
type Options struct {
	Registry *prometheus.Registry
	Files    storage.Store
	Mailer   mailer.Sender
	Pusher   notification.Pusher
}

type Handler struct {
	cfg *config.Config
	log *logger.Logger

	authUsecase      authUsecase.AuthUsecase
	projectUsecase   projectUsecase.ProjectUsecase
	supplierUsecase  supplierUsecase.SupplierUsecase
	rfqUsecase       rfqUsecase.RFQUsecase
	emailUsecase     emailUsecase.EmailUsecase
	quotationUsecase quotationUsecase.QuotationUsecase

	worker   *emailUsecase.ExtractionWorker
	poller   *mailbox.Poller
	files    storage.Store
	registry *prometheus.Registry
	http     *metrics.HTTP
	pipeline *metrics.Pipeline
}

func NewHandler(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger, opts Options) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	files := opts.Files
	if files == nil {
		var err error
		files, err = storage.Open(ctx, cfg.StorageBackend, cfg.StorageDir, "/uploads", cfg.GCSBucket, cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
	}
	send := opts.Mailer
	if send == nil {
		if cfg.SMTPAddr != "" {
			send = mailer.NewSMTP(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, log)
		} else {
			log.Warn("SMTP_ADDR not set, outgoing mail is logged only")
			send = mailer.NewLog(log)
		}
	}
	pusher := opts.Pusher
	if pusher == nil && cfg.FirebaseCredentials != "" {
		client, err := fcm.NewClient(ctx, cfg.FirebaseCredentials, log)
		if err != nil {
			log.Warn("failed to initialize FCM client, push notifications disabled", "error", err)
		} else {
			pusher = client
		}
	}

	h := &Handler{
		cfg:      cfg,
		log:      log,
		files:    files,
		registry: reg,
		http:     metrics.NewHTTP(reg),
		pipeline: metrics.NewPipeline(reg),
	}

	// Repositories
	userRepo := authRepo.NewUserRepository(db)
	deviceRepo := authRepo.NewDeviceTokenRepository(db)
	conversationRepo := emailRepo.NewConversationRepository(db)
	emailRepository := emailRepo.NewEmailRepository(db)

	// Use cases
	h.authUsecase = authUsecase.NewAuthUsecase(userRepo, deviceRepo, cfg)
	h.projectUsecase = projectUsecase.NewProjectUsecase(projectRepo.NewProjectRepository(db))
	h.supplierUsecase = supplierUsecase.NewSupplierUsecase(supplierRepo.NewSupplierRepository(db))
	h.rfqUsecase = rfqUsecase.NewRFQUsecase(rfqRepo.NewPartRepository(db), rfqRepo.NewFileRepository(db), h.projectUsecase, files, log)

	h.worker = emailUsecase.NewExtractionWorker(cfg.ExtractionWorkers, h.pipeline, log)
	h.emailUsecase = emailUsecase.NewEmailUsecase(emailUsecase.Deps{
		Conversations: conversationRepo,
		Emails:        emailRepository,
		Imports:       emailRepo.NewImportRepository(db),
		Projects:      h.projectUsecase,
		Suppliers:     h.supplierUsecase,
		Items:         h.rfqUsecase,
		Files:         files,
		Mailer:        send,
		Queue:         h.worker,
		Mailbox:       cfg.SMTPFrom,
		Log:           log,
	})

	var notifier quotationUsecase.Notifier
	if pusher != nil {
		notifier = notification.NewService(h.authUsecase, pusher, h.pipeline.PushFailures, log)
	}
	h.quotationUsecase = quotationUsecase.NewQuotationUsecase(quotationUsecase.Deps{
		Quotations:    quotationRepo.NewQuotationRepository(db),
		Conversations: conversationRepo,
		Emails:        emailRepository,
		Items:         h.rfqUsecase,
		Suppliers:     h.supplierUsecase,
		Notifier:      notifier,
		Metrics:       h.pipeline,
		Log:           log,
	})
	h.worker.SetExtractor(h.quotationUsecase)

	if cfg.IMAPAddr != "" {
		h.poller = mailbox.NewPoller(
			mailbox.TLSDialer(cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword),
			h.emailUsecase,
			cfg.IMAPPollInterval,
			metrics.Labeled{Vec: h.pipeline.InboundMessages},
			log,
		)
	} else {
		log.Info("IMAP_ADDR not set, inbound mail polling disabled")
	}
	return h, nil
}

// Start serves the API on addr until ctx is cancelled, then shuts down the
// server, the mailbox poller and the extraction workers.
func (h *Handler) Start(ctx context.Context, addr string) error {
	h.worker.Start()
	defer h.Stop()

	var pollerDone chan struct{}
	if h.poller != nil {
		pollerDone = make(chan struct{})
		go func() {
			defer close(pollerDone)
			h.poller.Run(ctx)
		}()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		h.log.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		h.log.Warn("server shutdown", "error", err)
	}
	if pollerDone != nil {
		<-pollerDone
	}
	h.log.Info("server stopped")
	return nil
}

// Stop drains background extraction work.
func (h *Handler) Stop() {
	h.worker.Stop()
}
