package usecase

import (
	"context"

	quotationdomain "smartrfq/internal/quotation/domain"
	quotationdto "smartrfq/internal/quotation/dto"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqusecase "smartrfq/internal/rfq/usecase"
	supplierdomain "smartrfq/internal/supplier/domain"
)

type Items interface {
	ListItems(orgID, projectID string) ([]*rfqdomain.Part, error)
	ItemsByNumber(orgID, projectID string, numbers []int) (map[int]*rfqdomain.Part, error)
	UploadFile(ctx context.Context, orgID, projectID string, upload rfqusecase.Upload, status rfqdomain.FileStatus) (*rfqdomain.File, error)
}

type SupplierLookup interface {
	GetSupplier(orgID, id string) (*supplierdomain.Supplier, error)
}

// Notifier announces freshly extracted quotations.
type Notifier interface {
	QuotationsReceived(ctx context.Context, orgID, projectID, conversationID, supplierName string, count int) error
}

type QuotationUsecase interface {
	ListQuotations(orgID, projectID string) ([]*quotationdomain.Quotation, error)
	CreateQuotation(orgID, projectID string, req *quotationdto.CreateQuotationRequest) (*quotationdomain.Quotation, error)
	History(orgID, itemID, supplierID string) ([]quotationdomain.HistoryEntry, error)
	// ExtractFromConversation parses every received email of the thread
	// and stores the quotes that match RFQ items.
	ExtractFromConversation(ctx context.Context, orgID, conversationID string) (*quotationdto.ExtractResponse, error)
	ExtractFromEmail(ctx context.Context, orgID, emailID string) (int, error)
	// ImportImage stores a quotation image as a project file awaiting
	// processing.
	ImportImage(ctx context.Context, orgID, projectID, supplierID string, upload rfqusecase.Upload) (*rfqdomain.File, error)
}
