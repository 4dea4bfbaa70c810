package usecase

import (
	"context"
	"io"

	projectdomain "smartrfq/internal/project/domain"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
)

// ProjectLookup resolves a project inside an org. The project usecase
// satisfies it.
type ProjectLookup interface {
	GetProject(orgID, id string) (*projectdomain.Project, error)
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type RFQUsecase interface {
	ListItems(orgID, projectID string) ([]*rfqdomain.Part, error)
	CreateItem(orgID, projectID string, req *rfqdto.CreateItemRequest) (*rfqdomain.Part, error)
	CreateItems(orgID, projectID string, reqs []rfqdto.CreateItemRequest) ([]*rfqdomain.Part, error)
	// ImportCSV creates the valid rows of a CSV parts list and reports the
	// rest.
	ImportCSV(orgID, projectID string, r io.Reader) (*rfqdto.ImportResult, error)
	UpdateItem(orgID, id string, patch *rfqdomain.PartPatch) (*rfqdomain.Part, error)
	DeleteItem(orgID, id string) error
	DeleteItems(orgID string, ids []string) (int, error)
	// ItemsByNumber maps item numbers to the project's parts.
	ItemsByNumber(orgID, projectID string, numbers []int) (map[int]*rfqdomain.Part, error)

	ListFiles(orgID, projectID string) ([]*rfqdomain.File, error)
	UploadFile(ctx context.Context, orgID, projectID string, upload Upload, status rfqdomain.FileStatus) (*rfqdomain.File, error)
	UpdateFile(orgID, id string, patch *rfqdomain.FilePatch) (*rfqdomain.File, error)
	DeleteFile(ctx context.Context, orgID, id string) error
}
