package repository

import rfqdomain "smartrfq/internal/rfq/domain"

type PartRepository interface {
	// CreateBatch numbers parts from the project's item counter and inserts
	// them in one transaction. Numbers of deleted parts are not reused.
	CreateBatch(parts []*rfqdomain.Part) error
	FindByID(orgID, id string) (*rfqdomain.Part, error)
	FindByProject(orgID, projectID string) ([]*rfqdomain.Part, error)
	FindByItemNumbers(orgID, projectID string, numbers []int) ([]*rfqdomain.Part, error)
	Update(part *rfqdomain.Part) error
	DeleteMany(orgID string, ids []string) (int64, error)
}

type FileRepository interface {
	Create(file *rfqdomain.File) error
	FindByID(orgID, id string) (*rfqdomain.File, error)
	FindByProject(orgID, projectID string) ([]*rfqdomain.File, error)
	Update(file *rfqdomain.File) error
	Delete(orgID, id string) error
}
