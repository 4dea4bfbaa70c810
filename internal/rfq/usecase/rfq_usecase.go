package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	"smartrfq/internal/rfq/repository"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/logger"
	"smartrfq/pkg/storage"
)

type rfqUsecase struct {
	partRepo repository.PartRepository
	fileRepo repository.FileRepository
	projects ProjectLookup
	files    storage.Store
	log      *logger.Logger
}

func NewRFQUsecase(partRepo repository.PartRepository, fileRepo repository.FileRepository, projects ProjectLookup, files storage.Store, log *logger.Logger) RFQUsecase {
	if log == nil {
		log = logger.Nop()
	}
	return &rfqUsecase{
		partRepo: partRepo,
		fileRepo: fileRepo,
		projects: projects,
		files:    files,
		log:      log.With("usecase", "RFQ"),
	}
}

func (u *rfqUsecase) ListItems(orgID, projectID string) ([]*rfqdomain.Part, error) {
	if _, err := u.projects.GetProject(orgID, projectID); err != nil {
		return nil, err
	}
	return u.partRepo.FindByProject(orgID, projectID)
}

func (u *rfqUsecase) CreateItem(orgID, projectID string, req *rfqdto.CreateItemRequest) (*rfqdomain.Part, error) {
	parts, err := u.CreateItems(orgID, projectID, []rfqdto.CreateItemRequest{*req})
	if err != nil {
		return nil, err
	}
	return parts[0], nil
}

func (u *rfqUsecase) CreateItems(orgID, projectID string, reqs []rfqdto.CreateItemRequest) ([]*rfqdomain.Part, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no items given", apierr.ErrInvalid)
	}
	if _, err := u.projects.GetProject(orgID, projectID); err != nil {
		return nil, err
	}
	parts := make([]*rfqdomain.Part, 0, len(reqs))
	for i, req := range reqs {
		part := req.Part()
		part.Name = strings.TrimSpace(part.Name)
		if err := part.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", apierr.ErrInvalid, i+1, err)
		}
		part.OrgID = orgID
		part.ProjectID = projectID
		parts = append(parts, &part)
	}
	if err := u.partRepo.CreateBatch(parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (u *rfqUsecase) ImportCSV(orgID, projectID string, r io.Reader) (*rfqdto.ImportResult, error) {
	if _, err := u.projects.GetProject(orgID, projectID); err != nil {
		return nil, err
	}
	rows, rowErrs, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	parts := make([]*rfqdomain.Part, 0, len(rows))
	for _, row := range rows {
		part := row.part
		part.OrgID = orgID
		part.ProjectID = projectID
		parts = append(parts, &part)
	}
	if err := u.partRepo.CreateBatch(parts); err != nil {
		return nil, err
	}
	if rowErrs == nil {
		rowErrs = []rfqdto.RowError{}
	}
	u.log.Info("csv import finished", "project_id", projectID, "created", len(parts), "rejected", len(rowErrs))
	return &rfqdto.ImportResult{Items: parts, Errors: rowErrs}, nil
}

func (u *rfqUsecase) getItem(orgID, id string) (*rfqdomain.Part, error) {
	part, err := u.partRepo.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, fmt.Errorf("item %s: %w", id, apierr.ErrNotFound)
	}
	return part, nil
}

func (u *rfqUsecase) UpdateItem(orgID, id string, patch *rfqdomain.PartPatch) (*rfqdomain.Part, error) {
	part, err := u.getItem(orgID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(part)
	if err := part.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrInvalid, err)
	}
	if err := u.partRepo.Update(part); err != nil {
		return nil, err
	}
	return part, nil
}

func (u *rfqUsecase) DeleteItem(orgID, id string) error {
	n, err := u.partRepo.DeleteMany(orgID, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", id, apierr.ErrNotFound)
	}
	return nil
}

func (u *rfqUsecase) DeleteItems(orgID string, ids []string) (int, error) {
	n, err := u.partRepo.DeleteMany(orgID, ids)
	return int(n), err
}

func (u *rfqUsecase) ItemsByNumber(orgID, projectID string, numbers []int) (map[int]*rfqdomain.Part, error) {
	parts, err := u.partRepo.FindByItemNumbers(orgID, projectID, numbers)
	if err != nil {
		return nil, err
	}
	out := make(map[int]*rfqdomain.Part, len(parts))
	for _, p := range parts {
		out[p.ItemNumber] = p
	}
	return out, nil
}

func (u *rfqUsecase) ListFiles(orgID, projectID string) ([]*rfqdomain.File, error) {
	if _, err := u.projects.GetProject(orgID, projectID); err != nil {
		return nil, err
	}
	return u.fileRepo.FindByProject(orgID, projectID)
}

// UploadFile stores the upload and records it. The record starts in
// status; a storage failure leaves a failed record behind.
func (u *rfqUsecase) UploadFile(ctx context.Context, orgID, projectID string, upload Upload, status rfqdomain.FileStatus) (*rfqdomain.File, error) {
	if _, err := u.projects.GetProject(orgID, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(upload.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", apierr.ErrInvalid)
	}
	if status == "" {
		status = rfqdomain.FileCompleted
	}

	key := storage.Key(orgID, projectID, upload.Filename)
	file := &rfqdomain.File{
		OrgID:       orgID,
		ProjectID:   projectID,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		StorageKey:  key,
		URL:         u.files.URL(key),
		Status:      status,
	}
	size, err := u.files.Put(ctx, key, upload.Data, upload.ContentType)
	if err != nil {
		u.log.Error("file upload failed", "project_id", projectID, "filename", upload.Filename, "error", err)
		file.Status = rfqdomain.FileFailed
		file.URL = ""
		if cerr := u.fileRepo.Create(file); cerr != nil {
			u.log.Error("failed to record failed upload", "error", cerr)
		}
		return nil, fmt.Errorf("store file: %w", err)
	}
	file.Size = size
	if err := u.fileRepo.Create(file); err != nil {
		_ = u.files.Delete(ctx, key)
		return nil, err
	}
	return file, nil
}

func (u *rfqUsecase) UpdateFile(orgID, id string, patch *rfqdomain.FilePatch) (*rfqdomain.File, error) {
	file, err := u.fileRepo.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("file %s: %w", id, apierr.ErrNotFound)
	}
	patch.Apply(file)
	if err := u.fileRepo.Update(file); err != nil {
		return nil, err
	}
	return file, nil
}

func (u *rfqUsecase) DeleteFile(ctx context.Context, orgID, id string) error {
	file, err := u.fileRepo.FindByID(orgID, id)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("file %s: %w", id, apierr.ErrNotFound)
	}
	if err := u.fileRepo.Delete(orgID, id); err != nil {
		return err
	}
	if file.StorageKey != "" {
		if err := u.files.Delete(ctx, file.StorageKey); err != nil {
			u.log.Warn("stored object not removed", "key", file.StorageKey, "error", err)
		}
	}
	return nil
}
