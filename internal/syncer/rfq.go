package syncer

import (
	"context"
	"fmt"
	"io"
	"sync"

	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	"smartrfq/internal/store"
	"smartrfq/pkg/rfqapi"

	"golang.org/x/sync/errgroup"
)

type RFQAPI interface {
	ListItems(ctx context.Context, projectID string) ([]rfqdomain.Part, error)
	CreateItem(ctx context.Context, projectID string, req rfqdto.CreateItemRequest) (*rfqdomain.Part, error)
	CreateItems(ctx context.Context, projectID string, items []rfqdto.CreateItemRequest) ([]rfqdomain.Part, error)
	ImportItemsCSV(ctx context.Context, projectID, filename string, data io.Reader) (*rfqdto.ImportResult, error)
	UpdateItem(ctx context.Context, id string, patch rfqdomain.PartPatch) (*rfqdomain.Part, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItems(ctx context.Context, ids []string) (int, error)
	ListFiles(ctx context.Context, projectID string) ([]rfqdomain.File, error)
	UploadFile(ctx context.Context, projectID string, upload rfqapi.Upload) (*rfqdomain.File, error)
	DeleteFile(ctx context.Context, id string) error
	ImportQuotationImage(ctx context.Context, projectID, supplierID string, image rfqapi.Upload) (*rfqdomain.File, error)
}

// bulkConcurrency bounds the parallel item fetches of a bulk load.
const bulkConcurrency = 4

const bulkKey = "all-projects"

type RFQSync struct {
	hook
	api   RFQAPI
	store *store.RFQStore
	items flights
	files flights
	bulk  flights
}

func NewRFQSync(api RFQAPI, st *store.RFQStore, deps Deps) *RFQSync {
	return &RFQSync{hook: newHook("rfq", deps), api: api, store: st}
}

func (s *RFQSync) LoadItems(ctx context.Context, projectID string) ([]rfqdomain.Part, error) {
	if s.store.Has(projectID) {
		s.cacheHit()
		return s.store.List(projectID), nil
	}
	return s.RefreshItems(ctx, projectID)
}

func (s *RFQSync) RefreshItems(ctx context.Context, projectID string) ([]rfqdomain.Part, error) {
	if !s.items.acquire(projectID) {
		return nil, ErrInProgress
	}
	defer s.items.release(projectID)

	epoch := s.store.Epoch()
	gen := s.store.BeginLoad(projectID)
	s.store.SetLoading(true)
	done := s.fetchStarted()
	parts, err := s.api.ListItems(ctx, projectID)
	done()
	if err != nil {
		return nil, s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load RFQ items", err)
	}
	current := false
	s.store.Apply(epoch, func() { current = s.store.SetAllIfCurrent(projectID, gen, parts) })
	if !current {
		s.stale(projectID)
	}
	return s.store.List(projectID), nil
}

// LoadAllProjectItems fetches the items of every project concurrently and
// loads them in one step. It is a no-op once an initial load has completed.
func (s *RFQSync) LoadAllProjectItems(ctx context.Context, projectIDs []string) error {
	if s.store.InitialDataLoaded() {
		s.cacheHit()
		return nil
	}
	return s.RefreshAllProjectItems(ctx, projectIDs)
}

func (s *RFQSync) RefreshAllProjectItems(ctx context.Context, projectIDs []string) error {
	if !s.bulk.acquire(bulkKey) {
		return ErrInProgress
	}
	defer s.bulk.release(bulkKey)

	epoch := s.store.Epoch()
	s.store.SetLoading(true)
	var (
		mu        sync.Mutex
		byProject = make(map[string][]rfqdomain.Part, len(projectIDs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for _, id := range projectIDs {
		id := id
		g.Go(func() error {
			done := s.fetchStarted()
			parts, err := s.api.ListItems(gctx, id)
			done()
			if err != nil {
				return fmt.Errorf("project %s: %w", id, err)
			}
			mu.Lock()
			byProject[id] = parts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load RFQ items", err)
	}
	s.commit(s.store, epoch, bulkKey, func() { s.store.SetAllProjectItems(byProject) })
	return nil
}

func (s *RFQSync) CreateItem(ctx context.Context, projectID string, req rfqdto.CreateItemRequest) (*rfqdomain.Part, error) {
	epoch := s.store.Epoch()
	p, err := s.api.CreateItem(ctx, projectID, req)
	if err != nil {
		return nil, s.fail(nil, "Failed to add item", err)
	}
	s.commit(s.store, epoch, projectID, func() { s.store.Add(*p) })
	return p, nil
}

func (s *RFQSync) CreateItems(ctx context.Context, projectID string, reqs []rfqdto.CreateItemRequest) ([]rfqdomain.Part, error) {
	epoch := s.store.Epoch()
	parts, err := s.api.CreateItems(ctx, projectID, reqs)
	if err != nil {
		return nil, s.fail(nil, "Failed to add items", err)
	}
	s.commit(s.store, epoch, projectID, func() {
		for _, p := range parts {
			s.store.Add(p)
		}
	})
	s.success("Items added", fmt.Sprintf("%d items added", len(parts)))
	return parts, nil
}

// ImportCSV uploads a parts list and adds every accepted row to the store.
func (s *RFQSync) ImportCSV(ctx context.Context, projectID, filename string, data io.Reader) (*rfqdto.ImportResult, error) {
	epoch := s.store.Epoch()
	res, err := s.api.ImportItemsCSV(ctx, projectID, filename, data)
	if err != nil {
		return nil, s.fail(nil, "Failed to import items", err)
	}
	s.commit(s.store, epoch, projectID, func() {
		for _, p := range res.Items {
			if p != nil {
				s.store.Add(*p)
			}
		}
	})
	msg := fmt.Sprintf("%d items imported", len(res.Items))
	if len(res.Errors) > 0 {
		msg += fmt.Sprintf(", %d rows rejected", len(res.Errors))
	}
	s.success("Import finished", msg)
	return res, nil
}

func (s *RFQSync) UpdateItem(ctx context.Context, id string, patch rfqdomain.PartPatch) (*rfqdomain.Part, error) {
	epoch := s.store.Epoch()
	p, err := s.api.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, s.fail(nil, "Failed to update item", err)
	}
	updated := *p
	s.commit(s.store, epoch, id, func() {
		s.store.Update(id, func(cur *rfqdomain.Part) { *cur = updated })
	})
	return p, nil
}

func (s *RFQSync) DeleteItem(ctx context.Context, id string) error {
	epoch := s.store.Epoch()
	if err := s.api.DeleteItem(ctx, id); err != nil {
		return s.fail(nil, "Failed to delete item", err)
	}
	s.commit(s.store, epoch, id, func() { s.store.Delete(id) })
	return nil
}

// DeleteSelected deletes every selected item in one batch call.
func (s *RFQSync) DeleteSelected(ctx context.Context) (int, error) {
	epoch := s.store.Epoch()
	ids := s.store.SelectedIDs()
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := s.api.DeleteItems(ctx, ids); err != nil {
		return 0, s.fail(nil, "Failed to delete items", err)
	}
	n := 0
	s.commit(s.store, epoch, bulkKey, func() { n = s.store.DeleteMany(ids) })
	s.success("Items deleted", fmt.Sprintf("%d items deleted", n))
	return n, nil
}

func (s *RFQSync) LoadFiles(ctx context.Context, projectID string) ([]rfqdomain.File, error) {
	if s.store.HasFiles(projectID) {
		s.cacheHit()
		return s.store.Files(projectID), nil
	}
	return s.RefreshFiles(ctx, projectID)
}

func (s *RFQSync) RefreshFiles(ctx context.Context, projectID string) ([]rfqdomain.File, error) {
	if !s.files.acquire(projectID) {
		return nil, ErrInProgress
	}
	defer s.files.release(projectID)

	epoch := s.store.Epoch()
	s.store.SetLoading(true)
	done := s.fetchStarted()
	files, err := s.api.ListFiles(ctx, projectID)
	done()
	if err != nil {
		return nil, s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load files", err)
	}
	s.commit(s.store, epoch, projectID, func() { s.store.SetFiles(projectID, files) })
	return files, nil
}

func (s *RFQSync) UploadFile(ctx context.Context, projectID string, upload rfqapi.Upload) (*rfqdomain.File, error) {
	epoch := s.store.Epoch()
	f, err := s.api.UploadFile(ctx, projectID, upload)
	if err != nil {
		return nil, s.fail(nil, "Failed to upload file", err)
	}
	s.commit(s.store, epoch, projectID, func() { s.store.AddFile(*f) })
	s.success("File uploaded", f.Filename)
	return f, nil
}

func (s *RFQSync) DeleteFile(ctx context.Context, id string) error {
	epoch := s.store.Epoch()
	if err := s.api.DeleteFile(ctx, id); err != nil {
		return s.fail(nil, "Failed to delete file", err)
	}
	s.commit(s.store, epoch, id, func() { s.store.DeleteFile(id) })
	return nil
}

// ImportQuotationImage uploads a quotation image; the server files it with
// the project's RFQ files.
func (s *RFQSync) ImportQuotationImage(ctx context.Context, projectID, supplierID string, image rfqapi.Upload) (*rfqdomain.File, error) {
	epoch := s.store.Epoch()
	f, err := s.api.ImportQuotationImage(ctx, projectID, supplierID, image)
	if err != nil {
		return nil, s.fail(nil, "Failed to import quotation image", err)
	}
	s.commit(s.store, epoch, projectID, func() { s.store.AddFile(*f) })
	return f, nil
}
