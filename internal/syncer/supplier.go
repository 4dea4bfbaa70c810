package syncer

import (
	"context"

	"smartrfq/internal/store"
	supplierdomain "smartrfq/internal/supplier/domain"
	supplierdto "smartrfq/internal/supplier/dto"
)

type SupplierAPI interface {
	ListSuppliers(ctx context.Context, projectID string) ([]supplierdomain.Supplier, error)
	CreateSupplier(ctx context.Context, req supplierdto.CreateSupplierRequest) (*supplierdomain.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, patch supplierdomain.Patch) (*supplierdomain.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
}

type SupplierSync struct {
	hook
	api   SupplierAPI
	store *store.SupplierStore
	list  flights
}

func NewSupplierSync(api SupplierAPI, st *store.SupplierStore, deps Deps) *SupplierSync {
	return &SupplierSync{hook: newHook("suppliers", deps), api: api, store: st}
}

func bucket(projectID string) string {
	if projectID == "" {
		return store.GlobalKey
	}
	return projectID
}

// Load returns the suppliers of a project, or of the whole organization when
// projectID is empty or "global".
func (s *SupplierSync) Load(ctx context.Context, projectID string) ([]supplierdomain.Supplier, error) {
	key := bucket(projectID)
	if s.store.Has(key) {
		s.cacheHit()
		return s.store.List(key), nil
	}
	return s.Refresh(ctx, projectID)
}

func (s *SupplierSync) Refresh(ctx context.Context, projectID string) ([]supplierdomain.Supplier, error) {
	key := bucket(projectID)
	if !s.list.acquire(key) {
		return nil, ErrInProgress
	}
	defer s.list.release(key)

	epoch := s.store.Epoch()
	gen := s.store.BeginLoad(key)
	s.store.SetLoading(true)
	done := s.fetchStarted()
	suppliers, err := s.api.ListSuppliers(ctx, key)
	done()
	if err != nil {
		return nil, s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load suppliers", err)
	}
	current := false
	s.store.Apply(epoch, func() { current = s.store.SetAllIfCurrent(key, gen, suppliers) })
	if !current {
		s.stale(key)
	}
	return s.store.List(key), nil
}

func (s *SupplierSync) Create(ctx context.Context, req supplierdto.CreateSupplierRequest) (*supplierdomain.Supplier, error) {
	epoch := s.store.Epoch()
	sup, err := s.api.CreateSupplier(ctx, req)
	if err != nil {
		return nil, s.fail(nil, "Failed to create supplier", err)
	}
	s.commit(s.store, epoch, sup.ID, func() { s.store.Add(*sup) })
	s.success("Supplier added", sup.Name)
	return sup, nil
}

// Update applies the server's copy. A supplier moved to another project is
// re-bucketed.
func (s *SupplierSync) Update(ctx context.Context, id string, patch supplierdomain.Patch) (*supplierdomain.Supplier, error) {
	epoch := s.store.Epoch()
	sup, err := s.api.UpdateSupplier(ctx, id, patch)
	if err != nil {
		return nil, s.fail(nil, "Failed to update supplier", err)
	}
	updated := *sup
	s.commit(s.store, epoch, id, func() {
		if patch.ProjectID != nil {
			s.store.Delete(id)
			s.store.Add(updated)
			return
		}
		s.store.Update(id, func(cur *supplierdomain.Supplier) {
			projectID := cur.ProjectID
			*cur = updated
			cur.ProjectID = projectID
		})
	})
	return sup, nil
}

func (s *SupplierSync) Delete(ctx context.Context, id string) error {
	epoch := s.store.Epoch()
	if err := s.api.DeleteSupplier(ctx, id); err != nil {
		return s.fail(nil, "Failed to delete supplier", err)
	}
	s.commit(s.store, epoch, id, func() { s.store.Delete(id) })
	return nil
}
