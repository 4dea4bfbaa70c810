package syncer

import (
	"context"

	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	"smartrfq/internal/store"
)

type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]projectdomain.Project, error)
	CreateProject(ctx context.Context, req projectdto.CreateProjectRequest) (*projectdomain.Project, error)
	UpdateProject(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type ProjectSync struct {
	hook
	api   ProjectAPI
	store *store.ProjectStore
	list  flights
}

func NewProjectSync(api ProjectAPI, st *store.ProjectStore, deps Deps) *ProjectSync {
	return &ProjectSync{hook: newHook("projects", deps), api: api, store: st}
}

// Load returns the organization's projects, fetching them only when the
// store has none.
func (s *ProjectSync) Load(ctx context.Context) ([]projectdomain.Project, error) {
	if s.store.Has(store.OrganizationKey) {
		s.cacheHit()
		return s.store.List(store.OrganizationKey), nil
	}
	return s.Refresh(ctx)
}

func (s *ProjectSync) Refresh(ctx context.Context) ([]projectdomain.Project, error) {
	if !s.list.acquire(store.OrganizationKey) {
		return nil, ErrInProgress
	}
	defer s.list.release(store.OrganizationKey)

	epoch := s.store.Epoch()
	gen := s.store.BeginLoad(store.OrganizationKey)
	s.store.SetLoading(true)
	done := s.fetchStarted()
	projects, err := s.api.ListProjects(ctx)
	done()
	if err != nil {
		return nil, s.fail(errorAt(s.store, epoch, s.store.SetError), "Failed to load projects", err)
	}
	current := false
	s.store.Apply(epoch, func() { current = s.store.SetAllIfCurrent(store.OrganizationKey, gen, projects) })
	if !current {
		s.stale(store.OrganizationKey)
		return s.store.List(store.OrganizationKey), nil
	}
	return projects, nil
}

func (s *ProjectSync) Create(ctx context.Context, req projectdto.CreateProjectRequest) (*projectdomain.Project, error) {
	epoch := s.store.Epoch()
	p, err := s.api.CreateProject(ctx, req)
	if err != nil {
		return nil, s.fail(nil, "Failed to create project", err)
	}
	s.commit(s.store, epoch, p.ID, func() { s.store.Add(*p) })
	s.success("Project created", p.Name)
	return p, nil
}

func (s *ProjectSync) Update(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error) {
	epoch := s.store.Epoch()
	p, err := s.api.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, s.fail(nil, "Failed to update project", err)
	}
	updated := *p
	s.commit(s.store, epoch, id, func() {
		s.store.Update(id, func(cur *projectdomain.Project) { *cur = updated })
	})
	return p, nil
}

func (s *ProjectSync) Delete(ctx context.Context, id string) error {
	epoch := s.store.Epoch()
	if err := s.api.DeleteProject(ctx, id); err != nil {
		return s.fail(nil, "Failed to delete project", err)
	}
	s.commit(s.store, epoch, id, func() { s.store.Delete(id) })
	s.success("Project deleted", "")
	return nil
}
