package usecase

import (
	"fmt"
	"strings"

	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	"smartrfq/internal/project/repository"
	"smartrfq/pkg/apierr"
)

type projectUsecase struct {
	projectRepo repository.ProjectRepository
}

func NewProjectUsecase(projectRepo repository.ProjectRepository) ProjectUsecase {
	return &projectUsecase{projectRepo: projectRepo}
}

func (u *projectUsecase) ListProjects(orgID string) ([]*projectdomain.Project, error) {
	projects, err := u.projectRepo.FindByOrg(orgID)
	if err != nil {
		return nil, err
	}
	parts, suppliers, err := u.projectRepo.Counts(orgID)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		p.PartsCount = parts[p.ID]
		p.SuppliersCount = suppliers[p.ID]
	}
	return projects, nil
}

func (u *projectUsecase) GetProject(orgID, id string) (*projectdomain.Project, error) {
	project, err := u.projectRepo.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", id, apierr.ErrNotFound)
	}
	return project, nil
}

func (u *projectUsecase) CreateProject(orgID string, req *projectdto.CreateProjectRequest) (*projectdomain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apierr.ErrInvalid)
	}
	status := req.Status
	if status == "" {
		status = projectdomain.StatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apierr.ErrInvalid, status)
	}

	project := &projectdomain.Project{
		OrgID:       orgID,
		Name:        name,
		Description: req.Description,
		Status:      status,
	}
	if err := u.projectRepo.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (u *projectUsecase) UpdateProject(orgID, id string, patch *projectdomain.Patch) (*projectdomain.Project, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apierr.ErrInvalid, *patch.Status)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", apierr.ErrInvalid)
	}
	project, err := u.GetProject(orgID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(project)
	if err := u.projectRepo.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (u *projectUsecase) DeleteProject(orgID, id string) error {
	if _, err := u.GetProject(orgID, id); err != nil {
		return err
	}
	return u.projectRepo.Delete(orgID, id)
}
