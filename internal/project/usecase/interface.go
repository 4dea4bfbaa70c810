package usecase

import (
	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
)

type ProjectUsecase interface {
	// ListProjects returns the organization's projects with their parts
	// and suppliers counts.
	ListProjects(orgID string) ([]*projectdomain.Project, error)
	GetProject(orgID, id string) (*projectdomain.Project, error)
	CreateProject(orgID string, req *projectdto.CreateProjectRequest) (*projectdomain.Project, error)
	UpdateProject(orgID, id string, patch *projectdomain.Patch) (*projectdomain.Project, error)
	DeleteProject(orgID, id string) error
}
