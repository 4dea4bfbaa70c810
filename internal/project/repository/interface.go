package repository

import projectdomain "smartrfq/internal/project/domain"

type ProjectRepository interface {
	Create(project *projectdomain.Project) error
	FindByID(orgID, id string) (*projectdomain.Project, error)
	FindByOrg(orgID string) ([]*projectdomain.Project, error)
	Update(project *projectdomain.Project) error
	// Delete removes the project with its parts, files, conversations,
	// emails and quotations. Suppliers attached to it become org-wide.
	Delete(orgID, id string) error
	// Counts returns the parts and suppliers count of each of the org's
	// projects.
	Counts(orgID string) (parts, suppliers map[string]int, err error)
}
