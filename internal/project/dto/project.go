package dto

import projectdomain "smartrfq/internal/project/domain"

type CreateProjectRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Status      projectdomain.Status `json:"status"`
}

type ProjectsResponse struct {
	Projects []*projectdomain.Project `json:"projects"`
}
