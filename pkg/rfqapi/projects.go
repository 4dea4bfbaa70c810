package rfqapi

import (
	"context"
	"net/http"
	"net/url"

	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
)

func (c *Client) ListProjects(ctx context.Context) ([]projectdomain.Project, error) {
	return getList[projectdomain.Project](ctx, c, "ListProjects", "/api/projects", "projects", nil)
}

func (c *Client) GetProject(ctx context.Context, id string) (*projectdomain.Project, error) {
	return sendJSON[projectdomain.Project](ctx, c, "GetProject", http.MethodGet, "/api/projects/"+url.PathEscape(id), "project", nil)
}

func (c *Client) CreateProject(ctx context.Context, req projectdto.CreateProjectRequest) (*projectdomain.Project, error) {
	return sendJSON[projectdomain.Project](ctx, c, "CreateProject", http.MethodPost, "/api/projects", "project", req)
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error) {
	return sendJSON[projectdomain.Project](ctx, c, "UpdateProject", http.MethodPatch, "/api/projects/"+url.PathEscape(id), "project", patch)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.send(ctx, "DeleteProject", http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil)
}
