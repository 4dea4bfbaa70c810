package delivery

import (
	"net/http"

	authdelivery "smartrfq/internal/auth/delivery"
	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	"smartrfq/internal/project/usecase"
	"smartrfq/pkg/apierr"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectUsecase usecase.ProjectUsecase
}

func NewProjectHandler(projectUsecase usecase.ProjectUsecase) *ProjectHandler {
	return &ProjectHandler{projectUsecase: projectUsecase}
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectUsecase.ListProjects(c.GetString(authdelivery.OrgIDKey))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, projectdto.ProjectsResponse{Projects: projects})
}

// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectUsecase.GetProject(c.GetString(authdelivery.OrgIDKey), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}

// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req projectdto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := h.projectUsecase.CreateProject(c.GetString(authdelivery.OrgIDKey), &req)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

// PATCH /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var patch projectdomain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := h.projectUsecase.UpdateProject(c.GetString(authdelivery.OrgIDKey), c.Param("id"), &patch)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}

// DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectUsecase.DeleteProject(c.GetString(authdelivery.OrgIDKey), c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
