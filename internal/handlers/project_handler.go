package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dutoan_backend/internal/middlewares"
	"dutoan_backend/internal/responses"
	"dutoan_backend/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	log            *zap.Logger
}

func NewProjectHandler(projectService *services.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		log:            log,
	}
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	responses.JSON(c, http.StatusOK, h.projectService.ListProjects(c.Request.Context()))
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, project)
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, project)
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.JSON(c, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, http.StatusOK)
}

func (h *ProjectHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		responses.Fail(c, http.StatusNotFound, "Project not found")
	case errors.Is(err, services.ErrInvalidRequest):
		responses.Fail(c, http.StatusBadRequest, "Invalid request body")
	default:
		middlewares.GetLogger(c, h.log).Error("Project request failed", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, err.Error())
	}
}

// bindJSON binds the body into req. An empty body leaves req at its zero
// value.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		responses.Fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// readBody returns the raw request body for a merge. An empty body reads
// as {}. Anything that is not a JSON object is answered with 400.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []byte("{}"), true
	}
	if !json.Valid(body) || body[0] != '{' {
		responses.Fail(c, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return body, true
}
