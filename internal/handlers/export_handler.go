package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dutoan_backend/internal/middlewares"
	"dutoan_backend/internal/responses"
	"dutoan_backend/internal/services"
)

type ExportHandler struct {
	exportService *services.ExportService
	log           *zap.Logger
}

func NewExportHandler(exportService *services.ExportService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, log: log}
}

// ExportRequest accepts the id either as a string or as a bare number.
type ExportRequest struct {
	ProjectID json.RawMessage `json:"projectId"`
}

func (r ExportRequest) id() string {
	var s string
	if err := json.Unmarshal(r.ProjectID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(r.ProjectID, &n); err == nil {
		return n.String()
	}
	return ""
}

// ExportProject handles POST /api/export
func (h *ExportHandler) ExportProject(c *gin.Context) {
	var req ExportRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.exportService.ExportProject(c.Request.Context(), req.id())
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			responses.Fail(c, http.StatusNotFound, "Project not found")
			return
		}
		middlewares.GetLogger(c, h.log).Error("Export failed", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.FileAttachment(res.Path, res.FileName)
}
