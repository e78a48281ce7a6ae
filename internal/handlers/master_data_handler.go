package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dutoan_backend/internal/middlewares"
	"dutoan_backend/internal/responses"
	"dutoan_backend/internal/services"
)

type MasterDataHandler struct {
	masterDataService *services.MasterDataService
	log               *zap.Logger
}

func NewMasterDataHandler(masterDataService *services.MasterDataService, log *zap.Logger) *MasterDataHandler {
	return &MasterDataHandler{masterDataService: masterDataService, log: log}
}

// GetMasterData handles GET /master-data
func (h *MasterDataHandler) GetMasterData(c *gin.Context) {
	data, err := h.masterDataService.GetMasterData()
	if err != nil {
		if errors.Is(err, services.ErrMasterDataNotFound) {
			responses.Fail(c, http.StatusNotFound, "Master data file not found.")
			return
		}
		middlewares.GetLogger(c, h.log).Error("Failed to serve master data", zap.Error(err))
		responses.Fail(c, http.StatusInternalServerError, "Failed to read master data.")
		return
	}
	responses.Raw(c, http.StatusOK, data)
}
