package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dutoan_backend/internal/responses"
	"dutoan_backend/internal/services"
)

type StatisticsHandler struct {
	statisticsService *services.StatisticsService
}

func NewStatisticsHandler(statisticsService *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// GetStatistics handles GET /api/statistics
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	responses.JSON(c, http.StatusOK, h.statisticsService.GetStatistics(c.Request.Context()))
}
