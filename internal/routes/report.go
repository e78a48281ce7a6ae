package routes

import (
	"github.com/gin-gonic/gin"

	"dutoan_backend/internal/handlers"
)

// ReportRoutes groups the read-only views over the project store.
type ReportRoutes struct {
	statistics *handlers.StatisticsHandler
	export     *handlers.ExportHandler
}

func NewReportRoutes(statistics *handlers.StatisticsHandler, export *handlers.ExportHandler) *ReportRoutes {
	return &ReportRoutes{statistics: statistics, export: export}
}

func (r *ReportRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics", r.statistics.GetStatistics)
	router.POST("/export", r.export.ExportProject)
}
