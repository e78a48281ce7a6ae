package routes

import (
	"github.com/gin-gonic/gin"

	"dutoan_backend/internal/handlers"
	"dutoan_backend/internal/metrics"
)

type Handlers struct {
	Project    *handlers.ProjectHandler
	Statistics *handlers.StatisticsHandler
	Export     *handlers.ExportHandler
	MasterData *handlers.MasterDataHandler
	Health     *handlers.HealthHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")

	projectRoutes := NewProjectRoutes(h.Project)
	projectRoutes.RegisterRoutes(api)

	reportRoutes := NewReportRoutes(h.Statistics, h.Export)
	reportRoutes.RegisterRoutes(api)

	router.GET("/master-data", h.MasterData.GetMasterData)
	api.GET("/master-data", h.MasterData.GetMasterData)

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/healthz", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
