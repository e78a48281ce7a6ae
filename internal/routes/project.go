package routes

import (
	"github.com/gin-gonic/gin"

	"dutoan_backend/internal/handlers"
)

type ProjectRoutes struct {
	handler *handlers.ProjectHandler
}

func NewProjectRoutes(handler *handlers.ProjectHandler) *ProjectRoutes {
	return &ProjectRoutes{handler: handler}
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", r.handler.ListProjects)
		projects.POST("", r.handler.CreateProject)
		projects.GET("/:id", r.handler.GetProject)
		projects.PUT("/:id", r.handler.UpdateProject)
		projects.DELETE("/:id", r.handler.DeleteProject)
	}
}
