package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoles/schoolmanager/internal/handlers"
	"github.com/ecoles/schoolmanager/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager) {
	r.GET("/health", handlers.Health())
	r.GET("/health/ready", handlers.Ready(manager))
}
