package http

import (
	"github.com/gin-gonic/gin"
	"github.com/macroplate/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		foods := v1.Group("/foods")
		{
			foods.POST("/search", handler.SearchFoods)
			foods.GET("/providers", handler.ListProviders)
			foods.GET("/:source/:id", handler.GetFood)

			// Internal database CRUD
			foods.POST("", handler.CreateFood)
			foods.PUT("/:id", handler.UpdateFood)
			foods.DELETE("/:id", handler.DeleteFood)
		}
	}

	return router
}
