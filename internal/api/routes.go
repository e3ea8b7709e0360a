package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tnnandi/biom3-docker/internal/api/handlers"
)

func SetupRoutes(h *handlers.Handlers) *gin.Engine {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Service endpoints
	router.GET("/health", h.Health)
	router.GET("/info", h.Info)
	router.POST("/predict", h.Predict)
	router.POST("/predict/batch", h.PredictBatch)

	// Browser front end
	router.GET("/", h.GUI)

	// Catch-all for undefined routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}

// corsMiddleware adds CORS headers so the GUI can call the API from any origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
