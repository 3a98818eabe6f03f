package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
// An empty allowedOrigins allows every origin.
func SetupRouter(handler *Handler, allowedOrigins []string) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/products", handler.GetProducts)
	v1.GET("/annotations", handler.GetAnnotations)

	// Frames.
	frames := v1.Group("/frames")
	frames.GET("", handler.GetFrames)
	frames.GET("/:name", handler.GetFrame)

	// Pipeline runs.
	v1.POST("/renders", handler.PostRender)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
