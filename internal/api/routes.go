package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/slingshot/internal/api/handlers"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))

		// Sandbox endpoints
		v1.POST("/sandbox", handlers.CreateSandbox(cfg))
		sandbox := v1.Group("/sandbox/:id")
		{
			sandbox.GET("", handlers.GetSandboxState())
			sandbox.POST("/find", handlers.FindBody())
			sandbox.POST("/predict", handlers.PredictLaunch())
			sandbox.POST("/launch", handlers.SandboxAuthMiddleware(cfg), handlers.LaunchBody())
			sandbox.GET("/launches", handlers.GetLaunches())
			sandbox.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSandboxWebSocket(cfg))
		}

		// Admin endpoints
		adminGroup := v1.Group("/admin", handlers.AdminAuthMiddleware(db))
		{
			adminGroup.GET("/sandboxes", handlers.ListSandboxes(db))
			adminGroup.DELETE("/sandboxes/:id", handlers.AdminExpireSandbox(db))
			adminGroup.GET("/audit", handlers.GetAdminAuditLogs(db))
			adminGroup.GET("/config", handlers.GetAdminRuntimeConfig(db))
			adminGroup.PUT("/config/:key", handlers.UpdateAdminRuntimeConfig(db))
		}
	}
}
