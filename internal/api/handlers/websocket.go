package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/ws"
)

// HandleSandboxWebSocket handles the real-time input and render feed
func HandleSandboxWebSocket(cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(cfg)
}
