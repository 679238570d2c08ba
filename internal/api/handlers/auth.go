package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slingshot/internal/auth"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/game"
)

// SandboxAuthMiddleware validates the bearer control token for :id and puts
// the sandbox in the context. A sandbox held by another instance is
// rehydrated from Redis.
func SandboxAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := auth.Authorize(cfg.JWTSecret, token, c.Param("id"))
		if err != nil {
			if errors.Is(err, auth.ErrWrongSandbox) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant this sandbox"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		s, err := game.Manager.ResolveSandbox(claims.SandboxID, claims.SandboxToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Sandbox not found"})
			return
		}

		c.Set("sandbox", s)
		c.Next()
	}
}

func sandboxFromContext(c *gin.Context) *game.Sandbox {
	s, _ := c.MustGet("sandbox").(*game.Sandbox)
	return s
}

// loadSandbox looks up :id, writing a 404 when it is not live here.
func loadSandbox(c *gin.Context) (*game.Sandbox, bool) {
	s, err := game.Manager.GetSandbox(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sandbox not found"})
		return nil, false
	}
	return s, true
}
