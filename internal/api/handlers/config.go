package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/game"
)

// GetConfig returns the world defaults a client needs before creating a sandbox
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var current config.Config
		if game.Manager != nil {
			current = game.Manager.ConfigSnapshot()
		} else {
			current = *cfg
		}
		world := current.PhysicsConfig()
		c.JSON(http.StatusOK, gin.H{
			"width":              world.Width,
			"height":             world.Height,
			"restitution":        world.Restitution,
			"spring_constant":    world.SpringConstant,
			"preview_length":     world.PreviewLength(),
			"initial_body_count": current.InitialBodyCount,
			"frame_rate":         current.FrameRate,
		})
	}
}
