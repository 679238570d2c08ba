package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slingshot/internal/auth"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/game"
	"github.com/playmatatu/slingshot/internal/physics"
)

const (
	maxBodyCount = 200
	// maxWorldSide bounds width and height overrides; preview cost grows with them
	maxWorldSide = 4000
)

type pointRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

func (p pointRequest) vec() physics.Vec2 {
	return physics.NewVec2(*p.X, *p.Y)
}

type launchRequest struct {
	BodyID int      `json:"body_id" binding:"required"`
	X      *float64 `json:"x" binding:"required"`
	Y      *float64 `json:"y" binding:"required"`
}

func (r launchRequest) pointer() physics.Vec2 {
	return physics.NewVec2(*r.X, *r.Y)
}

// CreateSandbox builds a new world and returns its control token
func CreateSandbox(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req game.CreateOptions
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.BodyCount != nil && (*req.BodyCount < 0 || *req.BodyCount > maxBodyCount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body_count must be between 0 and 200"})
			return
		}

		if req.Width < 0 || req.Width > maxWorldSide || req.Height < 0 || req.Height > maxWorldSide {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width and height must be between 0 and 4000"})
			return
		}

		s, err := game.Manager.CreateSandbox(req)
		if err != nil {
			switch {
			case errors.Is(err, physics.ErrInvalidConfig):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, physics.ErrPlacementFailed):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not place that many bodies"})
			default:
				log.Printf("[SANDBOX] Create failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sandbox"})
			}
			return
		}

		ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		token, exp, err := auth.IssueSandboxToken(cfg.JWTSecret, auth.SandboxClaims{SandboxID: s.ID, SandboxToken: s.Token}, ttl)
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":               s.ID,
			"token":            token,
			"token_expires_at": exp,
			"state":            s.GetState(),
		})
	}
}

// GetSandboxState returns the full view of a sandbox
func GetSandboxState() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := loadSandbox(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.GetState())
	}
}

// FindBody returns the body under a point
func FindBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := loadSandbox(c)
		if !ok {
			return
		}

		var req pointRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y are required"})
			return
		}

		body, found := s.FindBody(req.vec())
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "No body at point"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"body": body})
	}
}

// PredictLaunch previews a launch without changing the world
func PredictLaunch() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := loadSandbox(c)
		if !ok {
			return
		}

		var req launchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body_id, x and y are required"})
			return
		}

		pred, err := s.Predict(req.BodyID, req.pointer())
		if err != nil {
			if errors.Is(err, game.ErrSandboxExpired) {
				c.JSON(http.StatusGone, gin.H{"error": "Sandbox expired"})
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "Body not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"prediction": pred})
	}
}

// LaunchBody releases a body. Requires SandboxAuthMiddleware.
func LaunchBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sandboxFromContext(c)

		var req launchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body_id, x and y are required"})
			return
		}

		result, err := s.Launch(req.BodyID, req.pointer())
		if err != nil {
			switch {
			case errors.Is(err, game.ErrSandboxExpired):
				c.JSON(http.StatusGone, gin.H{"error": "Sandbox expired"})
			case errors.Is(err, game.ErrBodyNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Body not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		if result.Launched {
			game.Manager.RecordLaunch(s, result)
			game.Manager.SaveSandbox(s)
			game.Manager.PublishEvent(game.Event{Type: "launched", SandboxID: s.ID, Launch: &result})
		}
		c.JSON(http.StatusOK, gin.H{"result": result})
	}
}

// GetLaunches returns the launch history of a sandbox
func GetLaunches() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := loadSandbox(c)
		if !ok {
			return
		}

		limit := queryInt(c, "limit", 50, 200)
		launches, err := game.Manager.GetLaunches(s, limit)
		if err != nil {
			log.Printf("[DB] Failed to fetch launches for %s: %v", s.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch launches"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"launches": launches, "limit": limit})
	}
}
