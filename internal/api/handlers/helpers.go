package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slingshot/internal/game"
)

// queryInt reads a non-negative integer query parameter, capped at ceiling.
func queryInt(c *gin.Context, key string, def, ceiling int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || n < 0 {
		return def
	}
	if ceiling > 0 && n > ceiling {
		return ceiling
	}
	return n
}

type sandboxSummary struct {
	ID        string             `json:"id"`
	Status    game.SandboxStatus `json:"status"`
	SessionID int                `json:"session_id,omitempty"`
	Frame     uint64             `json:"frame"`
	Bodies    int                `json:"bodies"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

func summarize(s *game.Sandbox) sandboxSummary {
	snap := s.Snapshot()
	return sandboxSummary{
		ID:        snap.ID,
		Status:    snap.Status,
		SessionID: snap.SessionID,
		Frame:     snap.Frame,
		Bodies:    len(snap.Bodies),
		CreatedAt: snap.CreatedAt,
		ExpiresAt: snap.ExpiresAt,
	}
}
