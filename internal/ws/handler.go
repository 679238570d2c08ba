package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/slingshot/internal/auth"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/game"
	"github.com/playmatatu/slingshot/internal/physics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client is one WebSocket connection to a sandbox. Clients without a control
// token only receive the render feed.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	id         string
	sandboxID  string
	canControl bool
	send       chan []byte
}

// WSMessage is an inbound message
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// PointData carries a pointer position for select and aim
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func generateClientID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "c_" + hex.EncodeToString(b)
}

// HandleWebSocket upgrades /sandbox/:id/ws. The optional pt query parameter is
// the sandbox control token; without it the client is a spectator.
func HandleWebSocket(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sandboxID := c.Param("id")
		playerToken := c.Query("pt")

		if game.Manager == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sandbox manager not ready"})
			return
		}

		var claims auth.SandboxClaims
		if playerToken != "" {
			var err error
			claims, err = auth.Authorize(cfg.JWTSecret, playerToken, sandboxID)
			if err != nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid sandbox token"})
				return
			}
		}

		s, err := game.Manager.ResolveSandbox(sandboxID, claims.SandboxToken)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sandbox not found"})
			return
		}
		if !s.IsActive() {
			c.JSON(http.StatusGone, gin.H{"error": "sandbox expired"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:        SandboxHub,
			conn:       conn,
			id:         generateClientID(),
			sandboxID:  s.ID,
			canControl: playerToken != "",
			send:       make(chan []byte, 256),
		}

		client.hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// readPump reads input messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one input message.
func (c *Client) handleMessage(msg WSMessage) {
	s, err := game.Manager.GetSandbox(c.sandboxID)
	if err != nil {
		c.sendError("Sandbox not found")
		return
	}

	if msg.Type == "get_state" {
		c.sendState()
		return
	}
	if !c.canControl {
		c.sendError("Read-only connection")
		return
	}

	switch msg.Type {
	case "select":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid select data")
			return
		}
		body, err := s.Select(physics.NewVec2(data.X, data.Y))
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendJSON(map[string]interface{}{"type": "selected", "body": body})

	case "aim":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid aim data")
			return
		}
		pred, err := s.Aim(physics.NewVec2(data.X, data.Y))
		if err != nil {
			c.sendError(err.Error())
			return
		}
		// spectators see the preview too
		c.hub.BroadcastToSandbox(c.sandboxID, map[string]interface{}{
			"type":       "prediction",
			"prediction": pred,
		})

	case "release":
		c.handleRelease(s)

	default:
		c.sendError("Unknown message type")
	}
}

// handleRelease launches the selection and records the launch.
func (c *Client) handleRelease(s *game.Sandbox) {
	result, err := s.Release()
	if err != nil {
		if errors.Is(err, game.ErrNoSelection) {
			c.sendError("No body selected")
			return
		}
		c.sendError(err.Error())
		return
	}

	c.sendJSON(map[string]interface{}{"type": "released", "result": result})
	if !result.Launched {
		return
	}

	game.Manager.RecordLaunch(s, result)
	game.Manager.SaveSandbox(s)
	game.Manager.PublishEvent(game.Event{Type: "launched", SandboxID: s.ID, Launch: &result})
}

// sendState sends the full sandbox view to this client.
func (c *Client) sendState() {
	if game.Manager == nil {
		return
	}
	s, err := game.Manager.GetSandbox(c.sandboxID)
	if err != nil {
		c.sendError("Sandbox not found")
		return
	}
	state := s.GetState()
	state["type"] = "sandbox_state"
	state["can_control"] = c.canControl
	c.sendJSON(state)
}

func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Dropped message for client %s (buffer full)", c.id)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
