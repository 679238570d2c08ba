package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/playmatatu/slingshot/internal/game"
	"github.com/playmatatu/slingshot/internal/physics"
)

// Hub maintains the set of active clients, grouped by sandbox
type Hub struct {
	clients    map[string]*Client            // clientID -> Client
	rooms      map[string]map[string]*Client // sandboxID -> clientID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// SandboxHub is the single hub for all sandboxes.
var SandboxHub *Hub

func init() {
	SandboxHub = NewHub()
	go SandboxHub.Run()
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run registers and drops clients until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.rooms[client.sandboxID]; !exists {
				h.rooms[client.sandboxID] = make(map[string]*Client)
			}
			h.rooms[client.sandboxID][client.id] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s joined sandbox %s (control=%v)", client.id, client.sandboxID, client.canControl)
			client.sendState()

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				if room, exists := h.rooms[client.sandboxID]; exists {
					delete(room, client.id)
					if len(room) == 0 {
						delete(h.rooms, client.sandboxID)
					}
				}
				close(client.send)
				log.Printf("[WS] Client %s left sandbox %s", client.id, client.sandboxID)
			}
			h.mu.Unlock()
		}
	}
}

// RoomSize returns the number of clients watching a sandbox.
func (h *Hub) RoomSize(sandboxID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sandboxID])
}

// BroadcastToSandbox sends a message to every client of a sandbox
func (h *Hub) BroadcastToSandbox(sandboxID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[sandboxID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for client %s in sandbox %s, dropping message", client.id, sandboxID)
		}
	}
}

// BroadcastFrame is the frame worker's sink: it ships a stepped frame to the
// sandbox room. Rooms nobody watches are skipped before encoding.
func (h *Hub) BroadcastFrame(sandboxID string, frame uint64, bodies []physics.BodyState) {
	if h.RoomSize(sandboxID) == 0 {
		return
	}
	h.BroadcastToSandbox(sandboxID, map[string]interface{}{
		"type":   "frame",
		"frame":  frame,
		"bodies": bodies,
	})
}

// HandleEvent fans a sandbox event out to its room.
func (h *Hub) HandleEvent(ev game.Event) {
	switch ev.Type {
	case "launched":
		h.BroadcastToSandbox(ev.SandboxID, map[string]interface{}{
			"type":   "launched",
			"launch": ev.Launch,
		})

	case "sandbox_expired":
		log.Printf("[WS] Sandbox %s expired (room_size=%d)", ev.SandboxID, h.RoomSize(ev.SandboxID))
		h.BroadcastToSandbox(ev.SandboxID, map[string]interface{}{
			"type":    "sandbox_expired",
			"message": ev.Message,
		})

	default:
		log.Printf("[WS] Unknown event type: %s", ev.Type)
	}
}
