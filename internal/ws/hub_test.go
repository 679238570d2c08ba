package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/playmatatu/slingshot/internal/config"
	"github.com/playmatatu/slingshot/internal/game"
	"github.com/playmatatu/slingshot/internal/physics"
)

func testConfig() *config.Config {
	return &config.Config{
		WorldWidth:           physics.DefaultWidth,
		WorldHeight:          physics.DefaultHeight,
		Restitution:          physics.DefaultRestitution,
		SpringConstant:       physics.DefaultSpringConstant,
		InitialBodyCount:     5,
		MinBodyRadius:        physics.DefaultMinRadius,
		MaxBodyRadius:        physics.DefaultMaxRadius,
		MaxPlacementAttempts: physics.DefaultMaxPlacementAttempts,
		FrameRate:            60,
		SandboxExpiryMinutes: 30,
		JWTSecret:            "test-secret",
	}
}

// useManager installs a fresh global manager for one test.
func useManager(t *testing.T) *game.SandboxManager {
	t.Helper()
	m := game.NewSandboxManager(nil, nil, testConfig())
	prev := game.Manager
	game.Manager = m
	t.Cleanup(func() { game.Manager = prev })
	return m
}

func newSandbox(t *testing.T, m *game.SandboxManager) *game.Sandbox {
	t.Helper()
	s, err := m.CreateSandbox(game.CreateOptions{Seed: 11})
	if err != nil {
		t.Fatalf("CreateSandbox: %v", err)
	}
	return s
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	return h
}

func newClient(h *Hub, id, sandboxID string, control bool) *Client {
	return &Client{hub: h, id: id, sandboxID: sandboxID, canControl: control, send: make(chan []byte, 16)}
}

// join registers c and consumes the state message sent on join.
func join(t *testing.T, c *Client) {
	t.Helper()
	c.hub.register <- c
	if msg := recv(t, c); msg["type"] != "sandbox_state" {
		t.Fatalf("join message = %v", msg)
	}
}

func recv(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("client %s got unexpected %s", c.id, data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJoinSendsState(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)

	c := newClient(h, "c1", s.ID, true)
	h.register <- c
	msg := recv(t, c)
	if msg["type"] != "sandbox_state" || msg["id"] != s.ID || msg["can_control"] != true {
		t.Errorf("state = %v", msg)
	}
	if bodies, ok := msg["bodies"].([]interface{}); !ok || len(bodies) != 5 {
		t.Errorf("bodies = %v", msg["bodies"])
	}
	if h.RoomSize(s.ID) != 1 {
		t.Errorf("room size = %d", h.RoomSize(s.ID))
	}
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	m := useManager(t)
	a, b := newSandbox(t, m), newSandbox(t, m)
	h := startHub(t)

	a1, a2 := newClient(h, "a1", a.ID, true), newClient(h, "a2", a.ID, false)
	b1 := newClient(h, "b1", b.ID, true)
	join(t, a1)
	join(t, a2)
	join(t, b1)

	h.BroadcastToSandbox(a.ID, map[string]interface{}{"type": "ping"})
	if recv(t, a1)["type"] != "ping" || recv(t, a2)["type"] != "ping" {
		t.Error("room member missed broadcast")
	}
	expectNothing(t, b1)
}

func TestBroadcastFrame(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)

	// nobody watching: nothing to do
	h.BroadcastFrame(s.ID, 1, s.Bodies())

	c := newClient(h, "c1", s.ID, false)
	join(t, c)
	h.BroadcastFrame(s.ID, 7, s.Bodies())

	msg := recv(t, c)
	if msg["type"] != "frame" || msg["frame"] != 7.0 {
		t.Errorf("frame message = %v", msg)
	}
}

func TestHandleEvent(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)
	c := newClient(h, "c1", s.ID, false)
	join(t, c)

	h.HandleEvent(game.Event{Type: "launched", SandboxID: s.ID, Launch: &game.LaunchResult{BodyID: 2, Launched: true}})
	msg := recv(t, c)
	launch, _ := msg["launch"].(map[string]interface{})
	if msg["type"] != "launched" || launch["body_id"] != 2.0 {
		t.Errorf("launched message = %v", msg)
	}

	h.HandleEvent(game.Event{Type: "sandbox_expired", SandboxID: s.ID, Message: "bye"})
	if msg := recv(t, c); msg["type"] != "sandbox_expired" || msg["message"] != "bye" {
		t.Errorf("expired message = %v", msg)
	}

	h.HandleEvent(game.Event{Type: "mystery", SandboxID: s.ID})
	expectNothing(t, c)
}

func TestLeaveClosesSend(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)
	c := newClient(h, "c1", s.ID, false)
	join(t, c)

	h.unregister <- c
	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("unexpected message after leave")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	if h.RoomSize(s.ID) != 0 {
		t.Errorf("room size = %d after leave", h.RoomSize(s.ID))
	}
}

func TestSpectatorIsReadOnly(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)
	c := newClient(h, "c1", s.ID, false)
	join(t, c)

	c.handleMessage(WSMessage{Type: "select", Data: json.RawMessage(`{"x":1,"y":1}`)})
	if msg := recv(t, c); msg["type"] != "error" || msg["message"] != "Read-only connection" {
		t.Errorf("spectator select = %v", msg)
	}

	c.handleMessage(WSMessage{Type: "get_state"})
	if msg := recv(t, c); msg["type"] != "sandbox_state" || msg["can_control"] != false {
		t.Errorf("get_state = %v", msg)
	}
}

func TestSelectAimRelease(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)
	m.SetEventHandler(h.HandleEvent)

	c := newClient(h, "c1", s.ID, true)
	viewer := newClient(h, "v1", s.ID, false)
	join(t, c)
	join(t, viewer)

	body := s.Bodies()[0]
	at, _ := json.Marshal(PointData{X: body.X, Y: body.Y})
	c.handleMessage(WSMessage{Type: "select", Data: at})
	msg := recv(t, c)
	selected, _ := msg["body"].(map[string]interface{})
	if msg["type"] != "selected" || selected["id"] != float64(body.ID) {
		t.Fatalf("select = %v", msg)
	}

	pull, _ := json.Marshal(PointData{X: body.X - 2*body.Radius, Y: body.Y})
	c.handleMessage(WSMessage{Type: "aim", Data: pull})
	if msg := recv(t, c); msg["type"] != "prediction" {
		t.Errorf("aim = %v", msg)
	}
	if msg := recv(t, viewer); msg["type"] != "prediction" {
		t.Errorf("viewer missed prediction: %v", msg)
	}

	c.handleMessage(WSMessage{Type: "release"})
	msg = recv(t, c)
	result, _ := msg["result"].(map[string]interface{})
	if msg["type"] != "released" || result["launched"] != true {
		t.Fatalf("release = %v", msg)
	}
	if msg := recv(t, c); msg["type"] != "launched" {
		t.Errorf("controller missed launch event: %v", msg)
	}
	if msg := recv(t, viewer); msg["type"] != "launched" {
		t.Errorf("viewer missed launch event: %v", msg)
	}

	c.handleMessage(WSMessage{Type: "release"})
	if msg := recv(t, c); msg["type"] != "error" || msg["message"] != "No body selected" {
		t.Errorf("second release = %v", msg)
	}
}

func TestBadInput(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	h := startHub(t)
	c := newClient(h, "c1", s.ID, true)
	join(t, c)

	c.handleMessage(WSMessage{Type: "select"})
	if msg := recv(t, c); msg["message"] != "Invalid select data" {
		t.Errorf("select without data = %v", msg)
	}
	c.handleMessage(WSMessage{Type: "aim", Data: json.RawMessage(`{"x":1,"y":1}`)})
	if msg := recv(t, c); msg["message"] != game.ErrNoSelection.Error() {
		t.Errorf("aim without selection = %v", msg)
	}
	c.handleMessage(WSMessage{Type: "teleport"})
	if msg := recv(t, c); msg["message"] != "Unknown message type" {
		t.Errorf("unknown type = %v", msg)
	}

	m.EndSandbox(s.ID)
	c.handleMessage(WSMessage{Type: "get_state"})
	if msg := recv(t, c); msg["message"] != "Sandbox not found" {
		t.Errorf("dropped sandbox = %v", msg)
	}
}
