package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/slingshot/internal/auth"
	"github.com/playmatatu/slingshot/internal/game"
)

func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sandbox/:id/ws", HandleWebSocket(testConfig()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, sandboxID, pt string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sandbox/" + sandboxID + "/ws"
	if pt != "" {
		u += "?pt=" + pt
	}
	return u
}

func controlToken(t *testing.T, s *game.Sandbox, secret string) string {
	t.Helper()
	tok, _, err := auth.IssueSandboxToken(secret, auth.SandboxClaims{SandboxID: s.ID, SandboxToken: s.Token}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketController(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	srv := newWSServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, s.ID, controlToken(t, s, "test-secret")), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msg := readJSON(t, conn)
	if msg["type"] != "sandbox_state" || msg["can_control"] != true {
		t.Fatalf("first message = %v", msg)
	}

	body := s.Bodies()[0]
	if err := conn.WriteJSON(map[string]interface{}{"type": "select", "data": PointData{X: body.X, Y: body.Y}}); err != nil {
		t.Fatal(err)
	}
	if msg := readJSON(t, conn); msg["type"] != "selected" {
		t.Errorf("select reply = %v", msg)
	}
}

func TestWebSocketSpectator(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	srv := newWSServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, s.ID, ""), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if msg := readJSON(t, conn); msg["can_control"] != false {
		t.Errorf("spectator state = %v", msg)
	}
	conn.WriteJSON(map[string]interface{}{"type": "release"})
	if msg := readJSON(t, conn); msg["type"] != "error" {
		t.Errorf("spectator release reply = %v", msg)
	}
}

func TestWebSocketRejects(t *testing.T) {
	m := useManager(t)
	s := newSandbox(t, m)
	other := newSandbox(t, m)
	srv := newWSServer(t)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"forged token", wsURL(srv, s.ID, controlToken(t, s, "wrong-secret")), http.StatusForbidden},
		{"token for another sandbox", wsURL(srv, s.ID, controlToken(t, other, "test-secret")), http.StatusForbidden},
		{"unknown sandbox", wsURL(srv, "sbx_missing", ""), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(tt.url, nil)
			if err == nil {
				conn.Close()
				t.Fatal("dial succeeded")
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("response = %v, want status %d", resp, tt.status)
			}
		})
	}

	s.Expire()
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, s.ID, ""), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusGone {
		t.Errorf("expired sandbox: err=%v resp=%v", err, resp)
	}
}
