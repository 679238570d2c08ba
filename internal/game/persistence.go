package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/slingshot/internal/models"
	"github.com/playmatatu/slingshot/internal/physics"
	rkeys "github.com/playmatatu/slingshot/internal/redis"
	"github.com/redis/go-redis/v9"
)

// SandboxSnapshot is the Redis form of a sandbox.
type SandboxSnapshot struct {
	ID        string              `json:"id"`
	Token     string              `json:"token"`
	Status    SandboxStatus       `json:"status"`
	SessionID int                 `json:"session_id,omitempty"`
	Frame     uint64              `json:"frame"`
	Config    physics.Config      `json:"config"`
	Bodies    []physics.BodyState `json:"bodies"`
	BaseTags  map[int]string      `json:"base_tags"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Event is published on the events channel so every instance can fan it out.
type Event struct {
	Type      string        `json:"type"`
	SandboxID string        `json:"sandbox_id"`
	Launch    *LaunchResult `json:"launch,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Snapshot captures the sandbox for persistence. Selection is not kept.
func (s *Sandbox) Snapshot() SandboxSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make(map[int]string, len(s.baseTags))
	for id, tag := range s.baseTags {
		tags[id] = tag
	}
	return SandboxSnapshot{
		ID:        s.ID,
		Token:     s.Token,
		Status:    s.Status,
		SessionID: s.SessionID,
		Frame:     s.Frame,
		Config:    s.world.Config(),
		Bodies:    s.world.Snapshot(),
		BaseTags:  tags,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// RestoreSandbox rebuilds a sandbox from a snapshot, keeping body ids.
func RestoreSandbox(snap SandboxSnapshot, ttl time.Duration) (*Sandbox, error) {
	w, err := physics.NewWorld(snap.Config)
	if err != nil {
		return nil, err
	}
	for _, b := range snap.Bodies {
		w.RestoreBody(b)
	}

	s := newSandbox(snap.ID, snap.Token, w, ttl)
	s.Status = snap.Status
	s.SessionID = snap.SessionID
	s.Frame = snap.Frame
	if !snap.CreatedAt.IsZero() {
		s.CreatedAt = snap.CreatedAt
	}
	if !snap.ExpiresAt.IsZero() {
		s.ExpiresAt = snap.ExpiresAt
	}
	for id, tag := range snap.BaseTags {
		s.baseTags[id] = tag
	}
	// a body saved mid-aim still carries the highlight
	s.highlight(0)
	return s, nil
}

// saveSandboxToRedis writes the snapshot with the sandbox expiry as TTL.
func (m *SandboxManager) saveSandboxToRedis(s *Sandbox) error {
	if m.rdb == nil {
		return nil
	}

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}

	ctx := context.Background()
	return m.rdb.SetEx(ctx, rkeys.SandboxStateKey(s.Token), data, m.expiry()).Err()
}

// SaveSandbox persists the sandbox to Redis, logging failures.
func (m *SandboxManager) SaveSandbox(s *Sandbox) {
	if err := m.saveSandboxToRedis(s); err != nil {
		log.Printf("[REDIS] Failed to save sandbox %s: %v", s.ID, err)
	}
}

// loadSandboxFromRedis restores a sandbox saved by saveSandboxToRedis.
func (m *SandboxManager) loadSandboxFromRedis(token string) (*Sandbox, error) {
	if m.rdb == nil {
		return nil, errors.New("no redis client")
	}

	ctx := context.Background()
	data, err := m.rdb.Get(ctx, rkeys.SandboxStateKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrSandboxNotFound
	}
	if err != nil {
		return nil, err
	}

	var snap SandboxSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode sandbox %s: %w", token, err)
	}
	return RestoreSandbox(snap, m.expiry())
}

func (m *SandboxManager) deleteSandboxFromRedis(token string) {
	if m.rdb == nil {
		return
	}
	if err := m.rdb.Del(context.Background(), rkeys.SandboxStateKey(token)).Err(); err != nil {
		log.Printf("[REDIS] Failed to delete sandbox token %s: %v", token, err)
	}
}

func (s *Sandbox) sessionID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SessionID
}

// PublishEvent fans an event out to every instance. Best effort. Without
// Redis the event goes straight to the local handler.
func (m *SandboxManager) PublishEvent(ev Event) {
	if m.rdb == nil {
		m.mu.RLock()
		fn := m.onEvent
		m.mu.RUnlock()
		if fn != nil {
			fn(ev)
		}
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := m.rdb.Publish(context.Background(), rkeys.EventsChannel, data).Err(); err != nil {
		log.Printf("[REDIS] publish %s for %s failed: %v", ev.Type, ev.SandboxID, err)
	}
}

// recordSandboxCreated inserts the sandboxes row and stores its id.
func (m *SandboxManager) recordSandboxCreated(s *Sandbox) {
	if m == nil || m.db == nil {
		return
	}

	cfg := s.Config()
	var id int
	err := m.db.QueryRowx(
		`INSERT INTO sandboxes (sandbox_token, width, height, restitution, body_count, status, created_at) VALUES ($1,$2,$3,$4,$5,$6,NOW()) RETURNING id`,
		s.Token, cfg.Width, cfg.Height, cfg.Restitution, len(s.Bodies()), string(StatusActive),
	).Scan(&id)
	if err != nil {
		log.Printf("[DB] Failed to record sandbox %s: %v", s.ID, err)
		return
	}

	s.mu.Lock()
	s.SessionID = id
	s.mu.Unlock()
}

// markSandboxExpired closes the sandboxes row.
func (m *SandboxManager) markSandboxExpired(s *Sandbox) {
	sessionID := s.sessionID()
	if m == nil || m.db == nil || sessionID == 0 {
		return
	}
	if _, err := m.db.Exec(`UPDATE sandboxes SET status=$1, expired_at=NOW() WHERE id=$2`, string(StatusExpired), sessionID); err != nil {
		log.Printf("[DB] Failed to expire sandbox %s: %v", s.ID, err)
	}
}

// RecordLaunch stores a launch in the history table.
func (m *SandboxManager) RecordLaunch(s *Sandbox, r LaunchResult) {
	sessionID := s.sessionID()
	if m == nil || m.db == nil || sessionID == 0 || !r.Launched {
		return
	}

	var hit sql.NullInt64
	if r.PredictedHitBody != 0 {
		hit = sql.NullInt64{Int64: int64(r.PredictedHitBody), Valid: true}
	}

	_, err := m.db.Exec(
		`INSERT INTO launches (sandbox_id, body_id, pointer_x, pointer_y, velocity_x, velocity_y, pull_distance, predicted_hit_body, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
		sessionID, r.BodyID, r.Pointer.X, r.Pointer.Y, r.Velocity.X, r.Velocity.Y, r.PullDistance, hit,
	)
	if err != nil {
		log.Printf("[DB] Failed to record launch for sandbox %s: %v", s.ID, err)
	}
}

// GetLaunches returns the newest launches of a sandbox.
func (m *SandboxManager) GetLaunches(s *Sandbox, limit int) ([]models.Launch, error) {
	launches := []models.Launch{}
	sessionID := s.sessionID()
	if m.db == nil || sessionID == 0 {
		return launches, nil
	}
	err := m.db.Select(&launches, `
		SELECT id, sandbox_id, body_id, pointer_x, pointer_y, velocity_x, velocity_y, pull_distance, predicted_hit_body, created_at
		FROM launches
		WHERE sandbox_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	return launches, err
}

// ListSandboxRecords pages through the sandboxes table.
func (m *SandboxManager) ListSandboxRecords(status string, limit, offset int) ([]models.Sandbox, error) {
	rows := []models.Sandbox{}
	if m.db == nil {
		return rows, nil
	}
	err := m.db.Select(&rows, `
		SELECT id, sandbox_token, width, height, restitution, body_count, status, created_at, expired_at
		FROM sandboxes
		WHERE ($1 = 'all' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return rows, err
}
