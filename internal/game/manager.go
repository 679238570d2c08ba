package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	mrand "math/rand"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/slingshot/internal/config"
	"github.com/redis/go-redis/v9"
)

// SandboxManager owns every live sandbox on this instance
type SandboxManager struct {
	sandboxes map[string]*Sandbox // keyed by sandbox ID
	byToken   map[string]string   // sandbox token -> sandbox ID
	rdb       *redis.Client       // snapshots and events, optional
	db        *sqlx.DB            // sandbox and launch history, optional
	config    *config.Config
	onEvent   func(Event) // local delivery when there is no Redis
	mu        sync.RWMutex
	cfgMu     sync.RWMutex // guards runtime overrides of config
}

// CreateOptions override the configured world for one sandbox. Zero values
// keep the configured defaults.
type CreateOptions struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Restitution float64 `json:"restitution"`
	BodyCount   *int    `json:"body_count"`
	Seed        int64   `json:"seed"`
}

var (
	// Global sandbox manager instance
	Manager *SandboxManager
)

// InitializeManager sets up the global manager and its expiry checker
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSandboxManager(db, rdb, cfg)
	go Manager.StartExpiryChecker(ctx)
}

// NewSandboxManager creates a manager. db and rdb may be nil.
func NewSandboxManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SandboxManager {
	return &SandboxManager{
		sandboxes: make(map[string]*Sandbox),
		byToken:   make(map[string]string),
		rdb:       rdb,
		db:        db,
		config:    cfg,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateSandboxID() string {
	return "sbx_" + generateToken(8)
}

// ConfigSnapshot returns a copy of the current config, runtime overrides included
func (m *SandboxManager) ConfigSnapshot() config.Config {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return *m.config
}

// UpdateConfig applies fn to the shared config. Sandboxes created afterwards
// see the change; live ones keep their world.
func (m *SandboxManager) UpdateConfig(fn func(cfg *config.Config)) {
	m.cfgMu.Lock()
	defer m.cfgMu.Unlock()
	fn(m.config)
}

func (m *SandboxManager) expiry() time.Duration {
	m.cfgMu.RLock()
	minutes := m.config.SandboxExpiryMinutes
	m.cfgMu.RUnlock()
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// CreateSandbox builds, registers and persists a new sandbox.
func (m *SandboxManager) CreateSandbox(opts CreateOptions) (*Sandbox, error) {
	m.cfgMu.RLock()
	cfg := m.config.PhysicsConfig()
	count := m.config.InitialBodyCount
	m.cfgMu.RUnlock()

	if opts.Width > 0 {
		cfg.Width = opts.Width
	}
	if opts.Height > 0 {
		cfg.Height = opts.Height
	}
	if opts.Restitution != 0 {
		cfg.Restitution = opts.Restitution
	}

	if opts.BodyCount != nil {
		count = *opts.BodyCount
	}
	if count < 0 {
		return nil, fmt.Errorf("body count must not be negative (got %d)", count)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s, err := NewSandbox(generateSandboxID(), generateToken(16), cfg, count, mrand.New(mrand.NewSource(seed)), m.expiry())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sandboxes[s.ID] = s
	m.byToken[s.Token] = s.ID
	m.mu.Unlock()

	log.Printf("[SANDBOX] Created %s (%vx%v, e=%v, bodies=%d, seed=%d)", s.ID, cfg.Width, cfg.Height, cfg.Restitution, count, seed)

	m.recordSandboxCreated(s)
	m.SaveSandbox(s)
	return s, nil
}

// GetSandbox retrieves a sandbox by ID
func (m *SandboxManager) GetSandbox(id string) (*Sandbox, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sandboxes[id]
	if !ok {
		return nil, ErrSandboxNotFound
	}
	return s, nil
}

// GetSandboxByToken looks in memory first, then rehydrates from Redis.
func (m *SandboxManager) GetSandboxByToken(token string) (*Sandbox, error) {
	m.mu.RLock()
	if id, ok := m.byToken[token]; ok {
		s := m.sandboxes[id]
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	s, err := m.loadSandboxFromRedis(token)
	if err != nil {
		if !errors.Is(err, ErrSandboxNotFound) {
			log.Printf("[REDIS] Failed to load sandbox token %s: %v", token, err)
		}
		return nil, ErrSandboxNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have loaded it meanwhile
	if id, ok := m.byToken[token]; ok {
		return m.sandboxes[id], nil
	}
	m.sandboxes[s.ID] = s
	m.byToken[s.Token] = s.ID
	log.Printf("[SANDBOX] Rehydrated %s from Redis", s.ID)
	return s, nil
}

// ResolveSandbox finds sandbox id, rehydrating it through its storage token
// when this instance does not hold it.
func (m *SandboxManager) ResolveSandbox(id, token string) (*Sandbox, error) {
	s, err := m.GetSandbox(id)
	if err == nil || token == "" {
		return s, err
	}
	s, err = m.GetSandboxByToken(token)
	if err != nil {
		return nil, err
	}
	if s.ID != id {
		return nil, ErrSandboxNotFound
	}
	return s, nil
}

// SetEventHandler sets where events go when no Redis client is configured.
func (m *SandboxManager) SetEventHandler(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = fn
}

// EndSandbox removes a sandbox from memory
func (m *SandboxManager) EndSandbox(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sandboxes[id]
	if !ok {
		return ErrSandboxNotFound
	}
	delete(m.byToken, s.Token)
	delete(m.sandboxes, id)
	return nil
}

// ActiveSandboxes returns live sandboxes ordered by creation time.
func (m *SandboxManager) ActiveSandboxes() []*Sandbox {
	m.mu.RLock()
	out := make([]*Sandbox, 0, len(m.sandboxes))
	for _, s := range m.sandboxes {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetActiveSandboxCount returns the number of sandboxes in memory
func (m *SandboxManager) GetActiveSandboxCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sandboxes)
}

// StartExpiryChecker expires idle sandboxes until ctx is done
func (m *SandboxManager) StartExpiryChecker(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.checkExpiredSandboxes(now)
		}
	}
}

// checkExpiredSandboxes expires and drops every sandbox past its expiry
func (m *SandboxManager) checkExpiredSandboxes(now time.Time) int {
	m.mu.RLock()
	var expired []*Sandbox
	for _, s := range m.sandboxes {
		if s.IsExpired(now) {
			expired = append(expired, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range expired {
		m.expire(s, "Sandbox expired after inactivity")
	}
	return len(expired)
}

// ExpireSandbox ends a sandbox ahead of its expiry.
func (m *SandboxManager) ExpireSandbox(id, reason string) error {
	s, err := m.GetSandbox(id)
	if err != nil {
		return err
	}
	m.expire(s, reason)
	return nil
}

// expire closes s, drops its stored state and tells its room.
func (m *SandboxManager) expire(s *Sandbox, reason string) {
	s.Expire()
	m.markSandboxExpired(s)
	m.deleteSandboxFromRedis(s.Token)
	m.PublishEvent(Event{Type: "sandbox_expired", SandboxID: s.ID, Message: reason})
	if err := m.EndSandbox(s.ID); err != nil {
		log.Printf("[SANDBOX] Failed to drop expired %s: %v", s.ID, err)
		return
	}
	log.Printf("[SANDBOX] Expired %s", s.ID)
}
