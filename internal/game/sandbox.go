package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/playmatatu/slingshot/internal/physics"
)

// LaunchResult describes one slingshot release.
type LaunchResult struct {
	BodyID           int          `json:"body_id"`
	Pointer          physics.Vec2 `json:"pointer"`
	Velocity         physics.Vec2 `json:"velocity"`
	PullDistance     float64      `json:"pull_distance"`
	PredictedHitBody int          `json:"predicted_hit_body,omitempty"`
	Launched         bool         `json:"launched"`
}

// Sandbox is one live world plus the selection state of whoever is aiming.
type Sandbox struct {
	ID           string        `json:"id"`
	Token        string        `json:"-"`
	Status       SandboxStatus `json:"status"`
	SessionID    int           `json:"session_id,omitempty"` // sandboxes.id, 0 without a DB
	Frame        uint64        `json:"frame"`
	CreatedAt    time.Time     `json:"created_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	LastActivity time.Time     `json:"last_activity"`

	world     *physics.World
	predictor *physics.Predictor
	slingshot physics.Slingshot
	ttl       time.Duration

	selectedID int
	pointer    *physics.Vec2
	baseTags   map[int]string
	lastStep   time.Time

	mu sync.RWMutex
}

// NewSandbox builds a world from cfg and scatters bodyCount bodies over it.
func NewSandbox(id, token string, cfg physics.Config, bodyCount int, rng *rand.Rand, ttl time.Duration) (*Sandbox, error) {
	w, err := physics.NewWorld(cfg)
	if err != nil {
		return nil, err
	}
	if err := w.Populate(bodyCount, rng); err != nil {
		return nil, err
	}
	return newSandbox(id, token, w, ttl), nil
}

func newSandbox(id, token string, w *physics.World, ttl time.Duration) *Sandbox {
	now := time.Now()
	s := &Sandbox{
		ID:           id,
		Token:        token,
		Status:       StatusActive,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
		world:        w,
		predictor:    physics.NewPredictor(w),
		slingshot:    physics.NewSlingshot(w.Config()),
		ttl:          ttl,
		baseTags:     make(map[int]string),
	}
	for _, b := range w.Bodies() {
		s.baseTags[b.ID] = b.Tag
	}
	return s
}

// Select picks the body under point, replacing any previous selection.
func (s *Sandbox) Select(point physics.Vec2) (physics.BodyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return physics.BodyState{}, ErrSandboxExpired
	}
	b := s.world.FindBodyAt(point)
	if b == nil {
		return physics.BodyState{}, ErrBodyNotFound
	}

	s.selectedID = b.ID
	s.pointer = nil
	s.touch()
	return b.State(), nil
}

// Aim moves the pointer of the current selection and returns the preview.
// The body the preview ends on is highlighted until release.
func (s *Sandbox) Aim(pointer physics.Vec2) (physics.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return physics.Prediction{}, ErrSandboxExpired
	}
	body := s.world.Body(s.selectedID)
	if body == nil {
		return physics.Prediction{}, ErrNoSelection
	}

	p := pointer
	s.pointer = &p
	pred := s.predictor.Predict(body, pointer)
	s.highlight(pred.HitBodyID())
	s.touch()
	return pred, nil
}

// Release launches the selected body if a pointer was set, then clears the
// selection either way.
func (s *Sandbox) Release() (LaunchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		s.selectedID = 0
		s.pointer = nil
		s.highlight(0)
	}()

	if s.Status != StatusActive {
		return LaunchResult{}, ErrSandboxExpired
	}
	body := s.world.Body(s.selectedID)
	if body == nil {
		return LaunchResult{}, ErrNoSelection
	}
	if s.pointer == nil {
		return LaunchResult{BodyID: body.ID, Velocity: body.Velocity}, nil
	}

	s.touch()
	return s.launchLocked(body, *s.pointer), nil
}

// Predict previews a launch of bodyID without touching the selection.
func (s *Sandbox) Predict(bodyID int, pointer physics.Vec2) (physics.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Status != StatusActive {
		return physics.Prediction{}, ErrSandboxExpired
	}
	body := s.world.Body(bodyID)
	if body == nil {
		return physics.Prediction{}, ErrBodyNotFound
	}
	return s.predictor.Predict(body, pointer), nil
}

// Launch releases bodyID as if the pointer were at pointer.
func (s *Sandbox) Launch(bodyID int, pointer physics.Vec2) (LaunchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return LaunchResult{}, ErrSandboxExpired
	}
	body := s.world.Body(bodyID)
	if body == nil {
		return LaunchResult{}, ErrBodyNotFound
	}

	s.touch()
	return s.launchLocked(body, pointer), nil
}

func (s *Sandbox) launchLocked(body *physics.Body, pointer physics.Vec2) LaunchResult {
	pred := s.predictor.Predict(body, pointer)
	res := LaunchResult{
		BodyID:           body.ID,
		Pointer:          pointer,
		PullDistance:     body.Position.DistanceTo(pointer),
		PredictedHitBody: pred.HitBodyID(),
	}
	res.Launched = s.slingshot.Launch(body, pointer)
	res.Velocity = body.Velocity

	if res.Launched {
		log.Printf("[SANDBOX] %s body %d launched v=(%.1f,%.1f) pull=%.1f", s.ID, body.ID, res.Velocity.X, res.Velocity.Y, res.PullDistance)
	}
	return res
}

// Advance steps the world to now. The first call only starts the clock.
func (s *Sandbox) Advance(now time.Time) []physics.BodyState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var elapsed float64
	if !s.lastStep.IsZero() {
		elapsed = now.Sub(s.lastStep).Seconds()
	}
	s.lastStep = now
	return s.stepLocked(elapsed)
}

// Step advances the world by a fixed number of seconds.
func (s *Sandbox) Step(elapsedSeconds float64) []physics.BodyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked(elapsedSeconds)
}

func (s *Sandbox) stepLocked(elapsed float64) []physics.BodyState {
	s.world.Step(elapsed)
	s.Frame++
	return s.world.Snapshot()
}

// FindBody returns the body under point without selecting it.
func (s *Sandbox) FindBody(point physics.Vec2) (physics.BodyState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.world.FindBodyAt(point)
	if b == nil {
		return physics.BodyState{}, false
	}
	return b.State(), true
}

// Bodies returns a render copy of every body.
func (s *Sandbox) Bodies() []physics.BodyState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.Snapshot()
}

// Config returns the world settings.
func (s *Sandbox) Config() physics.Config {
	return s.world.Config()
}

// GetState returns the full client view of the sandbox.
func (s *Sandbox) GetState() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.world.Config()
	state := map[string]interface{}{
		"id":             s.ID,
		"status":         s.Status,
		"frame":          s.Frame,
		"width":          cfg.Width,
		"height":         cfg.Height,
		"restitution":    cfg.Restitution,
		"preview_length": cfg.PreviewLength(),
		"bodies":         s.world.Snapshot(),
		"selected":       s.selectedID,
		"expires_at":     s.ExpiresAt,
	}
	if s.pointer != nil {
		state["pointer"] = *s.pointer
	}
	return state
}

// IsExpired reports whether an active sandbox has passed its expiry.
func (s *Sandbox) IsExpired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status == StatusActive && now.After(s.ExpiresAt)
}

// Expire stops the sandbox accepting input.
func (s *Sandbox) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusExpired
	s.selectedID = 0
	s.pointer = nil
}

// IsActive reports whether the sandbox still accepts input.
func (s *Sandbox) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status == StatusActive
}

// touch slides the expiry forward. Callers hold the write lock.
func (s *Sandbox) touch() {
	s.LastActivity = time.Now()
	s.ExpiresAt = s.LastActivity.Add(s.ttl)
}

// highlight restores every body's own tag and marks hitID, if any.
func (s *Sandbox) highlight(hitID int) {
	for _, b := range s.world.Bodies() {
		tag := s.baseTags[b.ID]
		if b.ID == hitID {
			tag = HighlightTag
		}
		b.SetTag(tag)
	}
}
