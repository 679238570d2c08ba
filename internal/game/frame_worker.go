package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/slingshot/internal/physics"
)

// FrameSink receives the bodies of a sandbox after each step.
type FrameSink func(sandboxID string, frame uint64, bodies []physics.BodyState)

// StartFrameWorker steps every active sandbox at the configured frame rate and
// snapshots them to Redis on a slower ticker. It returns immediately.
func StartFrameWorker(ctx context.Context, m *SandboxManager, sink FrameSink) {
	if m == nil || m.config == nil {
		log.Println("[FRAME] Manager or config missing; frame worker not started")
		return
	}

	rate := m.config.FrameRate
	if rate <= 0 {
		rate = 60
	}
	snapEvery := m.config.SnapshotIntervalSeconds
	if snapEvery <= 0 {
		snapEvery = 5
	}

	log.Printf("[FRAME] Frame worker started (%d fps, snapshot every %ds)", rate, snapEvery)
	go func() {
		frames := time.NewTicker(time.Second / time.Duration(rate))
		snapshots := time.NewTicker(time.Duration(snapEvery) * time.Second)
		defer frames.Stop()
		defer snapshots.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[FRAME] Frame worker stopping")
				return
			case now := <-frames.C:
				m.stepAll(now, sink)
			case <-snapshots.C:
				for _, s := range m.ActiveSandboxes() {
					if s.IsActive() {
						m.SaveSandbox(s)
					}
				}
			}
		}
	}()
}

// stepAll advances every active sandbox once and hands the result to sink.
func (m *SandboxManager) stepAll(now time.Time, sink FrameSink) {
	for _, s := range m.ActiveSandboxes() {
		if !s.IsActive() {
			continue
		}
		bodies := s.Advance(now)
		if sink != nil {
			s.mu.RLock()
			frame := s.Frame
			s.mu.RUnlock()
			sink(s.ID, frame, bodies)
		}
	}
}
