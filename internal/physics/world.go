package physics

import "math"

// World owns the bodies and the bounds of the playable rectangle.
// It is not safe for concurrent use; callers serialize access.
type World struct {
	cfg    Config
	bodies []*Body
	nextID int
}

// BodyState is a read-only copy of a body for rendering and serialization.
type BodyState struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Tag    string  `json:"tag,omitempty"`
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &World{cfg: cfg, nextID: 1}, nil
}

func (w *World) Config() Config       { return w.cfg }
func (w *World) Width() float64       { return w.cfg.Width }
func (w *World) Height() float64      { return w.cfg.Height }
func (w *World) Restitution() float64 { return w.cfg.Restitution }

// AddBody places a new body at position. Ids come from a monotonic counter and
// are never reused.
func (w *World) AddBody(position Vec2, radius float64) *Body {
	b := NewBody(w.nextID, position, radius)
	w.nextID++
	w.bodies = append(w.bodies, b)
	return b
}

// RestoreBody re-creates a body from a snapshot, keeping its id. The id
// counter moves past it so later ids stay unique.
func (w *World) RestoreBody(s BodyState) *Body {
	b := NewBody(s.ID, NewVec2(s.X, s.Y), s.Radius)
	b.Velocity = NewVec2(s.VX, s.VY)
	b.Tag = s.Tag
	if s.ID >= w.nextID {
		w.nextID = s.ID + 1
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Bodies returns the bodies in insertion order. The slice is a copy; the
// bodies are not.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) Len() int {
	return len(w.bodies)
}

// Body looks a body up by id.
func (w *World) Body(id int) *Body {
	for _, b := range w.bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// FindBodyAt returns the first body whose rim (plus a pixel of tolerance)
// contains point.
func (w *World) FindBodyAt(point Vec2) *Body {
	for _, b := range w.bodies {
		if b.Position.DistanceTo(point) <= b.Radius+PickTolerance {
			return b
		}
	}
	return nil
}

// Snapshot copies every body's render state.
func (w *World) Snapshot() []BodyState {
	states := make([]BodyState, len(w.bodies))
	for i, b := range w.bodies {
		states[i] = b.State()
	}
	return states
}

// Step advances the world by elapsedSeconds: wall correction and pairwise
// collision first, integration last. A non-finite elapsed time moves nothing.
func (w *World) Step(elapsedSeconds float64) {
	for i, b := range w.bodies {
		w.correctWalls(b)

		// Pairs are resolved in order, so (i,k) sees the velocity (i,j) left behind.
		for _, other := range w.bodies[i+1:] {
			if b.Touches(other) {
				b.CollideWith(other, w.cfg.Restitution)
			}
		}
	}

	for _, b := range w.bodies {
		if b.Velocity.IsZero() {
			continue
		}
		b.integrate(elapsedSeconds)
	}
}

// correctWalls points the velocity back into bounds for a body touching or past
// a wall. The body is not repositioned. The far y wall uses >= while the far x
// wall uses >.
func (w *World) correctWalls(b *Body) {
	e := w.cfg.Restitution

	if b.Position.X-b.Radius <= 0 {
		b.Velocity.X = math.Abs(b.Velocity.X) * e
	} else if b.Position.X+b.Radius > w.cfg.Width {
		b.Velocity.X = -math.Abs(b.Velocity.X) * e
	}

	if b.Position.Y-b.Radius <= 0 {
		b.Velocity.Y = math.Abs(b.Velocity.Y) * e
	} else if b.Position.Y+b.Radius >= w.cfg.Height {
		b.Velocity.Y = -math.Abs(b.Velocity.Y) * e
	}
}
