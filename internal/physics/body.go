package physics

import "math"

// Body is a circular rigid body. Radius and Mass never change after creation.
type Body struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Mass     float64 `json:"mass"`
	Tag      string  `json:"tag,omitempty"` // render colour, ignored by physics
}

// NewBody creates a body at rest. Mass is 4*Pi*r^2.
func NewBody(id int, position Vec2, radius float64) *Body {
	return &Body{
		ID:       id,
		Position: position,
		Radius:   radius,
		Mass:     massForRadius(radius),
	}
}

func massForRadius(radius float64) float64 {
	return 4 * math.Pi * radius * radius
}

// State copies the body for rendering.
func (b *Body) State() BodyState {
	return BodyState{
		ID:     b.ID,
		X:      b.Position.X,
		Y:      b.Position.Y,
		VX:     b.Velocity.X,
		VY:     b.Velocity.Y,
		Radius: b.Radius,
		Tag:    b.Tag,
	}
}

func (b *Body) SetTag(tag string) {
	b.Tag = tag
}

// Touches reports whether the two circles overlap or touch.
func (b *Body) Touches(other *Body) bool {
	return b.Position.DistanceTo(other.Position) <= b.Radius+other.Radius
}

// ResolveCollisionWith computes the post-collision velocities of b and other
// without assigning them. ok is false when the bodies share a centre or are
// already separating.
func (b *Body) ResolveCollisionWith(other *Body, restitution float64) (v1, v2 Vec2, ok bool) {
	norm, err := other.Position.Subtract(b.Position).NormalizeChecked()
	if err != nil {
		return b.Velocity, other.Velocity, false
	}

	relativeVelocity := b.Velocity.Subtract(other.Velocity)
	closingSpeed := relativeVelocity.Dot(norm)
	if closingSpeed < 0 {
		return b.Velocity, other.Velocity, false
	}

	impulse := 2 * closingSpeed / (b.Mass + other.Mass)
	v1 = b.Velocity.Subtract(norm.Scale(impulse * other.Mass * restitution))
	v2 = other.Velocity.Add(norm.Scale(impulse * b.Mass * restitution))
	return v1, v2, true
}

// CollideWith resolves the collision and assigns the new velocities to both bodies.
func (b *Body) CollideWith(other *Body, restitution float64) bool {
	v1, v2, ok := b.ResolveCollisionWith(other, restitution)
	if !ok {
		return false
	}
	b.Velocity = v1
	other.Velocity = v2
	return true
}

// integrate advances the position by dt seconds. A non-finite displacement
// (first frame, bad clock) moves nothing.
func (b *Body) integrate(dt float64) {
	dx := b.Velocity.X * dt
	dy := b.Velocity.Y * dt
	if !isFinite(dx) {
		dx = 0
	}
	if !isFinite(dy) {
		dy = 0
	}
	b.Position = Vec2{X: b.Position.X + dx, Y: b.Position.Y + dy}
}
