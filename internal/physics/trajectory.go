package physics

import "math"

// Wall identifies which boundary a predicted leg stopped on.
type Wall int

const (
	WallNone Wall = iota
	WallLeft
	WallRight
	WallTop
	WallBottom
)

func (w Wall) String() string {
	switch w {
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallTop:
		return "top"
	case WallBottom:
		return "bottom"
	}
	return "none"
}

func (w Wall) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// StopReason says why a leg ended.
type StopReason string

const (
	StopWall   StopReason = "wall"
	StopBody   StopReason = "body"
	StopBudget StopReason = "budget"
)

// Line is a plain from/to pair for drawing.
type Line struct {
	From Vec2 `json:"from"`
	To   Vec2 `json:"to"`
}

// Segment is one straight leg of a predicted path.
type Segment struct {
	From      Vec2       `json:"from"`
	To        Vec2       `json:"to"`
	Direction Vec2       `json:"direction"`      // unit direction of this leg
	Next      Vec2       `json:"next_direction"` // reflected direction, wall stops only
	Remaining float64    `json:"remaining"`      // budget left after this leg
	Stop      StopReason `json:"stop"`
	Wall      Wall       `json:"wall"`
}

func (s Segment) Length() float64 {
	return s.From.DistanceTo(s.To)
}

// Impact is the predicted outcome of the path ending on another body.
type Impact struct {
	BodyID         int  `json:"body_id"`
	Point          Vec2 `json:"point"`           // mover centre at contact
	TargetPosition Vec2 `json:"target_position"` // struck body centre
	Resolved       bool `json:"resolved"`        // false when the pair would separate
	Velocity       Vec2 `json:"velocity"`        // mover after the hit
	TargetVelocity Vec2 `json:"target_velocity"`
}

// Prediction is the preview of a slingshot release.
type Prediction struct {
	Segments       []Segment `json:"segments"`
	Impact         *Impact   `json:"impact,omitempty"`
	PullLine       *Line     `json:"pull_line,omitempty"`
	PullDistance   float64   `json:"pull_distance"`
	LaunchVelocity Vec2      `json:"launch_velocity"`
}

// End returns the final stopping point, or false for an empty prediction.
func (p Prediction) End() (Vec2, bool) {
	if len(p.Segments) == 0 {
		return Vec2{}, false
	}
	return p.Segments[len(p.Segments)-1].To, true
}

// HitBodyID returns the id of the body the path ends on, or 0.
func (p Prediction) HitBodyID() int {
	if p.Impact == nil {
		return 0
	}
	return p.Impact.BodyID
}

// Predictor ray-marches preview paths through a world. It only reads the world.
type Predictor struct {
	world     *World
	slingshot Slingshot
}

func NewPredictor(w *World) *Predictor {
	return &Predictor{world: w, slingshot: NewSlingshot(w.cfg)}
}

// Predict previews the path body would take if released with the pointer at
// pointer. A pointer inside the body yields an empty prediction.
func (p *Predictor) Predict(body *Body, pointer Vec2) Prediction {
	pull := body.Position.DistanceTo(pointer)
	if pull < body.Radius {
		return Prediction{}
	}
	direction, err := body.Position.Subtract(pointer).NormalizeChecked()
	if err != nil {
		return Prediction{}
	}

	length := math.Min(pull, p.world.cfg.PreviewLength())
	pred := p.Trace(body, body.Position, direction, length, pull)

	angle := body.Position.AngleTo(pointer)
	pred.PullLine = &Line{
		From: body.Position.PointAtDistanceAngle(body.Radius, angle),
		To:   body.Position.PointAtDistanceAngle(length, angle),
	}
	pred.PullDistance = pull
	pred.LaunchVelocity, _ = p.slingshot.LaunchVelocity(body, pointer)
	return pred
}

// Trace follows legs from origin until the budget runs out or a body is hit,
// reflecting off walls. pull is the slingshot pull distance used to estimate
// the speed at impact.
func (p *Predictor) Trace(body *Body, origin, direction Vec2, remaining, pull float64) Prediction {
	if !isFinite(remaining) || remaining < 0 {
		remaining = 0
	}

	var pred Prediction
	for {
		seg, hit := p.march(body, origin, direction, remaining)
		pred.Segments = append(pred.Segments, seg)

		switch seg.Stop {
		case StopWall:
			origin, direction, remaining = seg.To, seg.Next, seg.Remaining
			continue
		case StopBody:
			pred.Impact = p.impact(body, seg, hit, pull)
		}
		return pred
	}
}

// march steps one unit at a time along a single leg. Every wall leg consumes at
// least one unit of budget, so Trace always terminates.
func (p *Predictor) march(body *Body, origin, direction Vec2, remaining float64) (Segment, *Body) {
	seg := Segment{
		From:      origin,
		To:        origin,
		Direction: direction,
		Remaining: remaining,
		Stop:      StopBudget,
	}

	for d := 1.0; d <= remaining; d++ {
		candidate := origin.Add(direction.Scale(d))
		seg.To = candidate
		seg.Remaining = remaining - d

		if wall := p.wallAt(candidate, body.Radius); wall != WallNone {
			seg.To = p.snapToWall(candidate, wall, body.Radius)
			seg.Stop = StopWall
			seg.Wall = wall
			seg.Next = reflectAxis(direction, wall)
			return seg, nil
		}
		if other := p.bodyAt(candidate, body); other != nil {
			seg.Stop = StopBody
			return seg, other
		}
	}
	return seg, nil
}

// wallAt classifies a point against the walls, x before y. A corner reports
// only the x wall.
func (p *Predictor) wallAt(c Vec2, radius float64) Wall {
	w, h := p.world.cfg.Width, p.world.cfg.Height
	switch {
	case c.X <= radius:
		return WallLeft
	case c.X >= w-radius:
		return WallRight
	case c.Y <= radius:
		return WallTop
	case c.Y >= h-radius:
		return WallBottom
	}
	return WallNone
}

func (p *Predictor) snapToWall(c Vec2, wall Wall, radius float64) Vec2 {
	switch wall {
	case WallLeft:
		c.X = radius
	case WallRight:
		c.X = p.world.cfg.Width - radius
	case WallTop:
		c.Y = radius
	case WallBottom:
		c.Y = p.world.cfg.Height - radius
	}
	return c
}

// reflectAxis flips exactly one axis so the direction points back into the field.
func reflectAxis(d Vec2, wall Wall) Vec2 {
	switch wall {
	case WallLeft:
		d.X = math.Abs(d.X)
	case WallRight:
		d.X = -math.Abs(d.X)
	case WallTop:
		d.Y = math.Abs(d.Y)
	case WallBottom:
		d.Y = -math.Abs(d.Y)
	}
	return d
}

func (p *Predictor) bodyAt(c Vec2, self *Body) *Body {
	for _, other := range p.world.bodies {
		if other.ID == self.ID {
			continue
		}
		if c.DistanceTo(other.Position) <= self.Radius+other.Radius {
			return other
		}
	}
	return nil
}

// impact resolves a hypothetical copy of the mover at the stop point against a
// copy of the struck body. Neither world body is touched.
func (p *Predictor) impact(body *Body, seg Segment, hit *Body, pull float64) *Impact {
	mover := NewBody(body.ID, seg.To, body.Radius)
	mover.Velocity = p.slingshot.VelocityAlong(seg.From, seg.To, pull, mover.Mass)
	target := *hit

	imp := &Impact{
		BodyID:         hit.ID,
		Point:          seg.To,
		TargetPosition: hit.Position,
	}
	imp.Velocity, imp.TargetVelocity, imp.Resolved = mover.ResolveCollisionWith(&target, p.world.cfg.Restitution)
	return imp
}
