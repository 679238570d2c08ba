package physics

import "math"

// Slingshot turns a pull (body centre to pointer) into a launch velocity.
// Stored energy grows linearly with the pull distance.
type Slingshot struct {
	SpringConstant float64
}

func NewSlingshot(cfg Config) Slingshot {
	return Slingshot{SpringConstant: cfg.SpringConstant}
}

// Speed is sqrt(2*K*rubberLength/mass).
func (s Slingshot) Speed(rubberLength, mass float64) float64 {
	return math.Sqrt(2 * s.SpringConstant * rubberLength / mass)
}

// VelocityAlong scales the unnormalized vector from->to by Speed. Its length
// is part of the result on purpose: velocity magnitude is |to-from| * Speed.
func (s Slingshot) VelocityAlong(from, to Vec2, rubberLength, mass float64) Vec2 {
	return to.Subtract(from).Scale(s.Speed(rubberLength, mass))
}

// LaunchVelocity returns the velocity a release at pointer would give body.
// A pointer inside the body is no launch: the current velocity comes back
// with ok=false.
func (s Slingshot) LaunchVelocity(body *Body, pointer Vec2) (Vec2, bool) {
	pulled := body.Position.DistanceTo(pointer)
	if pulled < body.Radius {
		return body.Velocity, false
	}

	// Pulling left launches right.
	aim := pointer.ReflectThrough(body.Position)
	return s.VelocityAlong(body.Position, aim, pulled, body.Mass), true
}

// Launch assigns the launch velocity to body.
func (s Slingshot) Launch(body *Body, pointer Vec2) bool {
	v, ok := s.LaunchVelocity(body, pointer)
	if !ok {
		return false
	}
	body.Velocity = v
	return true
}
