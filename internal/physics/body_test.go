package physics

import (
	"math"
	"testing"
)

func TestMassFromRadius(t *testing.T) {
	b := NewBody(1, NewVec2(0, 0), 30)
	if want := 4 * math.Pi * 900; b.Mass != want {
		t.Errorf("mass = %v, want %v", b.Mass, want)
	}
	if b.Radius <= 0 || b.Mass <= 0 {
		t.Errorf("radius and mass must be positive: r=%v m=%v", b.Radius, b.Mass)
	}
}

func TestHeadOnEqualMassExchange(t *testing.T) {
	a := NewBody(1, NewVec2(100, 100), 30)
	b := NewBody(2, NewVec2(160, 100), 30) // exactly r1+r2 apart
	a.Velocity = NewVec2(10, 0)
	b.Velocity = NewVec2(-10, 0)

	if !a.CollideWith(b, 1) {
		t.Fatal("approaching bodies should collide")
	}
	if !approxVec(a.Velocity, NewVec2(-10, 0)) {
		t.Errorf("a velocity = %+v, want (-10,0)", a.Velocity)
	}
	if !approxVec(b.Velocity, NewVec2(10, 0)) {
		t.Errorf("b velocity = %+v, want (10,0)", b.Velocity)
	}
}

func TestSeparatingPairUntouched(t *testing.T) {
	a := NewBody(1, NewVec2(0, 0), 30)
	b := NewBody(2, NewVec2(50, 0), 30) // overlapping
	a.Velocity = NewVec2(-10, 3)
	b.Velocity = NewVec2(10, -3)

	v1, v2, ok := a.ResolveCollisionWith(b, 0.8)
	if ok {
		t.Error("separating pair should not collide")
	}
	if v1 != a.Velocity || v2 != b.Velocity {
		t.Errorf("separating pair velocities changed: %+v %+v", v1, v2)
	}
	if a.CollideWith(b, 0.8) {
		t.Error("CollideWith should report no collision")
	}
	if a.Velocity != NewVec2(-10, 3) || b.Velocity != NewVec2(10, -3) {
		t.Errorf("velocities were assigned: %+v %+v", a.Velocity, b.Velocity)
	}
}

func TestCoincidentCentresAreNoOp(t *testing.T) {
	a := NewBody(1, NewVec2(5, 5), 10)
	b := NewBody(2, NewVec2(5, 5), 20)
	a.Velocity = NewVec2(1, 1)

	if _, _, ok := a.ResolveCollisionWith(b, 1); ok {
		t.Error("zero-distance pair should be a no-op")
	}
	if a.Velocity != NewVec2(1, 1) || !b.Velocity.IsZero() {
		t.Errorf("velocities changed: %+v %+v", a.Velocity, b.Velocity)
	}
}

func TestMomentumConservedAtUnitRestitution(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Vec2
		r1, r2 float64
		v1, v2 Vec2
	}{
		{"glancing", NewVec2(0, 0), NewVec2(50, 30), 30, 40, NewVec2(20, 5), NewVec2(-3, -1)},
		{"one at rest", NewVec2(10, 10), NewVec2(10, 80), 35, 35, NewVec2(0, 40), NewVec2(0, 0)},
		{"small hits big", NewVec2(0, 0), NewVec2(100, 0), 30, 89, NewVec2(300, 12), NewVec2(-5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewBody(1, tt.p1, tt.r1)
			b := NewBody(2, tt.p2, tt.r2)
			a.Velocity, b.Velocity = tt.v1, tt.v2

			before := a.Velocity.Scale(a.Mass).Add(b.Velocity.Scale(b.Mass))
			v1, v2, ok := a.ResolveCollisionWith(b, 1)
			if !ok {
				t.Fatal("expected a collision")
			}
			after := v1.Scale(a.Mass).Add(v2.Scale(b.Mass))

			tol := 1e-9 * (a.Mass + b.Mass) * 400
			if math.Abs(after.X-before.X) > tol || math.Abs(after.Y-before.Y) > tol {
				t.Errorf("momentum changed: before=%+v after=%+v", before, after)
			}
		})
	}
}

func TestRestitutionDampsExchange(t *testing.T) {
	a := NewBody(1, NewVec2(0, 0), 30)
	b := NewBody(2, NewVec2(60, 0), 30)
	a.Velocity = NewVec2(10, 0)

	v1, v2, ok := a.ResolveCollisionWith(b, 0.5)
	if !ok {
		t.Fatal("expected a collision")
	}
	if !approxVec(v1, NewVec2(5, 0)) || !approxVec(v2, NewVec2(5, 0)) {
		t.Errorf("half restitution: v1=%+v v2=%+v, want (5,0) each", v1, v2)
	}
}
