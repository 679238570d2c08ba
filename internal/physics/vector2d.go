package physics

import "math"

// Vec2 is a 2D point/vector in screen coordinates (y grows downward).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Subtract(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Length is the distance from the origin.
func (v Vec2) Length() float64 {
	return v.DistanceTo(Vec2{})
}

// AngleTo returns the angle in degrees from v to o with "up" as positive y.
func (v Vec2) AngleTo(o Vec2) float64 {
	return math.Atan2(-(o.Y-v.Y), o.X-v.X) * 180 / math.Pi
}

// Normalize returns the unit vector, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	n, err := v.NormalizeChecked()
	if err != nil {
		return Vec2{}
	}
	return n
}

// NormalizeChecked is Normalize reporting ErrDivideByZero for a zero-length vector.
func (v Vec2) NormalizeChecked() (Vec2, error) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, ErrDivideByZero
	}
	return v.Scale(1 / l), nil
}

// PointAtDistanceAngle returns the point distance away from v along angle
// (degrees, same convention as AngleTo).
func (v Vec2) PointAtDistanceAngle(distance, angle float64) Vec2 {
	rad := angle * math.Pi / 180
	return Vec2{
		X: v.X + distance*math.Cos(rad),
		Y: v.Y - distance*math.Sin(rad),
	}
}

// ReflectThrough returns the point reflection of v through center.
func (v Vec2) ReflectThrough(center Vec2) Vec2 {
	return center.Scale(2).Subtract(v)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
