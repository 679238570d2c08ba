package physics

import "errors"

var (
	// ErrDivideByZero is reported when normalizing a zero-length vector.
	// Collision resolution treats it as "no collision this frame".
	ErrDivideByZero = errors.New("divide by zero")

	// ErrPlacementFailed is returned when rejection sampling runs out of attempts.
	ErrPlacementFailed = errors.New("body placement failed")

	ErrInvalidConfig = errors.New("invalid physics config")
)
