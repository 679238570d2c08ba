package physics

import "fmt"

// Default tuning values.
const (
	DefaultWidth                = 800.0
	DefaultHeight               = 600.0
	DefaultRestitution          = 0.8
	DefaultSpringConstant       = 600.0
	DefaultMinRadius            = 30
	DefaultMaxRadius            = 90
	DefaultMaxPlacementAttempts = 1000

	// PlacementGap is the extra clearance between generated bodies.
	PlacementGap = 1.0
	// PickTolerance widens the hit test used to select a body.
	PickTolerance = 1.0
)

// Config carries every physics constant a World and its Slingshot need.
type Config struct {
	Width                float64 `json:"width"`
	Height               float64 `json:"height"`
	Restitution          float64 `json:"restitution"`
	SpringConstant       float64 `json:"spring_constant"`
	MaxPreviewLength     float64 `json:"max_preview_length"` // 0 means (Width+Height)/4
	MinRadius            int     `json:"min_radius"`
	MaxRadius            int     `json:"max_radius"`
	MaxPlacementAttempts int     `json:"max_placement_attempts"`
}

func DefaultConfig() Config {
	return Config{
		Width:                DefaultWidth,
		Height:               DefaultHeight,
		Restitution:          DefaultRestitution,
		SpringConstant:       DefaultSpringConstant,
		MinRadius:            DefaultMinRadius,
		MaxRadius:            DefaultMaxRadius,
		MaxPlacementAttempts: DefaultMaxPlacementAttempts,
	}
}

// Validate checks bounds, restitution and radius range.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: bounds must be positive (got %vx%v)", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Restitution <= 0 || c.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be in (0,1] (got %v)", ErrInvalidConfig, c.Restitution)
	}
	if c.SpringConstant <= 0 {
		return fmt.Errorf("%w: spring constant must be positive", ErrInvalidConfig)
	}
	if c.MinRadius <= 0 || c.MaxRadius <= c.MinRadius {
		return fmt.Errorf("%w: radius range [%d,%d) is empty", ErrInvalidConfig, c.MinRadius, c.MaxRadius)
	}
	return nil
}

// PreviewLength returns the cap on a predicted path's total length.
func (c Config) PreviewLength() float64 {
	if c.MaxPreviewLength > 0 {
		return c.MaxPreviewLength
	}
	return (c.Width + c.Height) / 4
}
