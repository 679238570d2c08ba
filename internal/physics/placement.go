package physics

import (
	"fmt"
	"math/rand"
)

// Populate adds count bodies at random non-overlapping positions. Each body
// gets at most MaxPlacementAttempts tries before ErrPlacementFailed.
func (w *World) Populate(count int, rng *rand.Rand) error {
	for i := 0; i < count; i++ {
		if _, err := w.placeRandomBody(rng); err != nil {
			return fmt.Errorf("placing body %d of %d: %w", i+1, count, err)
		}
	}
	return nil
}

func (w *World) placeRandomBody(rng *rand.Rand) (*Body, error) {
	attempts := w.cfg.MaxPlacementAttempts
	if attempts < 1 {
		attempts = 1
	}

	for a := 0; a < attempts; a++ {
		r := randomBetween(rng, w.cfg.MinRadius, w.cfg.MaxRadius)
		radius := float64(r)
		if 2*radius >= w.cfg.Width || 2*radius >= w.cfg.Height {
			continue
		}

		pos := NewVec2(
			float64(randomBetween(rng, r, int(w.cfg.Width-radius))),
			float64(randomBetween(rng, r, int(w.cfg.Height-radius))),
		)
		if !w.CanPlace(pos, radius) {
			continue
		}

		b := w.AddBody(pos, radius)
		b.SetTag(RandomTag(rng))
		return b, nil
	}
	return nil, ErrPlacementFailed
}

// CanPlace reports whether a body of radius at pos keeps a PlacementGap of
// clearance from every existing body.
func (w *World) CanPlace(pos Vec2, radius float64) bool {
	for _, b := range w.bodies {
		if b.Position.DistanceTo(pos) <= b.Radius+radius+PlacementGap {
			return false
		}
	}
	return true
}

// RandomTag returns an opaque rgba colour with channels in [50,230).
func RandomTag(rng *rand.Rand) string {
	r := randomBetween(rng, 50, 230)
	g := randomBetween(rng, 50, 230)
	b := randomBetween(rng, 50, 230)
	return fmt.Sprintf("rgba(%d,%d,%d,1)", r, g, b)
}

// randomBetween returns an integer in [lo, hi), or lo for an empty range.
func randomBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo)
}
