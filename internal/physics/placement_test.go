package physics

import (
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"testing"
)

var tagPattern = regexp.MustCompile(`^rgba\((\d+),(\d+),(\d+),1\)$`)

func TestPopulateHonoursPlacementRules(t *testing.T) {
	w := newTestWorld(t, 0.8)
	rng := rand.New(rand.NewSource(42))

	if err := w.Populate(15, rng); err != nil {
		t.Fatalf("Populate: %v", err)
	}
	bodies := w.Bodies()
	if len(bodies) != 15 {
		t.Fatalf("placed %d bodies, want 15", len(bodies))
	}

	cfg := w.Config()
	for i, b := range bodies {
		if b.Radius < float64(cfg.MinRadius) || b.Radius >= float64(cfg.MaxRadius) {
			t.Errorf("body %d radius %v outside [%d,%d)", b.ID, b.Radius, cfg.MinRadius, cfg.MaxRadius)
		}
		if b.Position.X < b.Radius || b.Position.X+b.Radius > cfg.Width ||
			b.Position.Y < b.Radius || b.Position.Y+b.Radius > cfg.Height {
			t.Errorf("body %d at %+v r=%v is not inside the world", b.ID, b.Position, b.Radius)
		}
		if !b.Velocity.IsZero() {
			t.Errorf("body %d should start at rest", b.ID)
		}
		if !tagPattern.MatchString(b.Tag) {
			t.Errorf("body %d tag %q is not an rgba colour", b.ID, b.Tag)
		}
		for _, o := range bodies[i+1:] {
			if b.Position.DistanceTo(o.Position) <= b.Radius+o.Radius+PlacementGap {
				t.Errorf("bodies %d and %d are too close", b.ID, o.ID)
			}
		}
	}
}

func TestPopulateIsDeterministicForASeed(t *testing.T) {
	a := newTestWorld(t, 0.8)
	b := newTestWorld(t, 0.8)
	if err := a.Populate(10, rand.New(rand.NewSource(7))); err != nil {
		t.Fatal(err)
	}
	if err := b.Populate(10, rand.New(rand.NewSource(7))); err != nil {
		t.Fatal(err)
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("body %d differs: %+v vs %+v", i, sa[i], sb[i])
		}
	}
}

func TestPopulateGivesUpInACrowdedWorld(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 100, 100
	cfg.MinRadius, cfg.MaxRadius = 30, 40
	cfg.MaxPlacementAttempts = 50
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}

	err = w.Populate(5, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrPlacementFailed) {
		t.Fatalf("err = %v, want ErrPlacementFailed", err)
	}
	if w.Len() == 0 || w.Len() >= 5 {
		t.Errorf("placed %d bodies, want some but not all", w.Len())
	}
}

func TestCanPlace(t *testing.T) {
	w := newTestWorld(t, 0.8)
	w.AddBody(NewVec2(200, 200), 30)

	if w.CanPlace(NewVec2(261, 200), 30) {
		t.Error("a gap of exactly one unit is still too close")
	}
	if !w.CanPlace(NewVec2(262, 200), 30) {
		t.Error("more than one unit of clearance should be allowed")
	}
}

func TestRandomTagRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		tag := RandomTag(rng)
		m := tagPattern.FindStringSubmatch(tag)
		if m == nil {
			t.Fatalf("tag %q does not match", tag)
		}
		for _, ch := range m[1:] {
			n, _ := strconv.Atoi(ch)
			if n < 50 || n >= 230 {
				t.Errorf("channel %d out of range in %q", n, tag)
			}
		}
	}
}
