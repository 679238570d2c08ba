package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/playmatatu/slingshot/internal/physics"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSandbox(t)
	s.SessionID = 12
	s.Launch(1, physics.NewVec2(0, 300))
	s.Step(0.01)

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap SandboxSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}

	restored, err := RestoreSandbox(snap, time.Minute)
	if err != nil {
		t.Fatalf("RestoreSandbox: %v", err)
	}

	if restored.ID != s.ID || restored.Token != s.Token || restored.SessionID != 12 || restored.Frame != 1 {
		t.Errorf("restored header = %s %s %d %d", restored.ID, restored.Token, restored.SessionID, restored.Frame)
	}
	if !restored.ExpiresAt.Equal(s.ExpiresAt) {
		t.Errorf("expiry %v, want %v", restored.ExpiresAt, s.ExpiresAt)
	}

	want, got := s.Bodies(), restored.Bodies()
	if len(got) != len(want) {
		t.Fatalf("restored %d bodies, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("body %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// new bodies must not reuse restored ids
	if b := restored.world.AddBody(physics.NewVec2(700, 500), 30); b.ID != 3 {
		t.Errorf("next id = %d, want 3", b.ID)
	}
}

func TestRestoreClearsHighlight(t *testing.T) {
	s := newTestSandbox(t)
	s.Select(physics.NewVec2(200, 300))
	if _, err := s.Aim(physics.NewVec2(0, 300)); err != nil {
		t.Fatal(err)
	}
	if tagOf(s, 2) != HighlightTag {
		t.Fatal("setup: body 2 not highlighted")
	}

	restored, err := RestoreSandbox(s.Snapshot(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if tagOf(restored, 2) != rightTag {
		t.Errorf("restored tag = %q, want %q", tagOf(restored, 2), rightTag)
	}
	if _, ok := selectedOf(restored); ok {
		t.Error("selection should not survive a restore")
	}
}

func TestRestoreRejectsBadConfig(t *testing.T) {
	if _, err := RestoreSandbox(SandboxSnapshot{ID: "sbx_bad"}, time.Minute); err == nil {
		t.Error("zero config restored without error")
	}
}
