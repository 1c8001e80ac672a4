package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

func testFrame(run string) *glofs.Frame {
	return &glofs.Frame{
		Meta: glofs.FrameMeta{Lake: glofs.LakeErie, Run: run},
		Time: "2026-09-01T06:00:00Z",
	}
}

func TestRunsRoundTrip(t *testing.T) {
	s := NewMemoryStore(0, 0)

	if _, err := s.GetRuns(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	run := "2026-08-31T06:00:00Z"
	s.SaveRuns(map[glofs.Lake]*string{
		glofs.LakeErie:    &run,
		glofs.LakeOntario: nil,
	})

	runs, err := s.GetRuns()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs[glofs.LakeErie] == nil || *runs[glofs.LakeErie] != run {
		t.Fatalf("leofs run mismatch: %v", runs)
	}
	if got, ok := runs[glofs.LakeOntario]; !ok || got != nil {
		t.Fatal("nil run entries must be preserved")
	}

	// The returned map is a copy; mutating it must not affect the store.
	delete(runs, glofs.LakeErie)
	again, err := s.GetRuns()
	if err != nil || again[glofs.LakeErie] == nil {
		t.Fatal("stored runs must be isolated from callers")
	}
}

func TestLatestFrameSupersedes(t *testing.T) {
	s := NewMemoryStore(0, 0)

	if _, err := s.GetLatestFrame(glofs.LakeErie, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s.SaveFrame(glofs.LakeErie, 0, testFrame("runA"))
	s.SaveFrame(glofs.LakeErie, 0, testFrame("runB"))

	f, err := s.GetLatestFrame(glofs.LakeErie, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Meta.Run != "runB" {
		t.Fatalf("newest frame must win, got %q", f.Meta.Run)
	}

	// Frames for a different hour are independent.
	if _, err := s.GetLatestFrame(glofs.LakeErie, 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unseen hour, got %v", err)
	}
}

func TestFrameRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)

	for i := 0; i < 5; i++ {
		s.SaveFrame(glofs.LakeErie, 0, testFrame(fmt.Sprintf("run%d", i)))
	}

	s.mu.RLock()
	n := len(s.frames[frameKey{Lake: glofs.LakeErie, Hour: 0}])
	s.mu.RUnlock()
	if n != 2 {
		t.Fatalf("expected history capped at 2, got %d", n)
	}

	f, err := s.GetLatestFrame(glofs.LakeErie, 0)
	if err != nil || f.Meta.Run != "run4" {
		t.Fatalf("latest frame lost by retention: %v", err)
	}
}

func TestFrameRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)

	s.SaveFrame(glofs.LakeErie, 0, testFrame("old"))

	// Backdate the stored entry past the age limit.
	s.mu.Lock()
	key := frameKey{Lake: glofs.LakeErie, Hour: 0}
	s.frames[key][0].FetchedAt = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	s.SaveFrame(glofs.LakeErie, 0, testFrame("new"))

	s.mu.RLock()
	n := len(s.frames[key])
	s.mu.RUnlock()
	if n != 1 {
		t.Fatalf("expected aged-out frame dropped, got %d entries", n)
	}
}
