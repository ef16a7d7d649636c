package memory

import (
	"testing"

	"aroma-assistant-be/pkg/store"
)

func TestDefaultSessionIsEmpty(t *testing.T) {
	repo := NewSessionRepository()

	mode, mixture := repo.Get("unknown-user")
	if mode != store.ModeNone {
		t.Errorf("mode = %v, want ModeNone", mode)
	}
	if mixture != nil {
		t.Errorf("mixture = %v, want nil", mixture)
	}
}

func TestSetModePreservesMixture(t *testing.T) {
	repo := NewSessionRepository()

	repo.SetPending("u1", "Lavender")
	repo.SetMode("u1", store.ModeAwaitingQuantity)

	mode, mixture := repo.Get("u1")
	if mode != store.ModeAwaitingQuantity {
		t.Errorf("mode = %v, want ModeAwaitingQuantity", mode)
	}
	if mixture == nil || mixture.PendingItem != "Lavender" {
		t.Errorf("pending item lost across SetMode: %+v", mixture)
	}
}

func TestAddLineAccumulates(t *testing.T) {
	repo := NewSessionRepository()

	repo.SetPending("u1", "Lavender")
	repo.AddLine("u1", "Lavender, 10 drops", 2.5)
	repo.AddLine("u1", "Bergamot, 5 drops", 3.0)

	_, mixture := repo.Get("u1")
	if mixture == nil {
		t.Fatal("mixture = nil after AddLine")
	}
	if len(mixture.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(mixture.Lines))
	}
	if mixture.RunningTotal != 5.5 {
		t.Errorf("running total = %v, want 5.5", mixture.RunningTotal)
	}
	if mixture.PendingItem != "" {
		t.Errorf("pending item should clear after AddLine, got %q", mixture.PendingItem)
	}
}

func TestTakeSnapshotAndClear(t *testing.T) {
	repo := NewSessionRepository()

	repo.SetMode("u1", store.ModeAwaitingNextItemOrStop)
	repo.AddLine("u1", "Lavender, 10 drops", 2.5)

	total, lines := repo.TakeSnapshotAndClear("u1")
	if total != 2.5 {
		t.Errorf("total = %v, want 2.5", total)
	}
	if len(lines) != 1 || lines[0] != "Lavender, 10 drops" {
		t.Errorf("lines = %v", lines)
	}

	mode, mixture := repo.Get("u1")
	if mode != store.ModeNone || mixture != nil {
		t.Errorf("session not cleared: mode=%v mixture=%v", mode, mixture)
	}
}

func TestTakeSnapshotWithoutMixture(t *testing.T) {
	repo := NewSessionRepository()

	total, lines := repo.TakeSnapshotAndClear("u1")
	if total != 0 || lines != nil {
		t.Errorf("empty snapshot: total=%v lines=%v", total, lines)
	}
}

func TestDiscardMixtureKeepsMode(t *testing.T) {
	repo := NewSessionRepository()

	repo.SetMode("u1", store.ModeAwaitingNextItemOrStop)
	repo.AddLine("u1", "Lavender, 10 drops", 2.5)
	repo.DiscardMixture("u1")

	mode, mixture := repo.Get("u1")
	if mode != store.ModeAwaitingNextItemOrStop {
		t.Errorf("mode = %v, want ModeAwaitingNextItemOrStop", mode)
	}
	if mixture != nil {
		t.Errorf("mixture = %+v, want nil", mixture)
	}
}

func TestStartMixtureIsIdempotent(t *testing.T) {
	repo := NewSessionRepository()

	repo.StartMixture("u1")
	repo.AddLine("u1", "Lavender, 10 drops", 2.5)
	repo.StartMixture("u1")

	_, mixture := repo.Get("u1")
	if mixture == nil || len(mixture.Lines) != 1 {
		t.Errorf("StartMixture must not reset an existing accumulator: %+v", mixture)
	}
}

func TestUsersDoNotShareState(t *testing.T) {
	repo := NewSessionRepository()

	repo.SetMode("u1", store.ModeAwaitingItemName)

	mode, _ := repo.Get("u2")
	if mode != store.ModeNone {
		t.Errorf("u2 mode = %v, want ModeNone", mode)
	}
}
