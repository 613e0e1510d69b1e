package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vslobodin/jobscout/internal/jobsource"
)

func testSchedule(id, owner string) *Schedule {
	return &Schedule{
		ID:             id,
		Owner:          owner,
		Cadence:        CadenceDaily,
		Criteria:       jobsource.Criteria{"what": "go developer"},
		ScoreThreshold: 0.6,
		NextRunAt:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Status:         StatusActive,
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := testSchedule("s1", "alice")
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Create(ctx, s); err == nil {
		t.Fatal("expected duplicate create to fail")
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Owner != "alice" || got.Cadence != CadenceDaily {
		t.Fatalf("unexpected schedule: %+v", got)
	}

	// Reads must not alias stored state.
	got.Owner = "mallory"
	again, _ := store.Get(ctx, "s1")
	if again.Owner != "alice" {
		t.Fatal("store returned aliased schedule")
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListByOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, s := range []*Schedule{testSchedule("s1", "alice"), testSchedule("s2", "bob"), testSchedule("s3", "alice")} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	mine, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != "s1" || mine[1].ID != "s3" {
		t.Fatalf("unexpected listing: %+v", mine)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(all))
	}
}

func TestMemoryStoreRejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := testSchedule("s1", "alice")
	s.Status = StatusPaused
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Status = StatusRunning
	if err := store.Update(ctx, s); err == nil {
		t.Fatal("expected PAUSED -> RUNNING to be rejected")
	}

	s.Status = StatusActive
	if err := store.Update(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryStoreDue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	due := testSchedule("s1", "alice")
	future := testSchedule("s2", "alice")
	future.NextRunAt = now.Add(time.Hour)
	paused := testSchedule("s3", "alice")
	paused.Status = StatusPaused

	for _, s := range []*Schedule{due, future, paused} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := store.Due(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("unexpected due set: %+v", got)
	}
}
