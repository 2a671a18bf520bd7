package resource

import (
	"testing"
	"time"
)

func TestTrackerActivateDeactivateCounts(t *testing.T) {
	tr := newRefTracker()
	now := time.Unix(1000, 0)

	tr.Create(1, LifetimeShort)
	tr.Activate(1)
	tr.Activate(1)
	if got := tr.Count(1); got != 3 {
		t.Fatalf("expected count 3 after create + 2 activates, got %d", got)
	}

	tr.Deactivate(1, now)
	tr.Deactivate(1, now)
	if got := tr.Count(1); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}
	if len(tr.pending) != 0 {
		t.Error("no eviction entry may exist while count > 0")
	}

	tr.Deactivate(1, now)
	if got := tr.Count(1); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
	if len(tr.pending) != 1 {
		t.Fatalf("expected exactly one eviction entry, got %d", len(tr.pending))
	}

	delay, _ := LifetimeShort.Delay()
	want := now.Add(delay)
	if !tr.pending[0].deadline.Equal(want) {
		t.Errorf("deadline = %v, want now + %v = %v", tr.pending[0].deadline, delay, want)
	}
}

func TestTrackerUpkeepExpiry(t *testing.T) {
	tr := newRefTracker()
	now := time.Unix(1000, 0)

	tr.Create(1, LifetimeNone)
	tr.Create(2, LifetimeShort)
	tr.Deactivate(1, now)
	tr.Deactivate(2, now)

	got := tr.Upkeep(now)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("only the zero-delay handle may expire at t0, got %v", got)
	}

	delay, _ := LifetimeShort.Delay()
	got = tr.Upkeep(now.Add(delay))
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("short handle must expire after its delay, got %v", got)
	}
}

func TestTrackerReactivationRescues(t *testing.T) {
	tr := newRefTracker()
	now := time.Unix(1000, 0)

	tr.Create(1, LifetimeNone)
	tr.Deactivate(1, now)
	// Re-acquired before the sweep: the queued entry is stale.
	tr.Activate(1)

	if got := tr.Upkeep(now.Add(time.Hour)); len(got) != 0 {
		t.Fatalf("reactivated handle must not be destroyed, got %v", got)
	}
	if got := tr.Count(1); got != 1 {
		t.Errorf("expected count 1 after rescue, got %d", got)
	}

	// Released again: a fresh entry must expire normally.
	tr.Deactivate(1, now)
	if got := tr.Upkeep(now); len(got) != 1 {
		t.Fatalf("expected expiry after final release, got %v", got)
	}
}

func TestTrackerStaleEntryFromEarlierLifeDiscarded(t *testing.T) {
	tr := newRefTracker()
	now := time.Unix(1000, 0)

	// Two zero-count episodes queue two entries for handle 1.
	tr.Create(1, LifetimeShort)
	tr.Deactivate(1, now)
	tr.Activate(1)
	tr.Deactivate(1, now.Add(time.Second))

	delay, _ := LifetimeShort.Delay()
	if got := tr.Upkeep(now.Add(delay)); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected handle 1 to expire once, got %v", got)
	}

	// The handle is recycled for a new resource. The second entry is still
	// queued and expires a second later; it belongs to the earlier life and
	// must not touch the new one.
	tr.Create(1, LifetimeForever)
	tr.Deactivate(1, now.Add(delay))

	if got := tr.Upkeep(now.Add(delay + time.Second)); len(got) != 0 {
		t.Fatalf("stale entry expired a recycled handle: %v", got)
	}
	tr.Activate(1)
	if got := tr.Count(1); got != 1 {
		t.Errorf("recycled handle must remain tracked, count = %d", got)
	}
}

func TestTrackerForeverNeverExpires(t *testing.T) {
	tr := newRefTracker()
	now := time.Unix(1000, 0)

	tr.Create(1, LifetimeForever)
	tr.Deactivate(1, now)

	if got := tr.Upkeep(now.Add(1000 * time.Hour)); len(got) != 0 {
		t.Fatalf("forever handle expired: %v", got)
	}
}

func TestTrackerForeverSortsLast(t *testing.T) {
	tr := newRefTracker()
	now := time.Unix(1000, 0)

	tr.Create(1, LifetimeForever)
	tr.Create(2, LifetimeNone)
	tr.Deactivate(1, now)
	tr.Deactivate(2, now)

	// The undated entry must not shadow the dated one at the heap top.
	got := tr.Upkeep(now)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("dated entry must pop despite queued forever entry, got %v", got)
	}
}

func TestTrackerActivateUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic activating an unregistered handle")
		}
	}()
	newRefTracker().Activate(42)
}

func TestTrackerDeactivateUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic releasing an unregistered handle")
		}
	}()
	newRefTracker().Deactivate(42, time.Now())
}
