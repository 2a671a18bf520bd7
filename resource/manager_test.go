package resource

import (
	"sync"
	"testing"
	"time"
)

// countingHandler records create/destroy calls for assertions.
type countingHandler struct {
	created   int
	destroyed []string
}

func (h *countingHandler) Create(meta *Meta) string {
	h.created++
	if meta.Name != "" {
		return meta.Name
	}
	return meta.ID.String()
}

func (h *countingHandler) Destroy(r string) {
	h.destroyed = append(h.destroyed, r)
}

// fakeClock is a manually advanced clock for deterministic deadlines.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T) (*Manager[string], *countingHandler, *fakeClock) {
	t.Helper()
	h := &countingHandler{}
	clk := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManager[string](h, Config{Clock: clk.Now})
	return m, h, clk
}

func TestManagerCreateAndLookup(t *testing.T) {
	m, h, _ := newTestManager(t)

	meta := NewNamedMeta("albedo", LifetimeMedium)
	meta.Path = "textures/albedo.png"
	ref := m.Create(meta)
	defer ref.Release()

	if h.created != 1 {
		t.Fatalf("expected one materialization, got %d", h.created)
	}

	byName, ok := m.GetByName("albedo")
	if !ok {
		t.Fatal("GetByName missed a registered name")
	}
	byName.Release()

	byPath, ok := m.GetByPath("textures/albedo.png")
	if !ok {
		t.Fatal("GetByPath missed a registered path")
	}
	byPath.Release()

	byID, ok := m.GetByID(meta.ID)
	if !ok {
		t.Fatal("GetByID missed a registered id")
	}
	byID.Release()

	if _, ok := m.GetByName("normalmap"); ok {
		t.Error("lookup miss must return not-found, not a ref")
	}
}

func TestManagerRecreateActivatesOnly(t *testing.T) {
	m, h, _ := newTestManager(t)

	meta := NewMeta(LifetimeShort)
	a := m.Create(meta)
	b := m.Create(meta)

	if h.created != 1 {
		t.Fatalf("re-registering a known id must not re-materialize, created=%d", h.created)
	}
	if got := m.tracker.Count(a.Handle()); got != 2 {
		t.Errorf("expected count 2, got %d", got)
	}
	a.Release()
	b.Release()
}

func TestManagerDeferredDestruction(t *testing.T) {
	m, h, clk := newTestManager(t)

	ref := m.Create(NewNamedMeta("scratch", LifetimeShort))
	ref.Release()

	// Before the deadline nothing may die.
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 0 {
		t.Fatalf("destroyed before deadline: %v", h.destroyed)
	}

	delay, _ := LifetimeShort.Delay()
	clk.Advance(delay)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 1 || h.destroyed[0] != "scratch" {
		t.Fatalf("expected scratch destroyed, got %v", h.destroyed)
	}
	if _, ok := m.GetByName("scratch"); ok {
		t.Error("destroyed resource must not be addressable")
	}
}

func TestManagerReacquireRescues(t *testing.T) {
	m, h, clk := newTestManager(t)

	meta := NewNamedMeta("held", LifetimeNone)
	ref := m.Create(meta)
	ref.Release()

	again, ok := m.GetByName("held")
	if !ok {
		t.Fatal("resource must be addressable until destroyed")
	}

	clk.Advance(time.Hour)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 0 {
		t.Fatalf("re-acquired resource destroyed: %v", h.destroyed)
	}
	again.Release()
}

func TestManagerUpkeepQuota(t *testing.T) {
	h := &countingHandler{}
	clk := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManager[string](h, Config{DestroyPerUpkeep: 3, Clock: clk.Now})

	const total = 8
	for i := 0; i < total; i++ {
		m.Create(NewMeta(LifetimeNone)).Release()
	}

	clk.Advance(time.Second)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 3 {
		t.Fatalf("quota 3 violated: destroyed %d", len(h.destroyed))
	}

	m.Upkeep(clk.Now())
	if len(h.destroyed) != 6 {
		t.Fatalf("expected backlog to drain at quota rate, destroyed %d", len(h.destroyed))
	}

	m.Upkeep(clk.Now())
	if len(h.destroyed) != total {
		t.Fatalf("expected all %d destroyed eventually, got %d", total, len(h.destroyed))
	}
}

func TestManagerNameCollisionLastWriteWins(t *testing.T) {
	m, _, _ := newTestManager(t)

	first := NewNamedMeta("shadowmap", LifetimeLong)
	second := NewNamedMeta("shadowmap", LifetimeLong)
	a := m.Create(first)
	b := m.Create(second)
	defer a.Release()
	defer b.Release()

	ref, ok := m.GetByName("shadowmap")
	if !ok {
		t.Fatal("name lookup missed")
	}
	defer ref.Release()
	if ref.Handle() != b.Handle() {
		t.Error("name collision must resolve to the latest registration")
	}
}

func TestRefCloneAndDoubleRelease(t *testing.T) {
	m, h, clk := newTestManager(t)

	ref := m.Create(NewNamedMeta("mesh", LifetimeNone))
	clone := ref.Clone()

	ref.Release()
	ref.Release() // inert; count must not go negative

	clk.Advance(time.Hour)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 0 {
		t.Fatal("resource died while a clone is live")
	}

	clone.Release()
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 1 {
		t.Fatalf("expected destruction after last clone released, got %v", h.destroyed)
	}
}

func TestRefConcurrentRelease(t *testing.T) {
	m, h, clk := newTestManager(t)

	root := m.Create(NewMeta(LifetimeNone))
	const clones = 32
	refs := make([]*Ref, clones)
	for i := range refs {
		refs[i] = root.Clone()
	}

	var wg sync.WaitGroup
	for _, r := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Release()
		}()
	}
	wg.Wait()
	root.Release()

	clk.Advance(time.Second)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 1 {
		t.Fatalf("expected exactly one destruction, got %d", len(h.destroyed))
	}
}

func TestManagerWithNamed(t *testing.T) {
	m, _, _ := newTestManager(t)

	keep := m.Create(NewNamedMeta("brdf-lut", LifetimeForever))
	defer keep.Release()

	var seen string
	ok := m.WithNamed("brdf-lut", func(r string) { seen = r })
	if !ok || seen != "brdf-lut" {
		t.Fatalf("WithNamed failed: ok=%v seen=%q", ok, seen)
	}
	if ok := m.WithNamed("missing", func(string) {}); ok {
		t.Error("WithNamed must report unknown names")
	}
}

func TestManagerRecycledIndexIgnoresStaleQueueEntries(t *testing.T) {
	m, h, clk := newTestManager(t)
	delay, _ := LifetimeShort.Delay()

	// Two zero-count episodes for the same resource leave two queue entries.
	scratch := m.Create(NewNamedMeta("scratch", LifetimeShort))
	scratch.Release()
	again, ok := m.GetByName("scratch")
	if !ok {
		t.Fatal("GetByName missed a live resource")
	}
	clk.Advance(time.Second)
	again.Release()

	// The first entry expires, destroying scratch and freeing its index.
	clk.Advance(delay - time.Second)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 1 || h.destroyed[0] != "scratch" {
		t.Fatalf("expected scratch destroyed once, got %v", h.destroyed)
	}

	// A new resource reuses the freed index. The second entry, still in the
	// queue, expires a second later and must not touch it.
	eternal := m.Create(NewNamedMeta("eternal", LifetimeForever))
	if eternal.Handle() != scratch.Handle() {
		t.Fatalf("expected index reuse, got %d and %d", scratch.Handle(), eternal.Handle())
	}
	eternal.Release()

	clk.Advance(time.Second)
	m.Upkeep(clk.Now())
	if len(h.destroyed) != 1 {
		t.Fatalf("stale queue entry destroyed a recycled resource: %v", h.destroyed)
	}
	ref, ok := m.GetByName("eternal")
	if !ok {
		t.Fatal("recycled resource must stay addressable")
	}
	ref.Release()
}

func TestManagerResourceUnaffectedByOtherDestruction(t *testing.T) {
	m, _, clk := newTestManager(t)

	// Created first, so destroying it swap-relocates the survivor's storage.
	doomed := m.Create(NewNamedMeta("doomed", LifetimeNone))
	keep := m.Create(NewNamedMeta("keep", LifetimeLong))
	defer keep.Release()
	doomed.Release()

	clk.Advance(time.Second)
	m.Upkeep(clk.Now())

	if got, ok := m.Resource(keep); !ok || got != "keep" {
		t.Fatalf("Resource after unrelated destruction = %q, %v; want keep", got, ok)
	}

	keepCopy := keep.Clone()
	keepCopy.Release()
	if _, ok := m.Resource(keepCopy); ok {
		t.Error("Resource must miss for a released ref")
	}
}

func TestManagerCloseDestroysEverything(t *testing.T) {
	m, h, _ := newTestManager(t)

	m.Create(NewNamedMeta("eternal", LifetimeForever)) // deliberately leaked
	scratch := m.Create(NewMeta(LifetimeShort))
	scratch.Release()

	m.Close()
	if len(h.destroyed) != 2 {
		t.Fatalf("Close must destroy all resources including forever ones, got %v", h.destroyed)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty manager after Close, len=%d", m.Len())
	}
}
