package scoped

import (
	"errors"
	"testing"
)

func TestCurrentTracksInnermostScope(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Current("job"); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext on empty category, got %v", err)
	}

	outer := registry.Open("job", "outer")
	if current, _ := registry.Current("job"); current != "outer" {
		t.Fatalf("expected current 'outer', got %v", current)
	}

	inner := registry.Open("job", "inner")
	if current, _ := registry.Current("job"); current != "inner" {
		t.Fatalf("expected current 'inner', got %v", current)
	}

	if err := inner.Close(); err != nil {
		t.Fatalf("close inner: %v", err)
	}
	if current, _ := registry.Current("job"); current != "outer" {
		t.Fatalf("expected current to fall back to 'outer', got %v", current)
	}

	if err := outer.Close(); err != nil {
		t.Fatalf("close outer: %v", err)
	}
	if _, err := registry.Current("job"); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext after closing all scopes, got %v", err)
	}
}

func TestCloseOutOfOrderFailsAndLeavesStack(t *testing.T) {
	registry := NewRegistry()

	outer := registry.Open("job", "outer")
	inner := registry.Open("job", "inner")

	err := outer.Close()
	if !errors.Is(err, ErrScopeMisuse) {
		t.Fatalf("expected ErrScopeMisuse, got %v", err)
	}
	var misuse *MisuseError
	if !errors.As(err, &misuse) {
		t.Fatalf("expected MisuseError, got %T", err)
	}
	if misuse.Category != "job" {
		t.Fatalf("expected category job, got %q", misuse.Category)
	}
	if misuse.HandleSeq != outer.Entry().GlobalSeq {
		t.Fatalf("expected handle seq %d, got %d", outer.Entry().GlobalSeq, misuse.HandleSeq)
	}
	if misuse.TailSeq != inner.Entry().GlobalSeq {
		t.Fatalf("expected tail seq %d, got %d", inner.Entry().GlobalSeq, misuse.TailSeq)
	}

	if stack := registry.Stack("job"); len(stack) != 2 || stack[0] != "outer" || stack[1] != "inner" {
		t.Fatalf("failed close should leave stack unchanged, got %v", stack)
	}

	if err := inner.Close(); err != nil {
		t.Fatalf("close inner: %v", err)
	}
	if err := outer.Close(); err != nil {
		t.Fatalf("close outer after inner: %v", err)
	}
}

func TestCloseTwiceReportsMisuse(t *testing.T) {
	registry := NewRegistry()

	handle := registry.Open("job", 1)
	if err := handle.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	err := handle.Close()
	if !errors.Is(err, ErrScopeMisuse) {
		t.Fatalf("expected ErrScopeMisuse on double close, got %v", err)
	}
}

func TestStackReturnsOldestFirstSnapshot(t *testing.T) {
	registry := NewRegistry()

	first := registry.Open("job", "a")
	second := registry.Open("job", "b")
	third := registry.Open("job", "c")

	snapshot := registry.Stack("job")
	want := []any{"a", "b", "c"}
	if len(snapshot) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(snapshot))
	}
	for i := range want {
		if snapshot[i] != want[i] {
			t.Fatalf("expected %v at index %d, got %v", want[i], i, snapshot[i])
		}
	}

	if err := third.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if snapshot[2] != "c" {
		t.Fatalf("snapshot should be isolated from later pops, got %v", snapshot[2])
	}

	if err := second.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if stack := registry.Stack("job"); stack != nil {
		t.Fatalf("expected nil stack after closing all scopes, got %v", stack)
	}
}

func TestGlobalStackInterleavesCategories(t *testing.T) {
	registry := NewRegistry()

	a1 := registry.Open("job", "a1")
	b1 := registry.Open("tenant", "b1")
	c1 := registry.Open("request", "c1")

	global := registry.GlobalStack()
	want := []any{"a1", "b1", "c1"}
	if len(global) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(global))
	}
	for i := range want {
		if global[i] != want[i] {
			t.Fatalf("expected %v at index %d, got %v", want[i], i, global[i])
		}
	}

	subset := registry.GlobalStack("job", "tenant")
	if len(subset) != 2 || subset[0] != "a1" || subset[1] != "b1" {
		t.Fatalf("expected [a1 b1], got %v", subset)
	}

	if current, err := registry.Current("request"); err != nil || current != "c1" {
		t.Fatalf("expected current c1, got %v (%v)", current, err)
	}

	for _, handle := range []*Handle{c1, b1, a1} {
		if err := handle.Close(); err != nil {
			t.Fatalf("close %v: %v", handle.Value(), err)
		}
	}
	if global := registry.GlobalStack(); global != nil {
		t.Fatalf("expected empty global stack, got %v", global)
	}
	if categories := registry.Categories(); categories != nil {
		t.Fatalf("expected no open categories, got %v", categories)
	}
}

func TestGlobalCurrentPicksLatestOpen(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.GlobalCurrent(); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}

	registry.Open("job", "a1")
	tenant := registry.Open("tenant", "b1")
	registry.Open("job", "a2")

	if current, _ := registry.GlobalCurrent(); current != "a2" {
		t.Fatalf("expected global current a2, got %v", current)
	}
	if current, _ := registry.GlobalCurrent("tenant"); current != "b1" {
		t.Fatalf("expected tenant current b1, got %v", current)
	}
	if _, err := registry.GlobalCurrent("request"); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext for empty selection, got %v", err)
	}

	// tenant is its category's tail, so this close is legal even though a2
	// opened later in another category.
	if err := tenant.Close(); err != nil {
		t.Fatalf("cross-category close should succeed, got %v", err)
	}
	if current, _ := registry.GlobalCurrent(); current != "a2" {
		t.Fatalf("expected global current a2 after tenant close, got %v", current)
	}
}

func TestLocalSeqMatchesStackPosition(t *testing.T) {
	registry := NewRegistry()

	registry.Open("job", "a")
	registry.Open("tenant", "x")
	registry.Open("job", "b")

	entries := registry.GlobalEntries("job")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.LocalSeq != i {
			t.Fatalf("expected local seq %d, got %d", i, entry.LocalSeq)
		}
	}
	if entries[0].GlobalSeq >= entries[1].GlobalSeq {
		t.Fatalf("expected strictly increasing global seq, got %d then %d",
			entries[0].GlobalSeq, entries[1].GlobalSeq)
	}
	if registry.Depth("job") != 2 || registry.Depth("tenant") != 1 {
		t.Fatalf("unexpected depths: job=%d tenant=%d",
			registry.Depth("job"), registry.Depth("tenant"))
	}
}

func TestDoClosesScopeOnAllPaths(t *testing.T) {
	registry := NewRegistry()

	err := registry.Do("job", "ok", func() error {
		if current, _ := registry.Current("job"); current != "ok" {
			t.Fatalf("expected scope open inside fn, got %v", current)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if registry.Depth("job") != 0 {
		t.Fatalf("expected scope closed after Do, depth=%d", registry.Depth("job"))
	}

	wantErr := errors.New("boom")
	if err := registry.Do("job", "fail", func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if registry.Depth("job") != 0 {
		t.Fatalf("expected scope closed after failing fn, depth=%d", registry.Depth("job"))
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = registry.Do("job", "panic", func() error { panic("kaboom") })
	}()
	if registry.Depth("job") != 0 {
		t.Fatalf("expected scope closed after panic, depth=%d", registry.Depth("job"))
	}
}

func TestSharedTrackerOrdersAcrossRegistries(t *testing.T) {
	tracker := NewOrderTracker()
	first := NewRegistry(WithOrderTracker(tracker))
	second := NewRegistry(WithOrderTracker(tracker))

	a := first.Open("job", "a")
	b := second.Open("job", "b")
	c := first.Open("job", "c")

	if !(a.Entry().GlobalSeq < b.Entry().GlobalSeq && b.Entry().GlobalSeq < c.Entry().GlobalSeq) {
		t.Fatalf("expected shared tracker to interleave sequences, got %d %d %d",
			a.Entry().GlobalSeq, b.Entry().GlobalSeq, c.Entry().GlobalSeq)
	}
	if first.Tracker() != second.Tracker() {
		t.Fatalf("expected registries to share one tracker")
	}
}
