package scoped

import "testing"

func TestTraceDescribesOpenScopes(t *testing.T) {
	registry := NewRegistry()

	registry.Open("job", "a1")
	registry.Open("tenant", "b1")
	registry.Open("job", "a2")

	trace := registry.Trace()
	if trace.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", trace.Len())
	}
	if trace.TakenAt.IsZero() {
		t.Fatalf("expected trace timestamp")
	}

	wantValues := []any{"a1", "b1", "a2"}
	for i, prov := range trace.Entries {
		if prov.Entry.Value != wantValues[i] {
			t.Fatalf("expected %v at index %d, got %v", wantValues[i], i, prov.Entry.Value)
		}
	}

	// a1 sits below a2 in the job stack.
	if trace.Entries[0].Current {
		t.Fatalf("a1 should not be current")
	}
	if trace.Entries[0].Depth != 2 {
		t.Fatalf("expected job depth 2, got %d", trace.Entries[0].Depth)
	}
	if !trace.Entries[1].Current || trace.Entries[1].Depth != 1 {
		t.Fatalf("b1 should be tenant's current at depth 1, got %+v", trace.Entries[1])
	}
	if !trace.Entries[2].Current {
		t.Fatalf("a2 should be job's current")
	}

	subset := registry.Trace("tenant")
	if subset.Len() != 1 || subset.Entries[0].Entry.Value != "b1" {
		t.Fatalf("expected tenant-only trace, got %+v", subset.Entries)
	}
}
