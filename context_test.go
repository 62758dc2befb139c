package scoped

import (
	"context"
	"testing"
)

func TestContextCarriesRegistry(t *testing.T) {
	registry := NewRegistry()
	ctx := NewContext(context.Background(), registry)

	got, ok := FromContext(ctx)
	if !ok || got != registry {
		t.Fatalf("expected registry from context, got %v (ok=%v)", got, ok)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no registry on bare context")
	}
}

func TestRegistryFromContextFallsBack(t *testing.T) {
	registry := RegistryFromContext(context.Background())
	if registry == nil {
		t.Fatalf("expected fallback registry")
	}

	attached := NewRegistry()
	ctx := NewContext(context.Background(), attached)
	if got := RegistryFromContext(ctx); got != attached {
		t.Fatalf("expected attached registry, got %v", got)
	}
}

func TestIsolatedRegistriesDoNotObserveEachOther(t *testing.T) {
	tracker := NewOrderTracker()
	first := NewRegistry(WithOrderTracker(tracker))
	second := NewRegistry(WithOrderTracker(tracker))

	handle := first.Open("job", "a")
	defer func() {
		if err := handle.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()

	if second.Depth("job") != 0 {
		t.Fatalf("registries should be isolated, got depth %d", second.Depth("job"))
	}
	if stack := second.GlobalStack(); stack != nil {
		t.Fatalf("expected empty global stack on sibling registry, got %v", stack)
	}
}
