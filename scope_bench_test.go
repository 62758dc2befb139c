package scoped

import (
	"fmt"
	"testing"
)

func BenchmarkOpenClose(b *testing.B) {
	registry := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handle := registry.Open("job", i)
		if err := handle.Close(); err != nil {
			b.Fatalf("close: %v", err)
		}
	}
}

func BenchmarkGlobalStack(b *testing.B) {
	registry := NewRegistry()
	for i := 0; i < 10; i++ {
		category := Category(fmt.Sprintf("category_%d", i%4))
		registry.Open(category, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if stack := registry.GlobalStack(); len(stack) != 10 {
			b.Fatalf("expected 10 values, got %d", len(stack))
		}
	}
}

func BenchmarkQueryExpr(b *testing.B) {
	registry := NewRegistry(WithProgramCache(NewMemoryProgramCache()))
	for i := 0; i < 10; i++ {
		category := Category(fmt.Sprintf("category_%d", i%4))
		registry.Open(category, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := registry.Query(`category == "category_1"`); err != nil {
			b.Fatalf("query: %v", err)
		}
	}
}
