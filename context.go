package scoped

import "context"

type registryContextKey struct{}

// NewContext returns a context carrying registry, so task-scoped code shares
// one registry per execution context instead of a process-global one.
func NewContext(ctx context.Context, registry *Registry) context.Context {
	return context.WithValue(ctx, registryContextKey{}, registry)
}

// FromContext extracts the registry attached via NewContext.
func FromContext(ctx context.Context) (*Registry, bool) {
	if ctx == nil {
		return nil, false
	}
	registry, ok := ctx.Value(registryContextKey{}).(*Registry)
	return registry, ok
}

// RegistryFromContext returns the context's registry, constructing a fresh
// one when the context carries none. Callers that need the registry to
// outlive the call should attach it explicitly with NewContext.
func RegistryFromContext(ctx context.Context) *Registry {
	if registry, ok := FromContext(ctx); ok {
		return registry
	}
	return NewRegistry()
}
