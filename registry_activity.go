package scoped

import (
	"context"

	"github.com/goliatone/go-scoped/pkg/activity"
)

// WithLifecycleHooks attaches lifecycle hooks to the registry configuration.
// Hooks are cloned and nil entries dropped to preserve immutability.
func WithLifecycleHooks(hooks activity.Hooks) Option {
	normalized := cloneLifecycleHooks(hooks)
	return func(cfg *registryConfig) {
		cfg.hooks = normalized
	}
}

// LifecycleHooks returns a cloned slice of the hooks configured on the
// registry. The returned slice can be safely mutated by the caller.
func (r *Registry) LifecycleHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return cloneLifecycleHooks(r.cfg.hooks)
}

// emitOpened notifies hooks of a push. Hook errors are the hooks' concern;
// Open itself never fails.
func (r *Registry) emitOpened(entry Entry, depth int) {
	if !r.cfg.hooks.Enabled() {
		return
	}
	_ = r.cfg.hooks.Notify(context.Background(), activity.BuildScopeOpenedEvent(scopeEventInput(entry, depth, nil)))
}

func (r *Registry) emitClosed(entry Entry, depth int) {
	if !r.cfg.hooks.Enabled() {
		return
	}
	_ = r.cfg.hooks.Notify(context.Background(), activity.BuildScopeClosedEvent(scopeEventInput(entry, depth, nil)))
}

func (r *Registry) emitMisuse(entry Entry, cause error) {
	if !r.cfg.hooks.Enabled() {
		return
	}
	_ = r.cfg.hooks.Notify(context.Background(), activity.BuildScopeMisuseEvent(scopeEventInput(entry, 0, cause)))
}

func scopeEventInput(entry Entry, depth int, cause error) activity.ScopeEventInput {
	return activity.ScopeEventInput{
		ScopeID:   entry.ID.String(),
		Category:  string(entry.Category),
		GlobalSeq: entry.GlobalSeq,
		LocalSeq:  entry.LocalSeq,
		Depth:     depth,
		Value:     entry.Value,
		Err:       cause,
	}
}

func cloneLifecycleHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
