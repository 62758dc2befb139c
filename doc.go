// Package scoped tracks the "current" value of nestable scopes across
// independent categories.
//
// A [Registry] keeps one stack of open scopes per [Category]. Opening a scope
// makes its value the category's current value; closing it restores the
// previous one. Scopes across all categories share a single open order issued
// by an [OrderTracker], so [Registry.GlobalStack] can interleave categories
// into one chronological view without sorting.
//
// Open returns a [Handle] that must be released on every exit path,
// normally with defer:
//
//	handle := registry.Open("request", req)
//	defer handle.Close()
//
// Close pops exactly the handle's own entry. Closing scopes in a different
// order than they were opened, or closing twice, is reported as a
// [MisuseError] wrapping [ErrScopeMisuse] and leaves the registry untouched
// for inspection. The [Registry.Do] and [Var.Do] helpers wrap the
// open/close pair and release the scope even when the callback panics.
//
// [Var] offers a typed facade over one category. [Registry.Query] filters
// the open scopes with predicate expressions through pluggable evaluators
// (expr-lang by default, CEL, or goja behind the js_eval build tag), and
// lifecycle hooks in pkg/activity observe opens, closes, and rejected
// closes.
//
// Registries are safe for concurrent use, but stacks model one control
// flow's nesting; code with independent control flows should give each its
// own registry, share a tracker via [WithOrderTracker] when a common order
// matters, and carry the registry with [NewContext]/[FromContext].
package scoped
