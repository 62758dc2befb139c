package scoped

import "fmt"

// Var is the typed facade over one category of a Registry. It keeps no state
// of its own; every call maps 1:1 onto the registry with the category fixed.
//
//	theme := scoped.NewVar[Theme](registry, "theme")
//	handle := theme.Open(dark)
//	defer handle.Close()
//	current, err := theme.Current()
type Var[T any] struct {
	registry *Registry
	category Category
}

// NewVar binds a typed accessor for category on registry.
func NewVar[T any](registry *Registry, category Category) *Var[T] {
	return &Var[T]{registry: registry, category: category}
}

// Category returns the bound category.
func (v *Var[T]) Category() Category {
	return v.category
}

// Open pushes value onto the category stack and returns its handle.
func (v *Var[T]) Open(value T) *Handle {
	return v.registry.Open(v.category, value)
}

// Current returns the category's current value, ErrNoContext when no scope is
// open, or a type error when the category holds a value opened through the
// registry directly with a different type.
func (v *Var[T]) Current() (T, error) {
	var zero T
	value, err := v.registry.Current(v.category)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("scoped: category %q holds %T, not %T", v.category, value, zero)
	}
	return typed, nil
}

// Stack returns a snapshot of the category's open values, oldest first. A
// value of the wrong type fails the whole snapshot rather than being skipped.
func (v *Var[T]) Stack() ([]T, error) {
	values := v.registry.Stack(v.category)
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]T, len(values))
	for i, value := range values {
		typed, ok := value.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("scoped: category %q holds %T, not %T", v.category, value, zero)
		}
		out[i] = typed
	}
	return out, nil
}

// Depth reports the number of open scopes in the category.
func (v *Var[T]) Depth() int {
	return v.registry.Depth(v.category)
}

// Do opens a scope for value, runs fn, and closes the scope on every exit
// path including panics.
func (v *Var[T]) Do(value T, fn func() error) error {
	return v.registry.Do(v.category, value, fn)
}
