package scoped

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks the currently active value of every category. Each category
// holds a stack of open scopes: Open pushes, Handle.Close pops, and the tail
// entry is the category's current value. A cross-category view ordered by
// open time is available through GlobalCurrent, GlobalStack, and Trace.
//
// A Registry is safe for concurrent use, though isolated control flows are
// better served by one registry each (see NewContext); a shared OrderTracker
// keeps their sequences comparable.
type Registry struct {
	mu     sync.Mutex
	stacks map[Category][]Entry
	cfg    registryConfig
}

// NewRegistry constructs an empty registry. Without WithOrderTracker it owns
// a private tracker.
func NewRegistry(opts ...Option) *Registry {
	cfg := applyOptions(opts)
	if cfg.tracker == nil {
		cfg.tracker = NewOrderTracker()
	}
	return &Registry{
		stacks: make(map[Category][]Entry),
		cfg:    cfg,
	}
}

// Tracker returns the order tracker issuing this registry's sequences.
func (r *Registry) Tracker() *OrderTracker {
	return r.cfg.tracker
}

// Open pushes value onto category's stack, making it the category's current
// value until the returned handle is closed. Open never fails; release the
// handle with defer on every path:
//
//	handle := registry.Open("tenant", tenant)
//	defer handle.Close()
func (r *Registry) Open(category Category, value any) *Handle {
	entry := Entry{
		ID:        uuid.New(),
		Category:  category,
		Value:     value,
		GlobalSeq: r.cfg.tracker.Next(),
		OpenedAt:  time.Now(),
	}

	r.mu.Lock()
	entry.LocalSeq = len(r.stacks[category])
	r.stacks[category] = append(r.stacks[category], entry)
	depth := entry.LocalSeq + 1
	r.mu.Unlock()

	r.emitOpened(entry, depth)
	return &Handle{registry: r, entry: entry}
}

// Do opens a scope for value, runs fn, and closes the scope on every exit
// path including panics. A close failure is returned only when fn itself
// succeeded.
func (r *Registry) Do(category Category, value any, fn func() error) (err error) {
	handle := r.Open(category, value)
	defer func() {
		if cerr := handle.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if fn == nil {
		return nil
	}
	return fn()
}

// close pops the handle's entry. Only the tail of a stack may be popped; a
// handle that is not the tail, or that was closed before, produces a
// MisuseError and leaves the registry untouched.
func (r *Registry) close(h *Handle) error {
	r.mu.Lock()
	if h.closed {
		r.mu.Unlock()
		err := &MisuseError{
			Category:  h.entry.Category,
			HandleSeq: h.entry.GlobalSeq,
			Reason:    "scope already closed",
		}
		r.emitMisuse(h.entry, err)
		return err
	}

	stack := r.stacks[h.entry.Category]
	if len(stack) == 0 {
		r.mu.Unlock()
		err := &MisuseError{
			Category:  h.entry.Category,
			HandleSeq: h.entry.GlobalSeq,
			Reason:    "no open scope in category",
		}
		r.emitMisuse(h.entry, err)
		return err
	}

	tail := stack[len(stack)-1]
	if tail.GlobalSeq != h.entry.GlobalSeq {
		r.mu.Unlock()
		err := &MisuseError{
			Category:  h.entry.Category,
			HandleSeq: h.entry.GlobalSeq,
			TailSeq:   tail.GlobalSeq,
			Reason:    "not the innermost open scope",
		}
		r.emitMisuse(h.entry, err)
		return err
	}

	if len(stack) == 1 {
		delete(r.stacks, h.entry.Category)
	} else {
		r.stacks[h.entry.Category] = stack[:len(stack)-1]
	}
	h.closed = true
	depth := len(stack) - 1
	r.mu.Unlock()

	r.emitClosed(h.entry, depth)
	return nil
}

// Current returns the value of the most recently opened, not yet closed scope
// in category, or ErrNoContext when the category stack is empty.
func (r *Registry) Current(category Category) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stack := r.stacks[category]
	if len(stack) == 0 {
		return nil, ErrNoContext
	}
	return stack[len(stack)-1].Value, nil
}

// Stack returns a snapshot of category's open values, oldest first. The
// returned slice is detached from the registry.
func (r *Registry) Stack(category Category) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	stack := r.stacks[category]
	if len(stack) == 0 {
		return nil
	}
	out := make([]any, len(stack))
	for i := range stack {
		out[i] = stack[i].Value
	}
	return out
}

// Depth reports the number of open scopes in category.
func (r *Registry) Depth(category Category) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stacks[category])
}

// Categories lists the categories holding at least one open scope, sorted by
// name.
func (r *Registry) Categories() []Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stacks) == 0 {
		return nil
	}
	out := make([]Category, 0, len(r.stacks))
	for category := range r.stacks {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GlobalCurrent returns the most recently opened, not yet closed value across
// the given categories, or across all categories when none are given.
// ErrNoContext when every selected stack is empty.
func (r *Registry) GlobalCurrent(categories ...Category) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		best  Entry
		found bool
	)
	for _, stack := range r.selectStacks(categories) {
		tail := stack[len(stack)-1]
		if !found || tail.GlobalSeq > best.GlobalSeq {
			best = tail
			found = true
		}
	}
	if !found {
		return nil, ErrNoContext
	}
	return best.Value, nil
}

// GlobalStack returns the open values across the given categories (or all
// categories when none are given) ordered by open time, oldest first.
func (r *Registry) GlobalStack(categories ...Category) []any {
	entries := r.GlobalEntries(categories...)
	if len(entries) == 0 {
		return nil
	}
	out := make([]any, len(entries))
	for i := range entries {
		out[i] = entries[i].Value
	}
	return out
}

// GlobalEntries is GlobalStack with full entry records instead of bare
// values.
func (r *Registry) GlobalEntries(categories ...Category) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return mergeByGlobalSeq(r.selectStacks(categories))
}

// selectStacks returns the non-empty stacks for categories, or every stack
// when categories is empty. Caller must hold r.mu.
func (r *Registry) selectStacks(categories []Category) [][]Entry {
	if len(categories) == 0 {
		selected := make([][]Entry, 0, len(r.stacks))
		for _, stack := range r.stacks {
			selected = append(selected, stack)
		}
		return selected
	}
	selected := make([][]Entry, 0, len(categories))
	seen := make(map[Category]struct{}, len(categories))
	for _, category := range categories {
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}
		if stack := r.stacks[category]; len(stack) > 0 {
			selected = append(selected, stack)
		}
	}
	return selected
}

// mergeByGlobalSeq interleaves per-category stacks into one sequence ordered
// by GlobalSeq. Each stack is already ascending by construction, so this is a
// pointer-walk merge, linear in the total entry count.
func mergeByGlobalSeq(stacks [][]Entry) []Entry {
	total := 0
	for _, stack := range stacks {
		total += len(stack)
	}
	if total == 0 {
		return nil
	}

	heads := make([]int, len(stacks))
	out := make([]Entry, 0, total)
	for len(out) < total {
		next := -1
		for i, stack := range stacks {
			if heads[i] >= len(stack) {
				continue
			}
			if next < 0 || stack[heads[i]].GlobalSeq < stacks[next][heads[next]].GlobalSeq {
				next = i
			}
		}
		out = append(out, stacks[next][heads[next]])
		heads[next]++
	}
	return out
}
