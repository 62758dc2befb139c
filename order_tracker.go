package scoped

import "sync/atomic"

// OrderTracker issues the global open-order sequence. Numbers are strictly
// increasing and never reused, so merged views across categories need no
// tie-breaking. A single tracker may back several registries via
// WithOrderTracker when their scopes must share one total order.
type OrderTracker struct {
	seq atomic.Uint64
}

// NewOrderTracker constructs a tracker starting at sequence one.
func NewOrderTracker() *OrderTracker {
	return &OrderTracker{}
}

// Next returns the next sequence number. Safe for concurrent use; the first
// number issued is 1 so a zero sequence always means "no entry".
func (t *OrderTracker) Next() uint64 {
	return t.seq.Add(1)
}

// Last reports the most recently issued sequence number, zero when none has
// been issued yet.
func (t *OrderTracker) Last() uint64 {
	return t.seq.Load()
}
