package scoped

// Handle guards one open scope. It is returned by Open and must be released
// with Close on every exit path from the scope that created it, normally via
// defer. The handle references its entry by category and sequence; it owns no
// stack state itself.
type Handle struct {
	registry *Registry
	entry    Entry
	// closed is guarded by registry.mu.
	closed bool
}

// Close pops the handle's entry from its category stack. It fails with a
// MisuseError, leaving the registry unmodified, when the entry is not the
// innermost open scope of its category (scopes closed in a different order
// than they were opened) or when the handle was already closed. Such a
// failure is a programming error in the caller, not a transient fault.
func (h *Handle) Close() error {
	if h == nil || h.registry == nil {
		return nil
	}
	return h.registry.close(h)
}

// Entry returns a copy of the scope's record.
func (h *Handle) Entry() Entry {
	if h == nil {
		return Entry{}
	}
	return h.entry
}

// Category returns the category the scope was opened in.
func (h *Handle) Category() Category {
	if h == nil {
		return ""
	}
	return h.entry.Category
}

// Value returns the value the scope activates.
func (h *Handle) Value() any {
	if h == nil {
		return nil
	}
	return h.entry.Value
}
