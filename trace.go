package scoped

import "time"

// Trace captures a point-in-time picture of the open scopes, ordered by open
// time, for diagnostics. It is a copy; the registry keeps mutating after the
// call returns.
type Trace struct {
	TakenAt time.Time
	Entries []Provenance
}

// Provenance describes one open scope within a trace.
type Provenance struct {
	Entry Entry
	// Depth is the size of the entry's category stack at capture time.
	Depth int
	// Current reports whether the entry was its category's current value.
	Current bool
}

// Trace snapshots the open scopes of the given categories, or of all
// categories when none are given.
func (r *Registry) Trace(categories ...Category) Trace {
	entries := r.GlobalEntries(categories...)
	trace := Trace{
		TakenAt: time.Now(),
		Entries: make([]Provenance, 0, len(entries)),
	}

	depths := make(map[Category]int, len(entries))
	for _, entry := range entries {
		if entry.LocalSeq+1 > depths[entry.Category] {
			depths[entry.Category] = entry.LocalSeq + 1
		}
	}
	for _, entry := range entries {
		trace.Entries = append(trace.Entries, Provenance{
			Entry:   entry,
			Depth:   depths[entry.Category],
			Current: entry.LocalSeq == depths[entry.Category]-1,
		})
	}
	return trace
}

// Len returns the number of open scopes the trace observed.
func (t Trace) Len() int {
	return len(t.Entries)
}
