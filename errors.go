package scoped

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContext indicates the queried stack(s) hold no open scope.
	ErrNoContext = errors.New("scoped: no current context")
	// ErrScopeMisuse indicates a scope was closed out of the order it was
	// opened in, or closed twice.
	ErrScopeMisuse = errors.New("scoped: scope misuse")
)

// MisuseError captures the stack state observed when a close was rejected.
// The registry is left unmodified, so the fields describe a still-consistent
// stack the caller can inspect before failing.
type MisuseError struct {
	Category  Category
	HandleSeq uint64
	// TailSeq is the sequence of the entry currently at the tail of the
	// category stack, zero when the stack was empty.
	TailSeq uint64
	Reason  string
}

func (e *MisuseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.TailSeq == 0 {
		return fmt.Sprintf("scoped: close scope seq=%d category=%s: %s", e.HandleSeq, e.Category, e.Reason)
	}
	return fmt.Sprintf("scoped: close scope seq=%d category=%s: %s (tail seq=%d)", e.HandleSeq, e.Category, e.Reason, e.TailSeq)
}

func (e *MisuseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return ErrScopeMisuse
}
