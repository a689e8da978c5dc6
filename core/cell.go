package core

// Cell is a single shared slot: empty at boot, filled exactly once during
// setup, then only reachable through a critical section token.
//
// A Cell has no lock of its own. The CS token is the lock.
type Cell[T any] struct {
	value T
	full  bool
}

// Install stores v in the cell. Installing twice is a programming error and
// faults.
func (c *Cell[T]) Install(cs CS, v T) {
	if !cs.check() {
		return
	}
	if c.full {
		Fault(ErrCellInstalled)
		return
	}
	c.value = v
	c.full = true
}

// Borrow returns a pointer to the cell contents, valid only while cs is live.
// Borrowing an empty cell faults; nil is returned only when a test halt
// handler lets execution continue past the fault.
func (c *Cell[T]) Borrow(cs CS) *T {
	if !cs.check() {
		return nil
	}
	if !c.full {
		Fault(ErrCellEmpty)
		return nil
	}
	return &c.value
}

// Installed reports whether the cell has been filled
func (c *Cell[T]) Installed(cs CS) bool {
	return cs.check() && c.full
}

// WithExclusive runs fn on the contents of c inside its own critical section
// and returns fn's result.
func WithExclusive[T, R any](c *Cell[T], fn func(*T) R) (r R) {
	Critical(func(cs CS) {
		if p := c.Borrow(cs); p != nil {
			r = fn(p)
		}
	})
	return r
}
