package state

// Cell is raw field storage. It has no lock of its own; the field binding
// serializes access to the whole delegation chain.
type Cell[T any] struct {
	value T
}

// NewCell creates a cell holding initial
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the stored value
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the stored value
func (c *Cell[T]) Set(value T) {
	c.value = value
}
