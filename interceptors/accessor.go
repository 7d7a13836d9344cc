package interceptors

import (
	"fmt"
	"sync"

	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/internal/state"
)

// Accessor is the get/set capability of a field
type Accessor[T any] interface {
	Get() T
	Set(value T)
}

// Delegate is an accessor that forwards to an inner accessor
type Delegate[T any] interface {
	Accessor[T]
	Inner() Accessor[T]
}

// AccessorInterceptor wraps the accessor pair of a field
type AccessorInterceptor[T any] interface {
	// Wrap returns a node that delegates to inner
	Wrap(field string, inner Accessor[T]) Delegate[T]

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// AccessorChain is the composed accessor pair of one field.
//
// Every interceptor wraps the node built before it and always calls through to
// it, so no interceptor can shadow the effect of another. Gets and sets on one
// field are serialized; different fields are independent.
type AccessorChain[T any] struct {
	mu    sync.Mutex
	field string
	raw   *state.Cell[T]
	top   Accessor[T]
	names []string
}

// NewAccessorChain builds the delegation chain for field, innermost first.
// It fails with an InvalidAccessorStateError if the chain does not end at the
// field's raw storage.
//
// initial is written straight to the raw storage: it is not transformed and
// produces no transition. Only writes through Set run the interceptors.
func NewAccessorChain[T any](field string, initial T, interceptors ...AccessorInterceptor[T]) (*AccessorChain[T], error) {
	raw := state.NewCell(initial)

	var top Accessor[T] = raw
	names := make([]string, 0, len(interceptors))
	for _, interceptor := range interceptors {
		node := interceptor.Wrap(field, top)
		if node == nil {
			return nil, &contracts.InvalidAccessorStateError{
				Field:  field,
				Reason: fmt.Sprintf("%s returned no accessor", interceptor.Name()),
			}
		}
		top = node
		names = append(names, interceptor.Name())
	}

	if err := validateDelegation(field, raw, top, len(interceptors)); err != nil {
		return nil, err
	}

	return &AccessorChain[T]{
		field: field,
		raw:   raw,
		top:   top,
		names: names,
	}, nil
}

// validateDelegation walks the chain from the outermost node and requires it to
// reach raw within depth steps
func validateDelegation[T any](field string, raw *state.Cell[T], top Accessor[T], depth int) error {
	current := top
	for step := 0; step <= depth; step++ {
		if current == nil {
			return &contracts.InvalidAccessorStateError{Field: field, Reason: "delegation chain is broken"}
		}

		if cell, ok := current.(*state.Cell[T]); ok {
			if cell == raw {
				return nil
			}
			return &contracts.InvalidAccessorStateError{Field: field, Reason: "delegation chain ends at foreign storage"}
		}

		delegate, ok := current.(Delegate[T])
		if !ok {
			return &contracts.InvalidAccessorStateError{
				Field:  field,
				Reason: fmt.Sprintf("accessor %T does not expose its inner accessor", current),
			}
		}
		current = delegate.Inner()
	}

	return &contracts.InvalidAccessorStateError{Field: field, Reason: "delegation chain does not terminate at raw storage"}
}

// Get reads the field through the whole chain
func (c *AccessorChain[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.top.Get()
}

// Set writes the field through the whole chain
func (c *AccessorChain[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.top.Set(value)
}

// Stored returns the raw stored value, bypassing every interceptor
func (c *AccessorChain[T]) Stored() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw.Get()
}

// Getter returns the composed getter
func (c *AccessorChain[T]) Getter() func() T {
	return c.Get
}

// Setter returns the composed setter
func (c *AccessorChain[T]) Setter() func(T) {
	return c.Set
}

// Field returns the field name
func (c *AccessorChain[T]) Field() string {
	return c.field
}

// Names returns the interceptor names, innermost first
func (c *AccessorChain[T]) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}
