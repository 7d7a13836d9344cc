package state

import "sync"

// Slot holds at most one value. Once filled it is never replaced.
type Slot[T any] struct {
	mu     sync.Mutex
	value  T
	filled bool
}

// LoadOrCreate returns the stored value, or runs create and stores its result if the
// slot is empty. The lock is held while create runs so at most one value is ever
// created. A failed create leaves the slot empty.
//
// create must not re-enter the same slot.
func (s *Slot[T]) LoadOrCreate(create func() (T, error)) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filled {
		return s.value, false, nil
	}

	value, err := create()
	if err != nil {
		var zero T
		return zero, false, err
	}

	s.value = value
	s.filled = true
	return value, true, nil
}

// Load returns the stored value and whether the slot is filled
func (s *Slot[T]) Load() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.filled
}
