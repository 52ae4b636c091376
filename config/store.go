package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the current value of a config struct. Reads never block;
// Swap publishes a new value and then runs the change listeners.
type Store[T any] struct {
	value atomic.Pointer[T]

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(old, cur *T)
}

// NewStore creates a config store with the given initial value.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{listeners: make(map[int]func(old, cur *T))}
	s.value.Store(initial)
	return s
}

// Get returns the current value. Callers must not modify it.
func (s *Store[T]) Get() *T {
	return s.value.Load()
}

// Swap replaces the value and returns the previous one.
func (s *Store[T]) Swap(cur *T) *T {
	old := s.value.Swap(cur)

	s.mu.Lock()
	fns := make([]func(old, cur *T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(old, cur)
	}
	return old
}

// OnChange registers fn to run after every Swap. The returned function
// removes it.
func (s *Store[T]) OnChange(fn func(old, cur *T)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
