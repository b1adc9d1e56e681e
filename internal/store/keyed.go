// Package store holds process-lifetime session state keyed by session id.
package store

import "sync"

// Keyed 以会话ID为键保存状态，每个键有独立的互斥锁，保证同一会话同一时间只有一个写者。
type Keyed[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	newFn   func() T
}

type entry[T any] struct {
	mu    sync.Mutex
	value T
}

// NewKeyed returns an empty store; newFn builds the default record for a fresh key.
func NewKeyed[T any](newFn func() T) *Keyed[T] {
	return &Keyed[T]{
		entries: make(map[string]*entry[T]),
		newFn:   newFn,
	}
}

// GetOrCreate makes sure id has a record, initialising it with the default on
// first use. It reports whether this call created it.
func (s *Keyed[T]) GetOrCreate(id string) bool {
	_, created := s.getOrCreate(id)
	return created
}

func (s *Keyed[T]) getOrCreate(id string) (*entry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		return e, false
	}

	e := &entry[T]{value: s.newFn()}
	s.entries[id] = e
	return e, true
}

func (s *Keyed[T]) lookup(id string) (*entry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// Update runs fn with exclusive access to the record for id, creating it lazily.
func (s *Keyed[T]) Update(id string, fn func(*T)) {
	e, _ := s.getOrCreate(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.value)
}

// View runs fn under the record's lock without creating it.
// Returns false when id has never been written.
func (s *Keyed[T]) View(id string, fn func(*T)) bool {
	e, ok := s.lookup(id)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.value)
	return true
}

// Has reports whether id has a record.
func (s *Keyed[T]) Has(id string) bool {
	_, ok := s.lookup(id)
	return ok
}

// Len returns the number of known keys.
func (s *Keyed[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
