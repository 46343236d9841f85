package stunt

import "sync"

// FakeStore is a miniature in-memory keyed store backing fake collaborators.
// Unlike canned outcomes, a fake's answers come from this real state, so tests
// validate behavior instead of inspecting calls. The test-only surface
// (Seed, Reset, All) lives next to the lookup methods a fake implementation
// delegates to.
type FakeStore[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]V
}

// NewFakeStore builds an empty store, optionally pre-populated with seed data.
func NewFakeStore[K comparable, V any](seed ...map[K]V) *FakeStore[K, V] {
	s := &FakeStore[K, V]{
		items: make(map[K]V),
	}
	for _, batch := range seed {
		s.Seed(batch)
	}
	return s
}

// Get returns the value stored under key.
func (s *FakeStore[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.items[key]

	return value, found
}

// Put stores value under key, replacing any previous value.
func (s *FakeStore[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
}

// Delete removes the value stored under key, reporting whether it existed.
func (s *FakeStore[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found := s.items[key]
	delete(s.items, key)

	return found
}

// Len returns the number of stored entries.
func (s *FakeStore[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Seed merges the given entries into the store. Test-only mutator.
func (s *FakeStore[K, V]) Seed(items map[K]V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range items {
		s.items[key] = value
	}
}

// All returns a copy of every stored entry. Test-only accessor.
func (s *FakeStore[K, V]) All() map[K]V {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[K]V, len(s.items))
	for key, value := range s.items {
		out[key] = value
	}

	return out
}

// Reset drops every stored entry.
func (s *FakeStore[K, V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[K]V)
}
