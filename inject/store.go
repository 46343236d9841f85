package inject

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

type (
	// Closeable is implemented by services holding resources to release when
	// the registry closes.
	Closeable interface {
		Close() error
	}

	// Store caches resolved instances by name, preserving identity across
	// repeated resolutions.
	Store struct {
		inner sync.Map
	}
)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Put(name string, instance any) {
	s.inner.Store(name, instance)
}

func (s *Store) Get(name string) (any, bool) {
	return s.inner.Load(name)
}

func (s *Store) Delete(name string) {
	s.inner.Delete(name)
}

// Names returns the names of every cached instance, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0)
	s.inner.Range(func(name, _ any) bool {
		names = append(names, name.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Close closes every cached instance implementing Closeable and drops the
// cache. Close failures are collected, one per instance.
func (s *Store) Close() error {
	closeErrors := make([]error, 0)
	s.inner.Range(func(name, instance any) bool {
		if closeable, ok := instance.(Closeable); ok {
			if err := closeable.Close(); err != nil {
				closeErrors = append(
					closeErrors,
					fmt.Errorf("failed to close service %q:\n\t%w", name, err),
				)
			}
		}
		s.inner.Delete(name)
		return true
	})

	return errors.Join(closeErrors...)
}
