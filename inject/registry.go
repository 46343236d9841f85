// Package inject resolves graphs of named services with singleton caching.
//
// A Registry maps service names to recipes: a constructor with declared
// dependency names, a zero-argument factory, or a pre-built instance. Resolve
// builds a name on first use, depth-first through its dependencies, and caches
// the instance for the lifetime of the registry.
package inject

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bvaillant/stunt/option"
	"github.com/rs/zerolog"
)

type (
	// Options holds the construction options of a Registry.
	Options struct {
		logger zerolog.Logger
	}

	// Registry maps service names to construction recipes and resolves them.
	// Registration is a plain map write, re-registering a name overwrites the
	// previous recipe and evicts the cached instance, so tests can override
	// one service and leave the rest untouched.
	Registry struct {
		mu      sync.RWMutex
		recipes map[string]recipe

		store  *Store
		locks  *LockManager
		logger zerolog.Logger
	}
)

// WithTrace enables debug logging of every resolution, with timings.
func WithTrace(logger zerolog.Logger) option.Option[Options] {
	return func(opts *Options) {
		opts.logger = logger
	}
}

func New(opts ...option.Option[Options]) *Registry {
	options := option.Build(
		&Options{
			logger: zerolog.Nop(),
		},
		opts...,
	)

	return &Registry{
		recipes: make(map[string]recipe),
		store:   NewStore(),
		locks:   NewLockManager(),
		logger:  options.logger,
	}
}

// Register binds name to a constructor. ctor must be a function returning the
// instance, or the instance and an error; its parameters are resolved from
// deps, one name per parameter, in order. Dependency names are not validated
// here, a missing one surfaces at resolution time.
//
// Register panics when the constructor shape is invalid, which is a
// programming error at bootstrap.
func (r *Registry) Register(name string, ctor any, deps ...string) *Registry {
	rec, err := newConstructorRecipe(name, ctor, deps)
	if err != nil {
		panic(fmt.Sprintf("inject: %v", err))
	}
	return r.register(name, rec)
}

// RegisterFactory binds name to a zero-argument factory.
func (r *Registry) RegisterFactory(name string, factory func() (any, error)) *Registry {
	return r.register(name, &factoryRecipe{name: name, factory: factory})
}

// RegisterSingleton binds name to a pre-built instance.
func (r *Registry) RegisterSingleton(name string, instance any) *Registry {
	return r.register(name, &singletonRecipe{name: name, instance: instance})
}

func (r *Registry) register(name string, rec recipe) *Registry {
	r.mu.Lock()
	r.recipes[name] = rec
	r.mu.Unlock()

	// an override must take effect on the next resolution
	r.store.Delete(name)

	return r
}

// Resolve returns the instance registered under name, building and caching it
// on first use. Repeated calls return the same instance, for constructor and
// factory recipes as well.
func (r *Registry) Resolve(name string) (any, error) {
	return r.resolveTracked(name, newTracker())
}

// MustResolve is like Resolve but panics on failure.
func (r *Registry) MustResolve(name string) any {
	instance, err := r.Resolve(name)
	if err != nil {
		panic(fmt.Sprintf("inject: failed to resolve service %q:\n\t%v", name, err))
	}
	return instance
}

func (r *Registry) resolveTracked(name string, tr *tracker) (any, error) {
	if cached, found := r.store.Get(name); found {
		return cached, nil
	}

	if cycleErr := tr.push(name); cycleErr != nil {
		return nil, cycleErr
	}
	defer tr.pop()

	lock := r.locks.GetLockFor(name)
	lock.Lock()
	defer func() {
		lock.Unlock()
		r.locks.ReleaseLock(name)
	}()

	// the instance may have been built while we were waiting for the lock
	if cached, found := r.store.Get(name); found {
		return cached, nil
	}

	r.mu.RLock()
	rec, registered := r.recipes[name]
	r.mu.RUnlock()
	if !registered {
		return nil, &ServiceNotRegisteredError{Name: name}
	}

	start := time.Now()
	instance, err := rec.build(r, tr)
	if err != nil {
		// a failed build is not cached, the next Resolve retries from scratch
		return nil, fmt.Errorf("failed to build service %q using %s:\n\t%w", name, rec, err)
	}

	r.store.Put(name, instance)
	r.logger.Debug().
		Str("service", name).
		Dur("took", time.Since(start)).
		Msg("service resolved")

	return instance, nil
}

// Close closes every cached Closeable service and drops the cache.
func (r *Registry) Close() error {
	return r.store.Close()
}

// Describe renders the registered recipes and cached instances, for debugging
// bootstrap issues.
func (r *Registry) Describe() string {
	r.mu.RLock()
	names := make([]string, 0, len(r.recipes))
	for name := range r.recipes {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("* Recipes:\n")
	for _, name := range names {
		r.mu.RLock()
		rec := r.recipes[name]
		r.mu.RUnlock()
		b.WriteString(fmt.Sprintf("\t- %s\n", rec))
	}
	b.WriteString("* Cached services:\n")
	for _, name := range r.store.Names() {
		instance, _ := r.store.Get(name)
		b.WriteString(fmt.Sprintf("\t- %s: %T\n", name, instance))
	}
	return b.String()
}

// Resolve attempts to resolve the service registered under name as a T.
func Resolve[T any](registry *Registry, name string) (T, error) {
	var zero T

	instance, err := registry.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("service %q is a %T, not a %T", name, instance, zero)
	}

	return typed, nil
}

// MustResolve is like Resolve but panics on failure.
func MustResolve[T any](registry *Registry, name string) T {
	typed, err := Resolve[T](registry, name)
	if err != nil {
		panic(fmt.Sprintf("inject: %v", err))
	}
	return typed
}
