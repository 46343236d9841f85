package inject

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Runnable represents a service that can be run with a context.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunAll resolves the named services and runs them concurrently, waiting for
// all of them to finish. Every named service must implement Runnable.
//
// This call is blocking and returns the first error from any of the services;
// the shared context is then cancelled for the others.
func RunAll(parentCtx context.Context, registry *Registry, names ...string) error {
	runnables := make([]Runnable, len(names))
	for i, name := range names {
		instance, err := registry.Resolve(name)
		if err != nil {
			return fmt.Errorf("failed to resolve runnable service %q:\n\t%w", name, err)
		}
		runnable, ok := instance.(Runnable)
		if !ok {
			return fmt.Errorf("service %q is a %T and does not implement Runnable", name, instance)
		}
		runnables[i] = runnable
	}

	group, ctx := errgroup.WithContext(parentCtx)
	for _, runnable := range runnables {
		runnable := runnable
		group.Go(func() error {
			return runnable.Run(ctx)
		})
	}

	return group.Wait()
}
