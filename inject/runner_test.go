package inject

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	countingRunnable struct {
		runs atomic.Int32
	}

	failingRunnable struct {
		err error
	}
)

func (r *countingRunnable) Run(ctx context.Context) error {
	r.runs.Add(1)
	<-ctx.Done()
	return nil
}

func (r *failingRunnable) Run(context.Context) error {
	return r.err
}

func TestRunAll(t *testing.T) {
	t.Run("it should run every named service and stop them on cancellation", func(t *testing.T) {
		// GIVEN
		first := &countingRunnable{}
		second := &countingRunnable{}
		registry := New().
			RegisterSingleton("first", first).
			RegisterSingleton("second", second)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// WHEN
		err := RunAll(ctx, registry, "first", "second")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, int32(1), first.runs.Load())
		assert.Equal(t, int32(1), second.runs.Load())
	})

	t.Run("it should propagate the first service error and cancel the others", func(t *testing.T) {
		// GIVEN
		boom := errors.New("listener crashed")
		blocked := &countingRunnable{}
		registry := New().
			RegisterSingleton("crashing", &failingRunnable{err: boom}).
			RegisterSingleton("blocked", blocked)

		// WHEN
		err := RunAll(context.Background(), registry, "crashing", "blocked")

		// THEN
		assert.ErrorIs(t, err, boom)
	})

	t.Run("it should fail before running anything when a name is not registered", func(t *testing.T) {
		// GIVEN
		runnable := &countingRunnable{}
		registry := New().RegisterSingleton("known", runnable)

		// WHEN
		err := RunAll(context.Background(), registry, "known", "missing")

		// THEN
		var notRegistered *ServiceNotRegisteredError
		require.ErrorAs(t, err, &notRegistered)
		assert.Zero(t, runnable.runs.Load())
	})

	t.Run("it should refuse services that do not implement Runnable", func(t *testing.T) {
		// GIVEN
		registry := New().RegisterSingleton("repo", &testRepository{})

		// WHEN
		err := RunAll(context.Background(), registry, "repo")

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Runnable")
	})
}
