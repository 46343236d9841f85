package inject

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Test types for service resolution
type (
	testRepository struct {
		dsn    string
		closed bool
	}

	testService struct {
		repo *testRepository
	}

	testController struct {
		service *testService
		repo    *testRepository
	}
)

func (r *testRepository) Close() error {
	r.closed = true
	return nil
}

func newTestRepository() *testRepository {
	return &testRepository{dsn: "mem://test"}
}

func newTestService(repo *testRepository) *testService {
	return &testService{repo: repo}
}

func newTestController(service *testService, repo *testRepository) (*testController, error) {
	return &testController{service: service, repo: repo}, nil
}

func TestResolve(t *testing.T) {
	t.Run("it should return the same instance on repeated resolution, for every recipe kind", func(t *testing.T) {
		// GIVEN
		prebuilt := &testRepository{dsn: "prebuilt"}
		registry := New().
			Register("ctor", newTestRepository).
			RegisterFactory("factory", func() (any, error) { return newTestRepository(), nil }).
			RegisterSingleton("singleton", prebuilt)

		for _, name := range []string{"ctor", "factory", "singleton"} {
			// WHEN
			first, err := registry.Resolve(name)
			require.NoError(t, err)
			second, err := registry.Resolve(name)
			require.NoError(t, err)

			// THEN
			assert.Samef(t, first, second, "expected %q to resolve to a stable singleton", name)
		}
	})

	t.Run("it should hand out the pre-built instance for singleton recipes", func(t *testing.T) {
		// GIVEN
		prebuilt := &testRepository{dsn: "prebuilt"}
		registry := New().RegisterSingleton("repo", prebuilt)

		// WHEN
		resolved, err := Resolve[*testRepository](registry, "repo")

		// THEN
		require.NoError(t, err)
		assert.Same(t, prebuilt, resolved)
	})

	t.Run("it should resolve dependencies depth-first, left-to-right", func(t *testing.T) {
		// GIVEN
		resolutionOrder := make([]string, 0)
		registry := New()
		registry.Register("controller", func(service *testService, repo *testRepository) *testController {
			resolutionOrder = append(resolutionOrder, "controller")
			return &testController{service: service, repo: repo}
		}, "service", "repo")
		registry.Register("service", func(repo *testRepository) *testService {
			resolutionOrder = append(resolutionOrder, "service")
			return newTestService(repo)
		}, "repo")
		registry.Register("repo", func() *testRepository {
			resolutionOrder = append(resolutionOrder, "repo")
			return newTestRepository()
		})

		// WHEN
		controller, err := Resolve[*testController](registry, "controller")

		// THEN both dependencies are built before the constructor runs
		require.NoError(t, err)
		assert.Equal(t, []string{"repo", "service", "controller"}, resolutionOrder)
		assert.Same(t, controller.repo, controller.service.repo)
	})

	t.Run("it should fail with ServiceNotRegisteredError for unknown names", func(t *testing.T) {
		// GIVEN
		registry := New()

		// WHEN
		_, err := registry.Resolve("missing")

		// THEN
		var notRegistered *ServiceNotRegisteredError
		require.ErrorAs(t, err, &notRegistered)
		assert.Equal(t, "missing", notRegistered.Name)
	})

	t.Run("it should surface missing transitive dependencies without caching anything", func(t *testing.T) {
		// GIVEN
		registry := New().Register("service", newTestService, "repo")

		// WHEN
		_, err := registry.Resolve("service")

		// THEN
		var notRegistered *ServiceNotRegisteredError
		require.ErrorAs(t, err, &notRegistered)
		assert.Equal(t, "repo", notRegistered.Name)
		assert.Empty(t, registry.store.Names())
	})

	t.Run("it should retry a failed build on the next resolution", func(t *testing.T) {
		// GIVEN a constructor failing on first invocation only
		var attempts atomic.Int32
		registry := New().Register("flaky", func() (*testRepository, error) {
			if attempts.Add(1) == 1 {
				return nil, errors.New("transient failure")
			}
			return newTestRepository(), nil
		})

		// WHEN
		_, firstErr := registry.Resolve("flaky")
		resolved, secondErr := Resolve[*testRepository](registry, "flaky")

		// THEN
		require.Error(t, firstErr)
		assert.Contains(t, firstErr.Error(), "transient failure")
		require.NoError(t, secondErr)
		assert.NotNil(t, resolved)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("it should recover a panicking constructor into an error", func(t *testing.T) {
		// GIVEN
		registry := New().Register("panicky", func() *testRepository {
			panic("boom")
		})

		// WHEN
		_, err := registry.Resolve("panicky")

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("it should detect dependency cycles and name the cycle path", func(t *testing.T) {
		// GIVEN a -> b -> a
		registry := New().
			Register("a", func(b *testService) *testRepository { return newTestRepository() }, "b").
			Register("b", func(a *testRepository) *testService { return &testService{} }, "a")

		// WHEN
		_, err := registry.Resolve("a")

		// THEN
		var cycle *CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "b", "a"}, cycle.Cycle)
	})

	t.Run("it should build a shared dependency only once in a diamond graph", func(t *testing.T) {
		// GIVEN controller and service both depending on repo
		var built atomic.Int32
		registry := New().
			Register("repo", func() *testRepository {
				built.Add(1)
				return newTestRepository()
			}).
			Register("service", newTestService, "repo").
			Register("controller", newTestController, "service", "repo")

		// WHEN
		_, err := registry.Resolve("controller")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, int32(1), built.Load())
	})

	t.Run("it should build a name only once under concurrent resolution", func(t *testing.T) {
		// GIVEN
		var built atomic.Int32
		registry := New().Register("repo", func() *testRepository {
			built.Add(1)
			return newTestRepository()
		})

		// WHEN 16 goroutines race on the first resolution
		group := errgroup.Group{}
		for i := 0; i < 16; i++ {
			group.Go(func() error {
				_, err := registry.Resolve("repo")
				return err
			})
		}

		// THEN
		require.NoError(t, group.Wait())
		assert.Equal(t, int32(1), built.Load())
	})

	t.Run("it should fail when the resolved service has an unexpected type", func(t *testing.T) {
		// GIVEN
		registry := New().RegisterSingleton("repo", newTestRepository())

		// WHEN
		_, err := Resolve[*testService](registry, "repo")

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "repo")
	})
}

func TestRegistryOverride(t *testing.T) {
	t.Run("it should overwrite the recipe on re-registration (last write wins)", func(t *testing.T) {
		// GIVEN
		registry := New().RegisterSingleton("repo", &testRepository{dsn: "real"})

		// WHEN
		registry.RegisterSingleton("repo", &testRepository{dsn: "double"})

		// THEN
		resolved := MustResolve[*testRepository](registry, "repo")
		assert.Equal(t, "double", resolved.dsn)
	})

	t.Run("it should evict the cached instance when a name is overridden", func(t *testing.T) {
		// GIVEN an already resolved service
		registry := New().RegisterSingleton("repo", &testRepository{dsn: "real"})
		_ = registry.MustResolve("repo")

		// WHEN
		registry.RegisterSingleton("repo", &testRepository{dsn: "double"})

		// THEN
		resolved := MustResolve[*testRepository](registry, "repo")
		assert.Equal(t, "double", resolved.dsn)
	})

	t.Run("it should leave other registrations untouched by an override", func(t *testing.T) {
		// GIVEN
		registry := New().
			Register("repo", newTestRepository).
			Register("service", newTestService, "repo")
		service := MustResolve[*testService](registry, "service")

		// WHEN
		registry.RegisterSingleton("repo", &testRepository{dsn: "double"})

		// THEN the already resolved service keeps its identity
		assert.Same(t, service, MustResolve[*testService](registry, "service"))
	})

	t.Run("it should reject constructors with a mismatched dependency count", func(t *testing.T) {
		// GIVEN
		registry := New()

		// WHEN / THEN
		assert.Panics(t, func() {
			registry.Register("service", newTestService)
		})
	})

	t.Run("it should reject non-function constructors", func(t *testing.T) {
		// GIVEN
		registry := New()

		// WHEN / THEN
		assert.Panics(t, func() {
			registry.Register("service", 42)
		})
	})
}

func TestRegistryClose(t *testing.T) {
	t.Run("it should close every cached Closeable service", func(t *testing.T) {
		// GIVEN
		repo := &testRepository{}
		registry := New().
			RegisterSingleton("repo", repo).
			RegisterSingleton("service", &testService{})
		_ = registry.MustResolve("repo")
		_ = registry.MustResolve("service")

		// WHEN
		err := registry.Close()

		// THEN
		require.NoError(t, err)
		assert.True(t, repo.closed)
	})

	t.Run("it should not close services that were never resolved", func(t *testing.T) {
		// GIVEN
		repo := &testRepository{}
		registry := New().RegisterSingleton("repo", repo)

		// WHEN
		require.NoError(t, registry.Close())

		// THEN
		assert.False(t, repo.closed)
	})
}

func TestRegistryDescribe(t *testing.T) {
	t.Run("it should list recipes and cached services", func(t *testing.T) {
		// GIVEN
		registry := New().
			Register("service", newTestService, "repo").
			Register("repo", newTestRepository)
		_ = registry.MustResolve("service")

		// WHEN
		description := registry.Describe()

		// THEN
		assert.Contains(t, description, "constructor(service <- [repo])")
		assert.Contains(t, description, "constructor(repo <- [])")
		assert.Contains(t, description, "*inject.testService")
	})
}
