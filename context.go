package stunt

import (
	"errors"
	"sync"

	"github.com/bvaillant/stunt/option"
)

type (
	// TestContext scopes doubles to one test with an explicit lifecycle:
	// doubles created through the *For helpers are adopted by the context, and
	// Teardown verifies every adopted mock and resets every recorder. There is
	// no package-level state, each test creates its own context.
	TestContext struct {
		t TestingT

		mu       sync.Mutex
		doubles  []*Double
		tornDown bool
	}
)

// NewTestContext builds a context for one test. t may be nil when the caller
// prefers handling the Teardown error itself.
func NewTestContext(t TestingT) *TestContext {
	return &TestContext{t: t}
}

// DummyFor builds a Dummy adopted by the context.
func DummyFor[I any](ctx *TestContext, opts ...option.Option[Options]) *Double {
	return ctx.adopt(NewDummy[I](opts...))
}

// StubFor builds a Stub adopted by the context.
func StubFor[I any](ctx *TestContext, opts ...option.Option[Options]) *Double {
	return ctx.adopt(NewStub[I](opts...))
}

// SpyFor builds a Spy adopted by the context.
func SpyFor[I any](ctx *TestContext, opts ...option.Option[Options]) *Double {
	return ctx.adopt(NewSpy[I](opts...))
}

// MockFor builds a Mock adopted by the context; Teardown will verify it.
func MockFor[I any](ctx *TestContext, opts ...option.Option[Options]) *Double {
	return ctx.adopt(NewMock[I](opts...))
}

// FakeFor builds a Fake adopted by the context.
func FakeFor[I any](ctx *TestContext, opts ...option.Option[Options]) *Double {
	return ctx.adopt(NewFake[I](opts...))
}

func (c *TestContext) adopt(d *Double) *Double {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doubles = append(c.doubles, d)

	return d
}

// Doubles returns the doubles adopted by this context, in creation order.
func (c *TestContext) Doubles() []*Double {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Double, len(c.doubles))
	copy(out, c.doubles)

	return out
}

// Teardown verifies every adopted mock and resets every adopted double.
// Violations from all mocks are joined into the returned error. When the
// context was built with a TestingT, a violation also fails the test.
// Teardown is idempotent, later calls are no-ops.
func (c *TestContext) Teardown() error {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return nil
	}
	c.tornDown = true
	doubles := make([]*Double, len(c.doubles))
	copy(doubles, c.doubles)
	c.mu.Unlock()

	violations := make([]error, 0)
	for _, d := range doubles {
		if d.Kind() == MockKind {
			if err := d.VerifyAll(); err != nil {
				violations = append(violations, err)
			}
		}
		d.Reset()
	}

	err := errors.Join(violations...)
	if err != nil && c.t != nil {
		c.t.Helper()
		c.t.Fatalf("teardown: %v", err)
	}

	return err
}
