package stunt

import (
	"sync"

	"github.com/bvaillant/stunt/match"
	"github.com/bvaillant/stunt/option"
)

type (
	// Expectation is a declared constraint on how a method should be called,
	// optionally carrying the outcome the mock answers with.
	Expectation struct {
		method   string
		times    *int
		minTimes *int
		maxTimes *int
		args     []match.Matcher
		outcome  Outcome
	}

	// ExpectationSet holds at most one expectation per method, evaluated in
	// first-registration order.
	ExpectationSet struct {
		mu       sync.Mutex
		order    []*Expectation
		byMethod map[string]*Expectation
	}
)

// Times expects the method to be called exactly n times. Takes precedence over
// AtLeast and AtMost when both are declared.
func Times(n int) option.Option[Expectation] {
	return func(e *Expectation) {
		e.times = &n
	}
}

// AtLeast expects the method to be called at least n times.
func AtLeast(n int) option.Option[Expectation] {
	return func(e *Expectation) {
		e.minTimes = &n
	}
}

// AtMost expects the method to be called at most n times.
func AtMost(n int) option.Option[Expectation] {
	return func(e *Expectation) {
		e.maxTimes = &n
	}
}

// WithArgs expects the most recent call to carry the given arguments.
// Plain values are compared structurally, match.Matcher values match directly.
func WithArgs(args ...any) option.Option[Expectation] {
	matchers := make([]match.Matcher, len(args))
	for i, arg := range args {
		if m, ok := arg.(match.Matcher); ok {
			matchers[i] = m
		} else {
			matchers[i] = match.Eq(arg)
		}
	}
	return func(e *Expectation) {
		e.args = matchers
	}
}

// Returning makes the mock answer matching calls with the given return values.
func Returning(values ...any) option.Option[Expectation] {
	return func(e *Expectation) {
		e.outcome = Returns(values...)
	}
}

// Failing makes the mock answer matching calls by surfacing the given error.
func Failing(err error) option.Option[Expectation] {
	return func(e *Expectation) {
		e.outcome = Fails(err)
	}
}

func NewExpectationSet() *ExpectationSet {
	return &ExpectationSet{
		byMethod: make(map[string]*Expectation),
	}
}

// upsert merges the given options into the expectation registered for method,
// creating it on first use. Later options overwrite only the fields they set,
// so count bounds and outcomes declared in separate Expect calls accumulate.
func (s *ExpectationSet) upsert(method string, opts ...option.Option[Expectation]) *Expectation {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, found := s.byMethod[method]
	if !found {
		exp = &Expectation{method: method}
		s.byMethod[method] = exp
		s.order = append(s.order, exp)
	}
	option.Apply(exp, opts...)

	return exp
}

func (s *ExpectationSet) forMethod(method string) (*Expectation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, found := s.byMethod[method]

	return exp, found
}

// all returns the expectations in first-registration order.
func (s *ExpectationSet) all() []*Expectation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Expectation, len(s.order))
	copy(out, s.order)

	return out
}
