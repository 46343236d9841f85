package stunt

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/bvaillant/stunt/option"
	"github.com/rs/zerolog"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type (
	// Kind discriminates the call-answering policy of a Double.
	Kind int

	// TestingT is the subset of testing.TB the package reports failures
	// through. Compatible with *testing.T and *testing.B.
	TestingT interface {
		Helper()
		Fatalf(format string, args ...any)
	}

	// Options holds the construction options common to all double kinds.
	Options struct {
		name   string
		logger zerolog.Logger
	}

	// Double is the engine behind every test double: it records intercepted
	// calls, answers them according to its kind, and supports verification
	// for mocks. Typed adapters (hand-written or produced by stuntgen)
	// implement the target interface and delegate each method to Invoke.
	Double struct {
		kind   Kind
		target reflect.Type
		name   string
		logger zerolog.Logger

		recorder     *CallRecorder
		responses    *ResponseTable
		expectations *ExpectationSet

		implsMu sync.Mutex
		impls   map[string]reflect.Value
	}

	// stubbing is the fluent handle returned by On, scoping a canned outcome
	// to one method.
	stubbing struct {
		double *Double
		method reflect.Method
	}
)

const (
	DummyKind Kind = iota
	StubKind
	SpyKind
	MockKind
	FakeKind
)

func (k Kind) String() string {
	switch k {
	case DummyKind:
		return "dummy"
	case StubKind:
		return "stub"
	case SpyKind:
		return "spy"
	case MockKind:
		return "mock"
	case FakeKind:
		return "fake"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Named overrides the name used in failure messages and traces.
// Defaults to the target interface name.
func Named(name string) option.Option[Options] {
	return func(opts *Options) {
		opts.name = name
	}
}

// WithTrace enables debug logging of every intercepted call.
func WithTrace(logger zerolog.Logger) option.Option[Options] {
	return func(opts *Options) {
		opts.logger = logger
	}
}

// TypeOf returns the reflect.Type of I, working for interface types as well.
func TypeOf[I any]() reflect.Type {
	var i I
	t := reflect.TypeOf(i)
	if t == nil {
		t = reflect.TypeOf((*I)(nil)).Elem()
	}
	return t
}

// NewDummy builds a double whose every invocation is a test failure, for
// collaborators that must not be exercised. Calls are still recorded for
// diagnostics.
func NewDummy[I any](opts ...option.Option[Options]) *Double {
	return newDouble(TypeOf[I](), DummyKind, opts)
}

// NewStub builds a double answering calls from canned outcomes configured via
// On, falling back to zero values. No verification surface.
func NewStub[I any](opts ...option.Option[Options]) *Double {
	return newDouble(TypeOf[I](), StubKind, opts)
}

// NewSpy builds a stub that additionally records every call for post-hoc
// assertions through CallsFor, WasCalled and CallCount.
func NewSpy[I any](opts ...option.Option[Options]) *Double {
	return newDouble(TypeOf[I](), SpyKind, opts)
}

// NewMock builds a spy that additionally holds expectations declared via
// Expect and self-verifies via Verify.
func NewMock[I any](opts ...option.Option[Options]) *Double {
	return newDouble(TypeOf[I](), MockKind, opts)
}

// NewFake builds a double delegating calls to real miniature implementations
// installed via Implement.
func NewFake[I any](opts ...option.Option[Options]) *Double {
	return newDouble(TypeOf[I](), FakeKind, opts)
}

func newDouble(target reflect.Type, kind Kind, opts []option.Option[Options]) *Double {
	if target.Kind() != reflect.Interface {
		panic(fmt.Sprintf("stunt: cannot build a %s for %s, target must be an interface type", kind, target))
	}

	options := option.Build(
		&Options{
			name:   target.Name(),
			logger: zerolog.Nop(),
		},
		opts...,
	)
	if options.name == "" {
		options.name = target.String()
	}

	return &Double{
		kind:   kind,
		target: target,
		name:   options.name,
		logger: options.logger.With().Str("double", options.name).Str("kind", kind.String()).Logger(),

		recorder:     NewCallRecorder(),
		responses:    NewResponseTable(),
		expectations: NewExpectationSet(),
		impls:        make(map[string]reflect.Value),
	}
}

// Kind returns the call-answering policy of the double.
func (d *Double) Kind() Kind {
	return d.kind
}

// Name returns the name used in failure messages.
func (d *Double) Name() string {
	return d.name
}

// Target returns the doubled interface type.
func (d *Double) Target() reflect.Type {
	return d.target
}

func (d *Double) String() string {
	return fmt.Sprintf("%s(%s)", d.kind, d.target)
}

// On opens the canned-outcome configuration for one method of a stub or spy.
// Mocks configure outcomes through Expect instead.
func (d *Double) On(method string) stubbing {
	if d.kind != StubKind && d.kind != SpyKind {
		panic(fmt.Sprintf("stunt: On is only available on stubs and spies, %s is a %s", d.name, d.kind))
	}
	return stubbing{double: d, method: d.mustMethod(method)}
}

// Return configures the method to answer with the given values. Setting a new
// outcome replaces the previous one.
func (s stubbing) Return(values ...any) *Double {
	s.double.checkReturnArity(s.method, values)
	s.double.responses.set(s.method.Name, Returns(values...))
	return s.double
}

// Fail configures the method to surface the given error: it is placed in the
// method's error return if it has one, otherwise the invocation panics with it.
func (s stubbing) Fail(err error) *Double {
	s.double.responses.set(s.method.Name, Fails(err))
	return s.double
}

// Expect registers or completes the expectation for a method of a mock.
// Calling Expect twice for the same method merges the configurations: options
// given later overwrite only the aspects they set, so an outcome declared
// first and a count bound declared second both apply.
func (d *Double) Expect(method string, opts ...option.Option[Expectation]) *Double {
	if d.kind != MockKind {
		panic(fmt.Sprintf("stunt: Expect is only available on mocks, %s is a %s", d.name, d.kind))
	}
	m := d.mustMethod(method)
	exp := d.expectations.upsert(method, opts...)
	if exp.outcome.kind == outcomeReturns {
		d.checkReturnArity(m, exp.outcome.values)
	}
	return d
}

// Verify checks every declared expectation against the recorded calls, in
// declaration order, and returns the first violation as an
// *ExpectationNotMetError. Verifying a mock without expectations succeeds.
func (d *Double) Verify() error {
	return verifyExpectations(d.expectations, d.recorder)
}

// VerifyAll is like Verify but reports every violated expectation at once,
// joined into a single error.
func (d *Double) VerifyAll() error {
	return verifyAllExpectations(d.expectations, d.recorder)
}

// MustVerify fails the test immediately when Verify reports a violation.
func (d *Double) MustVerify(t TestingT) {
	t.Helper()
	if err := d.Verify(); err != nil {
		t.Fatalf("%s: %v", d.name, err)
	}
}

// Implement installs a real implementation for one method of a fake. The
// implementation must have exactly the method's signature.
func (d *Double) Implement(method string, impl any) *Double {
	if d.kind != FakeKind {
		panic(fmt.Sprintf("stunt: Implement is only available on fakes, %s is a %s", d.name, d.kind))
	}
	m := d.mustMethod(method)
	v := reflect.ValueOf(impl)
	if v.Kind() != reflect.Func || v.Type() != m.Type {
		panic(fmt.Sprintf("stunt: implementation for %s.%s must have signature %s, got %T", d.name, method, m.Type, impl))
	}

	d.implsMu.Lock()
	defer d.implsMu.Unlock()
	d.impls[method] = v

	return d
}

// CallsFor returns the recorded calls for the given method, in call order.
func (d *Double) CallsFor(method string) []MethodCall {
	return d.recorder.CallsFor(method)
}

// LastCall returns the most recent recorded call for the given method.
func (d *Double) LastCall(method string) (MethodCall, bool) {
	return d.recorder.LastCall(method)
}

// CallCount returns the number of recorded calls for the given method.
func (d *Double) CallCount(method string) int {
	return d.recorder.Count(method)
}

// WasCalled reports whether the given method was invoked at least once.
func (d *Double) WasCalled(method string) bool {
	return d.recorder.WasCalled(method)
}

// Reset clears the recorded calls of this double only. Configured outcomes
// and expectations are kept.
func (d *Double) Reset() {
	d.recorder.Reset()
}

// Invoke is the interception entry point called by typed adapters. It records
// the call where the kind requires it, answers it according to the kind's
// policy, and returns the method's return tuple as a flat slice.
func (d *Double) Invoke(method string, args ...any) []any {
	m, found := d.target.MethodByName(method)
	if !found {
		panic(&UnexpectedCallError{Double: d.name, Method: method, Args: args})
	}

	d.logger.Debug().Str("method", method).Int("argc", len(args)).Msg("intercepted call")

	switch d.kind {
	case DummyKind:
		d.recorder.record(method, args)
		panic(&UnexpectedCallError{Double: d.name, Method: method, Args: args})
	case StubKind:
		outcome, _ := d.responses.lookup(method)
		return d.answer(m, outcome)
	case SpyKind:
		d.recorder.record(method, args)
		outcome, _ := d.responses.lookup(method)
		return d.answer(m, outcome)
	case MockKind:
		d.recorder.record(method, args)
		var outcome Outcome
		if exp, declared := d.expectations.forMethod(method); declared {
			outcome = exp.outcome
		}
		return d.answer(m, outcome)
	case FakeKind:
		return d.delegate(m, args)
	default:
		panic(fmt.Sprintf("stunt: unknown double kind %d", int(d.kind)))
	}
}

func (d *Double) answer(m reflect.Method, outcome Outcome) []any {
	switch outcome.kind {
	case outcomeReturns:
		return outcome.values
	case outcomeFails:
		return d.failWith(m, outcome.err)
	default:
		return zeroTuple(m)
	}
}

// failWith yields the method's zero return tuple with err placed in the last
// error-typed return. The error object is surfaced as-is so the unit under
// test can match it with errors.Is. A method without an error return panics
// with the configured error instead.
func (d *Double) failWith(m reflect.Method, err error) []any {
	out := zeroTuple(m)
	for i := m.Type.NumOut() - 1; i >= 0; i-- {
		if m.Type.Out(i) == errorType {
			out[i] = err
			return out
		}
	}
	panic(err)
}

func (d *Double) delegate(m reflect.Method, args []any) []any {
	d.implsMu.Lock()
	impl, installed := d.impls[m.Name]
	d.implsMu.Unlock()
	if !installed {
		panic(&UnexpectedCallError{Double: d.name, Method: m.Name, Args: args})
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(m.Type.In(i))
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}

	results := impl.Call(in)
	out := make([]any, len(results))
	for i, res := range results {
		out[i] = res.Interface()
	}

	return out
}

// Describe renders the configured and observed state of the double, for
// debugging failing tests.
func (d *Double) Describe() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n", d))

	methods := make([]string, 0, d.target.NumMethod())
	for i := 0; i < d.target.NumMethod(); i++ {
		methods = append(methods, d.target.Method(i).Name)
	}
	sort.Strings(methods)

	for _, name := range methods {
		b.WriteString(fmt.Sprintf("\t- %s: %d call(s)\n", name, d.recorder.Count(name)))
		for _, call := range d.recorder.CallsFor(name) {
			b.WriteString(fmt.Sprintf("\t\t#%d %s\n", call.Seq, formatValues(call.Args)))
		}
	}

	return b.String()
}

func (d *Double) mustMethod(method string) reflect.Method {
	m, found := d.target.MethodByName(method)
	if !found {
		panic(fmt.Sprintf("stunt: %s has no method %q", d.target, method))
	}
	return m
}

func (d *Double) checkReturnArity(m reflect.Method, values []any) {
	if len(values) != m.Type.NumOut() {
		panic(fmt.Sprintf(
			"stunt: %s.%s returns %d value(s), %d canned value(s) configured",
			d.name, m.Name, m.Type.NumOut(), len(values),
		))
	}
}

func zeroTuple(m reflect.Method) []any {
	out := make([]any, m.Type.NumOut())
	for i := range out {
		out[i] = reflect.Zero(m.Type.Out(i)).Interface()
	}
	return out
}
