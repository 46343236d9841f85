package stunt

import "sync"

type (
	outcomeKind int

	// Outcome is a canned answer for one method: either a return tuple or an
	// error the intercepted method will surface.
	Outcome struct {
		kind   outcomeKind
		values []any
		err    error
	}

	// ResponseTable stores at most one active outcome per method. Setting a
	// new outcome for a method replaces the previous one.
	ResponseTable struct {
		mu       sync.Mutex
		outcomes map[string]Outcome
	}
)

const (
	outcomeUnset outcomeKind = iota
	outcomeReturns
	outcomeFails
)

// Returns builds an outcome yielding the given return values.
func Returns(values ...any) Outcome {
	return Outcome{kind: outcomeReturns, values: values}
}

// Fails builds an outcome surfacing the given error. The error object is
// propagated as-is, preserving its identity for errors.Is checks in the unit
// under test.
func Fails(err error) Outcome {
	return Outcome{kind: outcomeFails, err: err}
}

func (o Outcome) isSet() bool {
	return o.kind != outcomeUnset
}

func NewResponseTable() *ResponseTable {
	return &ResponseTable{
		outcomes: make(map[string]Outcome),
	}
}

func (t *ResponseTable) set(method string, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.outcomes[method] = outcome
}

func (t *ResponseTable) lookup(method string) (Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	outcome, found := t.outcomes[method]

	return outcome, found
}

func (t *ResponseTable) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.outcomes = make(map[string]Outcome)
}
