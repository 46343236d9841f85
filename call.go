package stunt

import "sync"

type (
	// MethodCall represents a single recorded invocation. It is immutable once
	// recorded.
	MethodCall struct {
		Method string
		Args   []any
		// Seq is a monotonic counter scoped to the recorder, used to order
		// calls across methods.
		Seq uint64
	}

	// CallRecorder keeps an append-only log of invocations, keyed by method
	// name. Each double owns its own recorder, never shared.
	CallRecorder struct {
		mu    sync.Mutex
		seq   uint64
		calls map[string][]MethodCall
	}
)

func NewCallRecorder() *CallRecorder {
	return &CallRecorder{
		calls: make(map[string][]MethodCall),
	}
}

func (r *CallRecorder) record(method string, args []any) MethodCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	call := MethodCall{Method: method, Args: args, Seq: r.seq}
	r.calls[method] = append(r.calls[method], call)

	return call
}

// CallsFor returns the calls recorded for the given method, in call order.
// The returned slice is a copy, never nil.
func (r *CallRecorder) CallsFor(method string) []MethodCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	recorded := r.calls[method]
	out := make([]MethodCall, len(recorded))
	copy(out, recorded)

	return out
}

// LastCall returns the most recent call recorded for the given method.
func (r *CallRecorder) LastCall(method string) (MethodCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recorded := r.calls[method]
	if len(recorded) == 0 {
		return MethodCall{}, false
	}

	return recorded[len(recorded)-1], true
}

// Count returns the number of calls recorded for the given method.
func (r *CallRecorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls[method])
}

// WasCalled reports whether at least one call was recorded for the given method.
func (r *CallRecorder) WasCalled(method string) bool {
	return r.Count(method) > 0
}

// Reset clears every recorded call for this recorder only.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq = 0
	r.calls = make(map[string][]MethodCall)
}
