package inject

// tracker follows the chain of names currently being resolved, to detect
// dependency cycles among constructor recipes. One tracker lives for the
// duration of one root Resolve call.
type tracker struct {
	visited map[string]struct{}
	stack   []string
}

func newTracker() *tracker {
	return &tracker{
		visited: make(map[string]struct{}),
	}
}

func (t *tracker) push(name string) *CircularDependencyError {
	if _, seen := t.visited[name]; seen {
		cycle := make([]string, 0, len(t.stack)+1)
		started := false
		for _, entry := range t.stack {
			if entry == name {
				started = true
			}
			if started {
				cycle = append(cycle, entry)
			}
		}
		cycle = append(cycle, name)

		return &CircularDependencyError{Cycle: cycle}
	}

	t.visited[name] = struct{}{}
	t.stack = append(t.stack, name)

	return nil
}

func (t *tracker) pop() {
	if len(t.stack) == 0 {
		panic("inject: tracker pop from empty stack")
	}
	name := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	delete(t.visited, name)
}
