package inject

import (
	"fmt"
	"strings"
)

type (
	// ServiceNotRegisteredError is returned when a requested or transitively
	// depended-on name has no recipe. It surfaces at resolution time,
	// registration never validates dependency names.
	ServiceNotRegisteredError struct {
		Name string
	}

	// CircularDependencyError is returned when constructor recipes depend on
	// each other in a cycle. Cycle holds the names along the cycle, first and
	// last entries identical.
	CircularDependencyError struct {
		Cycle []string
	}
)

func (e *ServiceNotRegisteredError) Error() string {
	return fmt.Sprintf("no service registered under name %q", e.Name)
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}
