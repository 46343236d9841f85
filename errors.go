package stunt

import (
	"fmt"
	"strings"
)

type (
	// UnexpectedCallError signals that a collaborator which must not be
	// exercised by the test was invoked. It is raised as a panic, fatal to the
	// calling test.
	UnexpectedCallError struct {
		Double string
		Method string
		Args   []any
	}

	// ExpectationNotMetError is returned by Verify when a recorded call
	// history violates a declared expectation.
	ExpectationNotMetError struct {
		Method   string
		Expected string
		Actual   string
	}
)

func (e *UnexpectedCallError) Error() string {
	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		args[i] = fmt.Sprintf("%#v", arg)
	}
	return fmt.Sprintf("unexpected call to %s.%s(%s)", e.Double, e.Method, strings.Join(args, ", "))
}

func (e *ExpectationNotMetError) Error() string {
	return fmt.Sprintf("expectation not met for %s: expected %s, got %s", e.Method, e.Expected, e.Actual)
}
