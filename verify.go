package stunt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bvaillant/stunt/match"
)

// verifyExpectations walks the expectations in first-registration order and
// returns the first violation found, or nil when every expectation holds.
// An empty set verifies successfully.
func verifyExpectations(set *ExpectationSet, recorder *CallRecorder) error {
	for _, exp := range set.all() {
		if err := checkExpectation(exp, recorder); err != nil {
			return err
		}
	}
	return nil
}

// verifyAllExpectations evaluates every expectation and aggregates all
// violations, for callers preferring a full report over fail-fast.
func verifyAllExpectations(set *ExpectationSet, recorder *CallRecorder) error {
	violations := make([]error, 0)
	for _, exp := range set.all() {
		if err := checkExpectation(exp, recorder); err != nil {
			violations = append(violations, err)
		}
	}
	return errors.Join(violations...)
}

func checkExpectation(exp *Expectation, recorder *CallRecorder) error {
	count := recorder.Count(exp.method)

	switch {
	case exp.times != nil:
		if count != *exp.times {
			return &ExpectationNotMetError{
				Method:   exp.method,
				Expected: fmt.Sprintf("%d call(s)", *exp.times),
				Actual:   fmt.Sprintf("%d call(s)", count),
			}
		}
	default:
		if exp.minTimes != nil && count < *exp.minTimes {
			return &ExpectationNotMetError{
				Method:   exp.method,
				Expected: fmt.Sprintf("at least %d call(s)", *exp.minTimes),
				Actual:   fmt.Sprintf("%d call(s)", count),
			}
		}
		if exp.maxTimes != nil && count > *exp.maxTimes {
			return &ExpectationNotMetError{
				Method:   exp.method,
				Expected: fmt.Sprintf("at most %d call(s)", *exp.maxTimes),
				Actual:   fmt.Sprintf("%d call(s)", count),
			}
		}
	}

	if exp.args != nil {
		if last, called := recorder.LastCall(exp.method); called {
			if err := checkArgs(exp, last); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkArgs(exp *Expectation, last MethodCall) error {
	if len(last.Args) != len(exp.args) {
		return &ExpectationNotMetError{
			Method:   exp.method,
			Expected: fmt.Sprintf("%d argument(s) %s", len(exp.args), formatMatchers(exp.args)),
			Actual:   fmt.Sprintf("%d argument(s) %s", len(last.Args), formatValues(last.Args)),
		}
	}

	for i, matcher := range exp.args {
		if ok, _ := match.Value(last.Args[i], matcher); !ok {
			return &ExpectationNotMetError{
				Method:   exp.method,
				Expected: fmt.Sprintf("argument %d matching %s in %s", i, describeMatcher(matcher), formatMatchers(exp.args)),
				Actual:   formatValues(last.Args),
			}
		}
	}

	return nil
}

func formatValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatMatchers(matchers []match.Matcher) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = describeMatcher(m)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func describeMatcher(m match.Matcher) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m)
}
