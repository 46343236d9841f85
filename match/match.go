// Package match provides argument matchers for test-double verification.
package match

import (
	"fmt"
	"reflect"
)

// Matcher is the interface for flexible argument matching.
//
// It is duck-type compatible with gomega matchers: any type implementing
// Match and FailureMessage can be used wherever a Matcher is accepted.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// Value checks whether actual matches expected.
//
// If expected implements Matcher, its Match method decides. Otherwise the two
// values are compared with reflect.DeepEqual. The returned message is empty
// when the match succeeds.
func Value(actual, expected any) (success bool, message string) {
	if matcher, ok := expected.(Matcher); ok {
		ok, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}
		if !ok {
			return false, matcher.FailureMessage(actual)
		}
		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %#v, got %#v", expected, actual)
}

// Eq returns a matcher comparing against expected with reflect.DeepEqual.
func Eq(expected any) Matcher {
	return eqMatcher{expected: expected}
}

type eqMatcher struct {
	expected any
}

func (m eqMatcher) Match(actual any) (bool, error) {
	return reflect.DeepEqual(actual, m.expected), nil
}

func (m eqMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v, got %#v", m.expected, actual)
}

func (m eqMatcher) String() string {
	return fmt.Sprintf("%#v", m.expected)
}

// Any returns a matcher accepting every value.
func Any() Matcher {
	return anyMatcher{}
}

type anyMatcher struct{}

func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

func (anyMatcher) FailureMessage(any) string {
	return ""
}

func (anyMatcher) String() string {
	return "<any>"
}

// Satisfies returns a matcher backed by a predicate. The predicate returns nil
// when the value matches, or an error describing the mismatch.
func Satisfies[T any](predicate func(T) error) Matcher {
	return &satisfiesMatcher[T]{predicate: predicate}
}

type satisfiesMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfiesMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)
	if !ok {
		return false, fmt.Errorf("type mismatch: expected %T, got %T", *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}

func (m *satisfiesMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %#v does not satisfy predicate: %v", actual, m.lastErr)
	}
	return fmt.Sprintf("value %#v does not satisfy predicate", actual)
}
