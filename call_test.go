package stunt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCallRecorder(t *testing.T) {
	t.Run("it should record calls per method in call order", func(t *testing.T) {
		// GIVEN
		recorder := NewCallRecorder()

		// WHEN
		recorder.record("Save", []any{"u1"})
		recorder.record("Find", []any{"u2"})
		recorder.record("Save", []any{"u3"})

		// THEN
		calls := recorder.CallsFor("Save")
		require.Len(t, calls, 2)
		assert.Equal(t, []any{"u1"}, calls[0].Args)
		assert.Equal(t, []any{"u3"}, calls[1].Args)
		assert.Equal(t, 2, recorder.Count("Save"))
		assert.Equal(t, 1, recorder.Count("Find"))
	})

	t.Run("it should return an empty slice for a method never called", func(t *testing.T) {
		// GIVEN
		recorder := NewCallRecorder()

		// WHEN
		calls := recorder.CallsFor("Save")

		// THEN
		assert.NotNil(t, calls)
		assert.Empty(t, calls)
		assert.False(t, recorder.WasCalled("Save"))
	})

	t.Run("it should order calls across methods through the sequence counter", func(t *testing.T) {
		// GIVEN
		recorder := NewCallRecorder()

		// WHEN
		recorder.record("First", nil)
		recorder.record("Second", nil)

		// THEN
		first, _ := recorder.LastCall("First")
		second, _ := recorder.LastCall("Second")
		assert.Less(t, first.Seq, second.Seq)
	})

	t.Run("it should clear every method on reset", func(t *testing.T) {
		// GIVEN
		recorder := NewCallRecorder()
		recorder.record("Save", []any{"u1"})
		recorder.record("Find", []any{"u2"})

		// WHEN
		recorder.Reset()

		// THEN
		assert.Empty(t, recorder.CallsFor("Save"))
		assert.Empty(t, recorder.CallsFor("Find"))
		assert.False(t, recorder.WasCalled("Save"))
	})

	t.Run("it should expose the most recent call", func(t *testing.T) {
		// GIVEN
		recorder := NewCallRecorder()
		recorder.record("Save", []any{"u1"})
		recorder.record("Save", []any{"u2"})

		// WHEN
		last, called := recorder.LastCall("Save")

		// THEN
		require.True(t, called)
		assert.Equal(t, []any{"u2"}, last.Args)
	})
}

// Recording completeness: any sequence of calls is returned exactly, per
// method, in call order.
func TestCallRecorder_RecordingCompleteness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		recorder := NewCallRecorder()
		methods := rapid.SliceOfN(
			rapid.SampledFrom([]string{"Save", "Find", "Delete"}),
			0, 64,
		).Draw(t, "methods")

		expected := make(map[string][][]any)
		for i, method := range methods {
			args := []any{i}
			recorder.record(method, args)
			expected[method] = append(expected[method], args)
		}

		for method, want := range expected {
			calls := recorder.CallsFor(method)
			if len(calls) != len(want) {
				t.Fatalf("expected %d calls for %s, got %d", len(want), method, len(calls))
			}
			got := make([][]any, len(calls))
			for i, call := range calls {
				got[i] = call.Args
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("recorded args mismatch for %s (-want +got):\n%s", method, diff)
			}
			if recorder.Count(method) != len(want) {
				t.Fatalf("count mismatch for %s", method)
			}
		}
	})
}
