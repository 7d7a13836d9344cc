package interceptors

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/mmate-intercept/journal"
)

// countingAdd counts how often the underlying operation runs
type countingAdd struct {
	calls int
}

func (c *countingAdd) add(ctx context.Context, args ...interface{}) (float64, error) {
	c.calls++
	var sum float64
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			sum += float64(v)
		case float64:
			sum += v
		}
	}
	return sum, nil
}

type point struct {
	x, y int
}

type Vector struct {
	X, Y int
}

func TestMemoizeInterceptor(t *testing.T) {
	t.Run("same arguments run the operation once", func(t *testing.T) {
		op := &countingAdd{}
		memo := NewMemoizeInterceptor[float64]("Math.add")
		add := Wrap[float64](memo, op.add)

		for i := 0; i < 5; i++ {
			result, err := add(context.Background(), 1, 2)
			require.NoError(t, err)
			assert.Equal(t, 3.0, result)
		}

		assert.Equal(t, 1, op.calls)
		assert.Equal(t, CacheStats{Hits: 4, Misses: 1, Entries: 1}, memo.Stats())
	})

	t.Run("different arguments run the operation again", func(t *testing.T) {
		op := &countingAdd{}
		add := Wrap[float64](NewMemoizeInterceptor[float64]("Math.add"), op.add)

		_, err := add(context.Background(), 1, 2)
		require.NoError(t, err)
		_, err = add(context.Background(), 2, 1)
		require.NoError(t, err)
		_, err = add(context.Background(), 1.0, 2.0)
		require.NoError(t, err)
		_, err = add(context.Background(), 1, 2)
		require.NoError(t, err)

		assert.Equal(t, 3, op.calls)
	})

	t.Run("failed calls are not cached", func(t *testing.T) {
		failure := errors.New("division by zero")
		calls := 0
		div := Wrap[int](NewMemoizeInterceptor[int]("Math.div"), func(ctx context.Context, args ...interface{}) (int, error) {
			calls++
			if calls == 1 {
				return 0, failure
			}
			return 4, nil
		})

		_, err := div(context.Background(), 8, 2)
		assert.Same(t, failure, err)

		result, err := div(context.Background(), 8, 2)
		require.NoError(t, err)
		assert.Equal(t, 4, result)
		assert.Equal(t, 2, calls)
	})

	t.Run("uncacheable arguments call through", func(t *testing.T) {
		calls := 0
		memo := NewMemoizeInterceptor[int]("apply")
		apply := Wrap[int](memo, func(ctx context.Context, args ...interface{}) (int, error) {
			calls++
			return args[0].(func() int)(), nil
		})

		for i := 0; i < 3; i++ {
			result, err := apply(context.Background(), func() int { return 7 })
			require.NoError(t, err)
			assert.Equal(t, 7, result)
		}

		assert.Equal(t, 3, calls)
		assert.Equal(t, 0, memo.Stats().Entries)
	})

	t.Run("structs with unexported fields are never served from cache", func(t *testing.T) {
		calls := 0
		memo := NewMemoizeInterceptor[int]("Point.sum")
		sum := NewChain[int]("Point.sum", func(ctx context.Context, args ...interface{}) (int, error) {
			calls++
			p := args[0].(point)
			return p.x + p.y, nil
		}, memo)

		result, err := sum.Call(context.Background(), point{1, 2})
		require.NoError(t, err)
		assert.Equal(t, 3, result)

		result, err = sum.Call(context.Background(), point{10, 20})
		require.NoError(t, err)
		assert.Equal(t, 30, result)

		assert.Equal(t, 2, calls)
		assert.Equal(t, 0, memo.Stats().Entries)
	})

	t.Run("pointer arguments are keyed by their target", func(t *testing.T) {
		calls := 0
		sum := Wrap[int](NewMemoizeInterceptor[int]("Point.sum"), func(ctx context.Context, args ...interface{}) (int, error) {
			calls++
			p := args[0].(*point)
			return p.x + p.y, nil
		})

		result, err := sum(context.Background(), &point{1, 2})
		require.NoError(t, err)
		assert.Equal(t, 3, result)

		result, err = sum(context.Background(), &point{10, 20})
		require.NoError(t, err)
		assert.Equal(t, 30, result)
		assert.Equal(t, 2, calls)
	})

	t.Run("structs with exported fields are cached by value", func(t *testing.T) {
		calls := 0
		memo := NewMemoizeInterceptor[int]("Vector.sum")
		sum := Wrap[int](memo, func(ctx context.Context, args ...interface{}) (int, error) {
			calls++
			v := args[0].(Vector)
			return v.X + v.Y, nil
		})

		for _, tc := range []struct {
			in   Vector
			want int
		}{
			{Vector{1, 2}, 3},
			{Vector{10, 20}, 30},
			{Vector{1, 2}, 3},
		} {
			result, err := sum(context.Background(), tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)
		}

		assert.Equal(t, 2, calls)
		assert.Equal(t, CacheStats{Hits: 1, Misses: 2, Entries: 2}, memo.Stats())
	})

	t.Run("cache hits are logged and recorded", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		j := journal.NewInMemoryJournal()

		op := &countingAdd{}
		add := Wrap[float64](NewMemoizeInterceptor[float64]("Math.add", WithLogger(logger), WithRecorder(j)), op.add)

		_, _ = add(context.Background(), 1, 2)
		_, _ = add(context.Background(), 1, 2)

		assert.Contains(t, buf.String(), "returning from cache")
		hits, err := j.GetByType(context.Background(), journal.EntryCacheHit, 0)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, 3.0, hits[0].Result)
	})

	t.Run("cache hit entries keep their own arguments", func(t *testing.T) {
		j := journal.NewInMemoryJournal()
		op := &countingAdd{}
		add := Wrap[float64](NewMemoizeInterceptor[float64]("Math.add", WithRecorder(j)), op.add)

		_, _ = add(context.Background(), 1, 2)
		xs := []interface{}{1, 2}
		_, _ = add(context.Background(), xs...)
		xs[1] = 50

		hits, err := j.GetByType(context.Background(), journal.EntryCacheHit, 0)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, []interface{}{1, 2}, hits[0].Args)
	})
}

func TestLoggingInterceptor(t *testing.T) {
	t.Run("records arguments and result and returns result unchanged", func(t *testing.T) {
		j := journal.NewInMemoryJournal()
		op := &countingAdd{}
		add := Wrap[float64](NewLoggingInterceptor[float64]("Math.add", WithRecorder(j)), op.add)

		result, err := add(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 3.0, result)

		entries := j.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, journal.EntryCall, entries[0].Type)
		assert.Equal(t, []interface{}{1, 2}, entries[0].Args)
		assert.Equal(t, journal.EntryResult, entries[1].Type)
		assert.Equal(t, 3.0, entries[1].Result)
	})

	t.Run("recorded arguments do not change with the caller's slice", func(t *testing.T) {
		j := journal.NewInMemoryJournal()
		op := &countingAdd{}
		add := Wrap[float64](NewLoggingInterceptor[float64]("Math.add", WithRecorder(j)), op.add)

		xs := []interface{}{1, 2}
		_, err := add(context.Background(), xs...)
		require.NoError(t, err)
		xs[0] = 100

		entries := j.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, []interface{}{1, 2}, entries[0].Args)
		assert.Equal(t, []interface{}{1, 2}, entries[1].Args)
	})

	t.Run("arguments changed by the operation are recorded as passed in", func(t *testing.T) {
		j := journal.NewInMemoryJournal()
		op := Wrap[int](NewLoggingInterceptor[int]("op", WithRecorder(j)), func(ctx context.Context, args ...interface{}) (int, error) {
			args[0] = "changed"
			return 1, nil
		})

		_, err := op(context.Background(), "original")
		require.NoError(t, err)

		calls, qerr := j.GetByType(context.Background(), journal.EntryCall, 0)
		require.NoError(t, qerr)
		require.Len(t, calls, 1)
		assert.Equal(t, []interface{}{"original"}, calls[0].Args)
	})

	t.Run("errors propagate unchanged", func(t *testing.T) {
		j := journal.NewInMemoryJournal()
		failure := errors.New("boom")
		op := Wrap[string](NewLoggingInterceptor[string]("op", WithRecorder(j)), func(ctx context.Context, args ...interface{}) (string, error) {
			return "partial", failure
		})

		result, err := op(context.Background(), "x")
		assert.Same(t, failure, err)
		assert.Equal(t, "partial", result)

		errs, qerr := j.GetByType(context.Background(), journal.EntryError, 0)
		require.NoError(t, qerr)
		require.Len(t, errs, 1)
		assert.Equal(t, "boom", errs[0].Error)
	})

	t.Run("logs calls and results", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		op := &countingAdd{}
		add := Wrap[float64](NewLoggingInterceptor[float64]("Math.add", WithLogger(logger)), op.add)

		_, err := add(context.Background(), 1, 2)
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "msg=calling")
		assert.Contains(t, buf.String(), "msg=returned")
		assert.Contains(t, buf.String(), "target=Math.add")
	})

	t.Run("logging outside memoize sees every call", func(t *testing.T) {
		j := journal.NewInMemoryJournal()
		op := &countingAdd{}
		add := NewChainBuilder[float64]("Math.add", WithRecorder(j)).
			WithMemoize().
			WithLogging().
			Build(op.add)

		for i := 0; i < 3; i++ {
			_, err := add.Call(context.Background(), 1, 2)
			require.NoError(t, err)
		}

		calls, err := j.GetByType(context.Background(), journal.EntryCall, 0)
		require.NoError(t, err)
		assert.Len(t, calls, 3)
		assert.Equal(t, 1, op.calls)
	})
}
