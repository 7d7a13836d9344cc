package interceptors

import (
	"context"

	"github.com/glimte/mmate-intercept/internal/state"
	"github.com/glimte/mmate-intercept/journal"
	"github.com/glimte/mmate-intercept/serialization"
)

// LoggingInterceptor logs every call with its arguments and its result.
// Errors from the wrapped call are logged and returned unchanged.
type LoggingInterceptor[R any] struct {
	target string
	opts   options
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor[R any](target string, opts ...Option) *LoggingInterceptor[R] {
	return &LoggingInterceptor[R]{
		target: target,
		opts:   newOptions(opts),
	}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor[R]) Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error) {
	start := i.opts.now()

	i.opts.logger.Info("calling",
		"target", i.target,
		"args", args,
	)
	i.opts.record(ctx, &journal.Entry{
		Timestamp:   start,
		Target:      i.target,
		Interceptor: i.Name(),
		Type:        journal.EntryCall,
		Args:        args,
	})

	result, err := next(ctx, args...)
	duration := i.opts.now().Sub(start)

	if err != nil {
		i.opts.logger.Error("call failed",
			"target", i.target,
			"duration", duration,
			"error", err,
		)
		i.opts.record(ctx, &journal.Entry{
			Target:      i.target,
			Interceptor: i.Name(),
			Type:        journal.EntryError,
			Args:        args,
			Duration:    duration,
			Error:       err.Error(),
		})
		return result, err
	}

	i.opts.logger.Info("returned",
		"target", i.target,
		"result", result,
		"duration", duration,
	)
	i.opts.record(ctx, &journal.Entry{
		Target:      i.target,
		Interceptor: i.Name(),
		Type:        journal.EntryResult,
		Args:        args,
		Result:      result,
		Duration:    duration,
	})

	return result, nil
}

// Name implements Interceptor
func (i *LoggingInterceptor[R]) Name() string {
	return "LoggingInterceptor"
}

// CacheStats is a snapshot of a memoizing interceptor's cache
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// MemoizeInterceptor caches results keyed by the canonical encoding of the
// argument list. A hit returns the stored result without calling next. Failed
// calls are not cached. The cache is unbounded and never expires.
type MemoizeInterceptor[R any] struct {
	target string
	cache  *state.MemoCache[R]
	opts   options
}

// NewMemoizeInterceptor creates a new memoizing interceptor
func NewMemoizeInterceptor[R any](target string, opts ...Option) *MemoizeInterceptor[R] {
	return &MemoizeInterceptor[R]{
		target: target,
		cache:  state.NewMemoCache[R](),
		opts:   newOptions(opts),
	}
}

// Intercept implements Interceptor
func (i *MemoizeInterceptor[R]) Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error) {
	key, err := serialization.Key(args)
	if err != nil {
		i.opts.logger.Debug("arguments not cacheable, calling through",
			"target", i.target,
			"error", err,
		)
		return next(ctx, args...)
	}

	result, hit, err := i.cache.GetOrCompute(key, func() (R, error) {
		return next(ctx, args...)
	})
	if err != nil {
		return result, err
	}

	if hit {
		i.opts.logger.Info("returning from cache",
			"target", i.target,
			"args", args,
		)
		i.opts.record(ctx, &journal.Entry{
			Target:      i.target,
			Interceptor: i.Name(),
			Type:        journal.EntryCacheHit,
			Args:        args,
			Result:      result,
		})
	}

	return result, nil
}

// Stats returns a snapshot of the cache counters
func (i *MemoizeInterceptor[R]) Stats() CacheStats {
	stats := i.cache.Stats()
	return CacheStats{
		Hits:    stats.Hits,
		Misses:  stats.Misses,
		Entries: stats.Entries,
	}
}

// Name implements Interceptor
func (i *MemoizeInterceptor[R]) Name() string {
	return "MemoizeInterceptor"
}
