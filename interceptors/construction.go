package interceptors

import (
	"context"

	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/internal/state"
	"github.com/glimte/mmate-intercept/journal"
)

// TimestampInterceptor records the creation time of every constructed instance.
// It never alters arguments or the returned instance.
type TimestampInterceptor[R any] struct {
	target  string
	enabled bool
	opts    options
}

// NewTimestampInterceptor creates a new timestamp interceptor
func NewTimestampInterceptor[R any](target string, enabled bool, opts ...Option) *TimestampInterceptor[R] {
	return &TimestampInterceptor[R]{
		target:  target,
		enabled: enabled,
		opts:    newOptions(opts),
	}
}

// Intercept implements Interceptor
func (i *TimestampInterceptor[R]) Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error) {
	instance, err := next(ctx, args...)
	if err != nil || !i.enabled {
		return instance, err
	}

	createdAt := i.opts.now()
	i.opts.logger.Info("object created",
		"target", i.target,
		"createdAt", createdAt.Format(DateLayout),
	)
	i.opts.record(ctx, &journal.Entry{
		Timestamp:   createdAt,
		Target:      i.target,
		Interceptor: i.Name(),
		Type:        journal.EntryTimestamp,
	})

	return instance, nil
}

// Name implements Interceptor
func (i *TimestampInterceptor[R]) Name() string {
	return "TimestampInterceptor"
}

// SingletonInterceptor keeps the first constructed instance and returns it for
// every later call, ignoring the arguments of those calls. Interceptors declared
// inside it stop running after the first construction; interceptors declared
// outside it keep running on every call.
type SingletonInterceptor[R any] struct {
	target string
	slot   state.Slot[R]
	opts   options
}

// NewSingletonInterceptor creates a new singleton interceptor
func NewSingletonInterceptor[R any](target string, opts ...Option) *SingletonInterceptor[R] {
	return &SingletonInterceptor[R]{
		target: target,
		opts:   newOptions(opts),
	}
}

// Intercept implements Interceptor
func (i *SingletonInterceptor[R]) Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error) {
	instance, created, err := i.slot.LoadOrCreate(func() (R, error) {
		return next(ctx, args...)
	})
	if err != nil {
		return instance, err
	}

	if !created {
		i.opts.logger.Debug("returning existing instance, arguments ignored",
			"target", i.target,
			"args", args,
		)
		i.opts.record(ctx, &journal.Entry{
			Target:      i.target,
			Interceptor: i.Name(),
			Type:        journal.EntrySingletonReused,
			Args:        args,
		})
	}

	return instance, nil
}

// Instance returns the stored instance, if any
func (i *SingletonInterceptor[R]) Instance() (R, bool) {
	return i.slot.Load()
}

// Name implements Interceptor
func (i *SingletonInterceptor[R]) Name() string {
	return "SingletonInterceptor"
}

// InstanceLimitInterceptor denies construction once more than limit attempts
// have been made. Every attempt counts, including denied and failed ones.
type InstanceLimitInterceptor[R any] struct {
	target  string
	limit   int64
	counter state.Counter
	opts    options
}

// NewInstanceLimitInterceptor creates a new instance limit interceptor
func NewInstanceLimitInterceptor[R any](target string, limit int64, opts ...Option) *InstanceLimitInterceptor[R] {
	return &InstanceLimitInterceptor[R]{
		target: target,
		limit:  limit,
		opts:   newOptions(opts),
	}
}

// Intercept implements Interceptor
func (i *InstanceLimitInterceptor[R]) Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error) {
	attempt := i.counter.Next()
	if attempt > i.limit {
		err := &contracts.ConstructionDeniedError{
			Target:  i.target,
			Attempt: attempt,
			Limit:   i.limit,
		}
		i.opts.logger.Warn("construction denied",
			"target", i.target,
			"attempt", attempt,
			"limit", i.limit,
		)
		i.opts.record(ctx, &journal.Entry{
			Target:      i.target,
			Interceptor: i.Name(),
			Type:        journal.EntryConstructionDenied,
			Attempt:     attempt,
			Limit:       i.limit,
			Error:       err.Error(),
		})

		var zero R
		return zero, err
	}

	instance, err := next(ctx, args...)
	if err != nil {
		return instance, err
	}

	i.opts.logger.Info("instance created",
		"target", i.target,
		"instance", attempt,
	)
	i.opts.record(ctx, &journal.Entry{
		Target:      i.target,
		Interceptor: i.Name(),
		Type:        journal.EntryConstructed,
		Attempt:     attempt,
		Limit:       i.limit,
	})

	return instance, nil
}

// Attempts returns the number of construction attempts so far
func (i *InstanceLimitInterceptor[R]) Attempts() int64 {
	return i.counter.Value()
}

// Name implements Interceptor
func (i *InstanceLimitInterceptor[R]) Name() string {
	return "InstanceLimitInterceptor"
}
