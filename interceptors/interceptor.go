package interceptors

import (
	"context"
)

// Func is the callable shape shared by constructors and methods: an argument list
// in, a result or an error out.
type Func[R any] func(ctx context.Context, args ...interface{}) (R, error)

// Interceptor wraps one call to a constructor or method
type Interceptor[R any] interface {
	// Intercept handles a call and may delegate to next
	Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor
type InterceptorFunc[R any] struct {
	name string
	fn   func(ctx context.Context, args []interface{}, next Func[R]) (R, error)
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc[R any](name string, fn func(ctx context.Context, args []interface{}, next Func[R]) (R, error)) *InterceptorFunc[R] {
	return &InterceptorFunc[R]{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc[R]) Intercept(ctx context.Context, args []interface{}, next Func[R]) (R, error) {
	return i.fn(ctx, args, next)
}

// Name implements Interceptor
func (i *InterceptorFunc[R]) Name() string {
	return i.name
}

// Wrap binds one interceptor around next
func Wrap[R any](interceptor Interceptor[R], next Func[R]) Func[R] {
	return func(ctx context.Context, args ...interface{}) (R, error) {
		return interceptor.Intercept(ctx, args, next)
	}
}

// Chain is an ordered composition of interceptors bound to one target.
//
// The first interceptor wraps the raw function directly and every following one
// wraps the previous composite, so the last interceptor is what callers invoke.
// The order is fixed when the chain is created.
type Chain[R any] struct {
	target       string
	interceptors []Interceptor[R]
	composed     Func[R]
}

// NewChain composes raw with interceptors, innermost first
func NewChain[R any](target string, raw Func[R], interceptors ...Interceptor[R]) *Chain[R] {
	owned := make([]Interceptor[R], len(interceptors))
	copy(owned, interceptors)

	composed := raw
	for _, interceptor := range owned {
		composed = Wrap(interceptor, composed)
	}

	return &Chain[R]{
		target:       target,
		interceptors: owned,
		composed:     composed,
	}
}

// Call invokes the outermost interceptor
func (c *Chain[R]) Call(ctx context.Context, args ...interface{}) (R, error) {
	return c.composed(ctx, args...)
}

// Func returns the composed callable
func (c *Chain[R]) Func() Func[R] {
	return c.composed
}

// Target returns the name of the wrapped target
func (c *Chain[R]) Target() string {
	return c.target
}

// Names returns the interceptor names, innermost first
func (c *Chain[R]) Names() []string {
	names := make([]string, len(c.interceptors))
	for i, interceptor := range c.interceptors {
		names[i] = interceptor.Name()
	}
	return names
}

// Len returns the number of interceptors in the chain
func (c *Chain[R]) Len() int {
	return len(c.interceptors)
}

// ChainBuilder builds a chain from built-in and custom interceptors.
// Interceptors are added innermost first.
type ChainBuilder[R any] struct {
	target       string
	options      []Option
	interceptors []Interceptor[R]
}

// NewChainBuilder creates a new builder for target
func NewChainBuilder[R any](target string, options ...Option) *ChainBuilder[R] {
	return &ChainBuilder[R]{
		target:  target,
		options: options,
	}
}

// WithTimestamp adds a timestamp interceptor
func (b *ChainBuilder[R]) WithTimestamp(enabled bool) *ChainBuilder[R] {
	b.interceptors = append(b.interceptors, NewTimestampInterceptor[R](b.target, enabled, b.options...))
	return b
}

// WithSingleton adds a singleton interceptor
func (b *ChainBuilder[R]) WithSingleton() *ChainBuilder[R] {
	b.interceptors = append(b.interceptors, NewSingletonInterceptor[R](b.target, b.options...))
	return b
}

// WithInstanceLimit adds an instance limit interceptor
func (b *ChainBuilder[R]) WithInstanceLimit(limit int64) *ChainBuilder[R] {
	b.interceptors = append(b.interceptors, NewInstanceLimitInterceptor[R](b.target, limit, b.options...))
	return b
}

// WithLogging adds a logging interceptor
func (b *ChainBuilder[R]) WithLogging() *ChainBuilder[R] {
	b.interceptors = append(b.interceptors, NewLoggingInterceptor[R](b.target, b.options...))
	return b
}

// WithMemoize adds a memoizing interceptor
func (b *ChainBuilder[R]) WithMemoize() *ChainBuilder[R] {
	b.interceptors = append(b.interceptors, NewMemoizeInterceptor[R](b.target, b.options...))
	return b
}

// WithCustom adds a custom interceptor
func (b *ChainBuilder[R]) WithCustom(interceptor Interceptor[R]) *ChainBuilder[R] {
	b.interceptors = append(b.interceptors, interceptor)
	return b
}

// Build composes the chain around raw
func (b *ChainBuilder[R]) Build(raw Func[R]) *Chain[R] {
	return NewChain(b.target, raw, b.interceptors...)
}
