// Package interceptors provides the interceptor composition runtime.
//
// An interceptor wraps a construction operation, a method or a field's accessor
// pair without the wrapped target being aware of it. This package provides:
//   - Func, Interceptor and Chain for constructors and methods
//   - Accessor, AccessorInterceptor and AccessorChain for fields
//   - Builder pattern for easy chain construction
//
// Built-in interceptors:
//   - TimestampInterceptor: records the creation time of each instance
//   - SingletonInterceptor: keeps the first instance and ignores later arguments
//   - InstanceLimitInterceptor: denies construction beyond a fixed count
//   - LoggingInterceptor: logs arguments and results of each call
//   - MemoizeInterceptor: caches results by canonical argument list
//   - CapitalizeInterceptor: uppercases text on write
//   - ChangeLogInterceptor: logs each field transition
//
// Interceptors are applied in declaration order with the first one closest to the
// target. The last declared interceptor is the one callers invoke:
//
//	chain := interceptors.NewChainBuilder[*Employee]("Employee", interceptors.WithLogger(logger)).
//		WithSingleton().
//		WithTimestamp(true).
//		Build(newEmployee)
//
//	employee, err := chain.Call(ctx, "prince")
//
// Here the timestamp runs on every call, including calls where the singleton
// returns the stored instance without constructing a new one.
//
// Accessor chains use strict delegation: every node calls through to the node it
// wraps, so stacking Capitalize and ChangeLog on one field keeps both effects.
package interceptors
