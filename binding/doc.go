// Package binding attaches interceptor chains to named targets.
//
// A Registry receives a description of which interceptors attach to which
// target, in which order, and returns the composed entry point:
//   - AttachConstruction wraps a constructor
//   - AttachAccessor wraps a field's accessor pair
//   - WrapMethod and WrapMethodChain wrap a method
//
// Each target may be declared once. The chain and its state live as long as the
// registry, which for the default registry is the lifetime of the process.
//
// Example usage:
//
//	registry := binding.NewRegistry(binding.WithLogger(logger))
//
//	newEmployee, err := binding.AttachConstruction(registry, "Employee", rawNewEmployee,
//		contracts.Singleton(),
//		contracts.Timestamp(true),
//	)
package binding
