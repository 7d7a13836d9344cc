package contracts

import (
	"errors"
	"fmt"
)

var (
	// Construction errors
	ErrConstructionDenied = errors.New("intercept: construction denied")

	// Accessor errors
	ErrInvalidAccessorState = errors.New("intercept: invalid accessor state")

	// Attach-time errors
	ErrUnsupportedInterceptor = errors.New("intercept: interceptor not supported at this site")
	ErrTargetAlreadyDeclared  = errors.New("intercept: target already declared")
	ErrInvalidSpec            = errors.New("intercept: invalid interceptor spec")
)

// ConstructionDeniedError is returned when an instance limit has been exceeded
type ConstructionDeniedError struct {
	Target  string // Target type name
	Attempt int64  // Attempt number that was denied
	Limit   int64  // Configured limit
}

func (e *ConstructionDeniedError) Error() string {
	return fmt.Sprintf("construction of %s denied: attempt %d exceeds limit of %d instances", e.Target, e.Attempt, e.Limit)
}

func (e *ConstructionDeniedError) Unwrap() error {
	return ErrConstructionDenied
}

// InvalidAccessorStateError reports a broken or cyclic delegation chain
type InvalidAccessorStateError struct {
	Field  string // Field the chain is bound to
	Reason string // What is wrong with the chain
}

func (e *InvalidAccessorStateError) Error() string {
	return fmt.Sprintf("invalid accessor state for field %s: %s", e.Field, e.Reason)
}

func (e *InvalidAccessorStateError) Unwrap() error {
	return ErrInvalidAccessorState
}

// UnsupportedInterceptorError is returned when a spec is attached to a site it cannot wrap
type UnsupportedInterceptorError struct {
	Target string
	Kind   Kind
	Site   Site
	Reason string
}

func (e *UnsupportedInterceptorError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("interceptor %s cannot attach to %s %s: %s", e.Kind, e.Site, e.Target, e.Reason)
	}
	return fmt.Sprintf("interceptor %s cannot attach to %s %s", e.Kind, e.Site, e.Target)
}

func (e *UnsupportedInterceptorError) Unwrap() error {
	return ErrUnsupportedInterceptor
}

// IsConstructionDenied checks if an error was caused by an exceeded instance limit
func IsConstructionDenied(err error) bool {
	return errors.Is(err, ErrConstructionDenied)
}
