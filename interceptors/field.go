package interceptors

import (
	"context"
	"reflect"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/journal"
)

// CapitalizeInterceptor uppercases text before it is written. Reads pass through.
type CapitalizeInterceptor[T any] struct {
	upper func(T) T
}

// NewCapitalizeInterceptor creates a new capitalize interceptor. T must have a
// string underlying type.
func NewCapitalizeInterceptor[T any]() (*CapitalizeInterceptor[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.String {
		return nil, &contracts.UnsupportedInterceptorError{
			Target: typ.String(),
			Kind:   contracts.KindCapitalize,
			Site:   contracts.SiteAccessor,
			Reason: "field is not text",
		}
	}

	return &CapitalizeInterceptor[T]{
		upper: func(v T) T {
			// cases.Caser is stateful, so each call gets its own
			upper := cases.Upper(language.Und).String(reflect.ValueOf(v).String())
			return reflect.ValueOf(upper).Convert(typ).Interface().(T)
		},
	}, nil
}

// Wrap implements AccessorInterceptor
func (i *CapitalizeInterceptor[T]) Wrap(field string, inner Accessor[T]) Delegate[T] {
	return &capitalizeAccessor[T]{inner: inner, upper: i.upper}
}

// Name implements AccessorInterceptor
func (i *CapitalizeInterceptor[T]) Name() string {
	return "CapitalizeInterceptor"
}

type capitalizeAccessor[T any] struct {
	inner Accessor[T]
	upper func(T) T
}

func (a *capitalizeAccessor[T]) Get() T             { return a.inner.Get() }
func (a *capitalizeAccessor[T]) Set(value T)        { a.inner.Set(a.upper(value)) }
func (a *capitalizeAccessor[T]) Inner() Accessor[T] { return a.inner }

// ChangeLogInterceptor logs every transition of a field before passing the new
// value on unchanged. The old value is read through the inner getter and the new
// value is the one this node received, before any inner transform.
type ChangeLogInterceptor[T any] struct {
	opts options
}

// NewChangeLogInterceptor creates a new change log interceptor
func NewChangeLogInterceptor[T any](opts ...Option) *ChangeLogInterceptor[T] {
	return &ChangeLogInterceptor[T]{opts: newOptions(opts)}
}

// Wrap implements AccessorInterceptor
func (i *ChangeLogInterceptor[T]) Wrap(field string, inner Accessor[T]) Delegate[T] {
	return &changeLogAccessor[T]{field: field, inner: inner, name: i.Name(), opts: i.opts}
}

// Name implements AccessorInterceptor
func (i *ChangeLogInterceptor[T]) Name() string {
	return "ChangeLogInterceptor"
}

type changeLogAccessor[T any] struct {
	field string
	name  string
	inner Accessor[T]
	opts  options
}

func (a *changeLogAccessor[T]) Get() T             { return a.inner.Get() }
func (a *changeLogAccessor[T]) Inner() Accessor[T] { return a.inner }

func (a *changeLogAccessor[T]) Set(value T) {
	old := a.inner.Get()
	a.opts.logger.Info("field updated",
		"field", a.field,
		"from", old,
		"to", value,
	)

	a.inner.Set(value)

	a.opts.record(context.Background(), &journal.Entry{
		Target:      a.field,
		Interceptor: a.name,
		Type:        journal.EntryTransition,
		Before:      old,
		After:       value,
		Stored:      a.inner.Get(),
	})
}
