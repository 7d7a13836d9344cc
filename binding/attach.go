package binding

import (
	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/interceptors"
)

// AttachConstruction wraps raw with the construction interceptors in specs,
// first spec innermost, and returns a constructor with the same signature
func AttachConstruction[T any](r *Registry, target string, raw interceptors.Func[T], specs ...contracts.InterceptorSpec) (interceptors.Func[T], error) {
	return attachFunc(r, target, contracts.SiteConstruction, raw, specs)
}

// WrapMethod wraps raw with a single method interceptor
func WrapMethod[R any](r *Registry, target string, raw interceptors.Func[R], spec contracts.InterceptorSpec) (interceptors.Func[R], error) {
	return attachFunc(r, target, contracts.SiteMethod, raw, []contracts.InterceptorSpec{spec})
}

// WrapMethodChain wraps raw with several method interceptors, first spec innermost
func WrapMethodChain[R any](r *Registry, target string, raw interceptors.Func[R], specs ...contracts.InterceptorSpec) (interceptors.Func[R], error) {
	return attachFunc(r, target, contracts.SiteMethod, raw, specs)
}

// AttachAccessor builds the accessor chain of a field holding initial. The
// returned chain's Get and Set replace direct field access.
func AttachAccessor[T any](r *Registry, field string, initial T, specs ...contracts.InterceptorSpec) (*interceptors.AccessorChain[T], error) {
	if err := r.checkSpecs(field, contracts.SiteAccessor, specs); err != nil {
		return nil, err
	}

	list := make([]interceptors.AccessorInterceptor[T], 0, len(specs))
	for _, spec := range specs {
		interceptor, err := accessorInterceptorFor[T](r, field, spec)
		if err != nil {
			return nil, err
		}
		list = append(list, interceptor)
	}

	chain, err := interceptors.NewAccessorChain(field, initial, list...)
	if err != nil {
		return nil, err
	}

	if err := r.declare(field, contracts.SiteAccessor, specs, chain.Names()); err != nil {
		return nil, err
	}
	return chain, nil
}

func attachFunc[R any](r *Registry, target string, site contracts.Site, raw interceptors.Func[R], specs []contracts.InterceptorSpec) (interceptors.Func[R], error) {
	if err := r.checkSpecs(target, site, specs); err != nil {
		return nil, err
	}

	builder := interceptors.NewChainBuilder[R](target, r.options()...)
	for _, spec := range specs {
		switch spec.Kind {
		case contracts.KindTimestamp:
			builder.WithTimestamp(spec.Enabled)
		case contracts.KindSingleton:
			builder.WithSingleton()
		case contracts.KindInstanceLimit:
			builder.WithInstanceLimit(spec.Limit)
		case contracts.KindLogging:
			builder.WithLogging()
		case contracts.KindMemoize:
			builder.WithMemoize()
		default:
			return nil, &contracts.UnsupportedInterceptorError{Target: target, Kind: spec.Kind, Site: site}
		}
	}
	chain := builder.Build(raw)

	if err := r.declare(target, site, specs, chain.Names()); err != nil {
		return nil, err
	}
	return chain.Func(), nil
}

func accessorInterceptorFor[T any](r *Registry, field string, spec contracts.InterceptorSpec) (interceptors.AccessorInterceptor[T], error) {
	switch spec.Kind {
	case contracts.KindCapitalize:
		interceptor, err := interceptors.NewCapitalizeInterceptor[T]()
		if err != nil {
			return nil, &contracts.UnsupportedInterceptorError{
				Target: field,
				Kind:   spec.Kind,
				Site:   contracts.SiteAccessor,
				Reason: "field is not text",
			}
		}
		return interceptor, nil
	case contracts.KindChangeLog:
		return interceptors.NewChangeLogInterceptor[T](r.options()...), nil
	default:
		return nil, &contracts.UnsupportedInterceptorError{Target: field, Kind: spec.Kind, Site: contracts.SiteAccessor}
	}
}
