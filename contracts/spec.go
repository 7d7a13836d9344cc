package contracts

import (
	"fmt"
)

// Kind identifies a wrapper behavior
type Kind string

const (
	KindLogging       Kind = "logging"
	KindMemoize       Kind = "memoize"
	KindSingleton     Kind = "singleton"
	KindInstanceLimit Kind = "instance_limit"
	KindTimestamp     Kind = "timestamp"
	KindCapitalize    Kind = "capitalize"
	KindChangeLog     Kind = "change_log"
)

// Site is the kind of target a chain is bound to
type Site string

const (
	SiteConstruction Site = "construction"
	SiteAccessor     Site = "accessor"
	SiteMethod       Site = "method"
)

// Kinds returns every known kind in declaration order
func Kinds() []Kind {
	return []Kind{
		KindLogging,
		KindMemoize,
		KindSingleton,
		KindInstanceLimit,
		KindTimestamp,
		KindCapitalize,
		KindChangeLog,
	}
}

// Supports reports whether the kind may attach to the given site
func (k Kind) Supports(site Site) bool {
	switch site {
	case SiteConstruction:
		return k == KindTimestamp || k == KindSingleton || k == KindInstanceLimit || k == KindLogging
	case SiteAccessor:
		return k == KindCapitalize || k == KindChangeLog
	case SiteMethod:
		return k == KindLogging || k == KindMemoize
	default:
		return false
	}
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// InterceptorSpec identifies one wrapper behavior plus its configuration
type InterceptorSpec struct {
	Kind Kind `json:"kind" yaml:"kind" validate:"required,oneof=logging memoize singleton instance_limit timestamp capitalize change_log"`

	// Limit is the maximum number of constructions for instance_limit
	Limit int64 `json:"limit,omitempty" yaml:"limit,omitempty" validate:"required_if=Kind instance_limit,gte=0"`

	// Enabled switches the timestamp side effect on or off
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Logging records calls with their arguments and results
func Logging() InterceptorSpec {
	return InterceptorSpec{Kind: KindLogging}
}

// Memoize caches results keyed by the argument list
func Memoize() InterceptorSpec {
	return InterceptorSpec{Kind: KindMemoize}
}

// Singleton keeps the first constructed instance forever
func Singleton() InterceptorSpec {
	return InterceptorSpec{Kind: KindSingleton}
}

// InstanceLimit denies construction after n instances
func InstanceLimit(n int64) InterceptorSpec {
	return InterceptorSpec{Kind: KindInstanceLimit, Limit: n}
}

// Timestamp records the creation time of every instance when enabled
func Timestamp(enabled bool) InterceptorSpec {
	return InterceptorSpec{Kind: KindTimestamp, Enabled: enabled}
}

// Capitalize uppercases text on write
func Capitalize() InterceptorSpec {
	return InterceptorSpec{Kind: KindCapitalize}
}

// ChangeLog logs every value transition on write
func ChangeLog() InterceptorSpec {
	return InterceptorSpec{Kind: KindChangeLog}
}

// Validate checks the spec configuration without going through struct tags
func (s InterceptorSpec) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
	if s.Kind == KindInstanceLimit && s.Limit < 1 {
		return fmt.Errorf("%w: instance_limit requires a limit of at least 1, got %d", ErrInvalidSpec, s.Limit)
	}
	return nil
}

// String returns a compact description such as "instance_limit(5)"
func (s InterceptorSpec) String() string {
	switch s.Kind {
	case KindInstanceLimit:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Limit)
	case KindTimestamp:
		return fmt.Sprintf("%s(%t)", s.Kind, s.Enabled)
	default:
		return string(s.Kind)
	}
}
