package binding

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/interceptors"
	"github.com/glimte/mmate-intercept/journal"
)

// Declaration describes one bound chain
type Declaration struct {
	Target       string                      `json:"target"`
	Site         contracts.Site              `json:"site"`
	Specs        []contracts.InterceptorSpec `json:"specs"`
	Interceptors []string                    `json:"interceptors"`
	DeclaredAt   time.Time                   `json:"declaredAt"`
}

// Registry binds chains to targets and keeps track of what has been declared
type Registry struct {
	mu       sync.RWMutex
	targets  map[string]Declaration
	logger   *slog.Logger
	recorder journal.Recorder
	now      func() time.Time
}

// RegistryOption configures the registry
type RegistryOption func(*Registry)

// WithLogger sets the logger passed to every interceptor
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the recorder passed to every interceptor
func WithRecorder(recorder journal.Recorder) RegistryOption {
	return func(r *Registry) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// WithClock sets the clock passed to every interceptor
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates a new registry
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		targets:  make(map[string]Declaration),
		logger:   slog.Default(),
		recorder: journal.Discard,
		now:      time.Now,
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Lookup returns the declaration for target
func (r *Registry) Lookup(target string) (Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.targets[target]
	return d, ok
}

// Declarations returns every declaration sorted by target
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Declaration, 0, len(r.targets))
	for _, d := range r.targets {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Target < result[j].Target })
	return result
}

func (r *Registry) options() []interceptors.Option {
	return []interceptors.Option{
		interceptors.WithLogger(r.logger),
		interceptors.WithRecorder(r.recorder),
		interceptors.WithClock(r.now),
	}
}

// checkSpecs validates every spec and its site before anything is built
func (r *Registry) checkSpecs(target string, site contracts.Site, specs []contracts.InterceptorSpec) error {
	if target == "" {
		return fmt.Errorf("%w: target name cannot be empty", contracts.ErrInvalidSpec)
	}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("target %s: %w", target, err)
		}
		if !spec.Kind.Supports(site) {
			return &contracts.UnsupportedInterceptorError{Target: target, Kind: spec.Kind, Site: site}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, exists := r.targets[target]; exists {
		return fmt.Errorf("%w: %s", contracts.ErrTargetAlreadyDeclared, target)
	}
	return nil
}

// declare records a built chain. A concurrent declaration of the same target
// may have won since checkSpecs; only the first one is kept.
func (r *Registry) declare(target string, site contracts.Site, specs []contracts.InterceptorSpec, names []string) error {
	owned := make([]contracts.InterceptorSpec, len(specs))
	copy(owned, specs)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[target]; exists {
		return fmt.Errorf("%w: %s", contracts.ErrTargetAlreadyDeclared, target)
	}

	r.targets[target] = Declaration{
		Target:       target,
		Site:         site,
		Specs:        owned,
		Interceptors: names,
		DeclaredAt:   r.now(),
	}

	r.logger.Debug("chain declared",
		"target", target,
		"site", site,
		"interceptors", names,
	)
	return nil
}
