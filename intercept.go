// Copyright 2024 Mmate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package intercept

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glimte/mmate-intercept/binding"
	"github.com/glimte/mmate-intercept/config"
	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/interceptors"
	"github.com/glimte/mmate-intercept/journal"
	"github.com/glimte/mmate-intercept/transports/rabbitmq"
)

// Runtime provides the main entry point for attaching interceptors
type Runtime struct {
	registry   *binding.Registry
	journal    *journal.InMemoryJournal
	connection *rabbitmq.Connection
	logger     *slog.Logger
}

// NewRuntime creates a runtime with an in-memory journal
func NewRuntime(options ...RuntimeOption) (*Runtime, error) {
	cfg := &runtimeConfig{
		logger:     slog.Default(),
		maxEntries: 10000,
		now:        time.Now,
	}

	for _, opt := range options {
		opt(cfg)
	}

	mem := journal.NewInMemoryJournal(
		journal.WithMaxEntries(cfg.maxEntries),
		journal.WithClock(cfg.now),
	)
	recorders := []journal.Recorder{mem}
	recorders = append(recorders, cfg.recorders...)

	rt := &Runtime{
		journal: mem,
		logger:  cfg.logger,
	}

	// Publish the journal to RabbitMQ if requested
	if cfg.amqpURL != "" {
		recorderOpts := append([]rabbitmq.RecorderOption{rabbitmq.WithLogger(cfg.logger)}, cfg.amqpOptions...)
		conn, err := rabbitmq.Connect(cfg.amqpURL, recorderOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect journal publisher: %w", err)
		}
		rt.connection = conn
		recorders = append(recorders, conn.Recorder())
	}

	rt.registry = binding.NewRegistry(
		binding.WithLogger(cfg.logger),
		binding.WithRecorder(journal.Multi(recorders...)),
		binding.WithClock(cfg.now),
	)

	return rt, nil
}

// defaultRetryDelay is the first wait between publish retries when the
// declarations set a retry count without a delay
const defaultRetryDelay = 50 * time.Millisecond

// NewRuntimeFromConfig creates a runtime using the journal settings of d
func NewRuntimeFromConfig(d *config.Declarations, options ...RuntimeOption) (*Runtime, error) {
	var fromConfig []RuntimeOption
	if d.Journal.MaxEntries > 0 {
		fromConfig = append(fromConfig, WithMaxEntries(d.Journal.MaxEntries))
	}
	if d.Journal.AMQP.URL != "" {
		var amqpOpts []rabbitmq.RecorderOption
		if d.Journal.AMQP.Exchange != "" {
			amqpOpts = append(amqpOpts, rabbitmq.WithExchange(d.Journal.AMQP.Exchange))
		}
		if d.Journal.AMQP.RoutingKeyPrefix != "" {
			amqpOpts = append(amqpOpts, rabbitmq.WithRoutingKeyPrefix(d.Journal.AMQP.RoutingKeyPrefix))
		}
		if d.Journal.AMQP.PublishRetries > 0 {
			delay := d.Journal.AMQP.RetryDelay
			if delay <= 0 {
				delay = defaultRetryDelay
			}
			amqpOpts = append(amqpOpts, rabbitmq.WithPublishRetries(d.Journal.AMQP.PublishRetries, delay))
		}
		fromConfig = append(fromConfig, WithAMQP(d.Journal.AMQP.URL, amqpOpts...))
	}
	return NewRuntime(append(fromConfig, options...)...)
}

// Registry returns the registry chains are bound in
func (r *Runtime) Registry() *binding.Registry {
	return r.registry
}

// Journal returns the in-memory journal of side effects
func (r *Runtime) Journal() *journal.InMemoryJournal {
	return r.journal
}

// Close closes the journal publisher if one is connected
func (r *Runtime) Close() error {
	if r.connection != nil {
		return r.connection.Close()
	}
	return nil
}

// runtimeConfig holds runtime configuration
type runtimeConfig struct {
	logger      *slog.Logger
	maxEntries  int
	now         func() time.Time
	recorders   []journal.Recorder
	amqpURL     string
	amqpOptions []rabbitmq.RecorderOption
}

// RuntimeOption configures the runtime
type RuntimeOption func(*runtimeConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(cfg *runtimeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMaxEntries bounds the in-memory journal
func WithMaxEntries(max int) RuntimeOption {
	return func(cfg *runtimeConfig) {
		if max > 0 {
			cfg.maxEntries = max
		}
	}
}

// WithClock sets the clock used for timestamps
func WithClock(now func() time.Time) RuntimeOption {
	return func(cfg *runtimeConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithRecorder adds a recorder that receives every side effect
func WithRecorder(recorder journal.Recorder) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.recorders = append(cfg.recorders, recorder)
	}
}

// WithAMQP publishes every side effect to RabbitMQ
func WithAMQP(url string, options ...rabbitmq.RecorderOption) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.amqpURL = url
		cfg.amqpOptions = options
	}
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime. It logs to slog.Default and keeps
// an in-memory journal; it never connects to a broker.
func Default() *Runtime {
	defaultOnce.Do(func() {
		// NewRuntime only fails when connecting to a broker
		defaultRuntime, _ = NewRuntime()
	})
	return defaultRuntime
}

// AttachConstruction wraps a constructor in the default runtime
func AttachConstruction[T any](target string, raw interceptors.Func[T], specs ...contracts.InterceptorSpec) (interceptors.Func[T], error) {
	return binding.AttachConstruction(Default().Registry(), target, raw, specs...)
}

// AttachAccessor builds a field's accessor chain in the default runtime
func AttachAccessor[T any](field string, initial T, specs ...contracts.InterceptorSpec) (*interceptors.AccessorChain[T], error) {
	return binding.AttachAccessor(Default().Registry(), field, initial, specs...)
}

// WrapMethod wraps a method with one interceptor in the default runtime
func WrapMethod[R any](target string, raw interceptors.Func[R], spec contracts.InterceptorSpec) (interceptors.Func[R], error) {
	return binding.WrapMethod(Default().Registry(), target, raw, spec)
}

// WrapMethodChain wraps a method with several interceptors in the default runtime
func WrapMethodChain[R any](target string, raw interceptors.Func[R], specs ...contracts.InterceptorSpec) (interceptors.Func[R], error) {
	return binding.WrapMethodChain(Default().Registry(), target, raw, specs...)
}
