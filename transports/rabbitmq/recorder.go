package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mmate-intercept/internal/reliability"
	"github.com/glimte/mmate-intercept/journal"
	"github.com/glimte/mmate-intercept/serialization"
)

const (
	DefaultExchange         = "intercept.journal"
	DefaultRoutingKeyPrefix = "intercept"
	DefaultPublishTimeout   = 5 * time.Second
	headerTarget            = "x-intercept-target"
	headerInterceptor       = "x-intercept-interceptor"
	contentTypeJSON         = "application/json"
)

// Channel is the subset of *amqp.Channel the recorder publishes through
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Recorder publishes journal entries to a topic exchange
type Recorder struct {
	mu               sync.Mutex
	channel          Channel
	exchange         string
	routingKeyPrefix string
	appID            string
	publishTimeout   time.Duration
	retry            reliability.PublishRetry
	logger           *slog.Logger
	closed           bool
}

// RecorderOption configures the recorder
type RecorderOption func(*Recorder)

// WithExchange sets the exchange entries are published to
func WithExchange(exchange string) RecorderOption {
	return func(r *Recorder) {
		r.exchange = exchange
	}
}

// WithRoutingKeyPrefix sets the prefix placed before the entry type
func WithRoutingKeyPrefix(prefix string) RecorderOption {
	return func(r *Recorder) {
		r.routingKeyPrefix = prefix
	}
}

// WithAppID sets the AppId property of published messages
func WithAppID(appID string) RecorderOption {
	return func(r *Recorder) {
		r.appID = appID
	}
}

// WithPublishTimeout bounds each publish when the caller's context has no deadline
func WithPublishTimeout(timeout time.Duration) RecorderOption {
	return func(r *Recorder) {
		if timeout > 0 {
			r.publishTimeout = timeout
		}
	}
}

// WithPublishRetries retries publishes the broker reports as recoverable, with
// exponential backoff. Retries block the intercepted call that produced the entry.
func WithPublishRetries(retries int, initialDelay time.Duration) RecorderOption {
	return func(r *Recorder) {
		if retries > 0 {
			r.retry = reliability.NewPublishRetry(retries, initialDelay)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder creates a recorder publishing through channel
func NewRecorder(channel Channel, options ...RecorderOption) *Recorder {
	r := &Recorder{
		channel:          channel,
		exchange:         DefaultExchange,
		routingKeyPrefix: DefaultRoutingKeyPrefix,
		publishTimeout:   DefaultPublishTimeout,
		logger:           slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// RoutingKey returns the routing key used for an entry type
func (r *Recorder) RoutingKey(entryType journal.EntryType) string {
	if r.routingKeyPrefix == "" {
		return string(entryType)
	}
	return r.routingKeyPrefix + "." + string(entryType)
}

// Record implements journal.Recorder
func (r *Recorder) Record(ctx context.Context, entry *journal.Entry) error {
	if entry == nil {
		return ErrNilEntry
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRecorderClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	routingKey := r.RoutingKey(entry.Type)

	body, err := serialization.Marshal(entry)
	if err != nil {
		return &PublishError{
			Exchange:   r.exchange,
			RoutingKey: routingKey,
			EntryID:    entry.ID,
			Err:        fmt.Errorf("failed to encode entry: %w", err),
			Timestamp:  time.Now(),
		}
	}

	// Set context timeout if not already set
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.publishTimeout)
		defer cancel()
	}

	msg := amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.ID,
		Timestamp:    entry.Timestamp,
		Type:         string(entry.Type),
		AppId:        r.appID,
		Headers: amqp.Table{
			headerTarget:      entry.Target,
			headerInterceptor: entry.Interceptor,
		},
		Body: body,
	}

	attempts, err := reliability.Publish(ctx, r.retry, func(ctx context.Context) error {
		return r.channel.PublishWithContext(ctx, r.exchange, routingKey, false, false, msg)
	}, func(attempt int, err error, delay time.Duration) {
		r.logger.Warn("journal publish failed, retrying",
			"entryId", entry.ID,
			"routingKey", routingKey,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	})
	if err != nil {
		return &PublishError{
			Exchange:   r.exchange,
			RoutingKey: routingKey,
			EntryID:    entry.ID,
			Attempts:   attempts,
			Err:        err,
			Timestamp:  time.Now(),
		}
	}

	r.logger.Debug("journal entry published",
		"entryId", entry.ID,
		"exchange", r.exchange,
		"routingKey", routingKey,
	)
	return nil
}

// Close stops the recorder. Later calls to Record fail with ErrRecorderClosed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
