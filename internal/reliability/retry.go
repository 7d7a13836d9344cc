package reliability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PublishRetry configures how often a failed journal publish is tried again.
// The zero value publishes once.
type PublishRetry struct {
	Retries      int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// NewPublishRetry doubles the delay after every retry, up to ten times initialDelay
func NewPublishRetry(retries int, initialDelay time.Duration) PublishRetry {
	return PublishRetry{
		Retries:      retries,
		InitialDelay: initialDelay,
		MaxDelay:     10 * initialDelay,
	}
}

func (p PublishRetry) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.15
	b.MaxElapsedTime = 0

	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// Retryable reports whether a failed publish may succeed when tried again.
// Broker errors are retryable when the broker marks them recoverable, network
// errors when they timed out. Closed channels, cancelled contexts and unknown
// errors are final.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var brokerErr *amqp.Error
	if errors.As(err, &brokerErr) {
		return brokerErr.Recover
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// RetryFunc is called before every retry with the number of attempts made so
// far, the error of the last one and the wait before the next
type RetryFunc func(attempt int, err error, delay time.Duration)

// Publish runs publish until it succeeds, fails with an error that is not
// Retryable, runs out of retries or ctx is done. It returns the number of
// attempts made and the final error.
func Publish(ctx context.Context, policy PublishRetry, publish func(context.Context) error, onRetry RetryFunc) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	attempts := 0
	var last error
	operation := func() error {
		attempts++
		last = publish(ctx)
		if last != nil && !Retryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}
	notify := func(err error, delay time.Duration) {
		if onRetry != nil {
			onRetry(attempts, err, delay)
		}
	}

	err := backoff.RetryNotify(operation, policy.backOff(ctx), notify)
	if ctxErr := ctx.Err(); err != nil && last != nil && errors.Is(err, ctxErr) && !errors.Is(last, ctxErr) {
		// ctx ended while waiting for the next attempt
		return attempts, fmt.Errorf("%w (last error: %w)", err, last)
	}
	return attempts, err
}
