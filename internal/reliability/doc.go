// Package reliability retries journal publishes that failed for reasons the
// broker or the network reports as transient.
//
// Example usage:
//
//	attempts, err := reliability.Publish(ctx, reliability.NewPublishRetry(3, 50*time.Millisecond),
//	    func(ctx context.Context) error {
//	        return channel.PublishWithContext(ctx, exchange, key, false, false, msg)
//	    }, nil)
package reliability
