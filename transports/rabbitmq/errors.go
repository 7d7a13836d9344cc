package rabbitmq

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Connection errors
	ErrConnectionFailed = errors.New("rabbitmq: connection failed")

	// Publisher errors
	ErrRecorderClosed = errors.New("rabbitmq: recorder is closed")
	ErrNilEntry       = errors.New("rabbitmq: entry is nil")
)

// PublishError represents a failed journal publish
type PublishError struct {
	Exchange   string    // Target exchange
	RoutingKey string    // Routing key used
	EntryID    string    // Journal entry that failed
	Attempts   int       // Number of attempts made
	Err        error     // Underlying error
	Timestamp  time.Time // When the error occurred
}

func (e *PublishError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("rabbitmq publish error: failed to publish entry %s to %s/%s after %d attempts: %v", e.EntryID, e.Exchange, e.RoutingKey, e.Attempts, e.Err)
	}
	return fmt.Sprintf("rabbitmq publish error: failed to publish entry %s to %s/%s: %v", e.EntryID, e.Exchange, e.RoutingKey, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// ConnectionError represents a connection-related error
type ConnectionError struct {
	Op  string // Operation that failed
	URL string // Connection URL (sanitized)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("rabbitmq connection error: %s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrConnectionFailed
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}
