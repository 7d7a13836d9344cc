package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/glimte/mmate-intercept/journal"
)

// DateLayout is how creation timestamps are printed
const DateLayout = "Mon Jan 02 2006"

// Option configures the built-in interceptors
type Option func(*options)

type options struct {
	logger   *slog.Logger
	recorder journal.Recorder
	now      func() time.Time
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the recorder that receives interceptor side effects
func WithRecorder(recorder journal.Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithClock sets the clock used for timestamps and durations
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		recorder: journal.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// record never fails the intercepted call; recorder errors are only logged.
// The entry keeps its own copy of the argument list, so later changes to the
// caller's slice do not reach the journal.
func (o options) record(ctx context.Context, entry *journal.Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = o.now()
	}
	if entry.Args != nil {
		entry.Args = append(make([]interface{}, 0, len(entry.Args)), entry.Args...)
	}
	if err := o.recorder.Record(ctx, entry); err != nil {
		o.logger.Warn("failed to record interceptor event",
			"target", entry.Target,
			"interceptor", entry.Interceptor,
			"type", entry.Type,
			"error", err,
		)
	}
}
