package journal

import (
	"context"
	"errors"
	"time"
)

// EntryType represents the kind of side effect that was recorded
type EntryType string

const (
	EntryConstructed        EntryType = "constructed"
	EntryTimestamp          EntryType = "timestamp"
	EntrySingletonReused    EntryType = "singleton_reused"
	EntryConstructionDenied EntryType = "construction_denied"
	EntryCall               EntryType = "call"
	EntryResult             EntryType = "result"
	EntryCacheHit           EntryType = "cache_hit"
	EntryTransition         EntryType = "transition"
	EntryError              EntryType = "error"
)

// Entry is a single recorded interceptor side effect
type Entry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Target      string                 `json:"target"`
	Interceptor string                 `json:"interceptor"`
	Type        EntryType              `json:"type"`
	Args        []interface{}          `json:"args,omitempty"`
	Result      interface{}            `json:"result,omitempty"`
	Before      interface{}            `json:"before,omitempty"`
	After       interface{}            `json:"after,omitempty"`
	Stored      interface{}            `json:"stored,omitempty"`
	Attempt     int64                  `json:"attempt,omitempty"`
	Limit       int64                  `json:"limit,omitempty"`
	Duration    time.Duration          `json:"duration,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Recorder receives interceptor side effects
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
}

// RecorderFunc is a function adapter for Recorder
type RecorderFunc func(ctx context.Context, entry *Entry) error

// Record implements Recorder
func (f RecorderFunc) Record(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// Discard is a Recorder that drops every entry
var Discard Recorder = RecorderFunc(func(context.Context, *Entry) error { return nil })

type multiRecorder []Recorder

// Multi fans every entry out to all recorders. All recorders are called even if
// one fails; the errors are joined.
func Multi(recorders ...Recorder) Recorder {
	flat := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			flat = append(flat, r)
		}
	}
	return flat
}

// Record implements Recorder
func (m multiRecorder) Record(ctx context.Context, entry *Entry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
