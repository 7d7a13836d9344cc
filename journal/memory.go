package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stats represents journal statistics
type Stats struct {
	TotalEntries    int64               `json:"totalEntries"`
	EntriesByType   map[EntryType]int64 `json:"entriesByType"`
	EntriesByTarget map[string]int64    `json:"entriesByTarget"`
	ErrorCount      int64               `json:"errorCount"`
	LastEntry       time.Time           `json:"lastEntry"`
}

// InMemoryJournal keeps recorded entries in memory
type InMemoryJournal struct {
	entries       []*Entry
	byTarget      map[string][]*Entry
	byType        map[EntryType][]*Entry
	mu            sync.RWMutex
	maxEntries    int
	rotatePercent float64
	now           func() time.Time
}

// InMemoryJournalOption configures the in-memory journal
type InMemoryJournalOption func(*InMemoryJournal)

// WithMaxEntries sets the maximum number of entries
func WithMaxEntries(max int) InMemoryJournalOption {
	return func(j *InMemoryJournal) {
		j.maxEntries = max
	}
}

// WithRotatePercent sets the percentage of entries to remove when max is reached
func WithRotatePercent(percent float64) InMemoryJournalOption {
	return func(j *InMemoryJournal) {
		j.rotatePercent = percent
	}
}

// WithClock sets the clock used to stamp entries
func WithClock(now func() time.Time) InMemoryJournalOption {
	return func(j *InMemoryJournal) {
		j.now = now
	}
}

// NewInMemoryJournal creates a new in-memory journal
func NewInMemoryJournal(opts ...InMemoryJournalOption) *InMemoryJournal {
	j := &InMemoryJournal{
		entries:       make([]*Entry, 0),
		byTarget:      make(map[string][]*Entry),
		byType:        make(map[EntryType][]*Entry),
		maxEntries:    10000,
		rotatePercent: 0.2,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Record stores an entry, filling in ID and timestamp if missing
func (j *InMemoryJournal) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = j.now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.entries) >= j.maxEntries {
		j.rotate()
	}

	j.entries = append(j.entries, entry)
	j.index(entry)

	return nil
}

// Entries returns a copy of all entries in recording order
func (j *InMemoryJournal) Entries() []*Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return copyEntries(j.entries)
}

// GetByTarget retrieves all entries recorded for a target
func (j *InMemoryJournal) GetByTarget(ctx context.Context, target string) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return copyEntries(j.byTarget[target]), nil
}

// GetByType retrieves the most recent entries of one type, all of them if limit <= 0
func (j *InMemoryJournal) GetByType(ctx context.Context, entryType EntryType, limit int) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entries := j.byType[entryType]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return copyEntries(entries), nil
}

// GetByTimeRange retrieves entries within a time range
func (j *InMemoryJournal) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result []*Entry
	for _, entry := range j.entries {
		if entry.Timestamp.After(start) && entry.Timestamp.Before(end) {
			entryCopy := *entry
			result = append(result, &entryCopy)
		}
	}
	return result, nil
}

// GetStats returns journal statistics
func (j *InMemoryJournal) GetStats(ctx context.Context) (*Stats, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	stats := &Stats{
		TotalEntries:    int64(len(j.entries)),
		EntriesByType:   make(map[EntryType]int64),
		EntriesByTarget: make(map[string]int64),
	}

	for _, entry := range j.entries {
		stats.EntriesByType[entry.Type]++
		stats.EntriesByTarget[entry.Target]++

		if entry.Error != "" {
			stats.ErrorCount++
		}

		if entry.Timestamp.After(stats.LastEntry) {
			stats.LastEntry = entry.Timestamp
		}
	}

	return stats, nil
}

// Clear removes entries older than the specified duration
func (j *InMemoryJournal) Clear(ctx context.Context, olderThan time.Duration) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().Add(-olderThan)
	removed := 0

	kept := make([]*Entry, 0, len(j.entries))
	for _, entry := range j.entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		} else {
			removed++
		}
	}

	j.entries = kept
	j.rebuildIndexes()

	return removed, nil
}

// rotate removes oldest entries when max is reached
func (j *InMemoryJournal) rotate() {
	removeCount := int(float64(j.maxEntries) * j.rotatePercent)
	if removeCount < 1 {
		removeCount = 1
	}
	if removeCount > len(j.entries) {
		removeCount = len(j.entries)
	}

	j.entries = j.entries[removeCount:]
	j.rebuildIndexes()
}

func (j *InMemoryJournal) rebuildIndexes() {
	j.byTarget = make(map[string][]*Entry)
	j.byType = make(map[EntryType][]*Entry)

	for _, entry := range j.entries {
		j.index(entry)
	}
}

func (j *InMemoryJournal) index(entry *Entry) {
	if entry.Target != "" {
		j.byTarget[entry.Target] = append(j.byTarget[entry.Target], entry)
	}
	j.byType[entry.Type] = append(j.byType[entry.Type], entry)
}

func copyEntries(entries []*Entry) []*Entry {
	result := make([]*Entry, len(entries))
	for i, entry := range entries {
		entryCopy := *entry
		result[i] = &entryCopy
	}
	return result
}
