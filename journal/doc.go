// Package journal records the side effects of interceptors.
//
// Every observable interceptor effect (a timestamp, an instance count, a cache
// hit, a field transition) is written as an Entry to a Recorder. The package
// provides:
//   - Recorder interface and RecorderFunc adapter
//   - InMemoryJournal: bounded in-memory journal with indexes and statistics
//   - Discard and Multi helpers
//
// Example usage:
//
//	j := journal.NewInMemoryJournal(journal.WithMaxEntries(1000))
//	registry := binding.NewRegistry(binding.WithRecorder(j))
//
//	entries, _ := j.GetByTarget(ctx, "Employee")
package journal
