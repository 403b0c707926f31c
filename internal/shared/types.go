package shared

import (
	"fmt"
	"sort"
	"sync"
)

// QueryParam is one URL query parameter, kept ordered for deterministic URLs.
type QueryParam struct {
	Name  string
	Value string
}

// ErrCancelled is returned when the user backs out of an interactive prompt.
var ErrCancelled = fmt.Errorf("cancelled by user")

// ErrNoItemsSelected is returned when an interactive selection picks nothing.
var ErrNoItemsSelected = fmt.Errorf("no items selected")

// BatchStats accumulates per-path outcomes of a batch operation. A failing
// path never stops the batch; its error is recorded and the rest continue.
type BatchStats struct {
	mu           sync.Mutex
	SuccessCount int
	SkippedCount int
	FailedCount  int
	Errors       map[string]error
}

// NewBatchStats creates an empty BatchStats.
func NewBatchStats() *BatchStats {
	return &BatchStats{Errors: make(map[string]error)}
}

// Success records a successful path.
func (s *BatchStats) Success() {
	s.mu.Lock()
	s.SuccessCount++
	s.mu.Unlock()
}

// Skip records a path that completed without a usable result.
func (s *BatchStats) Skip() {
	s.mu.Lock()
	s.SkippedCount++
	s.mu.Unlock()
}

// Fail records the error for path.
func (s *BatchStats) Fail(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedCount++
	if s.Errors == nil {
		s.Errors = make(map[string]error)
	}
	s.Errors[path] = err
}

// FailedPaths returns the failed paths in sorted order.
func (s *BatchStats) FailedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.Errors))
	for p := range s.Errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Err returns nil when nothing failed, otherwise an error summarising the
// failures.
func (s *BatchStats) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailedCount == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d items failed", s.FailedCount, s.SuccessCount+s.SkippedCount+s.FailedCount)
}

// PrintSummary prints a short coloured summary followed by each failure.
func (s *BatchStats) PrintSummary(operation string) {
	ColorHeader.Printf("\n%s summary\n", operation)
	ColorSuccess.Printf("  ✅ succeeded: %d\n", s.SuccessCount)
	if s.SkippedCount > 0 {
		ColorWarning.Printf("  ⏭️  no match: %d\n", s.SkippedCount)
	}
	if s.FailedCount > 0 {
		ColorError.Printf("  ❌ failed: %d\n", s.FailedCount)
		for _, p := range s.FailedPaths() {
			ColorError.Printf("     %s: %v\n", p, s.Errors[p])
		}
	}
}
