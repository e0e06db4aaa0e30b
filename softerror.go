package buildsignals

import (
	"sort"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/xerrors"
)

// SoftErrorRecord is one recorded soft error: a category plus the
// underlying cause. Soft errors are counted and reported but never
// propagated to the caller of Scope.
type SoftErrorRecord struct {
	Category string
	Err      error
}

// SoftErrorCounter accumulates soft errors encountered while processing
// signals. It is safe for concurrent use, since backends run on the
// receiver goroutine while a Summary reader may inspect counts from
// another.
type SoftErrorCounter struct {
	mu      sync.Mutex
	records []SoftErrorRecord
}

func newSoftErrorCounter() *SoftErrorCounter {
	return &SoftErrorCounter{}
}

func (c *SoftErrorCounter) record(category string, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, SoftErrorRecord{
		Category: category,
		Err:      xerrors.Errorf("%s: %w", category, err),
	})
}

// Count returns the number of soft errors recorded so far.
func (c *SoftErrorCounter) Count() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns a copy of the soft errors recorded so far.
func (c *SoftErrorCounter) Records() []SoftErrorRecord {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SoftErrorRecord, len(c.records))
	copy(out, c.records)
	return out
}

// CountsByCategory tallies recorded soft errors per category, and
// CategoriesSorted returns those category names in a stable order --
// callers reporting a per-category breakdown (Scope's log output) need
// deterministic output, while the underlying map itself is built and
// drained in whatever order records arrived.
func (c *SoftErrorCounter) CountsByCategory() map[string]int {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[string]int, len(c.records))
	for _, r := range c.records {
		counts[r.Category]++
	}
	return counts
}

// CategoriesSorted returns the keys of counts in sorted order, built on
// top of golang.org/x/exp/maps.Keys rather than a hand-rolled
// range-and-append loop.
func CategoriesSorted(counts map[string]int) []string {
	keys := maps.Keys(counts)
	sort.Strings(keys)
	return keys
}
