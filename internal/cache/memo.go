package cache

import (
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/codepulse/pkg/models"
)

// Memo is a bounded in-process result cache keyed by xxhash digests.
// The full key is kept alongside each entry, so digest collisions miss
// instead of returning the wrong result. Oldest entries are evicted first.
// Memo is safe for concurrent use.
type Memo struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]memoEntry
	order    []uint64
	hits     uint64
	misses   uint64
}

type memoEntry struct {
	key    string
	result models.AnalysisResult
}

// NewMemo creates a memo holding at most capacity results.
func NewMemo(capacity int) *Memo {
	if capacity < 1 {
		capacity = 1
	}
	return &Memo{
		capacity: capacity,
		entries:  make(map[uint64]memoEntry, capacity),
	}
}

// Get returns a copy of the result stored for key.
func (m *Memo) Get(key string) (models.AnalysisResult, bool) {
	sum := xxhash.Sum64String(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[sum]
	if !ok || e.key != key {
		m.misses++
		return models.AnalysisResult{}, false
	}
	m.hits++
	return cloneResult(e.result), true
}

// Put stores result under key.
func (m *Memo) Put(key string, result models.AnalysisResult) error {
	sum := xxhash.Sum64String(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[sum]; !ok {
		if len(m.order) >= m.capacity {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, sum)
	}
	m.entries[sum] = memoEntry{key: key, result: cloneResult(result)}
	return nil
}

// Len returns the number of stored results.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// HitRate returns hits, misses.
func (m *Memo) HitRate() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func cloneResult(r models.AnalysisResult) models.AnalysisResult {
	r.UnusedVariables = slices.Clone(r.UnusedVariables)
	r.Suggestions = slices.Clone(r.Suggestions)
	return r
}
