package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters for coordinator operations
// and cache behavior.
type Metrics struct {
	mu         sync.Mutex
	operations map[string]int64
	cache      map[string]int64
	events     map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		operations: make(map[string]int64),
		cache:      make(map[string]int64),
		events:     make(map[string]int64),
	}
}

// RecordOperation increments the counter for an operation outcome.
func (m *Metrics) RecordOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op+"|"+result]++
}

// RecordCacheHit increments the hit counter for a cache kind.
func (m *Metrics) RecordCacheHit(kind string) {
	m.recordCache(kind, "hit")
}

// RecordCacheMiss increments the miss counter for a cache kind.
func (m *Metrics) RecordCacheMiss(kind string) {
	m.recordCache(kind, "miss")
}

func (m *Metrics) recordCache(kind, outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[kind+"|"+outcome]++
}

// RecordEvent counts a published coordinator event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventType]++
}

// OperationCount reads an operation counter.
func (m *Metrics) OperationCount(op, result string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operations[op+"|"+result]
}

// CacheCount reads a cache counter.
func (m *Metrics) CacheCount(kind, outcome string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[kind+"|"+outcome]
}

// EventCount reads an event counter.
func (m *Metrics) EventCount(eventType string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[eventType]
}
