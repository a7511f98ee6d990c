package observability

import (
	"maps"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	modelCalls    map[string]int64
	fallbackCount map[string]int64
	modelLatency  time.Duration
	replays       int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests         map[string]int64 `json:"requests"`
	Errors           map[string]int64 `json:"errors"`
	ModelCalls       map[string]int64 `json:"model_calls"`
	Fallbacks        map[string]int64 `json:"fallbacks"`
	ModelLatencyMSum int64            `json:"model_latency_ms_sum"`
	ExampleReplays   int64            `json:"example_replays"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		modelCalls:    make(map[string]int64),
		fallbackCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordModelCall counts a re-triage by outcome (model, cache, or an error code).
func (m *Metrics) RecordModelCall(outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelCalls[outcome]++
	m.modelLatency += latency
}

// RecordExampleReplay counts a stored demo example served without a model call.
func (m *Metrics) RecordExampleReplay() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replays++
}

// RecordFallback counts a field replaced by the resident's own value.
func (m *Metrics) RecordFallback(field string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackCount[field]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Requests:         maps.Clone(m.requestCount),
		Errors:           maps.Clone(m.errorCount),
		ModelCalls:       maps.Clone(m.modelCalls),
		Fallbacks:        maps.Clone(m.fallbackCount),
		ModelLatencyMSum: m.modelLatency.Milliseconds(),
		ExampleReplays:   m.replays,
	}
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
