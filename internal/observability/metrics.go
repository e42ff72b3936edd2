package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for handled updates and
// HTTP requests.
type Metrics struct {
	mu           sync.Mutex
	updateCount  map[string]int64
	requestCount map[string]int64
	errorCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		updateCount:  make(map[string]int64),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordUpdate increments the counter for an inbound chat update routed
// to the given flow.
func (m *Metrics) RecordUpdate(flow string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCount[flow]++
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters keyed by origin and code.
func (m *Metrics) RecordError(origin, code string) {
	if m == nil {
		return
	}
	key := origin + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
