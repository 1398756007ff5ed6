package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/eventra/entrypass/internal/domain"
)

// Metrics provides basic in-memory counters. Scan outcomes get their own
// counter family because the interesting operational signal here is not
// HTTP status but how gates are failing (duplicates vs wrong event).
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	scanOutcomes map[domain.RedemptionStatus]int64
	issuedCount  int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		scanOutcomes: make(map[domain.RedemptionStatus]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
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

// RecordScan tallies a redemption attempt outcome.
func (m *Metrics) RecordScan(status domain.RedemptionStatus) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanOutcomes[status]++
}

// RecordIssued tallies a successful ticket issuance.
func (m *Metrics) RecordIssued() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issuedCount++
}

// Snapshot returns a copy of the current counters for health/debug surfaces.
func (m *Metrics) Snapshot() (requests, errors map[string]int64, scans map[domain.RedemptionStatus]int64, issued int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	requests = make(map[string]int64, len(m.requestCount))
	for k, v := range m.requestCount {
		requests[k] = v
	}
	errors = make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errors[k] = v
	}
	scans = make(map[domain.RedemptionStatus]int64, len(m.scanOutcomes))
	for k, v := range m.scanOutcomes {
		scans[k] = v
	}
	return requests, errors, scans, m.issuedCount
}
