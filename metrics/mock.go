package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	bracketsBuilt        map[string]int
	resultsRecorded      map[string]int
	propagationConflicts int
	standingsDurations   []float64
	cacheHits            int
	cacheMisses          int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		bracketsBuilt:      make(map[string]int),
		resultsRecorded:    make(map[string]int),
		standingsDurations: make([]float64, 0),
	}
}

func (m *Mock) IncBracketsBuilt(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketsBuilt[format]++
}

func (m *Mock) IncResultsRecorded(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsRecorded[outcome]++
}

func (m *Mock) IncPropagationConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.propagationConflicts++
}

func (m *Mock) ObserveStandingsDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsDurations = append(m.standingsDurations, seconds)
}

func (m *Mock) IncStandingsCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *Mock) IncStandingsCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// BracketsBuilt returns how many times IncBracketsBuilt was called for format.
func (m *Mock) BracketsBuilt(format string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketsBuilt[format]
}

// ResultsRecorded returns how many times IncResultsRecorded was called for outcome.
func (m *Mock) ResultsRecorded(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsRecorded[outcome]
}

func (m *Mock) PropagationConflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.propagationConflicts
}

func (m *Mock) StandingsComputations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.standingsDurations)
}

func (m *Mock) CacheHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits
}

func (m *Mock) CacheMisses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses
}
