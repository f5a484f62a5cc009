package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the engine.
type Service struct {
	BracketsBuilt        *prometheus.CounterVec
	ResultsRecorded      *prometheus.CounterVec
	PropagationConflicts prometheus.Counter
	StandingsDuration    prometheus.Histogram
	StandingsCacheHits   prometheus.Counter
	StandingsCacheMisses prometheus.Counter
}
