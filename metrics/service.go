package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BracketsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_brackets_built_total",
			Help: "Brackets and league schedules generated, by format.",
		}, []string{"format"}),
		ResultsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_results_recorded_total",
			Help: "Match results written, by outcome.",
		}, []string{"outcome"}),
		PropagationConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "competition_propagation_conflicts_total",
			Help: "Corrections rejected because a downstream match was already played.",
		}),
		StandingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "competition_standings_duration_seconds",
			Help:    "Time spent computing a league table from the match set.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		StandingsCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "competition_standings_cache_hits_total",
			Help: "Standings served from the cache.",
		}),
		StandingsCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "competition_standings_cache_misses_total",
			Help: "Standings requests that had to be computed.",
		}),
	}

	reg.MustRegister(
		s.BracketsBuilt,
		s.ResultsRecorded,
		s.PropagationConflicts,
		s.StandingsDuration,
		s.StandingsCacheHits,
		s.StandingsCacheMisses,
	)

	return s
}

func (s *Service) IncBracketsBuilt(format string) {
	s.BracketsBuilt.WithLabelValues(format).Inc()
}

func (s *Service) IncResultsRecorded(outcome string) {
	s.ResultsRecorded.WithLabelValues(outcome).Inc()
}

func (s *Service) IncPropagationConflicts() {
	s.PropagationConflicts.Inc()
}

func (s *Service) ObserveStandingsDuration(seconds float64) {
	s.StandingsDuration.Observe(seconds)
}

func (s *Service) IncStandingsCacheHit() {
	s.StandingsCacheHits.Inc()
}

func (s *Service) IncStandingsCacheMiss() {
	s.StandingsCacheMisses.Inc()
}
