package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncBracketsBuilt("single_elimination")
	s.IncBracketsBuilt("single_elimination")
	s.IncResultsRecorded(OutcomeShootout)
	s.IncPropagationConflicts()
	s.IncStandingsCacheHit()
	s.IncStandingsCacheMiss()
	s.IncStandingsCacheMiss()
	s.ObserveStandingsDuration(0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.BracketsBuilt.WithLabelValues("single_elimination")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.ResultsRecorded.WithLabelValues(OutcomeShootout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.PropagationConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.StandingsCacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.StandingsCacheMisses))
	assert.Equal(t, 1, testutil.CollectAndCount(s.StandingsDuration))
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncPropagationConflicts()

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "competition_propagation_conflicts_total 1"))
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.IncResultsRecorded(OutcomeDecided)
	m.IncResultsRecorded(OutcomeDecided)
	m.IncStandingsCacheHit()
	m.ObserveStandingsDuration(1)

	assert.Equal(t, 2, m.ResultsRecorded(OutcomeDecided))
	assert.Equal(t, 0, m.ResultsRecorded(OutcomeDraw))
	assert.Equal(t, 1, m.CacheHits())
	assert.Equal(t, 1, m.StandingsComputations())
}
