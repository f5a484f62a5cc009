package metrics

// Metrics is what the engine reports about its own work.
type Metrics interface {
	IncBracketsBuilt(format string)
	IncResultsRecorded(outcome string)
	IncPropagationConflicts()
	ObserveStandingsDuration(seconds float64)
	IncStandingsCacheHit()
	IncStandingsCacheMiss()
}

// Outcome labels for IncResultsRecorded.
const (
	OutcomeDecided    = "decided"
	OutcomeShootout   = "shootout"
	OutcomeDraw       = "draw"
	OutcomeCorrection = "correction"
	OutcomeReset      = "reset"
)
