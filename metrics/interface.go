package metrics

// Metrics is the counter surface the services record lifecycle events
// through. Service and Mock implement it.
type Metrics interface {
	IncTournamentsCreated()
	IncPhaseTransitions()
	IncResultsSubmitted()
	IncRewardsDistributed()
	IncReportsArchived()
	IncWSConnections()
	DecWSConnections()
	ObserveRequestDuration(seconds float64)
}
