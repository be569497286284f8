package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// Defining them in one place keeps naming and labeling consistent.
type Service struct {
	TournamentsCreated prometheus.Counter
	PhaseTransitions   prometheus.Counter
	ResultsSubmitted   prometheus.Counter
	RewardsDistributed prometheus.Counter
	ReportsArchived    prometheus.Counter
	WSConnections      prometheus.Gauge
	RequestDuration    prometheus.Histogram
}
