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
		TournamentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_created_total",
			Help: "The total number of tournaments created.",
		}),
		PhaseTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_phase_transitions_total",
			Help: "The total number of lifecycle phase transitions applied.",
		}),
		ResultsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_results_submitted_total",
			Help: "The total number of session results accepted.",
		}),
		RewardsDistributed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_rewards_distributed_total",
			Help: "The total number of reward distribution runs that committed.",
		}),
		ReportsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_reports_archived_total",
			Help: "The total number of final reports uploaded to object storage.",
		}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tournament_ws_connections",
			Help: "The number of websocket clients currently subscribed to tournament rooms.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tournament_http_request_duration_seconds",
			Help:    "The duration of HTTP requests handled by the API.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	reg.MustRegister(
		s.TournamentsCreated,
		s.PhaseTransitions,
		s.ResultsSubmitted,
		s.RewardsDistributed,
		s.ReportsArchived,
		s.WSConnections,
		s.RequestDuration,
	)

	return s
}

func (s *Service) IncTournamentsCreated() {
	s.TournamentsCreated.Inc()
}

func (s *Service) IncPhaseTransitions() {
	s.PhaseTransitions.Inc()
}

func (s *Service) IncResultsSubmitted() {
	s.ResultsSubmitted.Inc()
}

func (s *Service) IncRewardsDistributed() {
	s.RewardsDistributed.Inc()
}

func (s *Service) IncReportsArchived() {
	s.ReportsArchived.Inc()
}

func (s *Service) IncWSConnections() {
	s.WSConnections.Inc()
}

func (s *Service) DecWSConnections() {
	s.WSConnections.Dec()
}

func (s *Service) ObserveRequestDuration(seconds float64) {
	s.RequestDuration.Observe(seconds)
}
