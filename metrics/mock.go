package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	tournamentsCreated int
	phaseTransitions   int
	resultsSubmitted   int
	rewardsDistributed int
	reportsArchived    int
	wsConnections      int
	requestDurations   []float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		requestDurations: make([]float64, 0),
	}
}

func (m *Mock) IncTournamentsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentsCreated++
}

func (m *Mock) IncPhaseTransitions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseTransitions++
}

func (m *Mock) IncResultsSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsSubmitted++
}

func (m *Mock) IncRewardsDistributed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewardsDistributed++
}

func (m *Mock) IncReportsArchived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportsArchived++
}

func (m *Mock) IncWSConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsConnections++
}

func (m *Mock) DecWSConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsConnections--
}

func (m *Mock) ObserveRequestDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestDurations = append(m.requestDurations, seconds)
}

// TournamentsCreated returns the number of times IncTournamentsCreated was called.
func (m *Mock) TournamentsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentsCreated
}

// PhaseTransitions returns the number of times IncPhaseTransitions was called.
func (m *Mock) PhaseTransitions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phaseTransitions
}

// ResultsSubmitted returns the number of times IncResultsSubmitted was called.
func (m *Mock) ResultsSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsSubmitted
}

// RewardsDistributed returns the number of times IncRewardsDistributed was called.
func (m *Mock) RewardsDistributed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rewardsDistributed
}

// ReportsArchived returns the number of times IncReportsArchived was called.
func (m *Mock) ReportsArchived() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reportsArchived
}

// WSConnectionCount returns the current gauge value tracked by the mock.
func (m *Mock) WSConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wsConnections
}
