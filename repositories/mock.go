package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// Mock repositories for service tests. Behavior is injected through the
// Func fields; calls that tests commonly assert on are recorded.

type TournamentRepoMock struct {
	mu sync.Mutex

	CreateFunc              func(ctx context.Context, tournament *models.Tournament) error
	GetByIDFunc             func(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetByIDForUpdateFunc    func(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	ListFunc                func(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdatePhaseFunc         func(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase) error
	SetEnrollmentClosedFunc func(ctx context.Context, exec SQLExecutor, id int, closedAt time.Time) error
	SetReportFunc           func(ctx context.Context, id int, reportKey string, archivedAt time.Time) error
	ListUnarchivedFunc      func(ctx context.Context, limit int) ([]models.Tournament, error)

	CreateCalls              []*models.Tournament
	UpdatePhaseCalls         []models.TournamentPhase
	SetEnrollmentClosedCalls []time.Time
	SetReportCalls           []string
}

var _ TournamentRepository = (*TournamentRepoMock)(nil)

func NewTournamentRepoMock() *TournamentRepoMock {
	return &TournamentRepoMock{}
}

func (m *TournamentRepoMock) Create(ctx context.Context, tournament *models.Tournament) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, tournament)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tournament)
	}
	return nil
}

func (m *TournamentRepoMock) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, exec, id)
	}
	return nil, ErrTournamentNotFound
}

func (m *TournamentRepoMock) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, exec, id)
	}
	return nil, ErrTournamentNotFound
}

func (m *TournamentRepoMock) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *TournamentRepoMock) UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase) error {
	m.mu.Lock()
	m.UpdatePhaseCalls = append(m.UpdatePhaseCalls, phase)
	m.mu.Unlock()
	if m.UpdatePhaseFunc != nil {
		return m.UpdatePhaseFunc(ctx, exec, id, phase)
	}
	return nil
}

func (m *TournamentRepoMock) SetEnrollmentClosed(ctx context.Context, exec SQLExecutor, id int, closedAt time.Time) error {
	m.mu.Lock()
	m.SetEnrollmentClosedCalls = append(m.SetEnrollmentClosedCalls, closedAt)
	m.mu.Unlock()
	if m.SetEnrollmentClosedFunc != nil {
		return m.SetEnrollmentClosedFunc(ctx, exec, id, closedAt)
	}
	return nil
}

func (m *TournamentRepoMock) SetReport(ctx context.Context, id int, reportKey string, archivedAt time.Time) error {
	m.mu.Lock()
	m.SetReportCalls = append(m.SetReportCalls, reportKey)
	m.mu.Unlock()
	if m.SetReportFunc != nil {
		return m.SetReportFunc(ctx, id, reportKey, archivedAt)
	}
	return nil
}

func (m *TournamentRepoMock) ListUnarchived(ctx context.Context, limit int) ([]models.Tournament, error) {
	if m.ListUnarchivedFunc != nil {
		return m.ListUnarchivedFunc(ctx, limit)
	}
	return nil, nil
}

type EnrollmentRepoMock struct {
	mu sync.Mutex

	CreateFunc            func(ctx context.Context, exec SQLExecutor, enrollment *models.Enrollment) error
	ListByTournamentFunc  func(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Enrollment, error)
	CountByTournamentFunc func(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)

	CreateCalls []*models.Enrollment
}

var _ EnrollmentRepository = (*EnrollmentRepoMock)(nil)

func NewEnrollmentRepoMock() *EnrollmentRepoMock {
	return &EnrollmentRepoMock{}
}

func (m *EnrollmentRepoMock) Create(ctx context.Context, exec SQLExecutor, enrollment *models.Enrollment) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, enrollment)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exec, enrollment)
	}
	return nil
}

func (m *EnrollmentRepoMock) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Enrollment, error) {
	if m.ListByTournamentFunc != nil {
		return m.ListByTournamentFunc(ctx, exec, tournamentID)
	}
	return nil, nil
}

func (m *EnrollmentRepoMock) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	if m.CountByTournamentFunc != nil {
		return m.CountByTournamentFunc(ctx, exec, tournamentID)
	}
	return 0, nil
}

type SessionRepoMock struct {
	mu sync.Mutex

	CreateBatchFunc             func(ctx context.Context, exec SQLExecutor, sessions []*models.Session) error
	GetByIDFunc                 func(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error)
	GetByIDForUpdateFunc        func(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error)
	GetByUIDFunc                func(ctx context.Context, exec SQLExecutor, tournamentID int, uid string) (*models.Session, error)
	ListByTournamentFunc        func(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListSessionsFilter) ([]models.Session, error)
	UpdateHeadToHeadResultFunc  func(ctx context.Context, exec SQLExecutor, id int, score1, score2 int, winnerID *int, submittedAt time.Time) error
	UpdateIndividualResultsFunc func(ctx context.Context, exec SQLExecutor, id int, results models.IndividualResults, status models.SessionStatus, submittedAt time.Time) error
	UpdateParticipantsFunc      func(ctx context.Context, exec SQLExecutor, id int, participant1ID, participant2ID *int) error
	CountIncompleteFunc         func(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) (int, error)

	CreateBatchCalls [][]*models.Session

	UpdateHeadToHeadResultCalls []struct {
		SessionID      int
		Score1, Score2 int
		WinnerID       *int
	}
	UpdateIndividualResultsCalls []struct {
		SessionID int
		Results   models.IndividualResults
		Status    models.SessionStatus
	}
	UpdateParticipantsCalls []struct {
		SessionID                      int
		Participant1ID, Participant2ID *int
	}
}

var _ SessionRepository = (*SessionRepoMock)(nil)

func NewSessionRepoMock() *SessionRepoMock {
	return &SessionRepoMock{}
}

func (m *SessionRepoMock) CreateBatch(ctx context.Context, exec SQLExecutor, sessions []*models.Session) error {
	m.mu.Lock()
	m.CreateBatchCalls = append(m.CreateBatchCalls, sessions)
	m.mu.Unlock()
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, exec, sessions)
	}
	return nil
}

func (m *SessionRepoMock) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, exec, id)
	}
	return nil, ErrSessionNotFound
}

func (m *SessionRepoMock) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, exec, id)
	}
	return nil, ErrSessionNotFound
}

func (m *SessionRepoMock) GetByUID(ctx context.Context, exec SQLExecutor, tournamentID int, uid string) (*models.Session, error) {
	if m.GetByUIDFunc != nil {
		return m.GetByUIDFunc(ctx, exec, tournamentID, uid)
	}
	return nil, ErrSessionNotFound
}

func (m *SessionRepoMock) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListSessionsFilter) ([]models.Session, error) {
	if m.ListByTournamentFunc != nil {
		return m.ListByTournamentFunc(ctx, exec, tournamentID, filter)
	}
	return nil, nil
}

func (m *SessionRepoMock) UpdateHeadToHeadResult(ctx context.Context, exec SQLExecutor, id int, score1, score2 int, winnerID *int, submittedAt time.Time) error {
	m.mu.Lock()
	m.UpdateHeadToHeadResultCalls = append(m.UpdateHeadToHeadResultCalls, struct {
		SessionID      int
		Score1, Score2 int
		WinnerID       *int
	}{SessionID: id, Score1: score1, Score2: score2, WinnerID: winnerID})
	m.mu.Unlock()
	if m.UpdateHeadToHeadResultFunc != nil {
		return m.UpdateHeadToHeadResultFunc(ctx, exec, id, score1, score2, winnerID, submittedAt)
	}
	return nil
}

func (m *SessionRepoMock) UpdateIndividualResults(ctx context.Context, exec SQLExecutor, id int, results models.IndividualResults, status models.SessionStatus, submittedAt time.Time) error {
	m.mu.Lock()
	m.UpdateIndividualResultsCalls = append(m.UpdateIndividualResultsCalls, struct {
		SessionID int
		Results   models.IndividualResults
		Status    models.SessionStatus
	}{SessionID: id, Results: results, Status: status})
	m.mu.Unlock()
	if m.UpdateIndividualResultsFunc != nil {
		return m.UpdateIndividualResultsFunc(ctx, exec, id, results, status, submittedAt)
	}
	return nil
}

func (m *SessionRepoMock) UpdateParticipants(ctx context.Context, exec SQLExecutor, id int, participant1ID, participant2ID *int) error {
	m.mu.Lock()
	m.UpdateParticipantsCalls = append(m.UpdateParticipantsCalls, struct {
		SessionID                      int
		Participant1ID, Participant2ID *int
	}{SessionID: id, Participant1ID: participant1ID, Participant2ID: participant2ID})
	m.mu.Unlock()
	if m.UpdateParticipantsFunc != nil {
		return m.UpdateParticipantsFunc(ctx, exec, id, participant1ID, participant2ID)
	}
	return nil
}

func (m *SessionRepoMock) CountIncomplete(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) (int, error) {
	if m.CountIncompleteFunc != nil {
		return m.CountIncompleteFunc(ctx, exec, tournamentID, segment)
	}
	return 0, nil
}

type GroupRepoMock struct {
	mu sync.Mutex

	CreateBatchFunc      func(ctx context.Context, exec SQLExecutor, groups []*models.Group) error
	ListByTournamentFunc func(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Group, error)

	CreateBatchCalls [][]*models.Group
}

var _ GroupRepository = (*GroupRepoMock)(nil)

func NewGroupRepoMock() *GroupRepoMock {
	return &GroupRepoMock{}
}

func (m *GroupRepoMock) CreateBatch(ctx context.Context, exec SQLExecutor, groups []*models.Group) error {
	m.mu.Lock()
	m.CreateBatchCalls = append(m.CreateBatchCalls, groups)
	m.mu.Unlock()
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, exec, groups)
	}
	return nil
}

func (m *GroupRepoMock) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Group, error) {
	if m.ListByTournamentFunc != nil {
		return m.ListByTournamentFunc(ctx, exec, tournamentID)
	}
	return nil, nil
}

type RankingRepoMock struct {
	mu sync.Mutex

	ReplaceForScopeFunc func(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment, entries []*models.RankingEntry) error
	ListByScopeFunc     func(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) ([]models.RankingEntry, error)

	ReplaceForScopeCalls []struct {
		Segment *models.PhaseSegment
		Entries []*models.RankingEntry
	}
}

var _ RankingRepository = (*RankingRepoMock)(nil)

func NewRankingRepoMock() *RankingRepoMock {
	return &RankingRepoMock{}
}

func (m *RankingRepoMock) ReplaceForScope(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment, entries []*models.RankingEntry) error {
	m.mu.Lock()
	m.ReplaceForScopeCalls = append(m.ReplaceForScopeCalls, struct {
		Segment *models.PhaseSegment
		Entries []*models.RankingEntry
	}{Segment: segment, Entries: entries})
	m.mu.Unlock()
	if m.ReplaceForScopeFunc != nil {
		return m.ReplaceForScopeFunc(ctx, exec, tournamentID, segment, entries)
	}
	return nil
}

func (m *RankingRepoMock) ListByScope(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) ([]models.RankingEntry, error) {
	if m.ListByScopeFunc != nil {
		return m.ListByScopeFunc(ctx, exec, tournamentID, segment)
	}
	return nil, nil
}

type RewardRepoMock struct {
	mu sync.Mutex

	CreateBatchFunc      func(ctx context.Context, exec SQLExecutor, rewards []*models.Reward) error
	ListByTournamentFunc func(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Reward, error)

	CreateBatchCalls [][]*models.Reward
}

var _ RewardRepository = (*RewardRepoMock)(nil)

func NewRewardRepoMock() *RewardRepoMock {
	return &RewardRepoMock{}
}

func (m *RewardRepoMock) CreateBatch(ctx context.Context, exec SQLExecutor, rewards []*models.Reward) error {
	m.mu.Lock()
	m.CreateBatchCalls = append(m.CreateBatchCalls, rewards)
	m.mu.Unlock()
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, exec, rewards)
	}
	return nil
}

func (m *RewardRepoMock) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Reward, error) {
	if m.ListByTournamentFunc != nil {
		return m.ListByTournamentFunc(ctx, exec, tournamentID)
	}
	return nil, nil
}

// TxManagerMock runs the transactional closure directly with a nil
// executor, which the repository mocks ignore.
type TxManagerMock struct {
	WithinTxFunc func(ctx context.Context, fn func(exec SQLExecutor) error) error
}

var _ TxManager = (*TxManagerMock)(nil)

func NewTxManagerMock() *TxManagerMock {
	return &TxManagerMock{}
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(nil)
}
