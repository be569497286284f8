package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionUIDConflict      = errors.New("session uid conflict within tournament")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
)

type ListSessionsFilter struct {
	Segment *models.PhaseSegment
	Status  *models.SessionStatus
	GroupID *int
}

type SessionRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, sessions []*models.Session) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error)
	GetByUID(ctx context.Context, exec SQLExecutor, tournamentID int, uid string) (*models.Session, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListSessionsFilter) ([]models.Session, error)
	UpdateHeadToHeadResult(ctx context.Context, exec SQLExecutor, id int, score1, score2 int, winnerID *int, submittedAt time.Time) error
	UpdateIndividualResults(ctx context.Context, exec SQLExecutor, id int, results models.IndividualResults, status models.SessionStatus, submittedAt time.Time) error
	UpdateParticipants(ctx context.Context, exec SQLExecutor, id int, participant1ID, participant2ID *int) error
	CountIncomplete(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) (int, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const sessionColumns = `
	id, tournament_id, uid, phase_segment, group_id, round_index, order_in_round,
	participant1_id, participant2_id, participant_ids, source1_uid, source2_uid,
	status, score1, score2, results, winner_id, submitted_at, created_at`

// CreateBatch persists a generated session list in order, inside the
// caller's transaction. Database ids and timestamps are written back
// onto the passed models.
func (r *postgresSessionRepository) CreateBatch(ctx context.Context, exec SQLExecutor, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	query := `
		INSERT INTO sessions (
			tournament_id, uid, phase_segment, group_id, round_index, order_in_round,
			participant1_id, participant2_id, participant_ids, source1_uid, source2_uid,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	var stmt *sql.Stmt
	var err error
	if preparer, ok := executor.(interface {
		PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	}); ok {
		stmt, err = preparer.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare session insert: %w", err)
		}
		defer stmt.Close()
	}

	for _, s := range sessions {
		var row *sql.Row
		args := []interface{}{
			s.TournamentID, s.UID, s.Segment, s.GroupID, s.RoundIndex, s.OrderInRound,
			s.Participant1ID, s.Participant2ID, toInt64Array(s.ParticipantIDs),
			s.Source1UID, s.Source2UID, s.Status,
		}
		if stmt != nil {
			row = stmt.QueryRowContext(ctx, args...)
		} else {
			row = executor.QueryRowContext(ctx, query, args...)
		}
		if scanErr := row.Scan(&s.ID, &s.CreatedAt); scanErr != nil {
			return r.handleSessionError(scanErr)
		}
	}
	return nil
}

func (r *postgresSessionRepository) scanSession(rowScanner interface {
	Scan(dest ...interface{}) error
}) (*models.Session, error) {
	s := &models.Session{}
	var pids pq.Int64Array
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.UID, &s.Segment, &s.GroupID, &s.RoundIndex, &s.OrderInRound,
		&s.Participant1ID, &s.Participant2ID, &pids, &s.Source1UID, &s.Source2UID,
		&s.Status, &s.Score1, &s.Score2, &s.Results, &s.WinnerID,
		&s.SubmittedAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ParticipantIDs = fromInt64Array(pids)
	return s, nil
}

func (r *postgresSessionRepository) findOne(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (*models.Session, error) {
	s, err := r.scanSession(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE id = $1`
	return r.findOne(ctx, r.getExecutor(exec), query, id)
}

// GetByIDForUpdate locks the session row so a single session's result
// submission is serialized.
func (r *postgresSessionRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresSessionRepository) GetByUID(ctx context.Context, exec SQLExecutor, tournamentID int, uid string) (*models.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE tournament_id = $1 AND uid = $2`
	return r.findOne(ctx, r.getExecutor(exec), query, tournamentID, uid)
}

func (r *postgresSessionRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListSessionsFilter) ([]models.Session, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE tournament_id = $1`

	args := []interface{}{tournamentID}
	argID := 2

	if filter.Segment != nil {
		query += fmt.Sprintf(" AND phase_segment = $%d", argID)
		args = append(args, *filter.Segment)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.GroupID != nil {
		query += fmt.Sprintf(" AND group_id = $%d", argID)
		args = append(args, *filter.GroupID)
		argID++
	}

	query += " ORDER BY round_index ASC, order_in_round ASC, id ASC"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		s, scanErr := r.scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *s)
	}

	return sessions, rows.Err()
}

// UpdateHeadToHeadResult completes a two-slot session. The status guard
// makes the write conditional: zero affected rows on an existing
// session means a concurrent submission already completed it.
func (r *postgresSessionRepository) UpdateHeadToHeadResult(ctx context.Context, exec SQLExecutor, id int, score1, score2 int, winnerID *int, submittedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE sessions
		SET score1 = $1, score2 = $2, winner_id = $3, status = $4, submitted_at = $5
		WHERE id = $6 AND status <> $7`

	result, err := executor.ExecContext(ctx, query,
		score1, score2, winnerID, models.SessionCompleted, submittedAt,
		id, models.SessionCompleted,
	)
	if err != nil {
		return r.handleSessionError(err)
	}
	return checkAffectedRows(result, ErrSessionAlreadyCompleted)
}

// UpdateIndividualResults replaces the per-participant results payload
// of an INDIVIDUAL_RANKING session, moving it to SUBMITTED or
// COMPLETED. Guarded the same way as head-to-head updates.
func (r *postgresSessionRepository) UpdateIndividualResults(ctx context.Context, exec SQLExecutor, id int, results models.IndividualResults, status models.SessionStatus, submittedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE sessions
		SET results = $1, status = $2, submitted_at = $3
		WHERE id = $4 AND status <> $5`

	result, err := executor.ExecContext(ctx, query,
		results, status, submittedAt, id, models.SessionCompleted,
	)
	if err != nil {
		return r.handleSessionError(err)
	}
	return checkAffectedRows(result, ErrSessionAlreadyCompleted)
}

// UpdateParticipants is the single atomic write that populates a
// dependent knockout session once all of its feeders are completed.
func (r *postgresSessionRepository) UpdateParticipants(ctx context.Context, exec SQLExecutor, id int, participant1ID, participant2ID *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE sessions SET participant1_id = $1, participant2_id = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, participant1ID, participant2ID, id)
	if err != nil {
		return r.handleSessionError(err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) CountIncomplete(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM sessions WHERE tournament_id = $1 AND status <> $2`
	args := []interface{}{tournamentID, models.SessionCompleted}
	if segment != nil {
		query += " AND phase_segment = $3"
		args = append(args, *segment)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresSessionRepository) handleSessionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "sessions_tournament_id_uid_key":
			return ErrSessionUIDConflict
		}
	}
	return err
}
