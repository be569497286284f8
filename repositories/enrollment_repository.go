package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/lib/pq"
)

var (
	ErrEnrollmentNotFound          = errors.New("enrollment not found")
	ErrEnrollmentDuplicate         = errors.New("participant already enrolled in this tournament")
	ErrEnrollmentTournamentInvalid = errors.New("enrollment tournament reference invalid")
)

type EnrollmentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, enrollment *models.Enrollment) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Enrollment, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresEnrollmentRepository struct {
	db *sql.DB
}

func NewPostgresEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &postgresEnrollmentRepository{db: db}
}

func (r *postgresEnrollmentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create assigns the next free seed for the tournament in the same
// statement, so enrollment order survives concurrent inserts.
func (r *postgresEnrollmentRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Enrollment) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO enrollments (tournament_id, participant_id, seed)
		VALUES ($1, $2, (SELECT COALESCE(MAX(seed), 0) + 1 FROM enrollments WHERE tournament_id = $1))
		RETURNING id, seed, created_at`

	err := executor.QueryRowContext(ctx, query, e.TournamentID, e.ParticipantID).
		Scan(&e.ID, &e.Seed, &e.CreatedAt)

	return r.handleEnrollmentError(err)
}

func (r *postgresEnrollmentRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Enrollment, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, participant_id, seed, created_at
		FROM enrollments
		WHERE tournament_id = $1
		ORDER BY seed ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if scanErr := rows.Scan(&e.ID, &e.TournamentID, &e.ParticipantID, &e.Seed, &e.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

func (r *postgresEnrollmentRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresEnrollmentRepository) handleEnrollmentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation, "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "enrollments_tournament_id_participant_id_key":
			return ErrEnrollmentDuplicate
		case "enrollments_tournament_id_fkey":
			return ErrEnrollmentTournamentInvalid
		}
	}
	return err
}
