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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
)

type ListTournamentsFilter struct {
	Format      *models.TournamentFormat
	Phase       *models.TournamentPhase
	OrganizerID *int
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase) error
	SetEnrollmentClosed(ctx context.Context, exec SQLExecutor, id int, closedAt time.Time) error
	SetReport(ctx context.Context, id int, reportKey string, archivedAt time.Time) error
	ListUnarchived(ctx context.Context, limit int) ([]models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, format, scoring_metric, bracket_mode, phase,
	round_count, winner_count, group_size_hint, qualifiers_per_group,
	skills_to_test, organizer_id, enrollment_closed_at, archived_at,
	report_key, created_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, description, format, scoring_metric, bracket_mode, phase,
			round_count, winner_count, group_size_hint, qualifiers_per_group,
			skills_to_test, organizer_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Description, t.Format, t.ScoringMetric, t.BracketMode, t.Phase,
		t.RoundCount, t.WinnerCount, t.GroupSizeHint, t.QualifiersPerGroup,
		pq.Array(t.SkillsToTest), t.OrganizerID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	var skills pq.StringArray
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Format, &t.ScoringMetric, &t.BracketMode, &t.Phase,
		&t.RoundCount, &t.WinnerCount, &t.GroupSizeHint, &t.QualifiersPerGroup,
		&skills, &t.OrganizerID, &t.EnrollmentClosedAt, &t.ArchivedAt,
		&t.ReportKey, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.SkillsToTest = skills
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the tournament row for the duration of the
// surrounding transaction. Phase-mutating operations take this lock
// before their guard check so two concurrent requests cannot both
// observe the pre-transition phase.
func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}
	if filter.Phase != nil {
		query += fmt.Sprintf(" AND phase = $%d", argID)
		args = append(args, *filter.Phase)
		argID++
	}
	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var skills pq.StringArray
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.Format, &t.ScoringMetric, &t.BracketMode, &t.Phase,
			&t.RoundCount, &t.WinnerCount, &t.GroupSizeHint, &t.QualifiersPerGroup,
			&skills, &t.OrganizerID, &t.EnrollmentClosedAt, &t.ArchivedAt,
			&t.ReportKey, &t.CreatedAt, &t.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		t.SkillsToTest = skills
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdatePhase(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET phase = $1, updated_at = now() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, phase, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetEnrollmentClosed(ctx context.Context, exec SQLExecutor, id int, closedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET enrollment_closed_at = $1, updated_at = now() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, closedAt, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetReport(ctx context.Context, id int, reportKey string, archivedAt time.Time) error {
	query := `UPDATE tournaments SET report_key = $1, archived_at = $2, updated_at = now() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, reportKey, archivedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament report key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListUnarchived returns finished tournaments that still have no
// archived report. The archive sweep job feeds on this.
func (r *postgresTournamentRepository) ListUnarchived(ctx context.Context, limit int) ([]models.Tournament, error) {
	phase := models.PhaseRewardsDistributed
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE phase = $1 AND archived_at IS NULL
		ORDER BY updated_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, phase, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var skills pq.StringArray
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.Format, &t.ScoringMetric, &t.BracketMode, &t.Phase,
			&t.RoundCount, &t.WinnerCount, &t.GroupSizeHint, &t.QualifiersPerGroup,
			&skills, &t.OrganizerID, &t.EnrollmentClosedAt, &t.ArchivedAt,
			&t.ReportKey, &t.CreatedAt, &t.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		t.SkillsToTest = skills
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "tournaments_organizer_id_name_key":
			return ErrTournamentNameConflict
		}
	}
	return err
}
