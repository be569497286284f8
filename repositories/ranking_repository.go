package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

type RankingRepository interface {
	ReplaceForScope(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment, entries []*models.RankingEntry) error
	ListByScope(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) ([]models.RankingEntry, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForScope deletes every entry of the (tournament, segment)
// scope and inserts the new set. Rankings are never patched row by
// row; callers run this inside the transaction of the phase boundary
// that recomputed them.
func (r *postgresRankingRepository) ReplaceForScope(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment, entries []*models.RankingEntry) error {
	executor := r.getExecutor(exec)

	_, err := executor.ExecContext(ctx,
		`DELETE FROM rankings WHERE tournament_id = $1 AND phase_segment IS NOT DISTINCT FROM $2`,
		tournamentID, segment,
	)
	if err != nil {
		return fmt.Errorf("failed to clear ranking scope: %w", err)
	}

	query := `
		INSERT INTO rankings (
			tournament_id, phase_segment, group_id, participant_id, rank, points,
			metric_value, wins, draws, losses, score_for, score_against, missing_result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	for _, e := range entries {
		err := executor.QueryRowContext(ctx, query,
			e.TournamentID, e.Segment, e.GroupID, e.ParticipantID, e.Rank, e.Points,
			e.MetricValue, e.Wins, e.Draws, e.Losses, e.ScoreFor, e.ScoreAgainst, e.MissingResult,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert ranking entry for participant %d: %w", e.ParticipantID, err)
		}
	}
	return nil
}

func (r *postgresRankingRepository) ListByScope(ctx context.Context, exec SQLExecutor, tournamentID int, segment *models.PhaseSegment) ([]models.RankingEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, phase_segment, group_id, participant_id, rank, points,
		       metric_value, wins, draws, losses, score_for, score_against, missing_result, created_at
		FROM rankings
		WHERE tournament_id = $1 AND phase_segment IS NOT DISTINCT FROM $2
		ORDER BY group_id ASC NULLS FIRST, rank ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID, segment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.RankingEntry, 0)
	for rows.Next() {
		var e models.RankingEntry
		if scanErr := rows.Scan(
			&e.ID, &e.TournamentID, &e.Segment, &e.GroupID, &e.ParticipantID, &e.Rank, &e.Points,
			&e.MetricValue, &e.Wins, &e.Draws, &e.Losses, &e.ScoreFor, &e.ScoreAgainst,
			&e.MissingResult, &e.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
