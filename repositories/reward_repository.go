package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/lib/pq"
)

var (
	ErrRewardNotFound  = errors.New("reward not found")
	ErrRewardDuplicate = errors.New("reward already recorded for participant in this tournament")
)

type RewardRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, rewards []*models.Reward) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Reward, error)
}

type postgresRewardRepository struct {
	db *sql.DB
}

func NewPostgresRewardRepository(db *sql.DB) RewardRepository {
	return &postgresRewardRepository{db: db}
}

func (r *postgresRewardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch writes every reward of one distribution run. Callers run
// it inside the transaction that flips the tournament phase, so either
// all records and the phase land or none do.
func (r *postgresRewardRepository) CreateBatch(ctx context.Context, exec SQLExecutor, rewards []*models.Reward) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rewards (tournament_id, participant_id, rank, credits, xp, skill_xp, operation_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	for _, reward := range rewards {
		err := executor.QueryRowContext(ctx, query,
			reward.TournamentID, reward.ParticipantID, reward.Rank,
			reward.Credits, reward.XP, reward.SkillXP, reward.OperationKey,
		).Scan(&reward.ID, &reward.CreatedAt)
		if err != nil {
			return r.handleRewardError(err)
		}
	}
	return nil
}

func (r *postgresRewardRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Reward, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, participant_id, rank, credits, xp, skill_xp, operation_key, created_at
		FROM rewards
		WHERE tournament_id = $1
		ORDER BY rank ASC, participant_id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rewards := make([]models.Reward, 0)
	for rows.Next() {
		var reward models.Reward
		if scanErr := rows.Scan(
			&reward.ID, &reward.TournamentID, &reward.ParticipantID, &reward.Rank,
			&reward.Credits, &reward.XP, &reward.SkillXP, &reward.OperationKey, &reward.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		rewards = append(rewards, reward)
	}

	return rewards, rows.Err()
}

func (r *postgresRewardRepository) handleRewardError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation on (tournament_id, participant_id)
		switch pqErr.Constraint {
		case "rewards_tournament_id_participant_id_key":
			return ErrRewardDuplicate
		}
	}
	return err
}
