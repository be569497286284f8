package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/lib/pq"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, groups []*models.Group) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Group, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) CreateBatch(ctx context.Context, exec SQLExecutor, groups []*models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (tournament_id, label, position, member_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for _, g := range groups {
		err := executor.QueryRowContext(ctx, query,
			g.TournamentID, g.Label, g.Position, toInt64Array(g.MemberIDs),
		).Scan(&g.ID)
		if err != nil {
			return fmt.Errorf("failed to create group %s: %w", g.Label, err)
		}
	}
	return nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Group, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, label, position, member_ids
		FROM groups
		WHERE tournament_id = $1
		ORDER BY position ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		var members pq.Int64Array
		if scanErr := rows.Scan(&g.ID, &g.TournamentID, &g.Label, &g.Position, &members); scanErr != nil {
			return nil, scanErr
		}
		g.MemberIDs = fromInt64Array(members)
		groups = append(groups, g)
	}

	return groups, rows.Err()
}
