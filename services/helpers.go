package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
)

func isValidPhaseTransition(current, next models.TournamentPhase) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentPhase][]models.TournamentPhase{
		models.PhaseDraft:              {models.PhaseEnrolling},
		models.PhaseEnrolling:          {models.PhaseInProgress, models.PhaseGroupStage},
		models.PhaseInProgress:         {models.PhaseCompleted},
		models.PhaseGroupStage:         {models.PhaseKnockout},
		models.PhaseKnockout:           {models.PhaseCompleted},
		models.PhaseCompleted:          {models.PhaseRewardsDistributed},
		models.PhaseRewardsDistributed: {},
	}
	for _, allowedNext := range allowedTransitions[current] {
		if next == allowedNext {
			return true
		}
	}
	return false
}

// transitionError reports a jump the phase machine does not allow,
// naming both the current and the attempted phase.
func transitionError(current, next models.TournamentPhase) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
}

// structuralMinimum is the smallest roster each format can run with.
func structuralMinimum(format models.TournamentFormat) int {
	switch format {
	case models.FormatHeadToHead:
		return 2
	case models.FormatGroupAndKnockout:
		return 4
	default:
		return 1
	}
}

// qualifiersPerGroup returns the configured advancement count, defaulting
// to the top two of each group.
func qualifiersPerGroup(t *models.Tournament) int {
	if t.QualifiersPerGroup > 0 {
		return t.QualifiersPerGroup
	}
	return 2
}

// lockTournament reads the tournament row FOR UPDATE. Every lifecycle
// mutation takes this lock before checking its guards, so concurrent
// operations on one tournament serialize.
func lockTournament(ctx context.Context, exec repositories.SQLExecutor, repo repositories.TournamentRepository, id int) (*models.Tournament, error) {
	tournament, err := repo.GetByIDForUpdate(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament %d: %w", id, err)
	}
	return tournament, nil
}

// applyPhaseTransition validates the jump against the phase machine,
// persists it and mirrors it on the in-memory tournament. Re-entering
// the current phase is rejected.
func applyPhaseTransition(ctx context.Context, exec repositories.SQLExecutor, repo repositories.TournamentRepository, t *models.Tournament, next models.TournamentPhase) error {
	if t.Phase == next || !isValidPhaseTransition(t.Phase, next) {
		return transitionError(t.Phase, next)
	}
	if err := repo.UpdatePhase(ctx, exec, t.ID, next); err != nil {
		return fmt.Errorf("failed to move tournament %d to %s: %w", t.ID, next, err)
	}
	t.Phase = next
	return nil
}

func derefSessions(sessions []*models.Session) []models.Session {
	result := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if s != nil {
			result = append(result, *s)
		}
	}
	return result
}

func derefGroups(groups []*models.Group) []models.Group {
	result := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if g != nil {
			result = append(result, *g)
		}
	}
	return result
}

func entryPointers(entries []models.RankingEntry) []*models.RankingEntry {
	result := make([]*models.RankingEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result
}

func isValidTournamentFormat(f models.TournamentFormat) bool {
	switch f {
	case models.FormatIndividualRanking, models.FormatHeadToHead, models.FormatGroupAndKnockout:
		return true
	}
	return false
}

func isValidScoringMetric(m models.ScoringMetric) bool {
	switch m {
	case models.MetricRoundsBased, models.MetricTimeBased, models.MetricScoreBased,
		models.MetricDistanceBased, models.MetricPlacement:
		return true
	}
	return false
}

func isValidBracketMode(m models.BracketMode) bool {
	switch m {
	case models.BracketLeague, models.BracketKnockout:
		return true
	}
	return false
}

func isValidTournamentPhase(p models.TournamentPhase) bool {
	switch p {
	case models.PhaseDraft, models.PhaseEnrolling, models.PhaseInProgress,
		models.PhaseGroupStage, models.PhaseKnockout, models.PhaseCompleted,
		models.PhaseRewardsDistributed:
		return true
	}
	return false
}
