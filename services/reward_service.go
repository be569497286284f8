package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/football-investment/practice-booking-system-sub021/config"
	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
)

type RewardService interface {
	DistributeRewards(ctx context.Context, tournamentID, callerID int) ([]models.Reward, error)
}

type rewardService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	rankingRepo    repositories.RankingRepository
	rewardRepo     repositories.RewardRepository
	table          config.RewardTable
	publisher      progress.Publisher
	metrics        metrics.Metrics
}

func NewRewardService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	rankingRepo repositories.RankingRepository,
	rewardRepo repositories.RewardRepository,
	table config.RewardTable,
	publisher progress.Publisher,
	collector metrics.Metrics,
) RewardService {
	return &rewardService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		rankingRepo:    rankingRepo,
		rewardRepo:     rewardRepo,
		table:          table,
		publisher:      publisher,
		metrics:        collector,
	}
}

// DistributeRewards pays out the top winner_count ranks exactly once.
// The tournament row lock is taken before the guard check, so two
// concurrent distribution calls serialize: the first inserts, the
// second sees the existing rows. A retry with identical parameters
// returns the stored records; anything else is a conflict.
func (s *rewardService) DistributeRewards(ctx context.Context, tournamentID, callerID int) ([]models.Reward, error) {
	var (
		rewards  []models.Reward
		repeated bool
	)

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != callerID {
			return ErrForbiddenOperation
		}

		existing, err := s.rewardRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load rewards for tournament %d: %w", tournamentID, err)
		}
		entries, err := s.rankingRepo.ListByScope(ctx, exec, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load final ranking for tournament %d: %w", tournamentID, err)
		}

		if len(existing) > 0 {
			computed := s.buildRewards(t, entries)
			if rewardSetsEqual(existing, computed) {
				rewards = existing
				repeated = true
				return nil
			}
			return ErrAlreadyDistributed
		}

		if t.Phase != models.PhaseCompleted {
			return transitionError(t.Phase, models.PhaseRewardsDistributed)
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: tournament %d", ErrRankingNotFound, tournamentID)
		}

		computed := s.buildRewards(t, entries)
		operationKey := uuid.NewString()
		pointers := make([]*models.Reward, len(computed))
		for i := range computed {
			computed[i].OperationKey = operationKey
			pointers[i] = &computed[i]
		}
		if err := s.rewardRepo.CreateBatch(ctx, exec, pointers); err != nil {
			if errors.Is(err, repositories.ErrRewardDuplicate) {
				return ErrAlreadyDistributed
			}
			return fmt.Errorf("failed to persist rewards for tournament %d: %w", tournamentID, err)
		}

		if err := applyPhaseTransition(ctx, exec, s.tournamentRepo, t, models.PhaseRewardsDistributed); err != nil {
			return err
		}
		rewards = computed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !repeated {
		s.metrics.IncRewardsDistributed()
		s.metrics.IncPhaseTransitions()
		s.publisher.PublishTournament(tournamentID, progress.EventRewardsDistributed, map[string]interface{}{
			"tournament_id": tournamentID,
			"reward_count":  len(rewards),
		})
		s.publisher.PublishTournament(tournamentID, progress.EventPhaseChanged, map[string]interface{}{
			"tournament_id": tournamentID,
			"phase":         models.PhaseRewardsDistributed,
		})
	}
	return rewards, nil
}

// buildRewards maps the top winner_count ranking entries through the
// reward table. XP is split evenly across the tournament's skills,
// rounded down per skill.
func (s *rewardService) buildRewards(t *models.Tournament, entries []models.RankingEntry) []models.Reward {
	winnerCount := t.WinnerCount
	if winnerCount > len(entries) {
		winnerCount = len(entries)
	}

	rewards := make([]models.Reward, 0, winnerCount)
	for _, entry := range entries {
		if entry.Rank > winnerCount {
			break
		}
		tier := s.table.TierFor(entry.Rank)

		skillXP := models.SkillXP{}
		if len(t.SkillsToTest) > 0 {
			perSkill := tier.XP / len(t.SkillsToTest)
			for _, skill := range t.SkillsToTest {
				skillXP[skill] = perSkill
			}
		}

		rewards = append(rewards, models.Reward{
			TournamentID:  t.ID,
			ParticipantID: entry.ParticipantID,
			Rank:          entry.Rank,
			Credits:       tier.Credits,
			XP:            tier.XP,
			SkillXP:       skillXP,
		})
	}
	return rewards
}

func rewardSetsEqual(existing, computed []models.Reward) bool {
	if len(existing) != len(computed) {
		return false
	}
	byParticipant := make(map[int]models.Reward, len(existing))
	for _, r := range existing {
		byParticipant[r.ParticipantID] = r
	}
	for _, c := range computed {
		e, ok := byParticipant[c.ParticipantID]
		if !ok || !e.Equal(c) {
			return false
		}
	}
	return true
}
