package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/football-investment/practice-booking-system-sub021/cache"
	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	GetTournamentDetails(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error)
	ListParticipants(ctx context.Context, tournamentID int) ([]models.Enrollment, error)
	ListSessions(ctx context.Context, tournamentID int, filter repositories.ListSessionsFilter) ([]models.Session, error)
	GetRanking(ctx context.Context, tournamentID int) ([]models.RankingEntry, error)
}

type CreateTournamentInput struct {
	Name               string                  `json:"name" validate:"required"`
	Description        *string                 `json:"description,omitempty"`
	Format             models.TournamentFormat `json:"format" validate:"required"`
	ScoringMetric      *models.ScoringMetric   `json:"scoring_metric,omitempty"`
	BracketMode        *models.BracketMode     `json:"bracket_mode,omitempty"`
	RoundCount         int                     `json:"round_count,omitempty"`
	WinnerCount        int                     `json:"winner_count,omitempty"`
	GroupSizeHint      int                     `json:"group_size_hint,omitempty"`
	QualifiersPerGroup int                     `json:"qualifiers_per_group,omitempty"`
	SkillsToTest       []string                `json:"skills_to_test,omitempty"`
	OrganizerID        int                     `json:"-"`
}

type ListTournamentsInput struct {
	Format      *string
	Phase       *string
	OrganizerID *int
	Limit       int
	Offset      int
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	enrollmentRepo repositories.EnrollmentRepository
	sessionRepo    repositories.SessionRepository
	groupRepo      repositories.GroupRepository
	rankingRepo    repositories.RankingRepository
	rewardRepo     repositories.RewardRepository
	rankingCache   cache.RankingCache
	metrics        metrics.Metrics
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	sessionRepo repositories.SessionRepository,
	groupRepo repositories.GroupRepository,
	rankingRepo repositories.RankingRepository,
	rewardRepo repositories.RewardRepository,
	rankingCache cache.RankingCache,
	collector metrics.Metrics,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		enrollmentRepo: enrollmentRepo,
		sessionRepo:    sessionRepo,
		groupRepo:      groupRepo,
		rankingRepo:    rankingRepo,
		rewardRepo:     rewardRepo,
		rankingCache:   rankingCache,
		metrics:        collector,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !isValidTournamentFormat(input.Format) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, input.Format)
	}

	if input.Format == models.FormatIndividualRanking {
		if input.ScoringMetric == nil {
			return nil, fmt.Errorf("%w: INDIVIDUAL_RANKING tournaments require a scoring metric", ErrInvalidScoringMetric)
		}
		if !isValidScoringMetric(*input.ScoringMetric) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidScoringMetric, *input.ScoringMetric)
		}
	} else if input.ScoringMetric != nil {
		return nil, fmt.Errorf("%w: only INDIVIDUAL_RANKING tournaments take a scoring metric", ErrInvalidScoringMetric)
	}

	bracketMode := input.BracketMode
	if input.Format == models.FormatHeadToHead {
		if bracketMode == nil {
			league := models.BracketLeague
			bracketMode = &league
		} else if !isValidBracketMode(*bracketMode) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBracketMode, *bracketMode)
		}
	} else if bracketMode != nil {
		return nil, fmt.Errorf("%w: only HEAD_TO_HEAD tournaments take a bracket mode", ErrInvalidBracketMode)
	}

	roundCount := input.RoundCount
	if roundCount == 0 {
		roundCount = 1
	}
	if roundCount < 1 || roundCount > 3 {
		return nil, fmt.Errorf("%w: round count must be between 1 and 3, got %d", ErrInvalidRoundCount, roundCount)
	}
	if bracketMode != nil && *bracketMode == models.BracketKnockout && roundCount != 1 {
		return nil, fmt.Errorf("%w: knockout brackets play a single round", ErrInvalidRoundCount)
	}

	winnerCount := input.WinnerCount
	if winnerCount == 0 {
		winnerCount = 3
	}
	if winnerCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWinnerCount, winnerCount)
	}

	if input.GroupSizeHint < 0 || input.GroupSizeHint == 1 {
		return nil, fmt.Errorf("%w: group size hint must be zero or at least 2", ErrValidationFailed)
	}
	if input.QualifiersPerGroup < 0 {
		return nil, fmt.Errorf("%w: qualifiers per group cannot be negative", ErrValidationFailed)
	}

	skills := make([]string, 0, len(input.SkillsToTest))
	for _, skill := range input.SkillsToTest {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	tournament := &models.Tournament{
		Name:               name,
		Description:        input.Description,
		Format:             input.Format,
		ScoringMetric:      input.ScoringMetric,
		BracketMode:        bracketMode,
		Phase:              models.PhaseDraft,
		RoundCount:         roundCount,
		WinnerCount:        winnerCount,
		GroupSizeHint:      input.GroupSizeHint,
		QualifiersPerGroup: input.QualifiersPerGroup,
		SkillsToTest:       skills,
		OrganizerID:        input.OrganizerID,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: %s", ErrValidationFailed, "tournament name already used by this organizer")
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.metrics.IncTournamentsCreated()
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

// GetTournamentDetails loads the tournament with its roster, sessions,
// groups, current ranking and rewards in parallel.
func (s *tournamentService) GetTournamentDetails(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		enrollments, err := s.enrollmentRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list enrollments for tournament %d: %w", id, err)
		}
		tournament.Participants = enrollments
		return nil
	})

	g.Go(func() error {
		sessions, err := s.sessionRepo.ListByTournament(gCtx, nil, id, repositories.ListSessionsFilter{})
		if err != nil {
			return fmt.Errorf("failed to list sessions for tournament %d: %w", id, err)
		}
		tournament.Sessions = sessions
		return nil
	})

	g.Go(func() error {
		groups, err := s.groupRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list groups for tournament %d: %w", id, err)
		}
		tournament.Groups = groups
		return nil
	})

	g.Go(func() error {
		entries, err := s.rankingForTournament(gCtx, tournament)
		if err != nil {
			return err
		}
		tournament.Ranking = entries
		return nil
	})

	g.Go(func() error {
		rewards, err := s.rewardRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list rewards for tournament %d: %w", id, err)
		}
		tournament.Rewards = rewards
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error) {
	filter := repositories.ListTournamentsFilter{
		OrganizerID: input.OrganizerID,
		Limit:       input.Limit,
		Offset:      input.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if input.Format != nil {
		format := models.TournamentFormat(strings.ToUpper(strings.TrimSpace(*input.Format)))
		if !isValidTournamentFormat(format) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, *input.Format)
		}
		filter.Format = &format
	}
	if input.Phase != nil {
		phase := models.TournamentPhase(strings.ToUpper(strings.TrimSpace(*input.Phase)))
		if !isValidTournamentPhase(phase) {
			return nil, fmt.Errorf("%w: unknown phase %q", ErrValidationFailed, *input.Phase)
		}
		filter.Phase = &phase
	}

	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) ListParticipants(ctx context.Context, tournamentID int) ([]models.Enrollment, error) {
	if _, err := s.GetTournamentByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollmentRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments for tournament %d: %w", tournamentID, err)
	}
	return enrollments, nil
}

func (s *tournamentService) ListSessions(ctx context.Context, tournamentID int, filter repositories.ListSessionsFilter) ([]models.Session, error) {
	if _, err := s.GetTournamentByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByTournament(ctx, nil, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for tournament %d: %w", tournamentID, err)
	}
	return sessions, nil
}

func (s *tournamentService) GetRanking(ctx context.Context, tournamentID int) ([]models.RankingEntry, error) {
	tournament, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.rankingForTournament(ctx, tournament)
}

// rankingForTournament returns the final ranking when one exists, falling
// back to the group-stage snapshot during the knockout of a hybrid
// tournament. Terminal-phase rankings are immutable and served from cache.
func (s *tournamentService) rankingForTournament(ctx context.Context, tournament *models.Tournament) ([]models.RankingEntry, error) {
	terminal := tournament.Phase == models.PhaseCompleted || tournament.Phase == models.PhaseRewardsDistributed

	if terminal {
		if entries, err := s.rankingCache.GetRanking(ctx, tournament.ID); err == nil {
			return entries, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("ranking cache read failed", "tournament_id", tournament.ID, "error", err)
		}
	}

	entries, err := s.rankingRepo.ListByScope(ctx, nil, tournament.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking for tournament %d: %w", tournament.ID, err)
	}
	if len(entries) > 0 {
		if terminal {
			if err := s.rankingCache.SetRanking(ctx, tournament.ID, entries); err != nil {
				slog.Warn("ranking cache write failed", "tournament_id", tournament.ID, "error", err)
			}
		}
		return entries, nil
	}

	segment := models.SegmentGroup
	groupEntries, err := s.rankingRepo.ListByScope(ctx, nil, tournament.ID, &segment)
	if err != nil {
		return nil, fmt.Errorf("failed to load group ranking for tournament %d: %w", tournament.ID, err)
	}
	return groupEntries, nil
}
