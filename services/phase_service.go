package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/football-investment/practice-booking-system-sub021/brackets"
	"github.com/football-investment/practice-booking-system-sub021/cache"
	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/ranking"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
)

type PhaseService interface {
	GenerateSessions(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error)
	FinalizeGroupStage(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error)
	CompleteTournament(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error)
}

type phaseService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	enrollmentRepo repositories.EnrollmentRepository
	sessionRepo    repositories.SessionRepository
	groupRepo      repositories.GroupRepository
	rankingRepo    repositories.RankingRepository
	rankingCache   cache.RankingCache
	publisher      progress.Publisher
	metrics        metrics.Metrics
	shuffleSeeds   bool
}

func NewPhaseService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	sessionRepo repositories.SessionRepository,
	groupRepo repositories.GroupRepository,
	rankingRepo repositories.RankingRepository,
	rankingCache cache.RankingCache,
	publisher progress.Publisher,
	collector metrics.Metrics,
	shuffleSeeds bool,
) PhaseService {
	return &phaseService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		enrollmentRepo: enrollmentRepo,
		sessionRepo:    sessionRepo,
		groupRepo:      groupRepo,
		rankingRepo:    rankingRepo,
		rankingCache:   rankingCache,
		publisher:      publisher,
		metrics:        collector,
		shuffleSeeds:   shuffleSeeds,
	}
}

// GenerateSessions materializes the session plan for a frozen roster and
// moves the tournament out of ENROLLING: hybrid tournaments enter
// GROUP_STAGE, every other format enters IN_PROGRESS.
func (s *phaseService) GenerateSessions(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		target     models.TournamentPhase
	)

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != callerID {
			return ErrForbiddenOperation
		}

		target = models.PhaseInProgress
		if t.Format == models.FormatGroupAndKnockout {
			target = models.PhaseGroupStage
		}
		if t.Phase != models.PhaseEnrolling {
			return transitionError(t.Phase, target)
		}
		if !t.RosterFrozen() {
			return ErrNotEnrollmentClosed
		}

		roster, err := s.enrollmentRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster for tournament %d: %w", tournamentID, err)
		}
		if minimum := structuralMinimum(t.Format); len(roster) < minimum {
			return fmt.Errorf("%w: format %s needs at least %d participants, have %d",
				ErrInvalidParticipantCount, t.Format, minimum, len(roster))
		}

		generator, err := brackets.ForTournament(t)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		plan, err := generator.Generate(ctx, brackets.GenerateParams{
			Tournament:   t,
			Roster:       roster,
			ShuffleSeeds: s.shuffleSeeds,
		})
		if err != nil {
			return fmt.Errorf("failed to generate sessions for tournament %d: %w", tournamentID, err)
		}

		groupIDByLabel := make(map[string]int, len(plan.Groups))
		if len(plan.Groups) > 0 {
			groups := make([]*models.Group, len(plan.Groups))
			for i, pg := range plan.Groups {
				groups[i] = &models.Group{
					TournamentID: tournamentID,
					Label:        pg.Label,
					Position:     pg.Position,
					MemberIDs:    pg.MemberIDs,
				}
			}
			if err := s.groupRepo.CreateBatch(ctx, exec, groups); err != nil {
				return fmt.Errorf("failed to persist groups for tournament %d: %w", tournamentID, err)
			}
			for _, g := range groups {
				groupIDByLabel[g.Label] = g.ID
			}
			t.Groups = derefGroups(groups)
		}

		sessions := make([]*models.Session, len(plan.Sessions))
		for i, ps := range plan.Sessions {
			sess := &models.Session{
				TournamentID:   tournamentID,
				UID:            ps.UID,
				Segment:        ps.Segment,
				RoundIndex:     ps.RoundIndex,
				OrderInRound:   ps.OrderInRound,
				Participant1ID: ps.Participant1ID,
				Participant2ID: ps.Participant2ID,
				Source1UID:     ps.Source1UID,
				Source2UID:     ps.Source2UID,
				ParticipantIDs: ps.ParticipantIDs,
				Status:         models.SessionPending,
			}
			if ps.GroupLabel != "" {
				groupID, ok := groupIDByLabel[ps.GroupLabel]
				if !ok {
					return fmt.Errorf("generated session %s references unknown group %s", ps.UID, ps.GroupLabel)
				}
				sess.GroupID = &groupID
			}
			sessions[i] = sess
		}
		if err := s.sessionRepo.CreateBatch(ctx, exec, sessions); err != nil {
			return fmt.Errorf("failed to persist sessions for tournament %d: %w", tournamentID, err)
		}

		if err := applyPhaseTransition(ctx, exec, s.tournamentRepo, t, target); err != nil {
			return err
		}
		t.Sessions = derefSessions(sessions)
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPhaseTransitions()
	s.publisher.PublishTournament(tournamentID, progress.EventSessionsGenerated, map[string]interface{}{
		"tournament_id": tournamentID,
		"session_count": len(tournament.Sessions),
	})
	s.publisher.PublishTournament(tournamentID, progress.EventPhaseChanged, map[string]interface{}{
		"tournament_id": tournamentID,
		"phase":         target,
	})
	return tournament, nil
}

// FinalizeGroupStage closes the group half of a hybrid tournament:
// per-group standings are snapshotted, the configured number of
// qualifiers advances, and the knockout bracket is created in the same
// transaction as the GROUP_STAGE -> KNOCKOUT transition.
func (s *phaseService) FinalizeGroupStage(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error) {
	var tournament *models.Tournament

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != callerID {
			return ErrForbiddenOperation
		}
		if t.Phase != models.PhaseGroupStage {
			return transitionError(t.Phase, models.PhaseKnockout)
		}

		groupSegment := models.SegmentGroup
		incomplete, err := s.sessionRepo.CountIncomplete(ctx, exec, tournamentID, &groupSegment)
		if err != nil {
			return fmt.Errorf("failed to count open group sessions for tournament %d: %w", tournamentID, err)
		}
		if incomplete > 0 {
			return fmt.Errorf("%w: %d group sessions are still open", ErrIncompleteResults, incomplete)
		}

		roster, err := s.enrollmentRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster for tournament %d: %w", tournamentID, err)
		}
		groups, err := s.groupRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load groups for tournament %d: %w", tournamentID, err)
		}
		if len(groups) == 0 {
			return fmt.Errorf("tournament %d is in GROUP_STAGE but has no groups", tournamentID)
		}
		groupSessions, err := s.sessionRepo.ListByTournament(ctx, exec, tournamentID, repositories.ListSessionsFilter{Segment: &groupSegment})
		if err != nil {
			return fmt.Errorf("failed to load group sessions for tournament %d: %w", tournamentID, err)
		}

		sessionsByGroup := make(map[int][]models.Session)
		for _, sess := range groupSessions {
			if sess.GroupID != nil {
				sessionsByGroup[*sess.GroupID] = append(sessionsByGroup[*sess.GroupID], sess)
			}
		}

		advance := qualifiersPerGroup(t)
		qualifiers := make([][]int, 0, len(groups))
		allEntries := make([]*models.RankingEntry, 0, len(roster))
		for _, group := range groups {
			if advance > len(group.MemberIDs) {
				return fmt.Errorf("%w: group %s has %d members but %d must qualify",
					ErrInvalidParticipantCount, group.Label, len(group.MemberIDs), advance)
			}

			members := make(map[int]bool, len(group.MemberIDs))
			for _, id := range group.MemberIDs {
				members[id] = true
			}
			groupRoster := make([]models.Enrollment, 0, len(group.MemberIDs))
			for _, e := range roster {
				if members[e.ParticipantID] {
					groupRoster = append(groupRoster, e)
				}
			}

			entries := ranking.ComputeHeadToHead(groupRoster, sessionsByGroup[group.ID])
			groupID := group.ID
			advancing := make([]int, 0, advance)
			for i := range entries {
				entries[i].TournamentID = tournamentID
				entries[i].Segment = &groupSegment
				entries[i].GroupID = &groupID
				if entries[i].Rank <= advance {
					advancing = append(advancing, entries[i].ParticipantID)
				}
				allEntries = append(allEntries, &entries[i])
			}
			qualifiers = append(qualifiers, advancing)
		}

		if err := s.rankingRepo.ReplaceForScope(ctx, exec, tournamentID, &groupSegment, allEntries); err != nil {
			return fmt.Errorf("failed to snapshot group standings for tournament %d: %w", tournamentID, err)
		}

		koPlan, err := brackets.KnockoutFromQualifiers(qualifiers)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParticipantCount, err)
		}
		koSessions := make([]*models.Session, len(koPlan))
		for i, ps := range koPlan {
			koSessions[i] = &models.Session{
				TournamentID:   tournamentID,
				UID:            ps.UID,
				Segment:        ps.Segment,
				RoundIndex:     ps.RoundIndex,
				OrderInRound:   ps.OrderInRound,
				Participant1ID: ps.Participant1ID,
				Participant2ID: ps.Participant2ID,
				Source1UID:     ps.Source1UID,
				Source2UID:     ps.Source2UID,
				Status:         models.SessionPending,
			}
		}
		if err := s.sessionRepo.CreateBatch(ctx, exec, koSessions); err != nil {
			return fmt.Errorf("failed to persist knockout sessions for tournament %d: %w", tournamentID, err)
		}

		if err := applyPhaseTransition(ctx, exec, s.tournamentRepo, t, models.PhaseKnockout); err != nil {
			return err
		}
		t.Sessions = derefSessions(koSessions)
		t.Ranking = derefEntries(allEntries)
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPhaseTransitions()
	s.publisher.PublishTournament(tournamentID, progress.EventRankingUpdated, map[string]interface{}{
		"tournament_id": tournamentID,
		"scope":         models.SegmentGroup,
	})
	s.publisher.PublishTournament(tournamentID, progress.EventSessionsGenerated, map[string]interface{}{
		"tournament_id": tournamentID,
		"session_count": len(tournament.Sessions),
	})
	s.publisher.PublishTournament(tournamentID, progress.EventPhaseChanged, map[string]interface{}{
		"tournament_id": tournamentID,
		"phase":         models.PhaseKnockout,
	})
	return tournament, nil
}

// CompleteTournament computes the final ranking over all completed
// sessions and moves the tournament to COMPLETED. The ranking rows are
// replaced wholesale, so repeating the computation can never produce a
// mixed snapshot.
func (s *phaseService) CompleteTournament(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error) {
	var tournament *models.Tournament

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != callerID {
			return ErrForbiddenOperation
		}
		if t.Phase != models.PhaseInProgress && t.Phase != models.PhaseKnockout {
			return transitionError(t.Phase, models.PhaseCompleted)
		}

		incomplete, err := s.sessionRepo.CountIncomplete(ctx, exec, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to count open sessions for tournament %d: %w", tournamentID, err)
		}
		if incomplete > 0 {
			return fmt.Errorf("%w: %d sessions are still open", ErrIncompleteResults, incomplete)
		}

		roster, err := s.enrollmentRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster for tournament %d: %w", tournamentID, err)
		}
		sessions, err := s.sessionRepo.ListByTournament(ctx, exec, tournamentID, repositories.ListSessionsFilter{})
		if err != nil {
			return fmt.Errorf("failed to load sessions for tournament %d: %w", tournamentID, err)
		}

		var entries []models.RankingEntry
		switch t.Format {
		case models.FormatIndividualRanking:
			if t.ScoringMetric == nil {
				return fmt.Errorf("%w: tournament %d has no scoring metric", ErrInvalidScoringMetric, tournamentID)
			}
			entries = ranking.ComputeIndividual(*t.ScoringMetric, t.RoundCount, roster, sessions)
		case models.FormatHeadToHead:
			if t.BracketMode != nil && *t.BracketMode == models.BracketKnockout {
				entries = ranking.ComputeKnockout(roster, sessions)
			} else {
				entries = ranking.ComputeHeadToHead(roster, sessions)
			}
		case models.FormatGroupAndKnockout:
			entries, err = s.hybridFinalRanking(ctx, exec, t, roster, sessions)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", ErrInvalidFormat, t.Format)
		}

		for i := range entries {
			entries[i].TournamentID = tournamentID
			entries[i].Segment = nil
			entries[i].GroupID = nil
		}
		if err := s.rankingRepo.ReplaceForScope(ctx, exec, tournamentID, nil, entryPointers(entries)); err != nil {
			return fmt.Errorf("failed to store final ranking for tournament %d: %w", tournamentID, err)
		}

		if err := applyPhaseTransition(ctx, exec, s.tournamentRepo, t, models.PhaseCompleted); err != nil {
			return err
		}
		t.Ranking = entries
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPhaseTransitions()
	if err := s.rankingCache.SetRanking(ctx, tournamentID, tournament.Ranking); err != nil {
		slog.Warn("failed to prime ranking cache", "tournament_id", tournamentID, "error", err)
	}
	s.publisher.PublishTournament(tournamentID, progress.EventRankingUpdated, map[string]interface{}{
		"tournament_id": tournamentID,
		"scope":         "final",
	})
	s.publisher.PublishTournament(tournamentID, progress.EventPhaseChanged, map[string]interface{}{
		"tournament_id": tournamentID,
		"phase":         models.PhaseCompleted,
	})
	return tournament, nil
}

// hybridFinalRanking ranks knockout qualifiers by elimination depth and
// appends the participants who did not survive the group stage, ordered
// by their group rank and then by group position.
func (s *phaseService) hybridFinalRanking(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, roster []models.Enrollment, sessions []models.Session) ([]models.RankingEntry, error) {
	koSessions := make([]models.Session, 0, len(sessions))
	inKnockout := make(map[int]bool)
	for _, sess := range sessions {
		if sess.Segment == nil || *sess.Segment != models.SegmentKnockout {
			continue
		}
		koSessions = append(koSessions, sess)
		if sess.Participant1ID != nil {
			inKnockout[*sess.Participant1ID] = true
		}
		if sess.Participant2ID != nil {
			inKnockout[*sess.Participant2ID] = true
		}
	}
	if len(koSessions) == 0 {
		return nil, fmt.Errorf("tournament %d has no knockout sessions to rank", t.ID)
	}

	qualifierRoster := make([]models.Enrollment, 0, len(inKnockout))
	for _, e := range roster {
		if inKnockout[e.ParticipantID] {
			qualifierRoster = append(qualifierRoster, e)
		}
	}
	entries := ranking.ComputeKnockout(qualifierRoster, koSessions)

	groupSegment := models.SegmentGroup
	groupEntries, err := s.rankingRepo.ListByScope(ctx, exec, t.ID, &groupSegment)
	if err != nil {
		return nil, fmt.Errorf("failed to load group standings for tournament %d: %w", t.ID, err)
	}
	groups, err := s.groupRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups for tournament %d: %w", t.ID, err)
	}
	positionByGroupID := make(map[int]int, len(groups))
	for _, g := range groups {
		positionByGroupID[g.ID] = g.Position
	}

	eliminated := make([]models.RankingEntry, 0, len(groupEntries))
	for _, entry := range groupEntries {
		if !inKnockout[entry.ParticipantID] {
			eliminated = append(eliminated, entry)
		}
	}
	slices.SortFunc(eliminated, func(a, b models.RankingEntry) int {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return positionByGroupID[derefGroupID(a.GroupID)] - positionByGroupID[derefGroupID(b.GroupID)]
	})

	for _, entry := range eliminated {
		entries = append(entries, models.RankingEntry{
			ParticipantID: entry.ParticipantID,
			Rank:          len(entries) + 1,
			Points:        entry.Points,
			Wins:          entry.Wins,
			Draws:         entry.Draws,
			Losses:        entry.Losses,
			ScoreFor:      entry.ScoreFor,
			ScoreAgainst:  entry.ScoreAgainst,
		})
	}
	return entries, nil
}

func derefGroupID(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}

func derefEntries(entries []*models.RankingEntry) []models.RankingEntry {
	result := make([]models.RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			result = append(result, *e)
		}
	}
	return result
}
