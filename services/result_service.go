package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
)

type ResultService interface {
	SubmitResult(ctx context.Context, input SubmitResultInput) (*models.Session, error)
}

// SubmitResultInput carries either an individual measurement or a
// head-to-head score pair, never both.
type SubmitResultInput struct {
	SessionID int `json:"-"`
	CallerID  int `json:"-"`

	ParticipantID *int     `json:"participant_id,omitempty"`
	MetricValue   *float64 `json:"metric_value,omitempty"`

	Participant1Score *int `json:"participant1_score,omitempty"`
	Participant2Score *int `json:"participant2_score,omitempty"`
}

type resultService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	sessionRepo    repositories.SessionRepository
	publisher      progress.Publisher
	metrics        metrics.Metrics
}

func NewResultService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.SessionRepository,
	publisher progress.Publisher,
	collector metrics.Metrics,
) ResultService {
	return &resultService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		sessionRepo:    sessionRepo,
		publisher:      publisher,
		metrics:        collector,
	}
}

// SubmitResult records a result for one session. The session row is
// locked first, so a concurrent submission for the same session either
// waits and then fails with ErrAlreadySubmitted, or loses the race at
// the guarded UPDATE. Completing a knockout session populates every
// dependent session whose feeders have all finished.
func (s *resultService) SubmitResult(ctx context.Context, input SubmitResultInput) (*models.Session, error) {
	var (
		updated      *models.Session
		completedNow bool
		populated    []models.Session
	)

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		sess, err := s.sessionRepo.GetByIDForUpdate(ctx, exec, input.SessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session %d: %w", input.SessionID, err)
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, sess.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to load tournament %d: %w", sess.TournamentID, err)
		}

		switch t.Phase {
		case models.PhaseInProgress, models.PhaseGroupStage, models.PhaseKnockout:
		default:
			return fmt.Errorf("%w: results cannot be submitted in phase %s", ErrInvalidTransition, t.Phase)
		}

		if sess.Status == models.SessionCompleted {
			return ErrAlreadySubmitted
		}
		if sess.AwaitingParticipants() {
			return fmt.Errorf("%w: session %s is waiting for its feeders", ErrSessionNotReady, sess.UID)
		}

		now := time.Now().UTC()
		if sess.HeadToHead() {
			completedNow = true
			if err := s.submitHeadToHead(ctx, exec, t, sess, input, now); err != nil {
				return err
			}
			knockout := (sess.Segment != nil && *sess.Segment == models.SegmentKnockout) ||
				(t.Format == models.FormatHeadToHead && t.BracketMode != nil && *t.BracketMode == models.BracketKnockout)
			if knockout {
				populated, err = s.populateDependents(ctx, exec, t.ID, sess)
				if err != nil {
					return err
				}
			}
		} else {
			completedNow, err = s.submitIndividual(ctx, exec, t, sess, input, now)
			if err != nil {
				return err
			}
		}

		updated = sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncResultsSubmitted()
	if completedNow {
		s.publisher.PublishTournament(updated.TournamentID, progress.EventSessionCompleted, map[string]interface{}{
			"tournament_id": updated.TournamentID,
			"session_id":    updated.ID,
			"uid":           updated.UID,
		})
	}
	for _, dep := range populated {
		s.publisher.PublishTournament(dep.TournamentID, progress.EventParticipantsPopulated, map[string]interface{}{
			"tournament_id": dep.TournamentID,
			"session_id":    dep.ID,
			"uid":           dep.UID,
		})
	}
	return updated, nil
}

func (s *resultService) submitHeadToHead(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, sess *models.Session, input SubmitResultInput, now time.Time) error {
	if t.OrganizerID != input.CallerID {
		return ErrForbiddenOperation
	}
	if input.Participant1Score == nil || input.Participant2Score == nil ||
		input.ParticipantID != nil || input.MetricValue != nil {
		return fmt.Errorf("%w: head-to-head sessions take participant1_score and participant2_score", ErrInvalidResultPayload)
	}

	score1, score2 := *input.Participant1Score, *input.Participant2Score
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}

	elimination := (sess.Segment != nil && *sess.Segment == models.SegmentKnockout) ||
		(t.Format == models.FormatHeadToHead && t.BracketMode != nil && *t.BracketMode == models.BracketKnockout)

	var winnerID *int
	if score1 > score2 {
		winnerID = sess.Participant1ID
	} else if score2 > score1 {
		winnerID = sess.Participant2ID
	}
	if elimination && winnerID == nil {
		return fmt.Errorf("%w: knockout sessions cannot end in a draw", ErrValidationFailed)
	}

	if err := s.sessionRepo.UpdateHeadToHeadResult(ctx, exec, sess.ID, score1, score2, winnerID, now); err != nil {
		if errors.Is(err, repositories.ErrSessionAlreadyCompleted) {
			return ErrAlreadySubmitted
		}
		return fmt.Errorf("failed to record result for session %d: %w", sess.ID, err)
	}

	sess.Score1, sess.Score2 = &score1, &score2
	sess.WinnerID = winnerID
	sess.Status = models.SessionCompleted
	sess.SubmittedAt = &now
	return nil
}

func (s *resultService) submitIndividual(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, sess *models.Session, input SubmitResultInput, now time.Time) (bool, error) {
	if input.ParticipantID == nil || input.MetricValue == nil ||
		input.Participant1Score != nil || input.Participant2Score != nil {
		return false, fmt.Errorf("%w: individual sessions take participant_id and metric_value", ErrInvalidResultPayload)
	}

	participantID := *input.ParticipantID
	if t.OrganizerID != input.CallerID && participantID != input.CallerID {
		return false, ErrForbiddenOperation
	}
	if !slices.Contains(sess.ParticipantIDs, participantID) {
		return false, fmt.Errorf("%w: participant %d is not part of session %s", ErrParticipantNotEnrolled, participantID, sess.UID)
	}
	if _, exists := sess.Results.ByParticipant(participantID); exists {
		return false, fmt.Errorf("%w: participant %d already has a value for session %s", ErrAlreadySubmitted, participantID, sess.UID)
	}

	value := *input.MetricValue
	if t.ScoringMetric != nil && *t.ScoringMetric == models.MetricPlacement {
		if value < 1 {
			return false, fmt.Errorf("%w: placement values start at 1", ErrValidationFailed)
		}
	} else if value < 0 {
		return false, fmt.Errorf("%w: metric values cannot be negative", ErrValidationFailed)
	}

	results := append(sess.Results, models.IndividualResult{
		ParticipantID: participantID,
		Value:         value,
		SubmittedAt:   now,
	})
	status := models.SessionSubmitted
	if len(results) == len(sess.ParticipantIDs) {
		status = models.SessionCompleted
	}

	if err := s.sessionRepo.UpdateIndividualResults(ctx, exec, sess.ID, results, status, now); err != nil {
		if errors.Is(err, repositories.ErrSessionAlreadyCompleted) {
			return false, ErrAlreadySubmitted
		}
		return false, fmt.Errorf("failed to record result for session %d: %w", sess.ID, err)
	}

	sess.Results = results
	sess.Status = status
	sess.SubmittedAt = &now
	return status == models.SessionCompleted, nil
}

// populateDependents fills the participant slots of knockout sessions
// whose feeders have all completed. Both slots are written in a single
// statement, so a reader never sees a half-populated pairing.
func (s *resultService) populateDependents(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, completed *models.Session) ([]models.Session, error) {
	sessions, err := s.sessionRepo.ListByTournament(ctx, exec, tournamentID, repositories.ListSessionsFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for advancement: %w", err)
	}

	byUID := make(map[string]*models.Session, len(sessions))
	for i := range sessions {
		byUID[sessions[i].UID] = &sessions[i]
	}
	// The in-flight update is visible through exec, but refresh the map
	// entry anyway in case the row was read before the lock.
	byUID[completed.UID] = completed

	var populated []models.Session
	for i := range sessions {
		dep := &sessions[i]
		if !dep.AwaitingParticipants() {
			continue
		}
		feedsFromCompleted := (dep.Source1UID != nil && *dep.Source1UID == completed.UID) ||
			(dep.Source2UID != nil && *dep.Source2UID == completed.UID)
		if !feedsFromCompleted {
			continue
		}

		p1, ok1 := resolveSlot(dep.Participant1ID, dep.Source1UID, byUID)
		p2, ok2 := resolveSlot(dep.Participant2ID, dep.Source2UID, byUID)
		if !ok1 || !ok2 {
			continue
		}
		if err := s.sessionRepo.UpdateParticipants(ctx, exec, dep.ID, p1, p2); err != nil {
			return nil, fmt.Errorf("failed to populate session %s: %w", dep.UID, err)
		}
		dep.Participant1ID, dep.Participant2ID = p1, p2
		populated = append(populated, *dep)
	}
	return populated, nil
}

// resolveSlot returns the participant for one slot of a dependent
// session: either the value already written at generation time (a bye
// advancer) or the winner of a completed feeder.
func resolveSlot(current *int, source *string, byUID map[string]*models.Session) (*int, bool) {
	if current != nil {
		return current, true
	}
	if source == nil {
		return nil, true
	}
	feeder, ok := byUID[*source]
	if !ok || feeder.Status != models.SessionCompleted || feeder.WinnerID == nil {
		return nil, false
	}
	return feeder.WinnerID, true
}
