package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
)

type EnrollmentService interface {
	OpenEnrollment(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error)
	Enroll(ctx context.Context, input EnrollInput) (*models.Enrollment, error)
	CloseEnrollment(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error)
}

type EnrollInput struct {
	TournamentID  int `json:"-"`
	ParticipantID int `json:"participant_id" validate:"required"`
	CallerID      int `json:"-"`
}

type enrollmentService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	enrollmentRepo repositories.EnrollmentRepository
	publisher      progress.Publisher
	metrics        metrics.Metrics
}

func NewEnrollmentService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	publisher progress.Publisher,
	collector metrics.Metrics,
) EnrollmentService {
	return &enrollmentService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		enrollmentRepo: enrollmentRepo,
		publisher:      publisher,
		metrics:        collector,
	}
}

// OpenEnrollment moves a DRAFT tournament to ENROLLING.
func (s *enrollmentService) OpenEnrollment(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error) {
	var tournament *models.Tournament

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != callerID {
			return ErrForbiddenOperation
		}
		if err := applyPhaseTransition(ctx, exec, s.tournamentRepo, t, models.PhaseEnrolling); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPhaseTransitions()
	s.publisher.PublishTournament(tournamentID, progress.EventPhaseChanged, map[string]interface{}{
		"tournament_id": tournamentID,
		"phase":         models.PhaseEnrolling,
	})
	return tournament, nil
}

// Enroll adds a participant to an open roster. The tournament row is
// locked so a concurrent close cannot slip an enrollment past the
// freeze, and seeds stay strictly sequential.
func (s *enrollmentService) Enroll(ctx context.Context, input EnrollInput) (*models.Enrollment, error) {
	if input.ParticipantID <= 0 {
		return nil, fmt.Errorf("%w: participant_id must be positive", ErrValidationFailed)
	}

	var enrollment *models.Enrollment

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, input.TournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != input.CallerID && input.ParticipantID != input.CallerID {
			return ErrForbiddenOperation
		}
		if t.Phase != models.PhaseEnrolling {
			return fmt.Errorf("%w: tournament is in phase %s", ErrEnrollmentClosed, t.Phase)
		}
		if t.RosterFrozen() {
			return fmt.Errorf("%w: roster was frozen at %s", ErrEnrollmentClosed, t.EnrollmentClosedAt.Format(time.RFC3339))
		}

		e := &models.Enrollment{
			TournamentID:  input.TournamentID,
			ParticipantID: input.ParticipantID,
		}
		if err := s.enrollmentRepo.Create(ctx, exec, e); err != nil {
			if errors.Is(err, repositories.ErrEnrollmentDuplicate) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("failed to enroll participant %d: %w", input.ParticipantID, err)
		}
		enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// CloseEnrollment freezes the roster. The tournament stays in ENROLLING;
// the enrollment_closed_at stamp is what blocks further enrollments and
// unlocks session generation.
func (s *enrollmentService) CloseEnrollment(ctx context.Context, tournamentID, callerID int) (*models.Tournament, error) {
	var tournament *models.Tournament

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := lockTournament(ctx, exec, s.tournamentRepo, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != callerID {
			return ErrForbiddenOperation
		}
		if t.Phase != models.PhaseEnrolling {
			return fmt.Errorf("%w: cannot close enrollment in phase %s", ErrInvalidTransition, t.Phase)
		}
		if t.RosterFrozen() {
			return fmt.Errorf("%w: roster was already frozen at %s", ErrEnrollmentClosed, t.EnrollmentClosedAt.Format(time.RFC3339))
		}

		enrolled, err := s.enrollmentRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count enrollments for tournament %d: %w", tournamentID, err)
		}
		if minimum := structuralMinimum(t.Format); enrolled < minimum {
			return fmt.Errorf("%w: format %s needs at least %d participants, have %d",
				ErrInsufficientParticipants, t.Format, minimum, enrolled)
		}
		if t.WinnerCount > enrolled {
			return fmt.Errorf("%w: winner count %d exceeds the %d enrolled participants",
				ErrInvalidParticipantCount, t.WinnerCount, enrolled)
		}

		closedAt := time.Now().UTC()
		if err := s.tournamentRepo.SetEnrollmentClosed(ctx, exec, tournamentID, closedAt); err != nil {
			return fmt.Errorf("failed to close enrollment for tournament %d: %w", tournamentID, err)
		}
		t.EnrollmentClosedAt = &closedAt
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tournament, nil
}
