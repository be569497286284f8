package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
	"github.com/football-investment/practice-booking-system-sub021/storage"
)

// ArchiveService uploads a final report for finished tournaments to
// object storage. Archiving is best effort and replayable: a failed
// upload leaves archived_at unset, so the next sweep retries.
type ArchiveService interface {
	ArchiveTournament(ctx context.Context, tournamentID int) error
	SweepUnarchived(ctx context.Context) (int, error)
}

type tournamentReport struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Tournament  *models.Tournament    `json:"tournament"`
	Roster      []models.Enrollment   `json:"roster"`
	Ranking     []models.RankingEntry `json:"ranking"`
	Rewards     []models.Reward       `json:"rewards"`
}

type archiveService struct {
	tournamentRepo repositories.TournamentRepository
	enrollmentRepo repositories.EnrollmentRepository
	rankingRepo    repositories.RankingRepository
	rewardRepo     repositories.RewardRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
	metrics        metrics.Metrics
}

func NewArchiveService(
	tournamentRepo repositories.TournamentRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	rankingRepo repositories.RankingRepository,
	rewardRepo repositories.RewardRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
	collector metrics.Metrics,
) ArchiveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &archiveService{
		tournamentRepo: tournamentRepo,
		enrollmentRepo: enrollmentRepo,
		rankingRepo:    rankingRepo,
		rewardRepo:     rewardRepo,
		uploader:       uploader,
		logger:         logger,
		metrics:        collector,
	}
}

// ArchiveTournament builds the report for one tournament, uploads it
// and stamps archived_at. Already-archived tournaments are a no-op.
func (s *archiveService) ArchiveTournament(ctx context.Context, tournamentID int) error {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if t.Phase != models.PhaseRewardsDistributed {
		return fmt.Errorf("%w: reports cover tournaments in %s, phase is %s",
			ErrValidationFailed, models.PhaseRewardsDistributed, t.Phase)
	}
	if t.ArchivedAt != nil {
		return nil
	}

	roster, err := s.enrollmentRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load roster for report %d: %w", tournamentID, err)
	}
	entries, err := s.rankingRepo.ListByScope(ctx, nil, tournamentID, nil)
	if err != nil {
		return fmt.Errorf("failed to load ranking for report %d: %w", tournamentID, err)
	}
	rewards, err := s.rewardRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load rewards for report %d: %w", tournamentID, err)
	}

	report := tournamentReport{
		GeneratedAt: time.Now().UTC(),
		Tournament:  t,
		Roster:      roster,
		Ranking:     entries,
		Rewards:     rewards,
	}
	data, err := json.MarshalIndent(report, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode report for tournament %d: %w", tournamentID, err)
	}

	key := fmt.Sprintf("reports/%d/%s.json", tournamentID, uuid.NewString())
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload report for tournament %d: %w", tournamentID, err)
	}

	if err := s.tournamentRepo.SetReport(ctx, tournamentID, key, report.GeneratedAt); err != nil {
		return fmt.Errorf("failed to record report key for tournament %d: %w", tournamentID, err)
	}

	s.metrics.IncReportsArchived()
	s.logger.Info("tournament report archived", "tournament_id", tournamentID, "key", key)
	return nil
}

// SweepUnarchived archives every finished tournament that has no report
// yet, up to a fixed batch per run. Failures are logged and retried on
// the next sweep.
func (s *archiveService) SweepUnarchived(ctx context.Context) (int, error) {
	tournaments, err := s.tournamentRepo.ListUnarchived(ctx, 20)
	if err != nil {
		return 0, fmt.Errorf("failed to list unarchived tournaments: %w", err)
	}

	archived := 0
	for i := range tournaments {
		if err := s.ArchiveTournament(ctx, tournaments[i].ID); err != nil {
			s.logger.Error("failed to archive tournament report",
				"tournament_id", tournaments[i].ID, "error", err)
			continue
		}
		archived++
	}
	return archived, nil
}
