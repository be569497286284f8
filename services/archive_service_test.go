package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
	"github.com/football-investment/practice-booking-system-sub021/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploaderStub struct {
	mu      sync.Mutex
	uploads []string
	fail    bool
}

var _ storage.FileUploader = (*uploaderStub)(nil)

func (u *uploaderStub) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.fail {
		return nil, errors.New("bucket unavailable")
	}
	u.mu.Lock()
	u.uploads = append(u.uploads, key)
	u.mu.Unlock()
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (u *uploaderStub) Delete(ctx context.Context, key string) error { return nil }

func (u *uploaderStub) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type archiveFixture struct {
	tournaments *repositories.TournamentRepoMock
	enrollments *repositories.EnrollmentRepoMock
	rankings    *repositories.RankingRepoMock
	rewards     *repositories.RewardRepoMock
	uploader    *uploaderStub
	collector   *metrics.Mock
	service     ArchiveService
}

func newArchiveFixture() *archiveFixture {
	f := &archiveFixture{
		tournaments: repositories.NewTournamentRepoMock(),
		enrollments: repositories.NewEnrollmentRepoMock(),
		rankings:    repositories.NewRankingRepoMock(),
		rewards:     repositories.NewRewardRepoMock(),
		uploader:    &uploaderStub{},
		collector:   metrics.NewMock(),
	}
	f.service = NewArchiveService(
		f.tournaments,
		f.enrollments,
		f.rankings,
		f.rewards,
		f.uploader,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		f.collector,
	)
	return f
}

func (f *archiveFixture) serveTournament(t models.Tournament) {
	f.tournaments.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
		copied := t
		copied.ID = id
		return &copied, nil
	}
}

func TestArchiveTournament(t *testing.T) {
	ctx := context.Background()

	t.Run("a finished tournament gets its report uploaded", func(t *testing.T) {
		f := newArchiveFixture()
		f.serveTournament(models.Tournament{Phase: models.PhaseRewardsDistributed, Format: models.FormatHeadToHead})

		err := f.service.ArchiveTournament(ctx, 1)
		require.NoError(t, err)

		require.Len(t, f.uploader.uploads, 1)
		key := f.uploader.uploads[0]
		assert.True(t, strings.HasPrefix(key, "reports/1/"), "unexpected report key %q", key)
		assert.True(t, strings.HasSuffix(key, ".json"), "unexpected report key %q", key)

		assert.Equal(t, []string{key}, f.tournaments.SetReportCalls)
		assert.Equal(t, 1, f.collector.ReportsArchived())
	})

	t.Run("only reward-distributed tournaments are archived", func(t *testing.T) {
		f := newArchiveFixture()
		f.serveTournament(models.Tournament{Phase: models.PhaseCompleted, Format: models.FormatHeadToHead})

		err := f.service.ArchiveTournament(ctx, 1)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, f.uploader.uploads)
	})

	t.Run("an already archived tournament is a no-op", func(t *testing.T) {
		f := newArchiveFixture()
		f.serveTournament(models.Tournament{
			Phase:      models.PhaseRewardsDistributed,
			Format:     models.FormatHeadToHead,
			ArchivedAt: timePtr(time.Now().UTC()),
		})

		err := f.service.ArchiveTournament(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, f.uploader.uploads)
		assert.Empty(t, f.tournaments.SetReportCalls)
		assert.Equal(t, 0, f.collector.ReportsArchived())
	})

	t.Run("a failed upload leaves the tournament unarchived", func(t *testing.T) {
		f := newArchiveFixture()
		f.uploader.fail = true
		f.serveTournament(models.Tournament{Phase: models.PhaseRewardsDistributed, Format: models.FormatHeadToHead})

		err := f.service.ArchiveTournament(ctx, 1)
		require.Error(t, err)
		assert.Empty(t, f.tournaments.SetReportCalls)
		assert.Equal(t, 0, f.collector.ReportsArchived())
	})

	t.Run("an unknown tournament is reported", func(t *testing.T) {
		f := newArchiveFixture()

		err := f.service.ArchiveTournament(ctx, 404)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}

func TestSweepUnarchived(t *testing.T) {
	ctx := context.Background()

	t.Run("every unarchived tournament is processed", func(t *testing.T) {
		f := newArchiveFixture()
		f.tournaments.ListUnarchivedFunc = func(ctx context.Context, limit int) ([]models.Tournament, error) {
			return []models.Tournament{{ID: 1}, {ID: 2}}, nil
		}
		f.serveTournament(models.Tournament{Phase: models.PhaseRewardsDistributed, Format: models.FormatHeadToHead})

		archived, err := f.service.SweepUnarchived(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, archived)
		require.Len(t, f.uploader.uploads, 2)
		assert.True(t, strings.HasPrefix(f.uploader.uploads[0], "reports/1/"))
		assert.True(t, strings.HasPrefix(f.uploader.uploads[1], "reports/2/"))
	})

	t.Run("a failing tournament does not stop the sweep", func(t *testing.T) {
		f := newArchiveFixture()
		f.tournaments.ListUnarchivedFunc = func(ctx context.Context, limit int) ([]models.Tournament, error) {
			return []models.Tournament{{ID: 1}, {ID: 2}}, nil
		}
		f.tournaments.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
			if id == 1 {
				return nil, errors.New("connection reset")
			}
			return &models.Tournament{ID: id, Phase: models.PhaseRewardsDistributed, Format: models.FormatHeadToHead}, nil
		}

		archived, err := f.service.SweepUnarchived(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, archived)
		require.Len(t, f.uploader.uploads, 1)
		assert.True(t, strings.HasPrefix(f.uploader.uploads[0], "reports/2/"))
	})
}
