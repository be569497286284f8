package services

import (
	"context"
	"testing"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/cache"
	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phaseFixture struct {
	tournaments *repositories.TournamentRepoMock
	enrollments *repositories.EnrollmentRepoMock
	sessions    *repositories.SessionRepoMock
	groups      *repositories.GroupRepoMock
	rankings    *repositories.RankingRepoMock
	collector   *metrics.Mock
	service     PhaseService
}

func newPhaseFixture() *phaseFixture {
	f := &phaseFixture{
		tournaments: repositories.NewTournamentRepoMock(),
		enrollments: repositories.NewEnrollmentRepoMock(),
		sessions:    repositories.NewSessionRepoMock(),
		groups:      repositories.NewGroupRepoMock(),
		rankings:    repositories.NewRankingRepoMock(),
		collector:   metrics.NewMock(),
	}
	f.service = NewPhaseService(
		repositories.NewTxManagerMock(),
		f.tournaments,
		f.enrollments,
		f.sessions,
		f.groups,
		f.rankings,
		cache.NoopRankingCache{},
		progress.NoopPublisher{},
		f.collector,
		false,
	)
	return f
}

func (f *phaseFixture) serveTournament(t models.Tournament) {
	f.tournaments.GetByIDForUpdateFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
		copied := t
		copied.ID = id
		return &copied, nil
	}
}

func (f *phaseFixture) serveRoster(participantIDs ...int) {
	roster := rosterOf(participantIDs...)
	f.enrollments.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Enrollment, error) {
		return roster, nil
	}
}

func TestGenerateSessions(t *testing.T) {
	ctx := context.Background()
	frozen := timePtr(time.Now().UTC())

	t.Run("a frozen league roster gets its full schedule", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:              models.PhaseEnrolling,
			Format:             models.FormatHeadToHead,
			BracketMode:        bracketPtr(models.BracketLeague),
			RoundCount:         1,
			OrganizerID:        10,
			EnrollmentClosedAt: frozen,
		})
		f.serveRoster(1, 2, 3, 4)

		tournament, err := f.service.GenerateSessions(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseInProgress, tournament.Phase)
		assert.Len(t, tournament.Sessions, 6)

		require.Len(t, f.sessions.CreateBatchCalls, 1)
		batch := f.sessions.CreateBatchCalls[0]
		require.Len(t, batch, 6)
		assert.Equal(t, "R1M1", batch[0].UID)
		assert.Equal(t, 1, batch[0].TournamentID)
		assert.Equal(t, models.SessionPending, batch[0].Status)
		assert.Nil(t, batch[0].GroupID)

		assert.Equal(t, []models.TournamentPhase{models.PhaseInProgress}, f.tournaments.UpdatePhaseCalls)
		assert.Equal(t, 1, f.collector.PhaseTransitions())
	})

	t.Run("a hybrid tournament persists groups and enters the group stage", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:              models.PhaseEnrolling,
			Format:             models.FormatGroupAndKnockout,
			OrganizerID:        10,
			EnrollmentClosedAt: frozen,
		})
		f.serveRoster(1, 2, 3, 4, 5, 6, 7, 8)
		f.groups.CreateBatchFunc = func(ctx context.Context, exec repositories.SQLExecutor, groups []*models.Group) error {
			for i, g := range groups {
				g.ID = i + 1
			}
			return nil
		}

		tournament, err := f.service.GenerateSessions(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseGroupStage, tournament.Phase)

		require.Len(t, f.groups.CreateBatchCalls, 1)
		persisted := f.groups.CreateBatchCalls[0]
		require.Len(t, persisted, 2)
		assert.Equal(t, "A", persisted[0].Label)
		assert.Equal(t, "B", persisted[1].Label)

		require.Len(t, f.sessions.CreateBatchCalls, 1)
		batch := f.sessions.CreateBatchCalls[0]
		require.Len(t, batch, 12)
		for _, sess := range batch {
			require.NotNil(t, sess.GroupID, "session %s has no group", sess.UID)
			require.NotNil(t, sess.Segment)
			assert.Equal(t, models.SegmentGroup, *sess.Segment)
		}
		assert.Equal(t, 1, *batch[0].GroupID)
		assert.Equal(t, 2, *batch[6].GroupID)
	})

	t.Run("generation requires a frozen roster", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseEnrolling,
			Format:      models.FormatHeadToHead,
			OrganizerID: 10,
		})

		_, err := f.service.GenerateSessions(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrNotEnrollmentClosed)
		assert.Empty(t, f.sessions.CreateBatchCalls)
	})

	t.Run("generation outside the enrolling phase is rejected", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseInProgress,
			Format:      models.FormatHeadToHead,
			OrganizerID: 10,
		})

		_, err := f.service.GenerateSessions(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("a roster below the format minimum is rejected", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:              models.PhaseEnrolling,
			Format:             models.FormatGroupAndKnockout,
			OrganizerID:        10,
			EnrollmentClosedAt: frozen,
		})
		f.serveRoster(1, 2, 3)

		_, err := f.service.GenerateSessions(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidParticipantCount)
	})

	t.Run("only the organizer may generate sessions", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseEnrolling,
			OrganizerID: 10,
		})

		_, err := f.service.GenerateSessions(ctx, 1, 99)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})
}

func TestFinalizeGroupStage(t *testing.T) {
	ctx := context.Background()

	hybrid := models.Tournament{
		Phase:       models.PhaseGroupStage,
		Format:      models.FormatGroupAndKnockout,
		OrganizerID: 10,
	}
	twoGroups := []models.Group{
		{ID: 1, TournamentID: 1, Label: "A", Position: 1, MemberIDs: []int{1, 3, 5, 7}},
		{ID: 2, TournamentID: 1, Label: "B", Position: 2, MemberIDs: []int{2, 4, 6, 8}},
	}

	t.Run("standings are snapshotted and the knockout is seeded", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(hybrid)
		f.serveRoster(1, 2, 3, 4, 5, 6, 7, 8)
		f.groups.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Group, error) {
			return twoGroups, nil
		}

		tournament, err := f.service.FinalizeGroupStage(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseKnockout, tournament.Phase)

		// With no group results everyone ranks by seed, so the top two
		// seeds of each group advance: 1 and 3 from A, 2 and 4 from B.
		require.Len(t, f.rankings.ReplaceForScopeCalls, 1)
		snapshot := f.rankings.ReplaceForScopeCalls[0]
		require.NotNil(t, snapshot.Segment)
		assert.Equal(t, models.SegmentGroup, *snapshot.Segment)
		require.Len(t, snapshot.Entries, 8)
		for _, entry := range snapshot.Entries {
			assert.Equal(t, 1, entry.TournamentID)
			assert.NotNil(t, entry.GroupID)
		}

		require.Len(t, f.sessions.CreateBatchCalls, 1)
		batch := f.sessions.CreateBatchCalls[0]
		require.Len(t, batch, 3)

		assert.Equal(t, "KO-R1M1", batch[0].UID)
		assert.Equal(t, 1, *batch[0].Participant1ID)
		assert.Equal(t, 4, *batch[0].Participant2ID)
		assert.Equal(t, "KO-R1M2", batch[1].UID)
		assert.Equal(t, 2, *batch[1].Participant1ID)
		assert.Equal(t, 3, *batch[1].Participant2ID)

		final := batch[2]
		assert.Equal(t, "KO-R2M1", final.UID)
		assert.Nil(t, final.Participant1ID)
		assert.Nil(t, final.Participant2ID)
		assert.Equal(t, "KO-R1M1", *final.Source1UID)
		assert.Equal(t, "KO-R1M2", *final.Source2UID)

		for _, sess := range batch {
			require.NotNil(t, sess.Segment)
			assert.Equal(t, models.SegmentKnockout, *sess.Segment)
			assert.Equal(t, models.SessionPending, sess.Status)
		}

		assert.Equal(t, []models.TournamentPhase{models.PhaseKnockout}, f.tournaments.UpdatePhaseCalls)
	})

	t.Run("open group sessions block finalization", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(hybrid)

		var seenSegment *models.PhaseSegment
		f.sessions.CountIncompleteFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, segment *models.PhaseSegment) (int, error) {
			seenSegment = segment
			return 3, nil
		}

		_, err := f.service.FinalizeGroupStage(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrIncompleteResults)
		require.NotNil(t, seenSegment)
		assert.Equal(t, models.SegmentGroup, *seenSegment)
		assert.Empty(t, f.rankings.ReplaceForScopeCalls)
	})

	t.Run("finalization requires the group stage", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseInProgress,
			Format:      models.FormatHeadToHead,
			OrganizerID: 10,
		})

		_, err := f.service.FinalizeGroupStage(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("qualifier demand beyond the group size is rejected", func(t *testing.T) {
		f := newPhaseFixture()
		withQualifiers := hybrid
		withQualifiers.QualifiersPerGroup = 3
		f.serveTournament(withQualifiers)
		f.serveRoster(1, 2, 3, 4)
		f.groups.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Group, error) {
			return []models.Group{
				{ID: 1, Label: "A", Position: 1, MemberIDs: []int{1, 3}},
				{ID: 2, Label: "B", Position: 2, MemberIDs: []int{2, 4}},
			}, nil
		}

		_, err := f.service.FinalizeGroupStage(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidParticipantCount)
	})
}

func TestCompleteTournament(t *testing.T) {
	ctx := context.Background()

	t.Run("open sessions block completion", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseInProgress,
			Format:      models.FormatHeadToHead,
			OrganizerID: 10,
		})

		var seenSegment *models.PhaseSegment
		segmentCaptured := false
		f.sessions.CountIncompleteFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, segment *models.PhaseSegment) (int, error) {
			seenSegment = segment
			segmentCaptured = true
			return 2, nil
		}

		_, err := f.service.CompleteTournament(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrIncompleteResults)
		assert.True(t, segmentCaptured)
		assert.Nil(t, seenSegment, "completion counts open sessions across all segments")
	})

	t.Run("a league tournament ranks by points on completion", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseInProgress,
			Format:      models.FormatHeadToHead,
			BracketMode: bracketPtr(models.BracketLeague),
			OrganizerID: 10,
		})
		f.serveRoster(1, 2, 3)
		f.sessions.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, filter repositories.ListSessionsFilter) ([]models.Session, error) {
			return []models.Session{
				completedMatch(1, 1, 2, 2, 1),
				completedMatch(2, 2, 3, 1, 1),
			}, nil
		}

		tournament, err := f.service.CompleteTournament(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseCompleted, tournament.Phase)

		require.Len(t, f.rankings.ReplaceForScopeCalls, 1)
		stored := f.rankings.ReplaceForScopeCalls[0]
		assert.Nil(t, stored.Segment)
		require.Len(t, stored.Entries, 3)
		assert.Equal(t, 1, stored.Entries[0].ParticipantID)
		assert.Equal(t, 3, stored.Entries[1].ParticipantID)
		assert.Equal(t, 2, stored.Entries[2].ParticipantID)
		for _, entry := range stored.Entries {
			assert.Equal(t, 1, entry.TournamentID)
			assert.Nil(t, entry.Segment)
		}
		assert.Equal(t, []models.TournamentPhase{models.PhaseCompleted}, f.tournaments.UpdatePhaseCalls)
	})

	t.Run("a knockout bracket ranks by elimination depth", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseInProgress,
			Format:      models.FormatHeadToHead,
			BracketMode: bracketPtr(models.BracketKnockout),
			OrganizerID: 10,
		})
		f.serveRoster(1, 2, 3, 4)
		f.sessions.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, filter repositories.ListSessionsFilter) ([]models.Session, error) {
			return []models.Session{
				completedMatch(1, 1, 4, 2, 0),
				completedMatch(1, 2, 3, 0, 1),
				completedMatch(2, 1, 3, 1, 3),
			}, nil
		}

		tournament, err := f.service.CompleteTournament(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, tournament.Ranking, 4)
		assert.Equal(t, 3, tournament.Ranking[0].ParticipantID)
		assert.Equal(t, 1, tournament.Ranking[1].ParticipantID)
	})

	t.Run("an individual tournament aggregates its scoring rounds", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:         models.PhaseInProgress,
			Format:        models.FormatIndividualRanking,
			ScoringMetric: metricPtr(models.MetricScoreBased),
			RoundCount:    1,
			OrganizerID:   10,
		})
		f.serveRoster(1, 2)
		now := time.Now().UTC()
		f.sessions.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, filter repositories.ListSessionsFilter) ([]models.Session, error) {
			return []models.Session{{
				RoundIndex:     1,
				ParticipantIDs: []int{1, 2},
				Results: models.IndividualResults{
					{ParticipantID: 1, Value: 10, SubmittedAt: now},
					{ParticipantID: 2, Value: 30, SubmittedAt: now},
				},
				Status: models.SessionCompleted,
			}}, nil
		}

		tournament, err := f.service.CompleteTournament(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, tournament.Ranking, 2)
		assert.Equal(t, 2, tournament.Ranking[0].ParticipantID)
		assert.Equal(t, 1, tournament.Ranking[1].ParticipantID)
	})

	t.Run("an individual tournament without a metric cannot complete", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseInProgress,
			Format:      models.FormatIndividualRanking,
			OrganizerID: 10,
		})

		_, err := f.service.CompleteTournament(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidScoringMetric)
	})

	t.Run("completion requires a playing phase", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseEnrolling,
			Format:      models.FormatHeadToHead,
			OrganizerID: 10,
		})

		_, err := f.service.CompleteTournament(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("a hybrid tournament merges knockout depth with group standings", func(t *testing.T) {
		f := newPhaseFixture()
		f.serveTournament(models.Tournament{
			Phase:       models.PhaseKnockout,
			Format:      models.FormatGroupAndKnockout,
			OrganizerID: 10,
		})
		f.serveRoster(1, 2, 3, 4, 5, 6, 7, 8)

		groupA, groupB := intPtr(1), intPtr(2)
		f.sessions.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, filter repositories.ListSessionsFilter) ([]models.Session, error) {
			groupMatch := completedMatch(1, 1, 3, 2, 0)
			groupMatch.Segment = segmentPtr(models.SegmentGroup)
			return []models.Session{
				groupMatch,
				knockoutMatch(1, 1, 4, 2, 0),
				knockoutMatch(1, 2, 3, 0, 1),
				knockoutMatch(2, 1, 3, 1, 2),
			}, nil
		}
		f.rankings.ListByScopeFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, segment *models.PhaseSegment) ([]models.RankingEntry, error) {
			return []models.RankingEntry{
				{ParticipantID: 1, Rank: 1, GroupID: groupA},
				{ParticipantID: 3, Rank: 2, GroupID: groupA},
				{ParticipantID: 5, Rank: 3, GroupID: groupA},
				{ParticipantID: 7, Rank: 4, GroupID: groupA},
				{ParticipantID: 2, Rank: 1, GroupID: groupB},
				{ParticipantID: 4, Rank: 2, GroupID: groupB},
				{ParticipantID: 6, Rank: 3, GroupID: groupB},
				{ParticipantID: 8, Rank: 4, GroupID: groupB},
			}, nil
		}
		f.groups.ListByTournamentFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Group, error) {
			return []models.Group{
				{ID: 1, Label: "A", Position: 1, MemberIDs: []int{1, 3, 5, 7}},
				{ID: 2, Label: "B", Position: 2, MemberIDs: []int{2, 4, 6, 8}},
			}, nil
		}

		tournament, err := f.service.CompleteTournament(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, tournament.Ranking, 8)

		// Knockout finishers first (champion 3, finalist 1, round-1
		// losers 2 and 4 by seed), then the group-stage casualties by
		// group rank and position.
		got := make([]int, len(tournament.Ranking))
		for i, entry := range tournament.Ranking {
			got[i] = entry.ParticipantID
			assert.Equal(t, i+1, entry.Rank)
		}
		assert.Equal(t, []int{3, 1, 2, 4, 5, 6, 7, 8}, got)
	})
}
