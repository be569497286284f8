package ranking

import (
	"testing"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(participantIDs ...int) []models.Enrollment {
	roster := make([]models.Enrollment, len(participantIDs))
	for i, id := range participantIDs {
		roster[i] = models.Enrollment{ParticipantID: id, Seed: i + 1}
	}
	return roster
}

func scoringRound(round int, results ...models.IndividualResult) models.Session {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ParticipantID
	}
	return models.Session{
		RoundIndex:     round,
		ParticipantIDs: ids,
		Results:        results,
		Status:         models.SessionCompleted,
	}
}

func recorded(participantID int, value float64, submittedAt time.Time) models.IndividualResult {
	return models.IndividualResult{ParticipantID: participantID, Value: value, SubmittedAt: submittedAt}
}

func rankedIDs(entries []models.RankingEntry) []int {
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ParticipantID
	}
	return ids
}

func TestComputeIndividual(t *testing.T) {
	noon := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("higher score ranks first", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricScoreBased, 1, testRoster(1, 2, 3), []models.Session{
			scoringRound(1,
				recorded(1, 10, noon),
				recorded(2, 30, noon),
				recorded(3, 20, noon),
			),
		})

		assert.Equal(t, []int{2, 3, 1}, rankedIDs(entries))
		require.NotNil(t, entries[0].MetricValue)
		assert.Equal(t, 30.0, *entries[0].MetricValue)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, 3, entries[2].Rank)
	})

	t.Run("lower time ranks first", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricTimeBased, 1, testRoster(1, 2, 3), []models.Session{
			scoringRound(1,
				recorded(1, 12.5, noon),
				recorded(2, 11.0, noon),
				recorded(3, 13.1, noon),
			),
		})

		assert.Equal(t, []int{2, 1, 3}, rankedIDs(entries))
	})

	t.Run("equal values rank the earlier submission first", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricTimeBased, 1, testRoster(1, 2), []models.Session{
			scoringRound(1,
				recorded(1, 9.4, noon),
				recorded(2, 9.4, noon.Add(-time.Minute)),
			),
		})

		assert.Equal(t, []int{2, 1}, rankedIDs(entries))
	})

	t.Run("placement ignores submission time on ties", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricPlacement, 1, testRoster(1, 2), []models.Session{
			scoringRound(1,
				recorded(1, 1, noon),
				recorded(2, 1, noon.Add(-time.Hour)),
			),
		})

		assert.Equal(t, []int{1, 2}, rankedIDs(entries))
	})

	t.Run("scores sum across rounds", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricScoreBased, 2, testRoster(1, 2), []models.Session{
			scoringRound(1, recorded(1, 10, noon), recorded(2, 25, noon)),
			scoringRound(2, recorded(1, 20, noon), recorded(2, 4, noon)),
		})

		assert.Equal(t, []int{1, 2}, rankedIDs(entries))
		require.NotNil(t, entries[0].MetricValue)
		assert.Equal(t, 30.0, *entries[0].MetricValue)
	})

	t.Run("placement keeps the best round", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricPlacement, 2, testRoster(1, 2), []models.Session{
			scoringRound(1, recorded(1, 3, noon), recorded(2, 2, noon)),
			scoringRound(2, recorded(1, 1, noon), recorded(2, 2, noon)),
		})

		assert.Equal(t, []int{1, 2}, rankedIDs(entries))
		require.NotNil(t, entries[0].MetricValue)
		assert.Equal(t, 1.0, *entries[0].MetricValue)
		assert.Equal(t, 2.0, *entries[1].MetricValue)
	})

	t.Run("rounds-based keeps the best round", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricRoundsBased, 2, testRoster(1, 2), []models.Session{
			scoringRound(1, recorded(1, 5, noon), recorded(2, 6, noon)),
			scoringRound(2, recorded(1, 8, noon), recorded(2, 7, noon)),
		})

		assert.Equal(t, []int{1, 2}, rankedIDs(entries))
		require.NotNil(t, entries[0].MetricValue)
		assert.Equal(t, 8.0, *entries[0].MetricValue)
	})

	t.Run("a participant missing a round ranks last", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricScoreBased, 2, testRoster(1, 2, 3), []models.Session{
			scoringRound(1,
				recorded(1, 10, noon),
				recorded(2, 99, noon),
				recorded(3, 20, noon),
			),
			scoringRound(2,
				recorded(1, 10, noon),
				recorded(3, 5, noon),
			),
		})

		assert.Equal(t, []int{3, 1, 2}, rankedIDs(entries))
		last := entries[2]
		assert.True(t, last.MissingResult)
		assert.Nil(t, last.MetricValue)
		assert.Equal(t, 3, last.Rank)
		assert.False(t, entries[0].MissingResult)
	})

	t.Run("multiple missing participants order by participant id", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricScoreBased, 1, testRoster(5, 2, 9), []models.Session{
			scoringRound(1, recorded(9, 1, noon)),
		})

		assert.Equal(t, []int{9, 2, 5}, rankedIDs(entries))
		assert.True(t, entries[1].MissingResult)
		assert.True(t, entries[2].MissingResult)
	})

	t.Run("round count below one still ranks a single round", func(t *testing.T) {
		entries := ComputeIndividual(models.MetricScoreBased, 0, testRoster(1, 2), []models.Session{
			scoringRound(1, recorded(1, 5, noon), recorded(2, 7, noon)),
		})

		assert.Equal(t, []int{2, 1}, rankedIDs(entries))
	})

	t.Run("recomputing yields an identical ordering", func(t *testing.T) {
		roster := testRoster(1, 2, 3)
		sessions := []models.Session{
			scoringRound(1,
				recorded(1, 10, noon),
				recorded(2, 99, noon),
				recorded(3, 20, noon),
			),
			scoringRound(2,
				recorded(1, 10, noon),
				recorded(3, 5, noon),
			),
		}

		first := ComputeIndividual(models.MetricScoreBased, 2, roster, sessions)
		second := ComputeIndividual(models.MetricScoreBased, 2, roster, sessions)
		assert.Equal(t, first, second)
	})
}
