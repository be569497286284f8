package ranking

import (
	"testing"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/stretchr/testify/assert"
)

func playedSession(round, participant1, participant2, score1, score2 int) models.Session {
	s := models.Session{
		RoundIndex:     round,
		Participant1ID: &participant1,
		Participant2ID: &participant2,
		Score1:         &score1,
		Score2:         &score2,
		Status:         models.SessionCompleted,
	}
	switch {
	case score1 > score2:
		s.WinnerID = &participant1
	case score2 > score1:
		s.WinnerID = &participant2
	}
	return s
}

func TestComputeHeadToHead(t *testing.T) {
	t.Run("three points per win and one per draw", func(t *testing.T) {
		entries := ComputeHeadToHead(testRoster(1, 2, 3), []models.Session{
			playedSession(1, 1, 2, 2, 1),
			playedSession(1, 2, 3, 1, 1),
		})

		// P2 and P3 share a point; their mutual result was a draw, so
		// score differential decides (P3 at 0, P2 at -1).
		assert.Equal(t, []int{1, 3, 2}, rankedIDs(entries))

		winner := entries[0]
		assert.Equal(t, 3, winner.Points)
		assert.Equal(t, 1, winner.Wins)
		assert.Equal(t, 0, winner.Draws)

		third := entries[2]
		assert.Equal(t, 2, third.ParticipantID)
		assert.Equal(t, 1, third.Points)
		assert.Equal(t, 1, third.Draws)
		assert.Equal(t, 1, third.Losses)
		assert.Equal(t, 2, third.ScoreFor)
		assert.Equal(t, 3, third.ScoreAgainst)
	})

	t.Run("two participants tied on points are ordered by their mutual result", func(t *testing.T) {
		entries := ComputeHeadToHead(testRoster(1, 2, 3, 4), []models.Session{
			playedSession(1, 1, 2, 5, 0),
			playedSession(2, 2, 3, 1, 0),
			playedSession(3, 3, 4, 9, 0),
			playedSession(4, 1, 4, 1, 0),
		})

		// P2 and P3 both hold 3 points. P3's differential (+8) dwarfs
		// P2's (-4), but P2 won their meeting and ranks ahead.
		assert.Equal(t, []int{1, 2, 3, 4}, rankedIDs(entries))

		second, third := entries[1], entries[2]
		assert.Equal(t, second.Points, third.Points)
		assert.Less(t,
			second.ScoreFor-second.ScoreAgainst,
			third.ScoreFor-third.ScoreAgainst)
	})

	t.Run("a three-way tie falls back to score differential", func(t *testing.T) {
		entries := ComputeHeadToHead(testRoster(1, 2, 3), []models.Session{
			playedSession(1, 1, 2, 3, 0),
			playedSession(2, 2, 3, 2, 0),
			playedSession(3, 3, 1, 1, 0),
		})

		// All three sit on 3 points with circular mutual results, so no
		// pairwise override applies: P1 leads on differential, and P2
		// edges P3 on seed despite losing to them.
		assert.Equal(t, []int{1, 2, 3}, rankedIDs(entries))
		for _, e := range entries {
			assert.Equal(t, 3, e.Points)
		}
	})

	t.Run("an empty schedule ranks by enrollment seed", func(t *testing.T) {
		entries := ComputeHeadToHead(testRoster(7, 5, 9), nil)

		assert.Equal(t, []int{7, 5, 9}, rankedIDs(entries))
		for _, e := range entries {
			assert.Zero(t, e.Points)
			assert.Zero(t, e.Wins)
		}
	})

	t.Run("sessions without recorded scores carry no points", func(t *testing.T) {
		pending := playedSession(2, 1, 2, 9, 0)
		pending.Status = models.SessionPending

		entries := ComputeHeadToHead(testRoster(1, 2), []models.Session{
			playedSession(1, 1, 2, 1, 1),
			pending,
		})

		assert.Equal(t, []int{1, 2}, rankedIDs(entries))
		assert.Equal(t, 1, entries[0].Points)
		assert.Equal(t, 1, entries[1].Points)
	})
}
