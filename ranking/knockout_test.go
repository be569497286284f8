package ranking

import (
	"testing"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeKnockout(t *testing.T) {
	t.Run("champion first then losers by how late they fell", func(t *testing.T) {
		entries := ComputeKnockout(testRoster(1, 2, 3, 4), []models.Session{
			playedSession(1, 1, 4, 2, 0),
			playedSession(1, 2, 3, 0, 1),
			playedSession(2, 1, 3, 1, 3),
		})

		// P3 takes the final, P1 loses it, and the two round-1 losers
		// order by enrollment seed.
		assert.Equal(t, []int{3, 1, 2, 4}, rankedIDs(entries))

		champion := entries[0]
		assert.Equal(t, 1, champion.Rank)
		assert.Equal(t, 6, champion.Points)
		assert.Equal(t, 2, champion.Wins)
		assert.Equal(t, 0, champion.Losses)
		assert.Equal(t, 4, champion.ScoreFor)
		assert.Equal(t, 1, champion.ScoreAgainst)
	})

	t.Run("a bye skips round one without penalty", func(t *testing.T) {
		// Three entrants: the top seed has no round-1 session at all and
		// enters in round 2.
		entries := ComputeKnockout(testRoster(1, 2, 3), []models.Session{
			playedSession(1, 2, 3, 0, 1),
			playedSession(2, 1, 3, 2, 1),
		})

		assert.Equal(t, []int{1, 3, 2}, rankedIDs(entries))
	})

	t.Run("participants still alive rank ahead by seed", func(t *testing.T) {
		entries := ComputeKnockout(testRoster(1, 2, 3, 4), []models.Session{
			playedSession(1, 1, 4, 1, 0),
			playedSession(1, 2, 3, 0, 1),
		})

		assert.Equal(t, []int{1, 3, 2, 4}, rankedIDs(entries))
	})

	t.Run("sessions without a winner are ignored", func(t *testing.T) {
		unfinished := playedSession(2, 1, 3, 0, 0)

		entries := ComputeKnockout(testRoster(1, 2, 3), []models.Session{
			playedSession(1, 2, 3, 0, 1),
			unfinished,
		})

		assert.Equal(t, []int{1, 3, 2}, rankedIDs(entries))
		assert.Zero(t, entries[0].Wins)
	})
}
