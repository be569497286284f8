package brackets

import (
	"context"
	"fmt"
	"testing"

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

// pairKey normalizes an unordered participant pair for set membership
// checks.
func pairKey(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func TestLeagueGenerator(t *testing.T) {
	t.Run("each unordered pair meets exactly once per cycle", func(t *testing.T) {
		gen := NewLeagueGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{RoundCount: 1},
			Roster:     testRoster(1, 2, 3, 4),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 6, "4 participants yield 6 pairings")
		assert.Empty(t, plan.Groups)

		seen := make(map[string]int)
		for _, s := range plan.Sessions {
			require.NotNil(t, s.Participant1ID)
			require.NotNil(t, s.Participant2ID)
			assert.Nil(t, s.Segment, "league sessions carry no segment")
			seen[pairKey(*s.Participant1ID, *s.Participant2ID)]++
		}
		assert.Len(t, seen, 6)
		for pair, count := range seen {
			assert.Equal(t, 1, count, "pair %s scheduled more than once", pair)
		}
	})

	t.Run("odd roster sits one participant out per match day", func(t *testing.T) {
		gen := NewLeagueGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{RoundCount: 1},
			Roster:     testRoster(10, 20, 30, 40, 50),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 10, "5 participants yield 10 pairings")
	})

	t.Run("extra cycles repeat every pairing with sides swapped", func(t *testing.T) {
		gen := NewLeagueGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{RoundCount: 2},
			Roster:     testRoster(1, 2, 3),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 6, "3 pairings per cycle, 2 cycles")

		first := plan.Sessions[:3]
		second := plan.Sessions[3:]
		for i := range first {
			assert.Equal(t, i+1, first[i].OrderInRound)
			assert.Equal(t, 1, first[i].RoundIndex)
			assert.Equal(t, 2, second[i].RoundIndex)
			assert.Equal(t, *first[i].Participant1ID, *second[i].Participant2ID, "return cycle swaps sides")
			assert.Equal(t, *first[i].Participant2ID, *second[i].Participant1ID)
		}
	})

	t.Run("session UIDs carry cycle and match number", func(t *testing.T) {
		gen := NewLeagueGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{RoundCount: 1},
			Roster:     testRoster(1, 2),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 1)
		assert.Equal(t, "R1M1", plan.Sessions[0].UID)
	})

	t.Run("rejects a single participant", func(t *testing.T) {
		gen := NewLeagueGenerator()
		_, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{RoundCount: 1},
			Roster:     testRoster(1),
		})
		require.Error(t, err)
	})
}

func TestIndividualGenerator(t *testing.T) {
	t.Run("one shared session per scoring round", func(t *testing.T) {
		gen := NewIndividualGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{RoundCount: 3},
			Roster:     testRoster(7, 8, 9),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 3)

		for i, s := range plan.Sessions {
			assert.Equal(t, fmt.Sprintf("R%dM1", i+1), s.UID)
			assert.Equal(t, i+1, s.RoundIndex)
			assert.Equal(t, []int{7, 8, 9}, s.ParticipantIDs)
			assert.Nil(t, s.Participant1ID)
			assert.Nil(t, s.Participant2ID)
		}
	})

	t.Run("round count below one defaults to a single round", func(t *testing.T) {
		gen := NewIndividualGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{},
			Roster:     testRoster(1),
		})
		require.NoError(t, err)
		assert.Len(t, plan.Sessions, 1)
	})
}

func TestForTournament(t *testing.T) {
	knockout := models.BracketKnockout
	league := models.BracketLeague

	cases := []struct {
		name       string
		tournament models.Tournament
		wantName   string
	}{
		{"individual ranking", models.Tournament{Format: models.FormatIndividualRanking}, "Individual"},
		{"head to head league", models.Tournament{Format: models.FormatHeadToHead, BracketMode: &league}, "League"},
		{"head to head without mode defaults to league", models.Tournament{Format: models.FormatHeadToHead}, "League"},
		{"head to head knockout", models.Tournament{Format: models.FormatHeadToHead, BracketMode: &knockout}, "Knockout"},
		{"group and knockout", models.Tournament{Format: models.FormatGroupAndKnockout}, "GroupAndKnockout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen, err := ForTournament(&tc.tournament)
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, gen.GetName())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := ForTournament(&models.Tournament{Format: "BATTLE_ROYALE"})
		require.Error(t, err)
	})
}
