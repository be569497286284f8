package brackets

import (
	"context"
	"testing"

	"github.com/football-investment/practice-booking-system-sub021/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnockoutGenerator(t *testing.T) {
	t.Run("power of two roster pairs strongest against weakest", func(t *testing.T) {
		gen := NewKnockoutGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{},
			Roster:     testRoster(1, 2, 3, 4),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 3, "4 participants need 3 sessions")

		r1m1 := plan.Sessions[0]
		assert.Equal(t, "R1M1", r1m1.UID)
		assert.Equal(t, 1, *r1m1.Participant1ID)
		assert.Equal(t, 4, *r1m1.Participant2ID)

		r1m2 := plan.Sessions[1]
		assert.Equal(t, "R1M2", r1m2.UID)
		assert.Equal(t, 2, *r1m2.Participant1ID)
		assert.Equal(t, 3, *r1m2.Participant2ID)

		final := plan.Sessions[2]
		assert.Equal(t, "R2M1", final.UID)
		assert.Nil(t, final.Participant1ID, "final slots stay empty until the feeders complete")
		assert.Nil(t, final.Participant2ID)
		assert.Equal(t, "R1M1", *final.Source1UID)
		assert.Equal(t, "R1M2", *final.Source2UID)
	})

	t.Run("byes advance top seeds without a session", func(t *testing.T) {
		gen := NewKnockoutGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{},
			Roster:     testRoster(1, 2, 3, 4, 5, 6),
		})
		require.NoError(t, err)
		// 6 participants in a bracket of 8: two byes, five sessions total.
		require.Len(t, plan.Sessions, 5)

		byUID := make(map[string]*Session, len(plan.Sessions))
		for _, s := range plan.Sessions {
			byUID[s.UID] = s
		}

		require.Contains(t, byUID, "R1M1")
		assert.Equal(t, 4, *byUID["R1M1"].Participant1ID)
		assert.Equal(t, 5, *byUID["R1M1"].Participant2ID)
		require.Contains(t, byUID, "R1M2")
		assert.Equal(t, 3, *byUID["R1M2"].Participant1ID)
		assert.Equal(t, 6, *byUID["R1M2"].Participant2ID)

		// Seeds 1 and 2 enter in round 2 directly, next to a feeder slot.
		semi1 := byUID["R2M1"]
		require.NotNil(t, semi1)
		assert.Equal(t, 1, *semi1.Participant1ID)
		assert.Nil(t, semi1.Source1UID)
		assert.Nil(t, semi1.Participant2ID)
		assert.Equal(t, "R1M1", *semi1.Source2UID)

		semi2 := byUID["R2M2"]
		require.NotNil(t, semi2)
		assert.Equal(t, 2, *semi2.Participant1ID)
		assert.Nil(t, semi2.Participant2ID)
		assert.Equal(t, "R1M2", *semi2.Source2UID)

		final := byUID["R3M1"]
		require.NotNil(t, final)
		assert.Equal(t, "R2M1", *final.Source1UID)
		assert.Equal(t, "R2M2", *final.Source2UID)
	})

	t.Run("every non-final session feeds exactly one later session", func(t *testing.T) {
		gen := NewKnockoutGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{},
			Roster:     testRoster(1, 2, 3, 4, 5, 6, 7),
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 6, "7 participants need 6 sessions")

		fedBy := make(map[string]int)
		for _, s := range plan.Sessions {
			if s.Source1UID != nil {
				fedBy[*s.Source1UID]++
			}
			if s.Source2UID != nil {
				fedBy[*s.Source2UID]++
			}
		}
		for _, s := range plan.Sessions[:len(plan.Sessions)-1] {
			assert.Equal(t, 1, fedBy[s.UID], "session %s must feed one dependent", s.UID)
		}
		assert.Zero(t, fedBy[plan.Sessions[len(plan.Sessions)-1].UID], "the final feeds nothing")
	})

	t.Run("shuffled seeding keeps the same bracket shape", func(t *testing.T) {
		gen := NewKnockoutGenerator()
		plan, err := gen.Generate(context.Background(), GenerateParams{
			Tournament:   &models.Tournament{},
			Roster:       testRoster(1, 2, 3, 4, 5),
			ShuffleSeeds: true,
		})
		require.NoError(t, err)
		require.Len(t, plan.Sessions, 4)

		seen := make(map[int]int)
		for _, s := range plan.Sessions {
			for _, p := range []*int{s.Participant1ID, s.Participant2ID} {
				if p != nil {
					seen[*p]++
				}
			}
		}
		// Bracket of 8 with 5 entrants: three byes, one round-1 session,
		// so exactly two participants appear pre-populated in round 1 and
		// three more surface in round 2.
		assert.Len(t, seen, 5)
	})

	t.Run("rejects a single participant", func(t *testing.T) {
		gen := NewKnockoutGenerator()
		_, err := gen.Generate(context.Background(), GenerateParams{
			Tournament: &models.Tournament{},
			Roster:     testRoster(1),
		})
		require.Error(t, err)
	})
}

func TestSeedPositions(t *testing.T) {
	assert.Equal(t, []int{1, 2}, seedPositions(2))
	assert.Equal(t, []int{1, 4, 2, 3}, seedPositions(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, seedPositions(8))

	positions := seedPositions(16)
	for i := 0; i+1 < len(positions); i += 2 {
		assert.Equal(t, 17, positions[i]+positions[i+1], "round-1 pairs sum to size+1")
	}
}
