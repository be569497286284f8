package brackets

import (
	"context"
	"fmt"
)

// IndividualGenerator produces one shared session per scoring round:
// every roster member records a value in it, and the session completes
// once all of them have.
type IndividualGenerator struct{}

func NewIndividualGenerator() Generator {
	return &IndividualGenerator{}
}

func (g *IndividualGenerator) GetName() string {
	return "Individual"
}

func (g *IndividualGenerator) Generate(ctx context.Context, params GenerateParams) (*Plan, error) {
	ids := rosterIDs(params.Roster)
	if len(ids) < 1 {
		return nil, fmt.Errorf("individual: empty roster")
	}

	rounds := params.Tournament.RoundCount
	if rounds < 1 {
		rounds = 1
	}

	sessions := make([]*Session, 0, rounds)
	for r := 1; r <= rounds; r++ {
		participants := make([]int, len(ids))
		copy(participants, ids)
		sessions = append(sessions, &Session{
			UID:            fmt.Sprintf("R%dM1", r),
			RoundIndex:     r,
			OrderInRound:   1,
			ParticipantIDs: participants,
		})
	}

	return &Plan{Sessions: sessions}, nil
}
