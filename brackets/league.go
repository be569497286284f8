package brackets

import (
	"context"
	"fmt"
)

// LeagueGenerator produces a round-robin schedule with the circle
// method: slot 0 stays fixed while the remaining slots rotate one
// position per match day, so every unordered pair meets exactly once
// per cycle. An odd roster gets a synthetic bye slot that never
// produces a session. round_count full cycles are emitted with the
// cycle recorded as the session's round index.
type LeagueGenerator struct{}

func NewLeagueGenerator() Generator {
	return &LeagueGenerator{}
}

func (g *LeagueGenerator) GetName() string {
	return "League"
}

func (g *LeagueGenerator) Generate(ctx context.Context, params GenerateParams) (*Plan, error) {
	ids := rosterIDs(params.Roster)
	if len(ids) < 2 {
		return nil, fmt.Errorf("league: not enough participants (found %d, min 2 required)", len(ids))
	}

	cycles := params.Tournament.RoundCount
	if cycles < 1 {
		cycles = 1
	}

	sessions := make([]*Session, 0, cycles*len(ids)*(len(ids)-1)/2)
	for cycle := 1; cycle <= cycles; cycle++ {
		num := 0
		for _, pair := range circlePairs(ids) {
			num++
			p1, p2 := pair.p1, pair.p2
			if cycle%2 == 0 {
				// alternate cycles swap sides
				p1, p2 = p2, p1
			}
			sessions = append(sessions, &Session{
				UID:            fmt.Sprintf("R%dM%d", cycle, num),
				RoundIndex:     cycle,
				OrderInRound:   num,
				Participant1ID: &p1,
				Participant2ID: &p2,
			})
		}
	}

	return &Plan{Sessions: sessions}, nil
}

type circlePair struct {
	day    int
	p1, p2 int
}

// circlePairs returns every unordered pair exactly once, in match-day
// order. Days are 1-based.
func circlePairs(ids []int) []circlePair {
	slots := make([]int, 0, len(ids)+1)
	for i := range ids {
		slots = append(slots, i)
	}
	if len(slots)%2 != 0 {
		slots = append(slots, -1) // bye slot
	}

	m := len(slots)
	pairs := make([]circlePair, 0, len(ids)*(len(ids)-1)/2)
	for day := 1; day <= m-1; day++ {
		for i := 0; i < m/2; i++ {
			a, b := slots[i], slots[m-1-i]
			if a == -1 || b == -1 {
				continue
			}
			pairs = append(pairs, circlePair{day: day, p1: ids[a], p2: ids[b]})
		}
		last := slots[m-1]
		copy(slots[2:], slots[1:m-1])
		slots[1] = last
	}
	return pairs
}
