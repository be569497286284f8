package brackets

import (
	"context"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// Session is the value object a generator emits. Persistence (ids,
// group references, timestamps) is the caller's concern.
type Session struct {
	UID          string
	Segment      *models.PhaseSegment
	GroupLabel   string
	RoundIndex   int
	OrderInRound int

	// Two-slot sessions (HEAD_TO_HEAD, knockout). A nil slot with a
	// source UID set is populated later, when the feeder completes.
	Participant1ID *int
	Participant2ID *int
	Source1UID     *string
	Source2UID     *string

	// Shared sessions (INDIVIDUAL_RANKING): every roster member
	// records a value in the same session.
	ParticipantIDs []int
}

// Group is one generated pool of a GROUP_AND_KNOCKOUT plan.
type Group struct {
	Label     string
	Position  int
	MemberIDs []int
}

// Plan is the full output of a generation run.
type Plan struct {
	Sessions []*Session
	Groups   []*Group
}

type GenerateParams struct {
	Tournament *models.Tournament
	// Roster is the frozen enrollment list in seed order.
	Roster []models.Enrollment
	// ShuffleSeeds randomizes knockout seeding instead of using
	// enrollment order.
	ShuffleSeeds bool
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (*Plan, error)

	GetName() string
}

// ForTournament selects the generator matching the tournament's format
// and bracket mode.
func ForTournament(t *models.Tournament) (Generator, error) {
	switch t.Format {
	case models.FormatIndividualRanking:
		return NewIndividualGenerator(), nil
	case models.FormatHeadToHead:
		if t.BracketMode != nil && *t.BracketMode == models.BracketKnockout {
			return NewKnockoutGenerator(), nil
		}
		return NewLeagueGenerator(), nil
	case models.FormatGroupAndKnockout:
		return NewHybridGenerator(), nil
	}
	return nil, fmt.Errorf("no generator for tournament format %q", t.Format)
}

// groupLabel returns "A".."Z", then "AA", "AB", and so on.
func groupLabel(position int) string {
	label := ""
	n := position
	for {
		label = string(rune('A'+n%26)) + label
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return label
}

func rosterIDs(roster []models.Enrollment) []int {
	ids := make([]int, len(roster))
	for i, e := range roster {
		ids[i] = e.ParticipantID
	}
	return ids
}
