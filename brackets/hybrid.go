package brackets

import (
	"context"
	"fmt"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// HybridGenerator partitions the roster into near-equal groups and
// schedules one round-robin cycle inside each. The knockout half is
// seeded later by KnockoutFromQualifiers, once the group stage is
// finalized.
type HybridGenerator struct{}

func NewHybridGenerator() Generator {
	return &HybridGenerator{}
}

func (g *HybridGenerator) GetName() string {
	return "GroupAndKnockout"
}

func (g *HybridGenerator) Generate(ctx context.Context, params GenerateParams) (*Plan, error) {
	ids := rosterIDs(params.Roster)
	if len(ids) < 4 {
		return nil, fmt.Errorf("hybrid: not enough participants (found %d, min 4 required)", len(ids))
	}

	segment := models.SegmentGroup
	plan := &Plan{}
	for gi, memberIDs := range partitionGroups(ids, params.Tournament.GroupSizeHint) {
		label := groupLabel(gi)
		plan.Groups = append(plan.Groups, &Group{
			Label:     label,
			Position:  gi + 1,
			MemberIDs: memberIDs,
		})

		num := 0
		for _, pair := range circlePairs(memberIDs) {
			num++
			p1, p2 := pair.p1, pair.p2
			plan.Sessions = append(plan.Sessions, &Session{
				UID:            fmt.Sprintf("G%s-M%d", label, num),
				Segment:        &segment,
				GroupLabel:     label,
				RoundIndex:     pair.day,
				OrderInRound:   num,
				Participant1ID: &p1,
				Participant2ID: &p2,
			})
		}
	}

	return plan, nil
}

// partitionGroups deals ids into near-equal groups in seed order, so
// group sizes never differ by more than one. sizeHint is the target
// group size; 0 picks the default of 4. Every group keeps at least
// two members.
func partitionGroups(ids []int, sizeHint int) [][]int {
	if sizeHint < 2 {
		sizeHint = 4
	}
	numGroups := (len(ids) + sizeHint - 1) / sizeHint
	if numGroups > len(ids)/2 {
		numGroups = len(ids) / 2
	}
	if numGroups < 2 {
		numGroups = 2
	}

	groups := make([][]int, numGroups)
	for i, id := range ids {
		groups[i%numGroups] = append(groups[i%numGroups], id)
	}
	return groups
}

// KnockoutFromQualifiers seeds the knockout half of a hybrid
// tournament. qualifiers[g] holds group g's top finishers in rank
// order. Qualifiers are ranked across groups (all winners first, then
// all runners-up), arranged into a standard bracket, and any round-1
// pairing of two members of the same group is repaired by an opponent
// swap. For two groups the standard arrangement already yields A1 vs
// B2 and B1 vs A2.
func KnockoutFromQualifiers(qualifiers [][]int) ([]*Session, error) {
	numGroups := len(qualifiers)
	if numGroups < 2 {
		return nil, fmt.Errorf("knockout seeding requires at least 2 groups, got %d", numGroups)
	}
	perGroup := len(qualifiers[0])
	if perGroup < 1 {
		return nil, fmt.Errorf("knockout seeding requires at least 1 qualifier per group")
	}
	for _, q := range qualifiers {
		if len(q) != perGroup {
			return nil, fmt.Errorf("knockout seeding requires equal qualifier counts per group")
		}
	}

	seeds := make([]int, 0, numGroups*perGroup)
	groups := make([]int, 0, numGroups*perGroup)
	for rank := 0; rank < perGroup; rank++ {
		for g := 0; g < numGroups; g++ {
			seeds = append(seeds, qualifiers[g][rank])
			groups = append(groups, g)
		}
	}

	slots := buildSlots(seeds, groups)
	fixSameGroupPairs(slots)

	segment := models.SegmentKnockout
	return knockoutSessions(slots, "KO-", &segment), nil
}
