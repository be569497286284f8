package brackets

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// KnockoutGenerator produces a single-elimination bracket. Seeds come
// from enrollment order (optionally shuffled), the bracket is padded
// to the next power of two, and byes land on the top seeds in round 1
// only; a bye advances without a recorded session. Sessions of later
// rounds reference their feeders by UID and keep both participant
// slots NULL until every feeder is completed.
type KnockoutGenerator struct{}

func NewKnockoutGenerator() Generator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) GetName() string {
	return "Knockout"
}

func (g *KnockoutGenerator) Generate(ctx context.Context, params GenerateParams) (*Plan, error) {
	ids := rosterIDs(params.Roster)
	if len(ids) < 2 {
		return nil, fmt.Errorf("knockout: not enough participants (found %d, min 2 required)", len(ids))
	}
	if params.ShuffleSeeds {
		shuffled := make([]int, len(ids))
		copy(shuffled, ids)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		ids = shuffled
	}

	slots := buildSlots(ids, nil)
	return &Plan{Sessions: knockoutSessions(slots, "", nil)}, nil
}

type knockoutSlot struct {
	participantID int
	group         int // -1 when the bracket is not group-scoped
	bye           bool
}

// seedPositions returns the 1-based seed occupying each bracket slot
// of a full bracket. Adjacent slots pair in round 1; every pair sums
// to size+1, so the strongest seed meets the weakest.
func seedPositions(size int) []int {
	order := []int{1}
	for len(order) < size {
		m := len(order)*2 + 1
		next := make([]int, 0, len(order)*2)
		for _, s := range order {
			next = append(next, s, m-s)
		}
		order = next
	}
	return order
}

// buildSlots arranges seeds into bracket slot order. seeds[i] is seed
// i+1; positions beyond the seed list become byes. Because round-1
// pairs sum to size+1 and the bracket size is below twice the seed
// count, no pair can hold two byes.
func buildSlots(seeds []int, groups []int) []knockoutSlot {
	size := 1
	for size < len(seeds) {
		size *= 2
	}

	slots := make([]knockoutSlot, size)
	for pos, seed := range seedPositions(size) {
		if seed > len(seeds) {
			slots[pos] = knockoutSlot{bye: true, group: -1}
			continue
		}
		group := -1
		if groups != nil {
			group = groups[seed-1]
		}
		slots[pos] = knockoutSlot{participantID: seeds[seed-1], group: group}
	}
	return slots
}

func sameGroupPair(a, b knockoutSlot) bool {
	return !a.bye && !b.bye && a.group >= 0 && a.group == b.group
}

// fixSameGroupPairs swaps round-1 opponents between pairs until no
// pair holds two members of the same group. Swaps that keep byes in
// place are preferred so top seeds keep their byes.
func fixSameGroupPairs(slots []knockoutSlot) {
	for i := 0; i+1 < len(slots); i += 2 {
		if !sameGroupPair(slots[i], slots[i+1]) {
			continue
		}
		swapped := false
		for pass := 0; pass < 2 && !swapped; pass++ {
			for j := 0; j+1 < len(slots); j += 2 {
				if j == i {
					continue
				}
				if pass == 0 && (slots[j].bye || slots[j+1].bye) {
					continue
				}
				slots[i+1], slots[j+1] = slots[j+1], slots[i+1]
				if !sameGroupPair(slots[i], slots[i+1]) && !sameGroupPair(slots[j], slots[j+1]) {
					swapped = true
					break
				}
				slots[i+1], slots[j+1] = slots[j+1], slots[i+1]
			}
		}
	}
}

type knockoutNode struct {
	participantID *int
	sourceUID     *string
}

// knockoutSessions emits the session list for an arranged slot set.
// Byes resolve immediately into known round-2 participants; real
// round-1 pairs feed later rounds through source UIDs.
func knockoutSessions(slots []knockoutSlot, uidPrefix string, segment *models.PhaseSegment) []*Session {
	sessions := make([]*Session, 0, len(slots)-1)
	nodes := make([]knockoutNode, 0, len(slots)/2)

	num := 0
	for i := 0; i+1 < len(slots); i += 2 {
		a, b := slots[i], slots[i+1]
		switch {
		case a.bye:
			id := b.participantID
			nodes = append(nodes, knockoutNode{participantID: &id})
		case b.bye:
			id := a.participantID
			nodes = append(nodes, knockoutNode{participantID: &id})
		default:
			num++
			uid := fmt.Sprintf("%sR1M%d", uidPrefix, num)
			p1, p2 := a.participantID, b.participantID
			sessions = append(sessions, &Session{
				UID:            uid,
				Segment:        segment,
				RoundIndex:     1,
				OrderInRound:   num,
				Participant1ID: &p1,
				Participant2ID: &p2,
			})
			nodes = append(nodes, knockoutNode{sourceUID: &uid})
		}
	}

	round := 2
	for len(nodes) > 1 {
		next := make([]knockoutNode, 0, len(nodes)/2)
		num = 0
		for i := 0; i+1 < len(nodes); i += 2 {
			a, b := nodes[i], nodes[i+1]
			num++
			uid := fmt.Sprintf("%sR%dM%d", uidPrefix, round, num)
			sessions = append(sessions, &Session{
				UID:            uid,
				Segment:        segment,
				RoundIndex:     round,
				OrderInRound:   num,
				Participant1ID: a.participantID,
				Participant2ID: b.participantID,
				Source1UID:     a.sourceUID,
				Source2UID:     b.sourceUID,
			})
			next = append(next, knockoutNode{sourceUID: &uid})
		}
		nodes = next
		round++
	}

	return sessions
}
