package ranking

import (
	"cmp"
	"slices"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// ComputeHeadToHead builds the points table of a set of completed
// two-slot sessions: 3 points per win, 1 per draw, 0 per loss.
// Ordering is points, then the head-to-head result between a tied
// pair that played each other, then score differential, then the
// earlier enrollment seed.
//
// The head-to-head tie-break applies only when exactly two
// participants share a points total; larger tied clusters fall
// through to score differential, since pairwise results inside a
// cluster can be cyclic.
func ComputeHeadToHead(roster []models.Enrollment, sessions []models.Session) []models.RankingEntry {
	type standing struct {
		participantID int
		seed          int
		points        int
		wins          int
		draws         int
		losses        int
		scoreFor      int
		scoreAgainst  int
	}

	byParticipant := make(map[int]*standing, len(roster))
	standings := make([]*standing, 0, len(roster))
	for _, e := range roster {
		st := &standing{participantID: e.ParticipantID, seed: e.Seed}
		byParticipant[e.ParticipantID] = st
		standings = append(standings, st)
	}

	// net head-to-head wins keyed by ordered participant pair
	type pair struct{ low, high int }
	h2h := make(map[pair]int)

	for _, s := range sessions {
		if s.Status != models.SessionCompleted ||
			s.Participant1ID == nil || s.Participant2ID == nil ||
			s.Score1 == nil || s.Score2 == nil {
			continue
		}
		p1, ok1 := byParticipant[*s.Participant1ID]
		p2, ok2 := byParticipant[*s.Participant2ID]
		if !ok1 || !ok2 {
			continue
		}

		score1, score2 := *s.Score1, *s.Score2
		p1.scoreFor += score1
		p1.scoreAgainst += score2
		p2.scoreFor += score2
		p2.scoreAgainst += score1

		key := pair{low: min(p1.participantID, p2.participantID), high: max(p1.participantID, p2.participantID)}
		switch {
		case score1 > score2:
			p1.points += pointsWin
			p1.wins++
			p2.losses++
			if key.low == p1.participantID {
				h2h[key]++
			} else {
				h2h[key]--
			}
		case score2 > score1:
			p2.points += pointsWin
			p2.wins++
			p1.losses++
			if key.low == p2.participantID {
				h2h[key]++
			} else {
				h2h[key]--
			}
		default:
			p1.points += pointsDraw
			p2.points += pointsDraw
			p1.draws++
			p2.draws++
		}
	}

	slices.SortFunc(standings, func(a, b *standing) int {
		if c := cmp.Compare(b.points, a.points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.scoreFor-b.scoreAgainst, a.scoreFor-a.scoreAgainst); c != 0 {
			return c
		}
		return cmp.Compare(a.seed, b.seed)
	})

	// head-to-head pass: a pair alone on its points total is reordered
	// by their mutual result, overriding score differential
	for i := 0; i+1 < len(standings); i++ {
		a, b := standings[i], standings[i+1]
		if a.points != b.points {
			continue
		}
		if i > 0 && standings[i-1].points == a.points {
			continue
		}
		if i+2 < len(standings) && standings[i+2].points == b.points {
			continue
		}
		key := pair{low: min(a.participantID, b.participantID), high: max(a.participantID, b.participantID)}
		net := h2h[key]
		if net == 0 {
			continue
		}
		winnerIsLow := net > 0
		aIsLow := a.participantID == key.low
		if winnerIsLow != aIsLow {
			standings[i], standings[i+1] = b, a
		}
	}

	entries := make([]models.RankingEntry, 0, len(standings))
	for i, st := range standings {
		entries = append(entries, models.RankingEntry{
			ParticipantID: st.participantID,
			Rank:          i + 1,
			Points:        st.points,
			Wins:          st.wins,
			Draws:         st.draws,
			Losses:        st.losses,
			ScoreFor:      st.scoreFor,
			ScoreAgainst:  st.scoreAgainst,
		})
	}
	return entries
}
