package ranking

import (
	"cmp"
	"slices"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// ComputeKnockout ranks bracket participants by how far they
// advanced: the champion first, then the final's loser, then the
// losers of each earlier round, ordered inside a round by enrollment
// seed. Round-1 byes need no special handling: a bye produces no
// session, so the advancing seed is never eliminated there.
func ComputeKnockout(roster []models.Enrollment, sessions []models.Session) []models.RankingEntry {
	type standing struct {
		participantID int
		seed          int
		points        int
		wins          int
		losses        int
		scoreFor      int
		scoreAgainst  int
		lostInRound   int // 0 while never eliminated
	}

	byParticipant := make(map[int]*standing, len(roster))
	standings := make([]*standing, 0, len(roster))
	for _, e := range roster {
		st := &standing{participantID: e.ParticipantID, seed: e.Seed}
		byParticipant[e.ParticipantID] = st
		standings = append(standings, st)
	}

	for _, s := range sessions {
		if s.Status != models.SessionCompleted ||
			s.Participant1ID == nil || s.Participant2ID == nil ||
			s.WinnerID == nil || s.Score1 == nil || s.Score2 == nil {
			continue
		}
		p1, ok1 := byParticipant[*s.Participant1ID]
		p2, ok2 := byParticipant[*s.Participant2ID]
		if !ok1 || !ok2 {
			continue
		}

		p1.scoreFor += *s.Score1
		p1.scoreAgainst += *s.Score2
		p2.scoreFor += *s.Score2
		p2.scoreAgainst += *s.Score1

		winner, loser := p1, p2
		if *s.WinnerID == p2.participantID {
			winner, loser = p2, p1
		}
		winner.points += pointsWin
		winner.wins++
		loser.losses++
		if s.RoundIndex > loser.lostInRound {
			loser.lostInRound = s.RoundIndex
		}
	}

	slices.SortFunc(standings, func(a, b *standing) int {
		if a.lostInRound != b.lostInRound {
			if a.lostInRound == 0 {
				return -1
			}
			if b.lostInRound == 0 {
				return 1
			}
			// eliminated later ranks higher
			return cmp.Compare(b.lostInRound, a.lostInRound)
		}
		return cmp.Compare(a.seed, b.seed)
	})

	entries := make([]models.RankingEntry, 0, len(standings))
	for i, st := range standings {
		entries = append(entries, models.RankingEntry{
			ParticipantID: st.participantID,
			Rank:          i + 1,
			Points:        st.points,
			Wins:          st.wins,
			Losses:        st.losses,
			ScoreFor:      st.scoreFor,
			ScoreAgainst:  st.scoreAgainst,
		})
	}
	return entries
}
