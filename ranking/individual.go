// Package ranking computes tournament rankings as pure functions of
// completed sessions. Recomputing from the same inputs always yields
// the same ordering; callers replace persisted rankings wholesale.
package ranking

import (
	"cmp"
	"slices"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/models"
)

// ComputeIndividual ranks a roster by the values recorded in the
// completed sessions of an INDIVIDUAL_RANKING tournament.
//
// Values of multiple scoring rounds are aggregated per metric:
// TIME_BASED, SCORE_BASED and DISTANCE_BASED sum across rounds,
// PLACEMENT and ROUNDS_BASED take the best round. A participant
// missing any round's value is ranked last with the missing_result
// flag rather than excluded.
func ComputeIndividual(metric models.ScoringMetric, roundCount int, roster []models.Enrollment, sessions []models.Session) []models.RankingEntry {
	if roundCount < 1 {
		roundCount = 1
	}

	roundResults := make(map[int]models.IndividualResults, roundCount)
	for _, s := range sessions {
		if s.Status != models.SessionCompleted || s.HeadToHead() {
			continue
		}
		roundResults[s.RoundIndex] = s.Results
	}

	type standing struct {
		participantID int
		value         float64
		submittedAt   time.Time
		missing       bool
	}

	standings := make([]*standing, 0, len(roster))
	for _, e := range roster {
		st := &standing{participantID: e.ParticipantID}
		values := make([]float64, 0, roundCount)
		for round := 1; round <= roundCount; round++ {
			res, ok := roundResults[round].ByParticipant(e.ParticipantID)
			if !ok {
				st.missing = true
				continue
			}
			values = append(values, res.Value)
			if res.SubmittedAt.After(st.submittedAt) {
				st.submittedAt = res.SubmittedAt
			}
		}
		if !st.missing {
			st.value = aggregate(metric, values)
		}
		standings = append(standings, st)
	}

	slices.SortFunc(standings, func(a, b *standing) int {
		if a.missing != b.missing {
			// missing results rank last
			if a.missing {
				return 1
			}
			return -1
		}
		if a.missing {
			return cmp.Compare(a.participantID, b.participantID)
		}
		if c := compareValues(metric, a.value, b.value); c != 0 {
			return c
		}
		if metric != models.MetricPlacement {
			// earlier submission wins the tie
			if c := a.submittedAt.Compare(b.submittedAt); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.participantID, b.participantID)
	})

	entries := make([]models.RankingEntry, 0, len(standings))
	for i, st := range standings {
		entry := models.RankingEntry{
			ParticipantID: st.participantID,
			Rank:          i + 1,
			MissingResult: st.missing,
		}
		if !st.missing {
			value := st.value
			entry.MetricValue = &value
		}
		entries = append(entries, entry)
	}
	return entries
}

// aggregate folds one participant's per-round values into a single
// comparable number.
func aggregate(metric models.ScoringMetric, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch metric {
	case models.MetricTimeBased, models.MetricScoreBased, models.MetricDistanceBased:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	case models.MetricPlacement:
		best := values[0]
		for _, v := range values[1:] {
			if v < best {
				best = v
			}
		}
		return best
	case models.MetricRoundsBased:
		best := values[0]
		for _, v := range values[1:] {
			if v > best {
				best = v
			}
		}
		return best
	}
	return values[0]
}

// compareValues orders two aggregated values by the metric's sort
// direction: lower wins for TIME_BASED and PLACEMENT, higher wins for
// the rest.
func compareValues(metric models.ScoringMetric, a, b float64) int {
	switch metric {
	case models.MetricTimeBased, models.MetricPlacement:
		return cmp.Compare(a, b)
	default:
		return cmp.Compare(b, a)
	}
}
