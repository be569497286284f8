package models

import "time"

// RankingEntry is one row of a computed ranking. Segment is NULL for
// the final tournament ranking and GROUP for a group-stage snapshot.
// Entries are always replaced wholesale per (tournament, segment),
// never patched row by row.
type RankingEntry struct {
	ID            int           `json:"id" db:"id"`
	TournamentID  int           `json:"tournament_id" db:"tournament_id"`
	Segment       *PhaseSegment `json:"segment,omitempty" db:"phase_segment"`
	GroupID       *int          `json:"group_id,omitempty" db:"group_id"`
	ParticipantID int           `json:"participant_id" db:"participant_id"`
	Rank          int           `json:"rank" db:"rank"`
	Points        int           `json:"points" db:"points"`
	MetricValue   *float64      `json:"metric_value,omitempty" db:"metric_value"`
	Wins          int           `json:"wins" db:"wins"`
	Draws         int           `json:"draws" db:"draws"`
	Losses        int           `json:"losses" db:"losses"`
	ScoreFor      int           `json:"score_for" db:"score_for"`
	ScoreAgainst  int           `json:"score_against" db:"score_against"`
	MissingResult bool          `json:"missing_result" db:"missing_result"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}
