package models

import "time"

// Enrollment is one participant on a tournament roster.
// Seed is the 1-based enrollment order used for bracket seeding and
// as the last head-to-head tie-break.
type Enrollment struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	Seed          int       `json:"seed" db:"seed"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
