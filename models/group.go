package models

// Group is one round-robin pool of a GROUP_AND_KNOCKOUT tournament.
// MemberIDs is fixed when sessions are generated.
type Group struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Label        string `json:"label" db:"label"`
	Position     int    `json:"position" db:"position"`
	MemberIDs    []int  `json:"member_ids" db:"member_ids"`
}
