package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Reward is one participant's payout from a finished tournament. The
// presence of any reward row for a tournament is the idempotency guard
// for distribution; OperationKey ties together all rows written by the
// same run. These records are the single source of truth the external
// consistency monitor audits against.
type Reward struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	Rank          int       `json:"rank" db:"rank"`
	Credits       int       `json:"credits" db:"credits"`
	XP            int       `json:"xp" db:"xp"`
	SkillXP       SkillXP   `json:"skill_xp" db:"skill_xp"`
	OperationKey  string    `json:"operation_key" db:"operation_key"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SkillXP maps a tested skill to the experience granted for it,
// stored as a jsonb column.
type SkillXP map[string]int

func (s SkillXP) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SkillXP) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("skill xp: cannot scan %T", src)
	}
	return json.Unmarshal(b, s)
}

// Equal reports whether two rewards grant the same payout to the same
// participant at the same rank. Used to decide whether a repeated
// distribution call is an identical retry.
func (r Reward) Equal(o Reward) bool {
	if r.TournamentID != o.TournamentID ||
		r.ParticipantID != o.ParticipantID ||
		r.Rank != o.Rank ||
		r.Credits != o.Credits ||
		r.XP != o.XP ||
		len(r.SkillXP) != len(o.SkillXP) {
		return false
	}
	for skill, amount := range r.SkillXP {
		if o.SkillXP[skill] != amount {
			return false
		}
	}
	return true
}
