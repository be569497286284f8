package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SessionStatus matches the session_status ENUM in the database.
type SessionStatus string

const (
	SessionPending   SessionStatus = "PENDING"
	SessionSubmitted SessionStatus = "SUBMITTED"
	SessionCompleted SessionStatus = "COMPLETED"
)

// PhaseSegment marks which half of a GROUP_AND_KNOCKOUT tournament a
// session (or ranking snapshot) belongs to. NULL for other formats.
type PhaseSegment string

const (
	SegmentGroup    PhaseSegment = "GROUP"
	SegmentKnockout PhaseSegment = "KNOCKOUT"
)

// Session is one playable unit: a head-to-head match or one scoring
// round shared by all participants of an INDIVIDUAL_RANKING tournament.
//
// For a knockout session fed by earlier rounds, Participant1ID and
// Participant2ID stay NULL until every feeder session referenced by
// Source1UID/Source2UID is COMPLETED; both slots of a feeder pair are
// written in a single update once the last feeder finishes.
type Session struct {
	ID             int               `json:"id" db:"id"`
	TournamentID   int               `json:"tournament_id" db:"tournament_id"`
	UID            string            `json:"uid" db:"uid"`
	Segment        *PhaseSegment     `json:"segment,omitempty" db:"phase_segment"`
	GroupID        *int              `json:"group_id,omitempty" db:"group_id"`
	RoundIndex     int               `json:"round_index" db:"round_index"`
	OrderInRound   int               `json:"order_in_round" db:"order_in_round"`
	Participant1ID *int              `json:"participant1_id,omitempty" db:"participant1_id"`
	Participant2ID *int              `json:"participant2_id,omitempty" db:"participant2_id"`
	ParticipantIDs []int             `json:"participant_ids,omitempty" db:"participant_ids"`
	Source1UID     *string           `json:"source1_uid,omitempty" db:"source1_uid"`
	Source2UID     *string           `json:"source2_uid,omitempty" db:"source2_uid"`
	Status         SessionStatus     `json:"status" db:"status"`
	Score1         *int              `json:"score1,omitempty" db:"score1"`
	Score2         *int              `json:"score2,omitempty" db:"score2"`
	Results        IndividualResults `json:"results,omitempty" db:"results"`
	WinnerID       *int              `json:"winner_id,omitempty" db:"winner_id"`
	SubmittedAt    *time.Time        `json:"submitted_at,omitempty" db:"submitted_at"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
}

// HeadToHead reports whether the session is a two-slot match.
func (s *Session) HeadToHead() bool {
	return s.ParticipantIDs == nil
}

// AwaitingParticipants reports whether a dependent knockout session
// still has unpopulated slots.
func (s *Session) AwaitingParticipants() bool {
	return (s.Source1UID != nil && s.Participant1ID == nil) ||
		(s.Source2UID != nil && s.Participant2ID == nil)
}

// IndividualResult is one participant's recorded value for one scoring
// round of an INDIVIDUAL_RANKING session.
type IndividualResult struct {
	ParticipantID int       `json:"participant_id"`
	Value         float64   `json:"value"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// IndividualResults is stored as a jsonb column.
type IndividualResults []IndividualResult

func (r IndividualResults) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *IndividualResults) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("individual results: cannot scan %T", src)
	}
	return json.Unmarshal(b, r)
}

// ByParticipant returns the recorded result for one participant.
func (r IndividualResults) ByParticipant(participantID int) (IndividualResult, bool) {
	for _, res := range r {
		if res.ParticipantID == participantID {
			return res, true
		}
	}
	return IndividualResult{}, false
}
