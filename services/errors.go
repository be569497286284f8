package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	// Resource lookups
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRankingNotFound    = errors.New("ranking has not been computed for this tournament")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrInvalidFormat          = errors.New("invalid tournament format")
	ErrInvalidScoringMetric   = errors.New("invalid scoring metric")
	ErrInvalidBracketMode     = errors.New("invalid bracket mode")
	ErrInvalidRoundCount      = errors.New("invalid round count")
	ErrInvalidWinnerCount     = errors.New("winner count must be positive")
	ErrInvalidResultPayload   = errors.New("result payload does not match the session type")

	// Lifecycle guards
	ErrInvalidTransition   = errors.New("invalid phase transition")
	ErrEnrollmentClosed    = errors.New("enrollment is closed")
	ErrNotEnrollmentClosed = errors.New("enrollment must be closed before sessions are generated")
	ErrIncompleteResults   = errors.New("tournament has sessions without completed results")
	ErrSessionNotReady     = errors.New("session participants are not determined yet")

	// Enrollment and roster
	ErrAlreadyEnrolled          = errors.New("participant is already enrolled in this tournament")
	ErrParticipantNotEnrolled   = errors.New("participant does not belong to this session")
	ErrInsufficientParticipants = errors.New("not enough participants enrolled for this format")
	ErrInvalidParticipantCount  = errors.New("participant count does not satisfy the tournament configuration")

	// Idempotency conflicts
	ErrAlreadySubmitted   = errors.New("result already recorded for this session")
	ErrAlreadyDistributed = errors.New("rewards already distributed with different parameters")

	// Authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)
