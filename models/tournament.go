package models

import "time"

// TournamentFormat matches the tournament_format ENUM in the database.
type TournamentFormat string

const (
	FormatIndividualRanking TournamentFormat = "INDIVIDUAL_RANKING"
	FormatHeadToHead        TournamentFormat = "HEAD_TO_HEAD"
	FormatGroupAndKnockout  TournamentFormat = "GROUP_AND_KNOCKOUT"
)

// ScoringMetric applies to INDIVIDUAL_RANKING tournaments only.
type ScoringMetric string

const (
	MetricRoundsBased   ScoringMetric = "ROUNDS_BASED"
	MetricTimeBased     ScoringMetric = "TIME_BASED"
	MetricScoreBased    ScoringMetric = "SCORE_BASED"
	MetricDistanceBased ScoringMetric = "DISTANCE_BASED"
	MetricPlacement     ScoringMetric = "PLACEMENT"
)

// BracketMode applies to HEAD_TO_HEAD tournaments only.
type BracketMode string

const (
	BracketLeague   BracketMode = "LEAGUE"
	BracketKnockout BracketMode = "KNOCKOUT"
)

type TournamentPhase string

const (
	PhaseDraft              TournamentPhase = "DRAFT"
	PhaseEnrolling          TournamentPhase = "ENROLLING"
	PhaseInProgress         TournamentPhase = "IN_PROGRESS"
	PhaseGroupStage         TournamentPhase = "GROUP_STAGE"
	PhaseKnockout           TournamentPhase = "KNOCKOUT"
	PhaseCompleted          TournamentPhase = "COMPLETED"
	PhaseRewardsDistributed TournamentPhase = "REWARDS_DISTRIBUTED"
)

// Tournament is one lifecycle from DRAFT to REWARDS_DISTRIBUTED.
// EnrollmentClosedAt is the roster freeze: nil while enrollment is open.
type Tournament struct {
	ID                 int              `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	Description        *string          `json:"description,omitempty" db:"description"`
	Format             TournamentFormat `json:"format" db:"format"`
	ScoringMetric      *ScoringMetric   `json:"scoring_metric,omitempty" db:"scoring_metric"`
	BracketMode        *BracketMode     `json:"bracket_mode,omitempty" db:"bracket_mode"`
	Phase              TournamentPhase  `json:"phase" db:"phase"`
	RoundCount         int              `json:"round_count" db:"round_count"`
	WinnerCount        int              `json:"winner_count" db:"winner_count"`
	GroupSizeHint      int              `json:"group_size_hint,omitempty" db:"group_size_hint"`
	QualifiersPerGroup int              `json:"qualifiers_per_group,omitempty" db:"qualifiers_per_group"`
	SkillsToTest       []string         `json:"skills_to_test" db:"skills_to_test"`
	OrganizerID        int              `json:"organizer_id" db:"organizer_id"`
	EnrollmentClosedAt *time.Time       `json:"enrollment_closed_at,omitempty" db:"enrollment_closed_at"`
	ArchivedAt         *time.Time       `json:"-" db:"archived_at"`
	ReportKey          *string          `json:"-" db:"report_key"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`

	// Linked data populated by services, not mapped to columns.
	Participants []Enrollment   `json:"participants,omitempty" db:"-"`
	Sessions     []Session      `json:"sessions,omitempty" db:"-"`
	Groups       []Group        `json:"groups,omitempty" db:"-"`
	Ranking      []RankingEntry `json:"ranking,omitempty" db:"-"`
	Rewards      []Reward       `json:"rewards,omitempty" db:"-"`
}

// EnrollmentOpen reports whether new enrollments are currently accepted.
func (t *Tournament) EnrollmentOpen() bool {
	return t.Phase == PhaseEnrolling && t.EnrollmentClosedAt == nil
}

// RosterFrozen reports whether closeEnrollment has stamped the roster.
func (t *Tournament) RosterFrozen() bool {
	return t.EnrollmentClosedAt != nil
}
