package domain

import "slices"

// TeamState holds the per-team scoring and timeout state.
type TeamState struct {
	Points           int           `json:"points"`
	Quarters         []int         `json:"quarters"`
	Timeouts         int           `json:"timeouts"`
	RequestedTimeout TimeoutOption `json:"requested_timeout"`
}

// TeamStats accumulates per-team statistics for the game.
type TeamStats struct {
	YardsPassing          int `json:"yards_passing"`
	YardsRushing          int `json:"yards_rushing"`
	YardsTotal            int `json:"yards_total"`
	TurnoverInterceptions int `json:"turnover_interceptions"`
	TurnoverFumble        int `json:"turnover_fumble"`
	FieldGoalsScored      int `json:"field_goals_scored"`
	FieldGoalsAttempted   int `json:"field_goals_attempted"`
	PossessionTime        int `json:"possession_time"`
}

// PlaySummary is one entry of the game's play log.
type PlaySummary struct {
	Quarter       int        `json:"quarter"`
	Clock         int        `json:"clock"`
	Possession    Side       `json:"possession"`
	Location      int        `json:"location"`
	Down          int        `json:"down"`
	Distance      int        `json:"distance"`
	Play          Play       `json:"play"`
	TimeOption    TimeOption `json:"time_option,omitempty"`
	OffenseNumber int        `json:"offense_number,omitempty"`
	DefenseNumber int        `json:"defense_number,omitempty"`
	Result        Result     `json:"result"`
	Yards         int        `json:"yards"`
	PlayTime      int        `json:"play_time"`
	RunoffTime    int        `json:"runoff_time"`
}

// MatchState is the full live state of one game.
type MatchState struct {
	Clock       int         `json:"clock"`
	Quarter     int         `json:"quarter"`
	QuarterType QuarterType `json:"quarter_type"`
	Location    int         `json:"location"`
	Possession  Side        `json:"possession"`
	Down        int         `json:"down"`
	Distance    int         `json:"distance"`

	// ReceivingNext is the side that receives the second-half kickoff.
	ReceivingNext       Side `json:"receiving_next"`
	OvertimeAttacker    Side `json:"overtime_attacker"`
	OvertimePossessions int  `json:"overtime_possessions"`

	Home      TeamState `json:"home"`
	Away      TeamState `json:"away"`
	HomeStats TeamStats `json:"home_stats"`
	AwayStats TeamStats `json:"away_stats"`

	Action    Action        `json:"action"`
	WaitingOn Side          `json:"waiting_on"`
	Ledger    WaitingLedger `json:"ledger"`

	DefensiveNumber    int    `json:"defensive_number,omitempty"`
	DefensiveSubmitter string `json:"defensive_submitter,omitempty"`

	Winner *Side         `json:"winner,omitempty"`
	Plays  []PlaySummary `json:"plays,omitempty"`
}

// NewMatchState returns the state of a game that has not started: first quarter,
// full clock, and the away team asked to call the coin toss.
func NewMatchState(rules Rules) MatchState {
	rules = rules.withDefaults()
	return MatchState{
		Clock:       rules.QuarterLength,
		Quarter:     1,
		QuarterType: QuarterNormal,
		Location:    KickoffSpot,
		Possession:  Home,
		Down:        1,
		Distance:    FirstDownYards,
		Home:        TeamState{Quarters: make([]int, 4), Timeouts: rules.Timeouts, RequestedTimeout: TimeoutNone},
		Away:        TeamState{Quarters: make([]int, 4), Timeouts: rules.Timeouts, RequestedTimeout: TimeoutNone},
		Action:      ActionCoin,
		WaitingOn:   Away,
	}
}

// State returns a pointer to the scoring state of side.
func (s *MatchState) State(side Side) *TeamState {
	if side == Home {
		return &s.Home
	}
	return &s.Away
}

// Stats returns a pointer to the statistics of side.
func (s *MatchState) Stats(side Side) *TeamStats {
	if side == Home {
		return &s.HomeStats
	}
	return &s.AwayStats
}

// IsOvertime reports whether the game is in any overtime period.
func (s *MatchState) IsOvertime() bool {
	return s.QuarterType == QuarterOvertimeNormal || s.QuarterType == QuarterOvertimeTime
}

// IsEnded reports whether the game is over.
func (s *MatchState) IsEnded() bool {
	return s.QuarterType == QuarterEnd || s.Action == ActionEnd
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s MatchState) Clone() MatchState {
	out := s
	out.Home.Quarters = slices.Clone(s.Home.Quarters)
	out.Away.Quarters = slices.Clone(s.Away.Quarters)
	out.Ledger = s.Ledger.Clone()
	out.Plays = slices.Clone(s.Plays)
	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}
	return out
}

// ClearDefense forgets the submitted defensive number.
func (s *MatchState) ClearDefense() {
	s.DefensiveNumber = 0
	s.DefensiveSubmitter = ""
}
