package domain

// Rules are the per-deployment game parameters that shape state transitions.
type Rules struct {
	QuarterLength   int
	OvertimeVariant OvertimeVariant
	OvertimeLength  int
	Timeouts        int
}

func (r Rules) withDefaults() Rules {
	if r.QuarterLength <= 0 {
		r.QuarterLength = DefaultQuarterLength
	}
	if r.OvertimeVariant == "" {
		r.OvertimeVariant = OvertimeDistance
	}
	if r.OvertimeLength <= 0 {
		r.OvertimeLength = r.QuarterLength
	}
	if r.Timeouts <= 0 {
		r.Timeouts = DefaultTimeouts
	}
	return r
}

// PlayRequest is everything a resolver needs to decide a play.
type PlayRequest struct {
	Action        Action
	Play          Play
	TimeOption    TimeOption
	OffenseNumber int
	DefenseNumber int

	Location int
	Down     int
	Distance int
	Clock    int
	Quarter  int
	// Untimed is set during distance overtime, where the clock does not run.
	Untimed bool

	OffenseTimeoutRequested bool
	DefenseTimeoutRequested bool
}

// Outcome is a resolver's verdict on a play.
type Outcome struct {
	Result             Result
	Yards              int
	PlayTime           int
	RunoffTime         int
	OffenseTimeoutUsed bool
	DefenseTimeoutUsed bool
}

// Transition summarizes what ApplyOutcome changed, for message rendering.
type Transition struct {
	Offense         Side
	Result          Result
	Yards           int
	ScoredBy        Side
	Points          int
	FirstDown       bool
	TurnoverOnDowns bool
	DriveEnded      bool
	QuarterEnded    bool
	Halftime        bool
	OvertimeStarted bool
	GameEnded       bool
	OffenseTimeout  TimeoutOption
	DefenseTimeout  TimeoutOption
}

// NewPlayRequest builds the resolver input for the offense's call against the
// stored defensive number.
func (s *MatchState) NewPlayRequest(play Play, timeOption TimeOption, offenseNumber int) PlayRequest {
	if timeOption == "" {
		timeOption = TimeNormal
	}
	return PlayRequest{
		Action:                  s.Action,
		Play:                    play,
		TimeOption:              timeOption,
		OffenseNumber:           offenseNumber,
		DefenseNumber:           s.DefensiveNumber,
		Location:                s.Location,
		Down:                    s.Down,
		Distance:                s.Distance,
		Clock:                   s.Clock,
		Quarter:                 s.Quarter,
		Untimed:                 s.QuarterType == QuarterOvertimeNormal,
		OffenseTimeoutRequested: s.State(s.Possession).RequestedTimeout == TimeoutRequested,
		DefenseTimeoutRequested: s.State(s.Possession.Negate()).RequestedTimeout == TimeoutRequested,
	}
}

// SetKickoff sets up a kickoff by kicker from the standard spot. The receiving
// side submits the first number.
func (s *MatchState) SetKickoff(kicker Side) {
	s.setFreeKick(kicker, KickoffSpot)
}

func (s *MatchState) setFreeKick(kicker Side, spot int) {
	s.Possession = kicker
	s.Location = spot
	s.Down = 1
	s.Distance = FirstDownYards
	s.Action = ActionKickoff
	s.WaitingOn = kicker.Negate()
	s.ClearDefense()
}

// SetOvertimeDrive starts a distance-overtime possession for attacker.
func (s *MatchState) SetOvertimeDrive(attacker Side) {
	s.OvertimeAttacker = attacker
	s.Possession = attacker
	s.Location = OvertimeSpot
	s.Down = 1
	s.Distance = FirstDownYards
	s.Action = ActionPlay
	s.WaitingOn = attacker.Negate()
	s.ClearDefense()
}

// BeginCoinToss asks the away team to call the toss.
func (s *MatchState) BeginCoinToss() {
	s.Action = ActionCoin
	s.WaitingOn = Away
	s.ClearDefense()
}

// StartOvertime moves a tied game into the next overtime period.
func (s *MatchState) StartOvertime(rules Rules) {
	rules = rules.withDefaults()
	s.Quarter++
	s.ensureQuarterColumns()
	s.OvertimePossessions = 0
	if rules.OvertimeVariant == OvertimeTime {
		s.QuarterType = QuarterOvertimeTime
		s.Clock = rules.OvertimeLength
		s.Home.Timeouts = rules.Timeouts
		s.Away.Timeouts = rules.Timeouts
	} else {
		s.QuarterType = QuarterOvertimeNormal
		s.Clock = 0
	}
	s.Action = ActionOvertime
	s.Ledger.Reset()
	s.ClearDefense()
}

// End finishes the game with winner.
func (s *MatchState) End(winner Side) {
	s.QuarterType = QuarterEnd
	s.Action = ActionEnd
	w := winner
	s.Winner = &w
	s.Ledger.Reset()
	s.ClearDefense()
	s.normalize()
}

// Leader returns the side with more points, and false on a tie.
func (s *MatchState) Leader() (Side, bool) {
	switch {
	case s.Home.Points > s.Away.Points:
		return Home, true
	case s.Away.Points > s.Home.Points:
		return Away, true
	default:
		return Home, false
	}
}

// ApplyOutcome advances the state by one resolved play.
func (s *MatchState) ApplyOutcome(req PlayRequest, out Outcome, rules Rules) Transition {
	rules = rules.withDefaults()
	offense := s.Possession
	t := Transition{Offense: offense, Result: out.Result, Yards: out.Yards}

	s.Plays = append(s.Plays, PlaySummary{
		Quarter:       s.Quarter,
		Clock:         s.Clock,
		Possession:    offense,
		Location:      s.Location,
		Down:          s.Down,
		Distance:      s.Distance,
		Play:          req.Play,
		TimeOption:    req.TimeOption,
		OffenseNumber: req.OffenseNumber,
		DefenseNumber: req.DefenseNumber,
		Result:        out.Result,
		Yards:         out.Yards,
		PlayTime:      out.PlayTime,
		RunoffTime:    out.RunoffTime,
	})
	s.recordStats(req, out, offense)
	t.OffenseTimeout = s.settleTimeout(offense, out.OffenseTimeoutUsed)
	t.DefenseTimeout = s.settleTimeout(offense.Negate(), out.DefenseTimeoutUsed)

	untimed := s.QuarterType == QuarterOvertimeNormal
	if !untimed {
		s.Clock -= out.PlayTime + out.RunoffTime
		if s.Clock < 0 {
			s.Clock = 0
		}
	}
	s.ClearDefense()

	switch req.Action {
	case ActionKickoff:
		s.applyKickoff(out, &t)
	case ActionConversion:
		s.applyConversion(out, untimed, &t)
	default:
		s.applyPlay(out, &t)
	}
	if IsPlayAction(s.Action) {
		s.WaitingOn = s.Possession.Negate()
	}

	switch {
	case untimed:
		if (t.DriveEnded && s.Action != ActionConversion) || req.Action == ActionConversion {
			s.finishOvertimeDrive(&t)
		}
	case s.Clock <= 0 && s.Action != ActionConversion:
		s.endQuarter(rules, &t)
	}
	s.normalize()
	return t
}

func (s *MatchState) applyPlay(out Outcome, t *Transition) {
	offense := s.Possession
	switch out.Result {
	case ResultGain, ResultIncomplete, ResultSpike, ResultKneel:
		yards := out.Yards
		if out.Result == ResultIncomplete || out.Result == ResultSpike {
			yards = 0
		}
		s.Location += yards
		switch {
		case s.Location >= FieldLength:
			s.touchdown(offense, t)
		case s.Location <= 0:
			s.safety(offense, t)
		default:
			s.advanceDowns(yards, t)
		}
	case ResultTouchdown:
		s.touchdown(offense, t)
	case ResultTurnoverTouchdown:
		s.touchdown(offense.Negate(), t)
	case ResultFieldGoal:
		s.score(offense, 3, t)
		t.DriveEnded = true
		s.SetKickoff(offense)
	case ResultMiss:
		t.DriveEnded = true
		s.changePossession(max(FieldLength-s.Location, PuntTouchbackSpot))
	case ResultPunt, ResultTurnover:
		t.DriveEnded = true
		spot := s.Location + out.Yards
		if spot >= FieldLength {
			s.changePossession(PuntTouchbackSpot)
		} else {
			s.changePossession(FieldLength - max(spot, 1))
		}
	case ResultSafety:
		s.safety(offense, t)
	default:
		s.advanceDowns(0, t)
	}
}

func (s *MatchState) applyConversion(out Outcome, untimed bool, t *Transition) {
	scorer := s.Possession
	switch out.Result {
	case ResultPAT:
		s.score(scorer, 1, t)
	case ResultTwoPoint:
		s.score(scorer, 2, t)
	case ResultTurnoverPAT:
		s.score(scorer.Negate(), 2, t)
	}
	t.DriveEnded = true
	if !untimed {
		s.SetKickoff(scorer)
	}
}

func (s *MatchState) applyKickoff(out Outcome, t *Transition) {
	kicker := s.Possession
	switch out.Result {
	case ResultTouchback:
		s.changePossession(TouchbackSpot)
	case ResultTurnover:
		s.Location = min(max(s.Location+out.Yards, 1), FieldLength-1)
		s.Down = 1
		s.Distance = min(FirstDownYards, FieldLength-s.Location)
		s.Action = ActionPlay
		s.WaitingOn = kicker.Negate()
	case ResultTouchdown:
		s.touchdown(kicker.Negate(), t)
	case ResultTurnoverTouchdown:
		s.touchdown(kicker, t)
	default:
		spot := s.Location + out.Yards
		if spot >= FieldLength {
			s.changePossession(TouchbackSpot)
		} else {
			s.changePossession(FieldLength - max(spot, 1))
		}
	}
}

func (s *MatchState) advanceDowns(yards int, t *Transition) {
	if yards >= s.Distance {
		s.Down = 1
		s.Distance = min(FirstDownYards, FieldLength-s.Location)
		t.FirstDown = true
		return
	}
	s.Down++
	s.Distance -= yards
	if s.Down > 4 {
		t.TurnoverOnDowns = true
		t.DriveEnded = true
		s.changePossession(FieldLength - s.Location)
	}
}

// changePossession hands the ball to the other side at location (measured for the new offense).
func (s *MatchState) changePossession(location int) {
	s.Possession = s.Possession.Negate()
	s.Location = location
	s.Down = 1
	s.Distance = min(FirstDownYards, FieldLength-location)
	s.Action = ActionPlay
	s.WaitingOn = s.Possession.Negate()
}

func (s *MatchState) touchdown(scorer Side, t *Transition) {
	s.score(scorer, 6, t)
	t.DriveEnded = true
	s.Possession = scorer
	s.Location = ConversionSpot
	s.Down = 1
	s.Distance = FieldLength - ConversionSpot
	s.Action = ActionConversion
	s.WaitingOn = scorer.Negate()
}

func (s *MatchState) safety(offense Side, t *Transition) {
	s.score(offense.Negate(), 2, t)
	t.DriveEnded = true
	s.setFreeKick(offense, SafetyKickSpot)
}

func (s *MatchState) score(side Side, points int, t *Transition) {
	s.ensureQuarterColumns()
	st := s.State(side)
	st.Points += points
	st.Quarters[s.Quarter-1] += points
	t.ScoredBy = side
	t.Points = points
}

func (s *MatchState) finishOvertimeDrive(t *Transition) {
	s.OvertimePossessions++
	if s.OvertimePossessions%2 == 0 {
		if leader, ok := s.Leader(); ok {
			s.End(leader)
			t.GameEnded = true
			return
		}
		s.Quarter++
		s.ensureQuarterColumns()
	}
	s.SetOvertimeDrive(s.OvertimeAttacker.Negate())
}

func (s *MatchState) endQuarter(rules Rules, t *Transition) {
	t.QuarterEnded = true
	switch s.Quarter {
	case 1, 3:
		s.Quarter++
		s.Clock = rules.QuarterLength
	case 2:
		s.Quarter = 3
		s.Clock = rules.QuarterLength
		s.Home.Timeouts = rules.Timeouts
		s.Away.Timeouts = rules.Timeouts
		s.SetKickoff(s.ReceivingNext.Negate())
		t.Halftime = true
	default:
		if leader, ok := s.Leader(); ok {
			s.End(leader)
			t.GameEnded = true
			return
		}
		s.StartOvertime(rules)
		t.OvertimeStarted = true
	}
}

func (s *MatchState) recordStats(req PlayRequest, out Outcome, offense Side) {
	st := s.Stats(offense)
	st.PossessionTime += out.PlayTime
	switch req.Play {
	case PlayRun, PlayPass:
		switch out.Result {
		case ResultGain, ResultTouchdown:
			gained := out.Yards
			if out.Result == ResultTouchdown && gained == 0 {
				gained = FieldLength - req.Location
			}
			if req.Play == PlayPass {
				st.YardsPassing += gained
			} else {
				st.YardsRushing += gained
			}
			st.YardsTotal += gained
		case ResultTurnover, ResultTurnoverTouchdown:
			if req.Play == PlayPass {
				st.TurnoverInterceptions++
			} else {
				st.TurnoverFumble++
			}
		}
	case PlayFieldGoal:
		st.FieldGoalsAttempted++
		if out.Result == ResultFieldGoal {
			st.FieldGoalsScored++
		}
	}
}

// settleTimeout clears a pending request, charging it only when the resolver used it.
func (s *MatchState) settleTimeout(side Side, used bool) TimeoutOption {
	st := s.State(side)
	if st.RequestedTimeout != TimeoutRequested {
		st.RequestedTimeout = TimeoutNone
		return TimeoutNone
	}
	st.RequestedTimeout = TimeoutNone
	if used && st.Timeouts > 0 {
		st.Timeouts--
		return TimeoutUsed
	}
	return TimeoutRequested
}

func (s *MatchState) ensureQuarterColumns() {
	for _, st := range []*TeamState{&s.Home, &s.Away} {
		for len(st.Quarters) < s.Quarter {
			st.Quarters = append(st.Quarters, 0)
		}
	}
}

func (s *MatchState) normalize() {
	s.Down = min(max(s.Down, 1), 4)
	if s.Distance < 1 {
		s.Distance = 1
	}
}
