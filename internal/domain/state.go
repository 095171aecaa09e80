package domain

import "fmt"

// Action is the kind of input a game is currently waiting for.
type Action string

const (
	ActionCoin       Action = "COIN"
	ActionDefer      Action = "DEFER"
	ActionPlay       Action = "PLAY"
	ActionConversion Action = "CONVERSION"
	ActionKickoff    Action = "KICKOFF"
	ActionOvertime   Action = "OVERTIME"
	ActionEnd        Action = "END"
)

var actions = []Action{ActionCoin, ActionDefer, ActionPlay, ActionConversion, ActionKickoff, ActionOvertime, ActionEnd}

// ParseAction resolves an action by its symbolic name.
func ParseAction(name string) (Action, error) {
	for _, a := range actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", name)
}

// Play is an offensive play call.
type Play string

const (
	PlayRun           Play = "RUN"
	PlayPass          Play = "PASS"
	PlayPunt          Play = "PUNT"
	PlayFieldGoal     Play = "FIELD_GOAL"
	PlayKneel         Play = "KNEEL"
	PlaySpike         Play = "SPIKE"
	PlayPAT           Play = "PAT"
	PlayTwoPoint      Play = "TWO_POINT"
	PlayKickoffNormal Play = "KICKOFF_NORMAL"
	PlayKickoffSquib  Play = "KICKOFF_SQUIB"
	PlayKickoffOnside Play = "KICKOFF_ONSIDE"
)

var plays = []Play{
	PlayRun, PlayPass, PlayPunt, PlayFieldGoal, PlayKneel, PlaySpike,
	PlayPAT, PlayTwoPoint, PlayKickoffNormal, PlayKickoffSquib, PlayKickoffOnside,
}

// ParsePlay resolves a play by its symbolic name.
func ParsePlay(name string) (Play, error) {
	for _, p := range plays {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown play %q", name)
}

// Result is the outcome category of a resolved play.
type Result string

const (
	ResultGain              Result = "GAIN"
	ResultTurnover          Result = "TURNOVER"
	ResultTouchdown         Result = "TOUCHDOWN"
	ResultTurnoverTouchdown Result = "TURNOVER_TOUCHDOWN"
	ResultIncomplete        Result = "INCOMPLETE"
	ResultTouchback         Result = "TOUCHBACK"
	ResultFieldGoal         Result = "FIELD_GOAL"
	ResultMiss              Result = "MISS"
	ResultPAT               Result = "PAT"
	ResultTwoPoint          Result = "TWO_POINT"
	ResultKickoff           Result = "KICKOFF"
	ResultPunt              Result = "PUNT"
	ResultKick              Result = "KICK"
	ResultSpike             Result = "SPIKE"
	ResultKneel             Result = "KNEEL"
	ResultSafety            Result = "SAFETY"
	ResultError             Result = "ERROR"
	ResultTurnoverPAT       Result = "TURNOVER_PAT"
)

var results = []Result{
	ResultGain, ResultTurnover, ResultTouchdown, ResultTurnoverTouchdown, ResultIncomplete,
	ResultTouchback, ResultFieldGoal, ResultMiss, ResultPAT, ResultTwoPoint, ResultKickoff,
	ResultPunt, ResultKick, ResultSpike, ResultKneel, ResultSafety, ResultError, ResultTurnoverPAT,
}

// ParseResult resolves a result by its symbolic name.
func ParseResult(name string) (Result, error) {
	for _, r := range results {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown result %q", name)
}

// QuarterType describes the period the game is in.
type QuarterType string

const (
	QuarterNormal         QuarterType = "NORMAL"
	QuarterOvertimeNormal QuarterType = "OVERTIME_NORMAL"
	QuarterOvertimeTime   QuarterType = "OVERTIME_TIME"
	QuarterEnd            QuarterType = "END"
)

// TimeoutOption tracks a team's timeout request for the current play.
type TimeoutOption string

const (
	TimeoutNone      TimeoutOption = "NONE"
	TimeoutRequested TimeoutOption = "REQUESTED"
	TimeoutUsed      TimeoutOption = "USED"
)

// TimeOption is the offense's clock management choice.
type TimeOption string

const (
	TimeNormal TimeOption = "NORMAL"
	TimeChew   TimeOption = "CHEW"
	TimeHurry  TimeOption = "HURRY"
)

// OvertimeVariant selects how tied games are decided.
type OvertimeVariant string

const (
	// OvertimeDistance plays alternating drives from a fixed spot with no clock.
	OvertimeDistance OvertimeVariant = "distance"
	// OvertimeTime plays a timed period that starts with a kickoff.
	OvertimeTime OvertimeVariant = "time"
)
