package domain

import (
	"fmt"
	"slices"
)

// PlayActions are the actions that are resolved by a number exchange.
var PlayActions = []Action{ActionPlay, ActionConversion, ActionKickoff}

// NormalPlays are the plays available when the action is PLAY.
var NormalPlays = []Play{PlayRun, PlayPass, PlayPunt, PlayFieldGoal, PlayKneel, PlaySpike}

// TimePlays need no number from the offense.
var TimePlays = []Play{PlayKneel, PlaySpike}

// MovementPlays count toward rushing or passing yardage.
var MovementPlays = []Play{PlayRun, PlayPass}

// ConversionPlays are the plays available after a touchdown.
var ConversionPlays = []Play{PlayPAT, PlayTwoPoint}

// KickoffPlays are the plays available on a kickoff.
var KickoffPlays = []Play{PlayKickoffNormal, PlayKickoffSquib, PlayKickoffOnside}

// IsPlayAction reports whether a is resolved through a defense/offense number exchange.
func IsPlayAction(a Action) bool {
	return slices.Contains(PlayActions, a)
}

// IsTimePlay reports whether p needs no offensive number.
func IsTimePlay(p Play) bool {
	return slices.Contains(TimePlays, p)
}

// PlaysFor returns the plays the offense may call for an action.
func PlaysFor(a Action) []Play {
	switch a {
	case ActionPlay:
		return NormalPlays
	case ActionConversion:
		return ConversionPlays
	case ActionKickoff:
		return KickoffPlays
	default:
		return nil
	}
}

// IsDriveEnder reports whether r ends the current possession.
// TOUCHDOWN ends the drive and hands the game to a conversion attempt.
func IsDriveEnder(r Result) bool {
	switch r {
	case ResultTurnover, ResultTurnoverTouchdown, ResultTouchdown, ResultFieldGoal,
		ResultPunt, ResultMiss, ResultSafety:
		return true
	default:
		return false
	}
}

// IsPostTouchdownEnder reports whether r closes out a touchdown sequence.
func IsPostTouchdownEnder(r Result) bool {
	switch r {
	case ResultPAT, ResultTwoPoint, ResultKickoff, ResultTurnoverPAT:
		return true
	default:
		return false
	}
}

// RenderClock formats a number of seconds as m:ss.
func RenderClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RenderDown formats a down number as 1st, 2nd, 3rd or 4th.
func RenderDown(down int) string {
	switch down {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return "4th"
	}
}

// RenderLocation describes a field position from the offense's perspective.
func RenderLocation(location int) string {
	switch {
	case location == 50:
		return "midfield"
	case location < 50:
		return fmt.Sprintf("own %d", location)
	default:
		return fmt.Sprintf("opponent's %d", FieldLength-location)
	}
}

// RenderQuarter names a quarter number, counting overtime periods past the fourth.
func RenderQuarter(quarter int) string {
	if quarter <= 4 {
		return fmt.Sprintf("Q%d", quarter)
	}
	if quarter == 5 {
		return "OT"
	}
	return fmt.Sprintf("%dOT", quarter-4)
}
