package app

import (
	"fmt"
	"strings"
	"time"

	"refbot/internal/domain"
)

func coachString(game *domain.Game, side domain.Side) string {
	coaches := game.Team(side).Coaches
	tagged := make([]string, len(coaches))
	for i, c := range coaches {
		tagged[i] = "@" + c
	}
	return strings.Join(tagged, " and ")
}

func renderTime(t time.Time) string {
	return t.UTC().Format("Jan 2 15:04 UTC")
}

func currentPlayString(game *domain.Game) string {
	st := &game.Status
	offense := game.Team(st.Possession).Name
	switch st.Action {
	case domain.ActionKickoff:
		return fmt.Sprintf("%s is kicking off. %s left in %s.",
			offense, domain.RenderClock(st.Clock), domain.RenderQuarter(st.Quarter))
	case domain.ActionConversion:
		return fmt.Sprintf("%s is attempting the conversion.", offense)
	}
	if st.QuarterType == domain.QuarterOvertimeNormal {
		return fmt.Sprintf("It's %s & %d on the %s in %s. %s has the ball.",
			domain.RenderDown(st.Down), st.Distance, domain.RenderLocation(st.Location),
			domain.RenderQuarter(st.Quarter), offense)
	}
	return fmt.Sprintf("It's %s & %d on the %s with %s left in %s. %s has the ball.",
		domain.RenderDown(st.Down), st.Distance, domain.RenderLocation(st.Location),
		domain.RenderClock(st.Clock), domain.RenderQuarter(st.Quarter), offense)
}

func waitingOnString(game *domain.Game) string {
	st := &game.Status
	return fmt.Sprintf("Waiting on %s for %s.", game.Team(st.WaitingOn).Name, actionDescription(st))
}

func actionDescription(st *domain.MatchState) string {
	switch st.Action {
	case domain.ActionCoin:
		return "the coin toss"
	case domain.ActionDefer:
		return "the receive/defer choice"
	case domain.ActionEnd:
		return "nothing, the game is over"
	}
	if st.WaitingOn != st.Possession {
		return "a defensive number"
	}
	return "a play call"
}

func suggestedPlays(action domain.Action) string {
	plays := domain.PlaysFor(action)
	names := make([]string, len(plays))
	for i, p := range plays {
		names[i] = "**" + playKeywords[p].Name + "**"
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

func scoreString(game *domain.Game) string {
	return fmt.Sprintf("%s %d, %s %d", game.Away.Name, game.Status.Away.Points, game.Home.Name, game.Status.Home.Points)
}

func resultString(game *domain.Game, req domain.PlayRequest, out domain.Outcome, tr domain.Transition) string {
	offense := game.Team(tr.Offense).Name
	defense := game.Team(tr.Offense.Negate()).Name
	var line string
	switch out.Result {
	case domain.ResultGain:
		verb := "ran"
		if req.Play == domain.PlayPass {
			verb = "passed"
		}
		switch {
		case out.Yards > 0:
			line = fmt.Sprintf("%s %s for %d yards.", offense, verb, out.Yards)
		case out.Yards < 0:
			line = fmt.Sprintf("%s lost %d yards.", offense, -out.Yards)
		default:
			line = fmt.Sprintf("%s %s for no gain.", offense, verb)
		}
	case domain.ResultTouchdown:
		scorer := offense
		if req.Action == domain.ActionKickoff {
			scorer = defense
		}
		line = fmt.Sprintf("Touchdown %s!", scorer)
	case domain.ResultTurnoverTouchdown:
		scorer := defense
		if req.Action == domain.ActionKickoff {
			scorer = offense
		}
		line = fmt.Sprintf("Turnover! %s took it back for a touchdown!", scorer)
	case domain.ResultIncomplete:
		line = "The pass is incomplete."
	case domain.ResultTurnover:
		switch req.Play {
		case domain.PlayPass:
			line = fmt.Sprintf("Intercepted! %s has the ball.", defense)
		case domain.PlayRun:
			line = fmt.Sprintf("Fumble! %s recovered.", defense)
		case domain.PlayPunt:
			line = fmt.Sprintf("The punt was blocked! %s has the ball.", defense)
		default:
			line = fmt.Sprintf("%s recovered the kick!", offense)
		}
	case domain.ResultFieldGoal:
		line = "The field goal is good!"
	case domain.ResultMiss:
		switch req.Play {
		case domain.PlayFieldGoal:
			line = "The field goal is no good."
		default:
			line = "The conversion attempt failed."
		}
	case domain.ResultPAT:
		line = "The extra point is good."
	case domain.ResultTwoPoint:
		line = "The two point conversion is good!"
	case domain.ResultTurnoverPAT:
		line = fmt.Sprintf("%s returned the conversion attempt for two points!", defense)
	case domain.ResultPunt:
		line = fmt.Sprintf("%s punted %d yards.", offense, out.Yards)
	case domain.ResultKick, domain.ResultKickoff:
		line = "The kickoff was returned."
	case domain.ResultTouchback:
		line = "Touchback."
	case domain.ResultSpike:
		line = "The quarterback spiked the ball."
	case domain.ResultKneel:
		line = "The quarterback took a knee."
	case domain.ResultSafety:
		line = fmt.Sprintf("Safety! %s gets two points.", defense)
	default:
		line = fmt.Sprintf("Result: %s.", out.Result)
	}

	parts := []string{line}
	if !domain.IsTimePlay(req.Play) {
		parts = append(parts, fmt.Sprintf("Offense number: %d, defense number: %d.", req.OffenseNumber, req.DefenseNumber))
	}
	if tr.TurnoverOnDowns {
		parts = append(parts, fmt.Sprintf("Turnover on downs. %s takes over.", defense))
	}
	switch {
	case tr.GameEnded:
	case tr.Halftime:
		parts = append(parts, "That's halftime.")
	case tr.OvertimeStarted:
		parts = append(parts, "End of regulation, we're going to overtime!")
	case tr.QuarterEnded:
		parts = append(parts, "That's the end of the quarter.")
	}
	if tr.Points > 0 {
		parts = append(parts, scoreString(game))
	}
	return strings.Join(parts, "\n\n")
}

func timeoutString(role string, option domain.TimeoutOption) string {
	switch option {
	case domain.TimeoutUsed:
		return fmt.Sprintf("The %s is charged a timeout.", role)
	case domain.TimeoutRequested:
		return fmt.Sprintf("The %s requested a timeout, but it was not used.", role)
	default:
		return ""
	}
}
