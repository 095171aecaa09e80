// Package resolver decides play outcomes from the offense and defense numbers.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"refbot/internal/domain"
	"refbot/internal/ports"
)

// ErrUnresolvable is returned for requests no table can answer.
var ErrUnresolvable = errors.New("play cannot be resolved")

// band maps every difference up to maxDiff onto a result.
type band struct {
	maxDiff int
	result  domain.Result
	yards   int
}

var (
	runTable = []band{
		{25, domain.ResultGain, 25},
		{75, domain.ResultGain, 12},
		{150, domain.ResultGain, 7},
		{250, domain.ResultGain, 5},
		{350, domain.ResultGain, 3},
		{450, domain.ResultGain, 1},
		{550, domain.ResultGain, -1},
		{720, domain.ResultGain, -3},
		{750, domain.ResultTurnover, 0},
	}
	passTable = []band{
		{25, domain.ResultGain, 40},
		{75, domain.ResultGain, 20},
		{150, domain.ResultGain, 12},
		{250, domain.ResultGain, 7},
		{400, domain.ResultIncomplete, 0},
		{550, domain.ResultGain, -6},
		{720, domain.ResultIncomplete, 0},
		{750, domain.ResultTurnover, 0},
	}
	puntTable = []band{
		{100, domain.ResultPunt, 48},
		{400, domain.ResultPunt, 40},
		{740, domain.ResultPunt, 32},
		{750, domain.ResultTurnover, -5},
	}
	patTable = []band{
		{700, domain.ResultPAT, 0},
		{750, domain.ResultMiss, 0},
	}
	twoPointTable = []band{
		{330, domain.ResultTwoPoint, 0},
		{740, domain.ResultMiss, 0},
		{750, domain.ResultTurnoverPAT, 0},
	}
	kickoffTable = []band{
		{10, domain.ResultTouchdown, 0},
		{400, domain.ResultTouchback, 0},
		{550, domain.ResultKick, 45},
		{740, domain.ResultKick, 35},
		{750, domain.ResultTurnover, 40},
	}
	squibTable = []band{
		{735, domain.ResultKick, 30},
		{750, domain.ResultTurnover, 30},
	}
	onsideTable = []band{
		{150, domain.ResultTurnover, 10},
		{750, domain.ResultKick, 10},
	}
)

// Clock costs in seconds.
const (
	playTimeNormal = 30
	playTimeChew   = 40
	playTimeHurry  = 10
	playTimeShort  = 5
	playTimeKneel  = 40
	runoffNormal   = 15
	runoffChew     = 25
)

// DiffResolver resolves plays by the circular difference between the two numbers.
type DiffResolver struct{}

// New returns the default resolver.
func New() *DiffResolver {
	return &DiffResolver{}
}

// Difference returns the circular distance between two play numbers, 0..750.
func Difference(offense, defense int) int {
	d := offense - defense
	if d < 0 {
		d = -d
	}
	return min(d, domain.MaxPlayNumber-d)
}

// Resolve implements ports.PlayResolver.
func (r *DiffResolver) Resolve(ctx context.Context, req domain.PlayRequest) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	if !slices.Contains(domain.PlaysFor(req.Action), req.Play) {
		return domain.Outcome{}, fmt.Errorf("%w: %s is not valid for %s", ErrUnresolvable, req.Play, req.Action)
	}
	if !validNumber(req.DefenseNumber) {
		return domain.Outcome{}, fmt.Errorf("%w: no defensive number", ErrUnresolvable)
	}

	switch req.Play {
	case domain.PlayKneel:
		return r.clock(req, domain.Outcome{Result: domain.ResultKneel, Yards: -1, PlayTime: playTimeKneel}), nil
	case domain.PlaySpike:
		return domain.Outcome{Result: domain.ResultSpike, PlayTime: playTimeShort}, nil
	}
	if !validNumber(req.OffenseNumber) {
		return domain.Outcome{}, fmt.Errorf("%w: no offensive number", ErrUnresolvable)
	}

	diff := Difference(req.OffenseNumber, req.DefenseNumber)
	switch req.Play {
	case domain.PlayRun:
		return r.movement(req, lookup(runTable, diff)), nil
	case domain.PlayPass:
		return r.movement(req, lookup(passTable, diff)), nil
	case domain.PlayPunt:
		b := lookup(puntTable, diff)
		return domain.Outcome{Result: b.result, Yards: b.yards, PlayTime: playTimeShort * 2}, nil
	case domain.PlayFieldGoal:
		result := domain.ResultMiss
		if diff <= fieldGoalThreshold(req.Location) {
			result = domain.ResultFieldGoal
		}
		return domain.Outcome{Result: result, PlayTime: playTimeShort}, nil
	case domain.PlayPAT:
		return conversion(lookup(patTable, diff)), nil
	case domain.PlayTwoPoint:
		return conversion(lookup(twoPointTable, diff)), nil
	case domain.PlayKickoffNormal:
		return kickoff(lookup(kickoffTable, diff)), nil
	case domain.PlayKickoffSquib:
		return kickoff(lookup(squibTable, diff)), nil
	case domain.PlayKickoffOnside:
		return kickoff(lookup(onsideTable, diff)), nil
	default:
		return domain.Outcome{}, fmt.Errorf("%w: unknown play %s", ErrUnresolvable, req.Play)
	}
}

func (r *DiffResolver) movement(req domain.PlayRequest, b band) domain.Outcome {
	out := domain.Outcome{Result: b.result, Yards: b.yards, PlayTime: playTime(req.TimeOption)}
	switch {
	case b.result == domain.ResultIncomplete:
		out.Yards = 0
		out.PlayTime = playTimeShort
		return out
	case b.result != domain.ResultGain:
		return out
	case req.Location+b.yards >= domain.FieldLength:
		out.Result = domain.ResultTouchdown
		out.Yards = domain.FieldLength - req.Location
		return out
	case req.Location+b.yards <= 0:
		out.Result = domain.ResultSafety
		return out
	}
	return r.clock(req, out)
}

// clock adds the runoff between plays and spends a requested timeout to stop it.
func (r *DiffResolver) clock(req domain.PlayRequest, out domain.Outcome) domain.Outcome {
	if req.Untimed {
		return out
	}
	switch req.TimeOption {
	case domain.TimeHurry:
		out.RunoffTime = 0
	case domain.TimeChew:
		out.RunoffTime = runoffChew
	default:
		out.RunoffTime = runoffNormal
	}
	if out.RunoffTime == 0 {
		return out
	}
	switch {
	case req.OffenseTimeoutRequested:
		out.OffenseTimeoutUsed = true
		out.RunoffTime = 0
	case req.DefenseTimeoutRequested:
		out.DefenseTimeoutUsed = true
		out.RunoffTime = 0
	}
	return out
}

func playTime(option domain.TimeOption) int {
	switch option {
	case domain.TimeChew:
		return playTimeChew
	case domain.TimeHurry:
		return playTimeHurry
	default:
		return playTimeNormal
	}
}

// fieldGoalThreshold is the largest difference that still makes a kick from location.
func fieldGoalThreshold(location int) int {
	kick := domain.FieldLength - location + 17
	return min(max(900-12*kick, 0), 740)
}

func conversion(b band) domain.Outcome {
	return domain.Outcome{Result: b.result}
}

func kickoff(b band) domain.Outcome {
	return domain.Outcome{Result: b.result, Yards: b.yards, PlayTime: playTimeShort}
}

func lookup(table []band, diff int) band {
	for _, b := range table {
		if diff <= b.maxDiff {
			return b
		}
	}
	return table[len(table)-1]
}

func validNumber(n int) bool {
	return n >= domain.MinPlayNumber && n <= domain.MaxPlayNumber
}

var _ ports.PlayResolver = (*DiffResolver)(nil)
