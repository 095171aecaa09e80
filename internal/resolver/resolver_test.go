package resolver

import (
	"context"
	"errors"
	"testing"

	"refbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(action domain.Action, play domain.Play, offense, defense, location int) domain.PlayRequest {
	return domain.PlayRequest{
		Action:        action,
		Play:          play,
		TimeOption:    domain.TimeNormal,
		OffenseNumber: offense,
		DefenseNumber: defense,
		Location:      location,
		Down:          1,
		Distance:      10,
		Clock:         400,
		Quarter:       1,
	}
}

func TestDifference(t *testing.T) {
	assert.Equal(t, 0, Difference(500, 500))
	assert.Equal(t, 100, Difference(400, 500))
	assert.Equal(t, 100, Difference(1450, 50), "difference wraps around the number circle")
	assert.Equal(t, 750, Difference(1, 751))
}

func TestResolveRun(t *testing.T) {
	r := New()
	out, err := r.Resolve(context.Background(), request(domain.ActionPlay, domain.PlayRun, 500, 500, 30))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultGain, out.Result)
	assert.Equal(t, 25, out.Yards)
	assert.Equal(t, runoffNormal, out.RunoffTime)

	out, err = r.Resolve(context.Background(), request(domain.ActionPlay, domain.PlayRun, 500, 500, 90))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultTouchdown, out.Result)
	assert.Equal(t, 10, out.Yards)

	out, err = r.Resolve(context.Background(), request(domain.ActionPlay, domain.PlayRun, 1, 751, 30))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultTurnover, out.Result)
}

func TestResolvePassIncompleteStopsClock(t *testing.T) {
	out, err := New().Resolve(context.Background(), request(domain.ActionPlay, domain.PlayPass, 100, 400, 30))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultIncomplete, out.Result)
	assert.Zero(t, out.RunoffTime)
}

func TestResolveTimeouts(t *testing.T) {
	req := request(domain.ActionPlay, domain.PlayRun, 500, 600, 30)
	req.OffenseTimeoutRequested = true
	req.DefenseTimeoutRequested = true
	out, err := New().Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, out.OffenseTimeoutUsed)
	assert.False(t, out.DefenseTimeoutUsed, "only one timeout is needed to stop the clock")
	assert.Zero(t, out.RunoffTime)

	req.TimeOption = domain.TimeHurry
	out, err = New().Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, out.OffenseTimeoutUsed, "hurry-up has no runoff to stop")
}

func TestResolveFieldGoal(t *testing.T) {
	out, err := New().Resolve(context.Background(), request(domain.ActionPlay, domain.PlayFieldGoal, 500, 700, 80))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultFieldGoal, out.Result)

	out, err = New().Resolve(context.Background(), request(domain.ActionPlay, domain.PlayFieldGoal, 500, 1000, 40))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultMiss, out.Result)
}

func TestResolveKickoffAndConversion(t *testing.T) {
	out, err := New().Resolve(context.Background(), request(domain.ActionKickoff, domain.PlayKickoffNormal, 500, 800, domain.KickoffSpot))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultTouchback, out.Result)

	out, err = New().Resolve(context.Background(), request(domain.ActionKickoff, domain.PlayKickoffOnside, 500, 550, domain.KickoffSpot))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultTurnover, out.Result)

	out, err = New().Resolve(context.Background(), request(domain.ActionConversion, domain.PlayPAT, 500, 550, domain.ConversionSpot))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultPAT, out.Result)
}

func TestResolveKneelNeedsNoOffenseNumber(t *testing.T) {
	out, err := New().Resolve(context.Background(), request(domain.ActionPlay, domain.PlayKneel, 0, 10, 30))
	require.NoError(t, err)
	assert.Equal(t, domain.ResultKneel, out.Result)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		req  domain.PlayRequest
	}{
		{name: "play not valid for action", req: request(domain.ActionKickoff, domain.PlayRun, 5, 5, 30)},
		{name: "missing defense number", req: request(domain.ActionPlay, domain.PlayRun, 5, 0, 30)},
		{name: "missing offense number", req: request(domain.ActionPlay, domain.PlayPass, 0, 5, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Resolve(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrUnresolvable), "got %v", err)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Resolve(ctx, request(domain.ActionPlay, domain.PlayRun, 5, 5, 30))
	assert.ErrorIs(t, err, context.Canceled)
}
