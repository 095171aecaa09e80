package domain

import "testing"

func TestNewMatchState(t *testing.T) {
	s := NewMatchState(Rules{})
	if s.Action != ActionCoin || s.WaitingOn != Away {
		t.Fatalf("new game waits on %s/%s, want COIN/away", s.Action, s.WaitingOn)
	}
	if s.Clock != DefaultQuarterLength || s.Quarter != 1 || s.QuarterType != QuarterNormal {
		t.Fatalf("unexpected clock state: %+v", s)
	}
	if s.Home.Timeouts != DefaultTimeouts || s.Away.Timeouts != DefaultTimeouts {
		t.Fatalf("timeouts = %d/%d", s.Home.Timeouts, s.Away.Timeouts)
	}
	if len(s.Home.Quarters) != 4 || len(s.Away.Quarters) != 4 {
		t.Fatalf("quarter columns not initialised")
	}
}

func TestMatchStateAccessors(t *testing.T) {
	s := NewMatchState(Rules{Timeouts: 2})
	s.State(Home).Points = 7
	s.Stats(Away).YardsRushing = 40

	if s.Home.Points != 7 || s.Away.Points != 0 {
		t.Fatalf("State(Home) did not address the home team")
	}
	if s.AwayStats.YardsRushing != 40 || s.HomeStats.YardsRushing != 0 {
		t.Fatalf("Stats(Away) did not address the away team")
	}
}

func TestMatchStateClone(t *testing.T) {
	s := NewMatchState(Rules{})
	s.Ledger.Add("a")
	s.Plays = []PlaySummary{{Result: ResultGain}}
	s.End(Home)

	cp := s.Clone()
	cp.Home.Quarters[0] = 9
	cp.Ledger.Add("b")
	cp.Plays[0].Result = ResultMiss
	*cp.Winner = Away

	if s.Home.Quarters[0] != 0 {
		t.Fatalf("clone shares quarter slice")
	}
	if s.Ledger.Contains("b") {
		t.Fatalf("clone shares ledger")
	}
	if s.Plays[0].Result != ResultGain {
		t.Fatalf("clone shares play log")
	}
	if *s.Winner != Home {
		t.Fatalf("clone shares winner pointer")
	}
}
