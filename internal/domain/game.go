package domain

import (
	"strings"
	"time"
)

// Team is one side of a game and the coaches allowed to act for it.
type Team struct {
	Tag     string   `json:"tag"`
	Name    string   `json:"name"`
	Coaches []string `json:"coaches"`
}

// HasCoach reports whether user coaches this team. Coach names compare case-insensitively.
func (t Team) HasCoach(user string) bool {
	for _, c := range t.Coaches {
		if strings.EqualFold(c, user) {
			return true
		}
	}
	return false
}

// Game is the persisted record of one match between two teams.
type Game struct {
	ID     string `json:"id"`
	Thread string `json:"thread"`
	Home   Team   `json:"home"`
	Away   Team   `json:"away"`

	Status  MatchState `json:"status"`
	History History    `json:"history"`

	// Errored is set when a play could not be resolved. No turn is accepted
	// until a moderator clears it.
	Errored   bool `json:"errored,omitempty"`
	Abandoned bool `json:"abandoned,omitempty"`

	Playclock time.Time `json:"playclock"`
	Deadline  time.Time `json:"deadline"`
}

// Team returns the team playing as side.
func (g *Game) Team(side Side) *Team {
	if side == Home {
		return &g.Home
	}
	return &g.Away
}

// CoachSide reports which side user coaches.
func (g *Game) CoachSide(user string) (Side, bool) {
	switch {
	case g.Home.HasCoach(user):
		return Home, true
	case g.Away.HasCoach(user):
		return Away, true
	default:
		return Away, false
	}
}

// Coaches returns every coach of both teams.
func (g *Game) Coaches() []string {
	out := make([]string, 0, len(g.Home.Coaches)+len(g.Away.Coaches))
	out = append(out, g.Home.Coaches...)
	return append(out, g.Away.Coaches...)
}
