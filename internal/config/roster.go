package config

import (
	"context"
	"slices"
	"strings"

	"refbot/internal/domain"
	"refbot/internal/ports"
)

// StaticRoster serves team lookups from the configured team list.
type StaticRoster struct {
	byCoach map[string]domain.Team
}

// NewStaticRoster indexes teams by lowercased coach name.
func NewStaticRoster(teams []TeamConfig) *StaticRoster {
	r := &StaticRoster{byCoach: make(map[string]domain.Team)}
	for _, t := range teams {
		team := domain.Team{Tag: t.Tag, Name: t.Name, Coaches: slices.Clone(t.Coaches)}
		if team.Name == "" {
			team.Name = t.Tag
		}
		for _, coach := range t.Coaches {
			r.byCoach[strings.ToLower(coach)] = team
		}
	}
	return r
}

// TeamForCoach returns the coach's team or ports.ErrNotFound.
func (r *StaticRoster) TeamForCoach(_ context.Context, coach string) (domain.Team, error) {
	team, ok := r.byCoach[strings.ToLower(coach)]
	if !ok {
		return domain.Team{}, ports.ErrNotFound
	}
	return team, nil
}

var _ ports.Roster = (*StaticRoster)(nil)
