package ports

import (
	"context"

	"refbot/internal/domain"
)

// Roster looks up which team a coach belongs to.
type Roster interface {
	// TeamForCoach returns the coach's team, or ErrNotFound.
	TeamForCoach(ctx context.Context, coach string) (domain.Team, error)
}
