package ports

import (
	"context"
	"errors"

	"refbot/internal/domain"
)

// ErrNotFound is returned when a game or coach index entry does not exist.
var ErrNotFound = errors.New("not found")

// MatchStore persists game records and the coach -> game index.
type MatchStore interface {
	// LoadGame returns the game with id, or ErrNotFound.
	LoadGame(ctx context.Context, id string) (*domain.Game, error)

	// SaveGame writes the full game record.
	SaveGame(ctx context.Context, game *domain.Game) error

	// GameIDForCoach returns the active game a coach plays in, or ErrNotFound.
	GameIDForCoach(ctx context.Context, coach string) (string, error)

	// IndexCoaches points every listed coach at gameID.
	IndexCoaches(ctx context.Context, gameID string, coaches []string) error

	// UnindexCoaches removes the coach entries.
	UnindexCoaches(ctx context.Context, coaches []string) error
}
