package ports

import (
	"context"

	"refbot/internal/domain"
)

// PlayResolver decides the outcome of a play from the two submitted numbers.
type PlayResolver interface {
	// Resolve returns the outcome for req. An error means the play could not be
	// decided; the caller must not guess a result.
	Resolve(ctx context.Context, req domain.PlayRequest) (domain.Outcome, error)
}
